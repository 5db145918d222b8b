package clinic

import "clinic-go/internal/model"

// Store provides an interface for record storage operations. Find methods
// return (nil, nil) when nothing matched; mutations that can affect zero
// rows report that through their bool result.
type Store interface {
	// User operations

	// CreateUser persists a new user record, including the password hash.
	CreateUser(u *model.User) error

	// FindUserByEmail returns the user with the given email, matched
	// case-insensitively, or nil when no such user exists.
	FindUserByEmail(email string) (*model.User, error)

	// ListUsers returns all users ordered by creation time.
	ListUsers() ([]*model.User, error)

	// Presence operations

	// UpsertPresence creates or replaces the single presence row for
	// p.UserID.
	UpsertPresence(p *model.Presence) error

	// ListOnlineUserIDs returns the ids of all users currently online.
	ListOnlineUserIDs() ([]string, error)

	// ListUsersWithPresence returns every user joined with their presence
	// row. Users without a row get an offline presence with a zero
	// timestamp.
	ListUsersWithPresence() ([]*UserPresence, error)

	// Message operations

	// InsertMessage persists a new message.
	InsertMessage(m *model.Message) error

	// ListConversation returns all messages between the two users, in
	// either direction, ascending by timestamp. A non-empty search term
	// restricts to bodies containing it as a case-insensitive substring.
	ListConversation(userID, otherUserID, search string) ([]*model.Message, error)

	// MarkMessageRead transitions the message to read if receiverID is
	// its receiver. Returns false when no row matched.
	MarkMessageRead(messageID, receiverID string) (bool, error)

	// DeleteMessage deletes the message if senderID is its sender.
	// Returns false when no row matched.
	DeleteMessage(messageID, senderID string) (bool, error)

	// CountUnreadMessages returns how many unread messages are addressed
	// to the user.
	CountUnreadMessages(userID string) (int, error)

	// Patient operations

	// ListPatients returns patients ordered by creation time descending.
	// A non-empty search term restricts to records whose first name, last
	// name or business patient id contains it as a substring.
	ListPatients(search string) ([]*model.Patient, error)

	// FindPatientByID returns the patient with the given opaque id, or
	// nil when no such patient exists.
	FindPatientByID(id string) (*model.Patient, error)

	// InsertPatient persists a new patient record.
	InsertPatient(p *model.Patient) error

	// UpdatePatient replaces the mutable fields of the patient with
	// p.ID. Returns false when no row matched.
	UpdatePatient(p *model.Patient) (bool, error)

	// DeletePatient hard-deletes the patient. Returns false when no row
	// matched.
	DeletePatient(id string) (bool, error)

	// Setting operations

	// GetSetting returns the value for key; ok is false when absent.
	GetSetting(key string) (value string, ok bool, err error)

	// SetSetting creates or overwrites the value for key.
	SetSetting(key, value string) error

	// Close closes the store connection.
	Close() error
}

// UserPresence pairs a user with their presence state for status displays.
type UserPresence struct {
	User     model.User
	Presence model.Presence
}

// StoreProvider hands out the shared store handle. Acquire initializes the
// underlying store on first use; implementations must guarantee at most one
// concurrent initialization and must not cache a failed one.
type StoreProvider interface {
	Acquire() (Store, error)
}
