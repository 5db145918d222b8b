package model

import "time"

// Presence states.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Message read states.
const (
	MessageUnread = "unread"
	MessageRead   = "read"
)

// User is an identity record for a clinic staff member.
// PasswordHash is only populated on the storage side; service-layer
// results always carry it empty, and it never serializes.
type User struct {
	ID           string    `json:"id"` // UUID
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // e.g. "admin", "doctor", "reception"
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Presence is the online/offline state of a user. Exactly one row per user.
type Presence struct {
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`               // StatusOnline or StatusOffline
	SessionID string    `json:"session_id,omitempty"` // Empty when offline or never supplied
	ChangedAt time.Time `json:"changed_at"`
}

// Message is a direct message between two users.
type Message struct {
	ID         string    `json:"id"` // UUID
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Body       string    `json:"body"`
	Status     string    `json:"status"` // MessageUnread or MessageRead
	CreatedAt  time.Time `json:"created_at"`
}

// Patient is a demographic record. ID is system-generated and opaque;
// PatientID is the human-assigned business key and is not required to
// be unique.
type Patient struct {
	ID          string    `json:"id"`         // UUID
	PatientID   string    `json:"patient_id"` // Business key
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth string    `json:"date_of_birth"` // ISO date, as entered
	Gender      string    `json:"gender"`
	Contact     string    `json:"contact"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Setting is a persisted key-value configuration entry.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
