package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clinic-go/internal/clinic"
	"clinic-go/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the clinic.Store interface using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store connection.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, path: ""}
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tools and tests that need a properly configured
// connection. path can be a file path or ":memory:" for in-memory.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single shared connection: the service layer is single-writer, and for
	// ":memory:" every pooled connection would otherwise get its own database.
	db.SetMaxOpenConns(1)

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// User operations

func (s *SQLiteStore) CreateUser(u *model.User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, password_hash, role, first_name, last_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Role, u.FirstName, u.LastName, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindUserByEmail(email string) (*model.User, error) {
	// The email column carries COLLATE NOCASE, so = matches case-insensitively.
	row := s.db.QueryRow(
		`SELECT id, email, password_hash, role, first_name, last_name, created_at
		 FROM users WHERE email = ?`,
		email,
	)

	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding user by email: %w", err)
	}
	return &u, nil
}

func (s *SQLiteStore) ListUsers() ([]*model.User, error) {
	rows, err := s.db.Query(
		`SELECT id, email, password_hash, role, first_name, last_name, created_at
		 FROM users ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Presence operations

func (s *SQLiteStore) UpsertPresence(p *model.Presence) error {
	session := sql.NullString{String: p.SessionID, Valid: p.SessionID != ""}
	_, err := s.db.Exec(
		`INSERT INTO presence (user_id, status, session_id, changed_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   status = excluded.status,
		   session_id = excluded.session_id,
		   changed_at = excluded.changed_at`,
		p.UserID, p.Status, session, p.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting presence: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListOnlineUserIDs() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT user_id FROM presence WHERE status = ? ORDER BY user_id`,
		model.StatusOnline,
	)
	if err != nil {
		return nil, fmt.Errorf("listing online users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing online users: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStore) ListUsersWithPresence() ([]*clinic.UserPresence, error) {
	rows, err := s.db.Query(
		`SELECT u.id, u.email, u.role, u.first_name, u.last_name, u.created_at,
		        p.status, p.session_id, p.changed_at
		 FROM users u
		 LEFT JOIN presence p ON p.user_id = u.id
		 ORDER BY u.created_at, u.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users with presence: %w", err)
	}
	defer rows.Close()

	var pairs []*clinic.UserPresence
	for rows.Next() {
		var up clinic.UserPresence
		var status, session sql.NullString
		var changedAt sql.NullTime
		err := rows.Scan(
			&up.User.ID, &up.User.Email, &up.User.Role, &up.User.FirstName, &up.User.LastName, &up.User.CreatedAt,
			&status, &session, &changedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning user with presence: %w", err)
		}

		up.Presence.UserID = up.User.ID
		up.Presence.Status = model.StatusOffline // no presence row means offline
		if status.Valid {
			up.Presence.Status = status.String
		}
		up.Presence.SessionID = session.String
		up.Presence.ChangedAt = changedAt.Time
		pairs = append(pairs, &up)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing users with presence: %w", err)
	}
	return pairs, nil
}

// Message operations

func (s *SQLiteStore) InsertMessage(m *model.Message) error {
	_, err := s.db.Exec(
		`INSERT INTO messages (id, sender_id, receiver_id, body, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.SenderID, m.ReceiverID, m.Body, m.Status, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListConversation(userID, otherUserID, search string) ([]*model.Message, error) {
	query := `SELECT id, sender_id, receiver_id, body, status, created_at
	 FROM messages
	 WHERE ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))`
	args := []any{userID, otherUserID, otherUserID, userID}

	if search != "" {
		// LIKE is case-insensitive for ASCII under SQLite's default collation.
		query += ` AND body LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(search)+"%")
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing conversation: %w", err)
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.Status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing conversation: %w", err)
	}
	return msgs, nil
}

func (s *SQLiteStore) MarkMessageRead(messageID, receiverID string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE messages SET status = ? WHERE id = ? AND receiver_id = ?`,
		model.MessageRead, messageID, receiverID,
	)
	if err != nil {
		return false, fmt.Errorf("marking message read: %w", err)
	}
	return affected(res)
}

func (s *SQLiteStore) DeleteMessage(messageID, senderID string) (bool, error) {
	res, err := s.db.Exec(
		`DELETE FROM messages WHERE id = ? AND sender_id = ?`,
		messageID, senderID,
	)
	if err != nil {
		return false, fmt.Errorf("deleting message: %w", err)
	}
	return affected(res)
}

func (s *SQLiteStore) CountUnreadMessages(userID string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND status = ?`,
		userID, model.MessageUnread,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread messages: %w", err)
	}
	return count, nil
}

// Patient operations

const patientColumns = `id, patient_id, first_name, last_name, date_of_birth, gender, contact, created_at, updated_at`

func (s *SQLiteStore) ListPatients(search string) ([]*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients`
	var args []any

	if search != "" {
		query += ` WHERE first_name LIKE ? ESCAPE '\'
		        OR last_name LIKE ? ESCAPE '\'
		        OR patient_id LIKE ? ESCAPE '\'`
		pattern := "%" + escapeLike(search) + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	defer rows.Close()

	var patients []*model.Patient
	for rows.Next() {
		p, err := scanPatient(rows.Scan)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	return patients, nil
}

func (s *SQLiteStore) FindPatientByID(id string) (*model.Patient, error) {
	row := s.db.QueryRow(`SELECT `+patientColumns+` FROM patients WHERE id = ?`, id)

	p, err := scanPatient(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding patient: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) InsertPatient(p *model.Patient) error {
	_, err := s.db.Exec(
		`INSERT INTO patients (`+patientColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.PatientID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.Contact, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting patient: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdatePatient(p *model.Patient) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE patients
		 SET patient_id = ?, first_name = ?, last_name = ?, date_of_birth = ?,
		     gender = ?, contact = ?, updated_at = ?
		 WHERE id = ?`,
		p.PatientID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.Contact, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating patient: %w", err)
	}
	return affected(res)
}

func (s *SQLiteStore) DeletePatient(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting patient: %w", err)
	}
	return affected(res)
}

// scanPatient reads one patient row through the given scan function.
func scanPatient(scan func(...any) error) (*model.Patient, error) {
	var p model.Patient
	err := scan(&p.ID, &p.PatientID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.Gender, &p.Contact, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Setting operations

func (s *SQLiteStore) GetSetting(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting setting: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// Path returns the database file path (or ":memory:" for in-memory stores).
func (s *SQLiteStore) Path() string {
	return s.path
}

// ExportTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteStore) ExportTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("exporting database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// affected reports whether a statement changed at least one row.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return n > 0, nil
}

// escapeLike escapes LIKE metacharacters so a search term matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Compile-time check that SQLiteStore implements the clinic.Store interface
var _ clinic.Store = (*SQLiteStore)(nil)
