package app

import (
	"fmt"
	"os"
	"time"

	"clinic-go/internal/clinic"
	"clinic-go/internal/config"
	"clinic-go/internal/database"
	"clinic-go/internal/model"
)

// Setting keys owned by the app layer.
const (
	SettingClinicName    = "clinic_name"
	SettingClinicAddress = "clinic_address"
	SettingSetupComplete = "setup_complete"
)

// ClinicApp is the application layer between the UI/IPC surface (or CLI)
// and the service layer. It constructs all dependencies from config,
// exposes one method per operation with plain arguments, and manages the
// store lifecycle on Close.
type ClinicApp struct {
	cfg      *config.Config
	stores   *database.Lazy
	identity *clinic.IdentityService
	presence *clinic.PresenceService
	messages *clinic.MessageService
	patients *clinic.PatientService
	settings *clinic.SettingsService
	logFile  *os.File
}

// NewClinicApp creates a fully wired ClinicApp from the given config.
// The caller must call Close when done. The store is not opened until the
// first operation touches it.
func NewClinicApp(cfg *config.Config) (*ClinicApp, error) {
	stores, err := database.NewLazyFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating store provider: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	log := &slogAdapter{l: logger}
	clock := clinic.RealClock{}
	idgen := clinic.UUIDGenerator{}
	hasher := clinic.BcryptHasher{}

	return &ClinicApp{
		cfg:      cfg,
		stores:   stores,
		identity: clinic.NewIdentityService(stores, hasher, log, clock, idgen),
		presence: clinic.NewPresenceService(stores, log, clock),
		messages: clinic.NewMessageService(stores, log, clock, idgen),
		patients: clinic.NewPatientService(stores, log, clock, idgen),
		settings: clinic.NewSettingsService(stores, log),
		logFile:  logFile,
	}, nil
}

// Identity operations

func (a *ClinicApp) Authenticate(email, password string) (*model.User, error) {
	return a.identity.Authenticate(email, password)
}

func (a *ClinicApp) CreateUser(p clinic.CreateUserParams) (*model.User, error) {
	return a.identity.CreateUser(p)
}

func (a *ClinicApp) ListUsers() ([]*model.User, error) {
	return a.identity.ListUsers()
}

// Presence operations

func (a *ClinicApp) SetOnline(userID, sessionID string) error {
	return a.presence.SetOnline(userID, sessionID)
}

func (a *ClinicApp) SetOffline(userID string) error {
	return a.presence.SetOffline(userID)
}

func (a *ClinicApp) ListOnline() ([]string, error) {
	return a.presence.ListOnline()
}

func (a *ClinicApp) ListWithPresence() ([]*clinic.UserPresence, error) {
	return a.presence.ListWithPresence()
}

// Messaging operations

func (a *ClinicApp) SendMessage(senderID, receiverID, body string) (*model.Message, error) {
	return a.messages.Send(senderID, receiverID, body)
}

func (a *ClinicApp) GetConversation(userID, otherUserID, searchTerm string) ([]*model.Message, error) {
	return a.messages.Conversation(userID, otherUserID, searchTerm)
}

func (a *ClinicApp) MarkMessageRead(messageID, readerID string) (bool, error) {
	return a.messages.MarkRead(messageID, readerID)
}

func (a *ClinicApp) DeleteMessage(messageID, senderID string) (bool, error) {
	return a.messages.Delete(messageID, senderID)
}

func (a *ClinicApp) UnreadCount(userID string) (int, error) {
	return a.messages.UnreadCount(userID)
}

// Patient operations

func (a *ClinicApp) ListPatients(search string) ([]*model.Patient, error) {
	return a.patients.List(search)
}

func (a *ClinicApp) GetPatient(id string) (*model.Patient, error) {
	return a.patients.GetByID(id)
}

func (a *ClinicApp) CreatePatient(p clinic.PatientParams) (*model.Patient, error) {
	return a.patients.Create(p)
}

func (a *ClinicApp) UpdatePatient(id string, p clinic.PatientParams) (*model.Patient, error) {
	return a.patients.Update(id, p)
}

func (a *ClinicApp) DeletePatient(id string) (bool, error) {
	return a.patients.Delete(id)
}

// Setting operations

func (a *ClinicApp) GetSetting(key string) (string, bool, error) {
	return a.settings.Get(key)
}

func (a *ClinicApp) SetSetting(key, value string) error {
	return a.settings.Set(key, value)
}

// Setup operations

// IsFirstRun reports whether initial setup has not completed yet.
func (a *ClinicApp) IsFirstRun() (bool, error) {
	_, ok, err := a.settings.Get(SettingSetupComplete)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// CompleteSetup stores the clinic identity, creates the initial admin user
// and marks setup complete. Running it twice returns ErrConflict.
func (a *ClinicApp) CompleteSetup(clinicName, clinicAddress string, admin clinic.CreateUserParams) (*model.User, error) {
	firstRun, err := a.IsFirstRun()
	if err != nil {
		return nil, err
	}
	if !firstRun {
		return nil, fmt.Errorf("setup: %w", clinic.ErrConflict)
	}

	if admin.Role == "" {
		admin.Role = "admin"
	}
	user, err := a.identity.CreateUser(admin)
	if err != nil {
		return nil, err
	}

	if err := a.settings.Set(SettingClinicName, clinicName); err != nil {
		return nil, err
	}
	if clinicAddress != "" {
		if err := a.settings.Set(SettingClinicAddress, clinicAddress); err != nil {
			return nil, err
		}
	}
	if err := a.settings.Set(SettingSetupComplete, "true"); err != nil {
		return nil, err
	}

	return user, nil
}

// ExportDatabase writes a complete copy of the record store to destPath.
func (a *ClinicApp) ExportDatabase(destPath string) error {
	store, err := a.stores.Acquire()
	if err != nil {
		return err
	}

	exporter, ok := store.(interface{ ExportTo(string) error })
	if !ok {
		return fmt.Errorf("store does not support export")
	}
	return exporter.ExportTo(destPath)
}

// Close closes the store (if it was ever opened) and the log file.
func (a *ClinicApp) Close() error {
	err := a.stores.Close()

	if a.logFile != nil {
		a.logFile.Close()
	}

	return err
}
