package clinic

import (
	"fmt"

	"clinic-go/internal/model"
)

// PatientService handles CRUD and substring search over patient records.
//
// The business patient id is deliberately not unique: it is a human-assigned
// label and the clinic may re-issue or correct it. Only the opaque generated
// id identifies a record.
type PatientService struct {
	stores StoreProvider
	logger Logger
	clock  Clock
	idgen  IDGenerator
}

// NewPatientService creates a new PatientService with the provided dependencies.
func NewPatientService(stores StoreProvider, logger Logger, clock Clock, idgen IDGenerator) *PatientService {
	return &PatientService{stores: stores, logger: logger, clock: clock, idgen: idgen}
}

// PatientParams holds the caller-supplied demographic fields.
type PatientParams struct {
	PatientID   string
	FirstName   string
	LastName    string
	DateOfBirth string
	Gender      string
	Contact     string
}

func (p PatientParams) validate() error {
	if err := requireField("patient_id", p.PatientID); err != nil {
		return err
	}
	if err := requireField("first_name", p.FirstName); err != nil {
		return err
	}
	if err := requireField("last_name", p.LastName); err != nil {
		return err
	}
	return requireField("date_of_birth", p.DateOfBirth)
}

// List returns patients ordered by creation time descending. A non-empty
// search term restricts to records whose first name, last name or business
// patient id contains it as a substring (case-insensitive for ASCII).
func (s *PatientService) List(search string) ([]*model.Patient, error) {
	store, err := s.stores.Acquire()
	if err != nil {
		return nil, err
	}

	patients, err := store.ListPatients(search)
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	return patients, nil
}

// GetByID returns the patient with the given opaque id, or ErrNotFound.
func (s *PatientService) GetByID(id string) (*model.Patient, error) {
	store, err := s.stores.Acquire()
	if err != nil {
		return nil, err
	}

	patient, err := store.FindPatientByID(id)
	if err != nil {
		return nil, fmt.Errorf("finding patient: %w", err)
	}
	if patient == nil {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	return patient, nil
}

// Create validates the fields, generates a fresh opaque id and persists the
// record with created_at == updated_at.
func (s *PatientService) Create(p PatientParams) (*model.Patient, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	store, err := s.stores.Acquire()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	patient := &model.Patient{
		ID:          s.idgen.New(),
		PatientID:   p.PatientID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
		Contact:     p.Contact,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.InsertPatient(patient); err != nil {
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	s.logger.Info("patient created", "id", patient.ID, "patient_id", patient.PatientID)
	return patient, nil
}

// Update replaces the mutable demographic fields of the patient, stamps a
// fresh updated_at, and returns the merged record. Updating an unknown id
// returns ErrNotFound.
func (s *PatientService) Update(id string, p PatientParams) (*model.Patient, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	store, err := s.stores.Acquire()
	if err != nil {
		return nil, err
	}

	patient := &model.Patient{
		ID:          id,
		PatientID:   p.PatientID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
		Contact:     p.Contact,
		UpdatedAt:   s.clock.Now(),
	}
	changed, err := store.UpdatePatient(patient)
	if err != nil {
		return nil, fmt.Errorf("updating patient: %w", err)
	}
	if !changed {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}

	// Re-read to return the stored record with its original created_at.
	updated, err := store.FindPatientByID(id)
	if err != nil {
		return nil, fmt.Errorf("reloading patient: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}

	s.logger.Info("patient updated", "id", id)
	return updated, nil
}

// Delete hard-deletes the patient. Returns false when no row matched.
func (s *PatientService) Delete(id string) (bool, error) {
	store, err := s.stores.Acquire()
	if err != nil {
		return false, err
	}

	deleted, err := store.DeletePatient(id)
	if err != nil {
		return false, fmt.Errorf("deleting patient: %w", err)
	}
	if deleted {
		s.logger.Info("patient deleted", "id", id)
	}
	return deleted, nil
}
