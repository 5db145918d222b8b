package clinic_test

import (
	"errors"
	"testing"
	"time"

	"clinic-go/internal/clinic"
	"clinic-go/internal/testutil"
)

func newPatientService(t *testing.T) (*clinic.PatientService, *testutil.StubClock) {
	t.Helper()
	provider := testutil.NewTestProvider(t)
	clock := testutil.FixedClock()
	svc := clinic.NewPatientService(provider, clinic.NewNopLogger(), clock, testutil.NewStubIDGenerator())
	return svc, clock
}

func validPatientParams() clinic.PatientParams {
	return clinic.PatientParams{
		PatientID:   "P-001",
		FirstName:   "Ana",
		LastName:    "Cruz",
		DateOfBirth: "1985-04-12",
		Gender:      "female",
		Contact:     "555-0101",
	}
}

func TestCreatePatient(t *testing.T) {
	t.Run("round-trips through GetByID", func(t *testing.T) {
		svc, _ := newPatientService(t)

		created, err := svc.Create(validPatientParams())
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		if created.ID == "" {
			t.Error("Create() returned empty id")
		}
		if !created.CreatedAt.Equal(created.UpdatedAt) {
			t.Errorf("CreatedAt = %v, UpdatedAt = %v, want equal on create", created.CreatedAt, created.UpdatedAt)
		}

		got, err := svc.GetByID(created.ID)
		if err != nil {
			t.Fatalf("GetByID() failed: %v", err)
		}
		if got.PatientID != "P-001" {
			t.Errorf("PatientID = %q, want %q", got.PatientID, "P-001")
		}
		if got.FirstName != "Ana" || got.LastName != "Cruz" {
			t.Errorf("name = %q %q, want Ana Cruz", got.FirstName, got.LastName)
		}
		if got.DateOfBirth != "1985-04-12" {
			t.Errorf("DateOfBirth = %q, want %q", got.DateOfBirth, "1985-04-12")
		}
		if !got.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
		}
	})

	t.Run("rejects missing required fields", func(t *testing.T) {
		svc, _ := newPatientService(t)

		tests := []struct {
			name   string
			mutate func(*clinic.PatientParams)
			field  string
		}{
			{"missing patient id", func(p *clinic.PatientParams) { p.PatientID = "" }, "patient_id"},
			{"missing first name", func(p *clinic.PatientParams) { p.FirstName = "" }, "first_name"},
			{"missing last name", func(p *clinic.PatientParams) { p.LastName = "" }, "last_name"},
			{"missing date of birth", func(p *clinic.PatientParams) { p.DateOfBirth = "" }, "date_of_birth"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := validPatientParams()
				tt.mutate(&p)

				_, err := svc.Create(p)
				var verr *clinic.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("Create() error = %v, want ValidationError", err)
				}
				if verr.Field != tt.field {
					t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.field)
				}
			})
		}
	})

	t.Run("gender and contact are optional", func(t *testing.T) {
		svc, _ := newPatientService(t)

		p := validPatientParams()
		p.Gender = ""
		p.Contact = ""
		if _, err := svc.Create(p); err != nil {
			t.Errorf("Create() without gender/contact failed: %v", err)
		}
	})

	t.Run("business patient id may repeat", func(t *testing.T) {
		svc, _ := newPatientService(t)

		if _, err := svc.Create(validPatientParams()); err != nil {
			t.Fatalf("first Create() failed: %v", err)
		}
		if _, err := svc.Create(validPatientParams()); err != nil {
			t.Errorf("second Create() with same patient_id failed: %v", err)
		}
	})
}

func TestGetPatientByID(t *testing.T) {
	svc, _ := newPatientService(t)

	_, err := svc.GetByID("missing")
	if !errors.Is(err, clinic.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestListPatients(t *testing.T) {
	seed := func(t *testing.T) (*clinic.PatientService, *testutil.StubClock) {
		t.Helper()
		svc, clock := newPatientService(t)

		for _, p := range []clinic.PatientParams{
			{PatientID: "P-001", FirstName: "Ana", LastName: "Cruz", DateOfBirth: "1985-04-12"},
			{PatientID: "P-002", FirstName: "Ben", LastName: "Reyes", DateOfBirth: "1990-09-30"},
			{PatientID: "P-003", FirstName: "Carla", LastName: "Santos", DateOfBirth: "1978-01-05"},
		} {
			if _, err := svc.Create(p); err != nil {
				t.Fatalf("Create(%s) failed: %v", p.PatientID, err)
			}
			clock.Advance(time.Minute)
		}
		return svc, clock
	}

	t.Run("orders newest first", func(t *testing.T) {
		svc, _ := seed(t)

		patients, err := svc.List("")
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(patients) != 3 {
			t.Fatalf("List() returned %d patients, want 3", len(patients))
		}

		want := []string{"P-003", "P-002", "P-001"}
		for i, w := range want {
			if patients[i].PatientID != w {
				t.Errorf("patients[%d].PatientID = %q, want %q", i, patients[i].PatientID, w)
			}
		}
	})

	t.Run("search matches last name case-insensitively", func(t *testing.T) {
		svc, _ := seed(t)

		patients, err := svc.List("cruz")
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(patients) != 1 {
			t.Fatalf("List(cruz) returned %d patients, want 1", len(patients))
		}
		if patients[0].PatientID != "P-001" {
			t.Errorf("PatientID = %q, want P-001", patients[0].PatientID)
		}
	})

	t.Run("search matches business patient id substring", func(t *testing.T) {
		svc, _ := seed(t)

		patients, err := svc.List("P-00")
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(patients) != 3 {
			t.Errorf("List(P-00) returned %d patients, want 3", len(patients))
		}
	})

	t.Run("search with no hits returns empty", func(t *testing.T) {
		svc, _ := seed(t)

		patients, err := svc.List("zzz")
		if err != nil {
			t.Fatalf("List() failed: %v", err)
		}
		if len(patients) != 0 {
			t.Errorf("List(zzz) returned %d patients, want 0", len(patients))
		}
	})
}

func TestUpdatePatient(t *testing.T) {
	t.Run("replaces fields and advances updated_at", func(t *testing.T) {
		svc, clock := newPatientService(t)

		created, err := svc.Create(validPatientParams())
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}

		clock.Advance(time.Hour)
		p := validPatientParams()
		p.Contact = "555-0202"
		updated, err := svc.Update(created.ID, p)
		if err != nil {
			t.Fatalf("Update() failed: %v", err)
		}

		if updated.Contact != "555-0202" {
			t.Errorf("Contact = %q, want %q", updated.Contact, "555-0202")
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("CreatedAt changed: %v, want %v", updated.CreatedAt, created.CreatedAt)
		}
		if !updated.UpdatedAt.After(updated.CreatedAt) {
			t.Errorf("UpdatedAt = %v, want after CreatedAt %v", updated.UpdatedAt, updated.CreatedAt)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		svc, _ := newPatientService(t)

		_, err := svc.Update("missing", validPatientParams())
		if !errors.Is(err, clinic.ErrNotFound) {
			t.Errorf("Update() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("validates fields before touching the store", func(t *testing.T) {
		svc, _ := newPatientService(t)

		p := validPatientParams()
		p.FirstName = ""
		_, err := svc.Update("missing", p)
		var verr *clinic.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Update() error = %v, want ValidationError", err)
		}
	})
}

func TestDeletePatient(t *testing.T) {
	t.Run("removes the record", func(t *testing.T) {
		svc, _ := newPatientService(t)

		created, err := svc.Create(validPatientParams())
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}

		ok, err := svc.Delete(created.ID)
		if err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if !ok {
			t.Error("Delete() = false, want true")
		}

		_, err = svc.GetByID(created.ID)
		if !errors.Is(err, clinic.ErrNotFound) {
			t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown id reports false", func(t *testing.T) {
		svc, _ := newPatientService(t)

		ok, err := svc.Delete("missing")
		if err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if ok {
			t.Error("Delete() = true, want false for unknown id")
		}
	})
}
