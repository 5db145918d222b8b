package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"clinic-go/internal/clinic"
)

// ErrorPayload is the typed failure crossing the IPC boundary. The UI layer
// only ever sees a kind and a message, never a raw store error value.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Error payload kinds.
const (
	KindNotFound   = "not_found"
	KindConflict   = "conflict"
	KindValidation = "validation"
	KindAuthFailed = "auth_failed"
	KindBadRequest = "bad_request"
	KindStoreError = "store_error"
)

// badRequestError marks malformed dispatch input (unknown operation or
// undecodable arguments).
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

// classify maps a service-layer error to its boundary payload.
func classify(err error) *ErrorPayload {
	kind := KindStoreError

	var verr *clinic.ValidationError
	var breq *badRequestError
	switch {
	case errors.As(err, &verr):
		kind = KindValidation
	case errors.As(err, &breq):
		kind = KindBadRequest
	case errors.Is(err, clinic.ErrNotFound):
		kind = KindNotFound
	case errors.Is(err, clinic.ErrConflict):
		kind = KindConflict
	case errors.Is(err, clinic.ErrAuthFailed):
		kind = KindAuthFailed
	}

	return &ErrorPayload{Kind: kind, Message: err.Error()}
}

// successResult reports mutation outcomes whose contract is a success flag
// rather than an error (delete, mark-read).
type successResult struct {
	Success bool `json:"success"`
}

// countResult carries a single integer result.
type countResult struct {
	Count int `json:"count"`
}

// Dispatch resolves a named operation with JSON-serializable arguments and
// returns a JSON-serializable result or a typed error payload. This is the
// single entry point for the UI/IPC layer.
func (a *ClinicApp) Dispatch(op string, args json.RawMessage) (any, *ErrorPayload) {
	result, err := a.dispatch(op, args)
	if err != nil {
		return nil, classify(err)
	}
	return result, nil
}

func (a *ClinicApp) dispatch(op string, args json.RawMessage) (any, error) {
	switch op {
	case "authenticate":
		var p struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return a.Authenticate(p.Email, p.Password)

	case "createUser":
		var p struct {
			Email     string `json:"email"`
			Password  string `json:"password"`
			Role      string `json:"role"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return a.CreateUser(clinic.CreateUserParams{
			Email:     p.Email,
			Password:  p.Password,
			Role:      p.Role,
			FirstName: p.FirstName,
			LastName:  p.LastName,
		})

	case "listUsers":
		return a.ListUsers()

	case "setOnline":
		var p struct {
			UserID    string `json:"user_id"`
			SessionID string `json:"session_id"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		if err := a.SetOnline(p.UserID, p.SessionID); err != nil {
			return nil, err
		}
		return successResult{Success: true}, nil

	case "setOffline":
		var p struct {
			UserID string `json:"user_id"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		if err := a.SetOffline(p.UserID); err != nil {
			return nil, err
		}
		return successResult{Success: true}, nil

	case "listOnline":
		return a.ListOnline()

	case "listWithPresence":
		return a.ListWithPresence()

	case "sendMessage":
		var p struct {
			SenderID   string `json:"sender_id"`
			ReceiverID string `json:"receiver_id"`
			Body       string `json:"body"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return a.SendMessage(p.SenderID, p.ReceiverID, p.Body)

	case "getConversation":
		var p struct {
			UserID      string `json:"user_id"`
			OtherUserID string `json:"other_user_id"`
			SearchTerm  string `json:"search_term"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return a.GetConversation(p.UserID, p.OtherUserID, p.SearchTerm)

	case "markRead":
		var p struct {
			MessageID string `json:"message_id"`
			ReaderID  string `json:"reader_id"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		ok, err := a.MarkMessageRead(p.MessageID, p.ReaderID)
		if err != nil {
			return nil, err
		}
		return successResult{Success: ok}, nil

	case "deleteMessage":
		var p struct {
			MessageID string `json:"message_id"`
			SenderID  string `json:"sender_id"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		ok, err := a.DeleteMessage(p.MessageID, p.SenderID)
		if err != nil {
			return nil, err
		}
		return successResult{Success: ok}, nil

	case "unreadCount":
		var p struct {
			UserID string `json:"user_id"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		count, err := a.UnreadCount(p.UserID)
		if err != nil {
			return nil, err
		}
		return countResult{Count: count}, nil

	case "listPatients":
		var p struct {
			Search string `json:"search"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return a.ListPatients(p.Search)

	case "getPatient":
		var p struct {
			ID string `json:"id"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return a.GetPatient(p.ID)

	case "createPatient":
		var p patientArgs
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return a.CreatePatient(p.params())

	case "updatePatient":
		var p struct {
			ID string `json:"id"`
			patientArgs
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return a.UpdatePatient(p.ID, p.params())

	case "deletePatient":
		var p struct {
			ID string `json:"id"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		ok, err := a.DeletePatient(p.ID)
		if err != nil {
			return nil, err
		}
		return successResult{Success: ok}, nil

	case "getSetting":
		var p struct {
			Key string `json:"key"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		value, ok, err := a.GetSetting(p.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("setting %s: %w", p.Key, clinic.ErrNotFound)
		}
		return struct {
			Value string `json:"value"`
		}{Value: value}, nil

	case "setSetting":
		var p struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		if err := a.SetSetting(p.Key, p.Value); err != nil {
			return nil, err
		}
		return successResult{Success: true}, nil

	case "isFirstRun":
		first, err := a.IsFirstRun()
		if err != nil {
			return nil, err
		}
		return struct {
			FirstRun bool `json:"first_run"`
		}{FirstRun: first}, nil

	case "completeSetup":
		var p struct {
			ClinicName    string `json:"clinic_name"`
			ClinicAddress string `json:"clinic_address"`
			Admin         struct {
				Email     string `json:"email"`
				Password  string `json:"password"`
				Role      string `json:"role"`
				FirstName string `json:"first_name"`
				LastName  string `json:"last_name"`
			} `json:"admin"`
		}
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return a.CompleteSetup(p.ClinicName, p.ClinicAddress, clinic.CreateUserParams{
			Email:     p.Admin.Email,
			Password:  p.Admin.Password,
			Role:      p.Admin.Role,
			FirstName: p.Admin.FirstName,
			LastName:  p.Admin.LastName,
		})

	default:
		return nil, &badRequestError{msg: fmt.Sprintf("unknown operation %q", op)}
	}
}

// patientArgs is the JSON shape of caller-supplied patient fields.
type patientArgs struct {
	PatientID   string `json:"patient_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Contact     string `json:"contact"`
}

func (p patientArgs) params() clinic.PatientParams {
	return clinic.PatientParams{
		PatientID:   p.PatientID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth,
		Gender:      p.Gender,
		Contact:     p.Contact,
	}
}

// decode unmarshals dispatch arguments. Missing args decode into zero
// values; the services validate required fields.
func decode(args json.RawMessage, into any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, into); err != nil {
		return &badRequestError{msg: fmt.Sprintf("decoding arguments: %v", err)}
	}
	return nil
}
