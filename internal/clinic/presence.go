package clinic

import (
	"fmt"

	"clinic-go/internal/model"
)

// PresenceService tracks per-user online/offline state.
type PresenceService struct {
	stores StoreProvider
	logger Logger
	clock  Clock
}

// NewPresenceService creates a new PresenceService with the provided dependencies.
func NewPresenceService(stores StoreProvider, logger Logger, clock Clock) *PresenceService {
	return &PresenceService{stores: stores, logger: logger, clock: clock}
}

// SetOnline marks the user online, recording the session id if supplied.
// Repeating the call is a no-op transition, not an error.
func (s *PresenceService) SetOnline(userID, sessionID string) error {
	if err := requireField("user_id", userID); err != nil {
		return err
	}

	store, err := s.stores.Acquire()
	if err != nil {
		return err
	}

	p := &model.Presence{
		UserID:    userID,
		Status:    model.StatusOnline,
		SessionID: sessionID,
		ChangedAt: s.clock.Now(),
	}
	if err := store.UpsertPresence(p); err != nil {
		return fmt.Errorf("setting user online: %w", err)
	}

	s.logger.Debug("presence changed", "user_id", userID, "status", model.StatusOnline)
	return nil
}

// SetOffline marks the user offline and clears the session id. A user with
// no presence row gets one created directly in the offline state.
func (s *PresenceService) SetOffline(userID string) error {
	if err := requireField("user_id", userID); err != nil {
		return err
	}

	store, err := s.stores.Acquire()
	if err != nil {
		return err
	}

	p := &model.Presence{
		UserID:    userID,
		Status:    model.StatusOffline,
		ChangedAt: s.clock.Now(),
	}
	if err := store.UpsertPresence(p); err != nil {
		return fmt.Errorf("setting user offline: %w", err)
	}

	s.logger.Debug("presence changed", "user_id", userID, "status", model.StatusOffline)
	return nil
}

// ListOnline returns the ids of all users currently online.
func (s *PresenceService) ListOnline() ([]string, error) {
	store, err := s.stores.Acquire()
	if err != nil {
		return nil, err
	}

	ids, err := store.ListOnlineUserIDs()
	if err != nil {
		return nil, fmt.Errorf("listing online users: %w", err)
	}
	return ids, nil
}

// ListWithPresence returns every user joined with their presence state.
// Users without a presence row are reported offline.
func (s *PresenceService) ListWithPresence() ([]*UserPresence, error) {
	store, err := s.stores.Acquire()
	if err != nil {
		return nil, err
	}

	pairs, err := store.ListUsersWithPresence()
	if err != nil {
		return nil, fmt.Errorf("listing users with presence: %w", err)
	}

	for _, up := range pairs {
		up.User.PasswordHash = ""
	}
	return pairs, nil
}
