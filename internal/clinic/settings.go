package clinic

import "fmt"

// SettingsService is a generic key-value configuration store persisted in
// the record store. Last writer wins; there is no versioning.
type SettingsService struct {
	stores StoreProvider
	logger Logger
}

// NewSettingsService creates a new SettingsService with the provided dependencies.
func NewSettingsService(stores StoreProvider, logger Logger) *SettingsService {
	return &SettingsService{stores: stores, logger: logger}
}

// Get returns the value for key; ok is false when the key is absent.
func (s *SettingsService) Get(key string) (value string, ok bool, err error) {
	store, err := s.stores.Acquire()
	if err != nil {
		return "", false, err
	}

	value, ok, err = store.GetSetting(key)
	if err != nil {
		return "", false, fmt.Errorf("getting setting: %w", err)
	}
	return value, ok, nil
}

// Set creates the setting if absent, overwrites it if present.
func (s *SettingsService) Set(key, value string) error {
	if err := requireField("key", key); err != nil {
		return err
	}

	store, err := s.stores.Acquire()
	if err != nil {
		return err
	}

	if err := store.SetSetting(key, value); err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}

	s.logger.Debug("setting written", "key", key)
	return nil
}
