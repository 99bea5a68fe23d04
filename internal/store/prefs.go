package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"propertybw/internal/model"
)

const preferencesKey = "client:%s:userPreferences"

// PreferencesStore persists per-device UI preferences.
type PreferencesStore struct {
	kv KV
}

// NewPreferencesStore creates the store.
func NewPreferencesStore(kv KV) *PreferencesStore {
	return &PreferencesStore{kv: kv}
}

// Get returns the device's preferences, or the defaults when none are
// stored yet.
func (p *PreferencesStore) Get(ctx context.Context, deviceID string) (model.Preferences, error) {
	data, err := p.kv.Get(ctx, fmt.Sprintf(preferencesKey, deviceID))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return model.DefaultPreferences(), nil
		}
		return model.Preferences{}, fmt.Errorf("read preferences: %w", err)
	}
	prefs := model.DefaultPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return model.Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

// Put replaces the device's preferences wholesale.
func (p *PreferencesStore) Put(ctx context.Context, deviceID string, prefs model.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := p.kv.Set(ctx, fmt.Sprintf(preferencesKey, deviceID), data); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
