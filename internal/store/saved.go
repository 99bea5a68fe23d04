package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"propertybw/internal/model"
)

// Store errors surfaced to handlers.
var (
	ErrBlankName      = errors.New("saved search name must not be blank")
	ErrSearchNotFound = errors.New("saved search not found")
)

const savedSearchesKey = "client:%s:savedSearches"

// SavedSearchStore persists named filter+query snapshots per device, most
// recent first. Every mutation rewrites the whole collection; concurrent
// writers race with last-writer-wins, which is accepted for a single-user
// client feature.
type SavedSearchStore struct {
	kv     KV
	logger *zap.Logger
}

// NewSavedSearchStore creates the store.
func NewSavedSearchStore(kv KV, logger *zap.Logger) *SavedSearchStore {
	return &SavedSearchStore{kv: kv, logger: logger}
}

// List returns the device's saved searches, most recent first.
func (s *SavedSearchStore) List(ctx context.Context, deviceID string) ([]model.SavedSearch, error) {
	return s.read(ctx, s.key(deviceID))
}

// Save prepends a new saved search. A blank or whitespace-only name is
// rejected before any storage access.
func (s *SavedSearchStore) Save(ctx context.Context, deviceID, name, query string, filters model.FilterState, alertsEnabled bool) (*model.SavedSearch, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrBlankName
	}

	saved := model.SavedSearch{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(name),
		Query:         query,
		Filters:       filters,
		AlertsEnabled: alertsEnabled,
		CreatedAt:     time.Now().UTC(),
	}

	key := s.key(deviceID)
	existing, err := s.read(ctx, key)
	if err != nil {
		return nil, err
	}

	updated := append([]model.SavedSearch{saved}, existing...)
	if err := s.write(ctx, key, updated); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Load returns the saved search snapshot without mutating it.
func (s *SavedSearchStore) Load(ctx context.Context, deviceID, id string) (*model.SavedSearch, error) {
	searches, err := s.read(ctx, s.key(deviceID))
	if err != nil {
		return nil, err
	}
	for i := range searches {
		if searches[i].ID == id {
			return &searches[i], nil
		}
	}
	return nil, ErrSearchNotFound
}

// Delete removes the saved search with the given id. Deleting a missing id
// is a no-op.
func (s *SavedSearchStore) Delete(ctx context.Context, deviceID, id string) error {
	key := s.key(deviceID)
	searches, err := s.read(ctx, key)
	if err != nil {
		return err
	}
	kept := searches[:0]
	for _, saved := range searches {
		if saved.ID != id {
			kept = append(kept, saved)
		}
	}
	return s.write(ctx, key, kept)
}

// ToggleAlerts flips the alerts flag on the matching entry.
func (s *SavedSearchStore) ToggleAlerts(ctx context.Context, deviceID, id string) (*model.SavedSearch, error) {
	key := s.key(deviceID)
	searches, err := s.read(ctx, key)
	if err != nil {
		return nil, err
	}
	for i := range searches {
		if searches[i].ID == id {
			searches[i].AlertsEnabled = !searches[i].AlertsEnabled
			if err := s.write(ctx, key, searches); err != nil {
				return nil, err
			}
			return &searches[i], nil
		}
	}
	return nil, ErrSearchNotFound
}

// RecordRun stamps the last run time and cached result count after a saved
// search has been re-executed. Best effort: a write failure is logged and
// swallowed.
func (s *SavedSearchStore) RecordRun(ctx context.Context, deviceID, id string, resultCount int) {
	key := s.key(deviceID)
	searches, err := s.read(ctx, key)
	if err != nil {
		s.logger.Warn("record run: read failed", zap.String("device", deviceID), zap.Error(err))
		return
	}
	for i := range searches {
		if searches[i].ID == id {
			now := time.Now().UTC()
			searches[i].LastRunAt = &now
			searches[i].ResultCount = resultCount
			if err := s.write(ctx, key, searches); err != nil {
				s.logger.Warn("record run: write failed", zap.String("device", deviceID), zap.Error(err))
			}
			return
		}
	}
}

// DeviceSearch pairs a saved search with its owning device.
type DeviceSearch struct {
	DeviceID string
	Search   model.SavedSearch
}

// AllWithAlerts enumerates alert-enabled saved searches across all
// devices, for the alert worker.
func (s *SavedSearchStore) AllWithAlerts(ctx context.Context) ([]DeviceSearch, error) {
	keys, err := s.kv.Scan(ctx, fmt.Sprintf(savedSearchesKey, "*"))
	if err != nil {
		return nil, err
	}

	var out []DeviceSearch
	for _, key := range keys {
		deviceID := deviceFromKey(key)
		if deviceID == "" {
			continue
		}
		searches, err := s.read(ctx, key)
		if err != nil {
			s.logger.Warn("skipping unreadable saved searches", zap.String("key", key), zap.Error(err))
			continue
		}
		for _, saved := range searches {
			if saved.AlertsEnabled {
				out = append(out, DeviceSearch{DeviceID: deviceID, Search: saved})
			}
		}
	}
	return out, nil
}

func (s *SavedSearchStore) key(deviceID string) string {
	return fmt.Sprintf(savedSearchesKey, deviceID)
}

func deviceFromKey(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}

func (s *SavedSearchStore) read(ctx context.Context, key string) ([]model.SavedSearch, error) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []model.SavedSearch{}, nil
		}
		return nil, fmt.Errorf("read saved searches: %w", err)
	}
	var searches []model.SavedSearch
	if err := json.Unmarshal(data, &searches); err != nil {
		return nil, fmt.Errorf("decode saved searches: %w", err)
	}
	return searches, nil
}

func (s *SavedSearchStore) write(ctx context.Context, key string, searches []model.SavedSearch) error {
	data, err := json.Marshal(searches)
	if err != nil {
		return fmt.Errorf("encode saved searches: %w", err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write saved searches: %w", err)
	}
	return nil
}
