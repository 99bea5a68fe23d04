package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const recentSearchesKey = "client:%s:recentSearches"

// RecentSearches keeps a capped, deduplicated list of a device's recent
// queries, most recent first.
type RecentSearches struct {
	kv     KV
	cap    int
	logger *zap.Logger
}

// NewRecentSearches creates the store with the given cap.
func NewRecentSearches(kv KV, cap int, logger *zap.Logger) *RecentSearches {
	if cap <= 0 {
		cap = 10
	}
	return &RecentSearches{kv: kv, cap: cap, logger: logger}
}

// List returns the recent searches, most recent first.
func (r *RecentSearches) List(ctx context.Context, deviceID string) ([]string, error) {
	key := fmt.Sprintf(recentSearchesKey, deviceID)
	data, err := r.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read recent searches: %w", err)
	}
	var recent []string
	if err := json.Unmarshal(data, &recent); err != nil {
		return nil, fmt.Errorf("decode recent searches: %w", err)
	}
	return recent, nil
}

// Add records a query. Best effort: storage failures are logged, never
// surfaced to the triggering search.
func (r *RecentSearches) Add(ctx context.Context, deviceID, query string) {
	query = strings.TrimSpace(query)
	if query == "" || deviceID == "" {
		return
	}

	existing, err := r.List(ctx, deviceID)
	if err != nil {
		r.logger.Warn("recent searches read failed", zap.String("device", deviceID), zap.Error(err))
		existing = nil
	}

	updated := make([]string, 0, r.cap)
	updated = append(updated, query)
	for _, q := range existing {
		if strings.EqualFold(q, query) {
			continue
		}
		updated = append(updated, q)
		if len(updated) == r.cap {
			break
		}
	}

	data, err := json.Marshal(updated)
	if err != nil {
		r.logger.Warn("recent searches encode failed", zap.Error(err))
		return
	}
	key := fmt.Sprintf(recentSearchesKey, deviceID)
	if err := r.kv.Set(ctx, key, data); err != nil {
		r.logger.Warn("recent searches write failed", zap.String("device", deviceID), zap.Error(err))
	}
}
