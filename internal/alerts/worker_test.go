package alerts

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"propertybw/internal/model"
	"propertybw/internal/store"
)

type memKV struct {
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memKV) Scan(_ context.Context, _ string) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

type stubRunner struct {
	total int
}

func (s *stubRunner) ListActive(_ context.Context, _ model.FilterState, _ string, _, _ int) ([]model.Property, int, error) {
	return nil, s.total, nil
}

type captureSink struct {
	events []Event
}

func (c *captureSink) Publish(_ context.Context, _ string, payload any) error {
	c.events = append(c.events, payload.(Event))
	return nil
}

func TestWorker_PublishesOnNewMatches(t *testing.T) {
	ctx := context.Background()
	saved := store.NewSavedSearchStore(newMemKV(), zap.NewNop())

	search, err := saved.Save(ctx, "d1", "gabs houses", "houses in gaborone", model.DefaultFilters(), true)
	if err != nil {
		t.Fatal(err)
	}

	sink := &captureSink{}
	w := NewWorker(&stubRunner{total: 3}, saved, sink, 0, 0, zap.NewNop())
	w.runOnce(ctx)

	if len(sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(sink.events))
	}
	ev := sink.events[0]
	if ev.DeviceID != "d1" || ev.SearchID != search.ID || ev.NewCount != 3 || ev.PreviousCount != 0 {
		t.Errorf("unexpected event %+v", ev)
	}

	// The run result is recorded, so an unchanged count stays quiet.
	w.runOnce(ctx)
	if len(sink.events) != 1 {
		t.Errorf("second run published %d extra events", len(sink.events)-1)
	}

	after, err := saved.Load(ctx, "d1", search.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.ResultCount != 3 || after.LastRunAt == nil {
		t.Errorf("run not recorded: %+v", after)
	}
}

func TestWorker_SkipsAlertDisabledSearches(t *testing.T) {
	ctx := context.Background()
	saved := store.NewSavedSearchStore(newMemKV(), zap.NewNop())

	if _, err := saved.Save(ctx, "d1", "quiet", "q", model.DefaultFilters(), false); err != nil {
		t.Fatal(err)
	}

	sink := &captureSink{}
	w := NewWorker(&stubRunner{total: 10}, saved, sink, 0, 0, zap.NewNop())
	w.runOnce(ctx)

	if len(sink.events) != 0 {
		t.Errorf("disabled search produced events: %+v", sink.events)
	}
}
