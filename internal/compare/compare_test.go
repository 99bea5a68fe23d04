package compare

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func TestManager_BoundAndDuplicates(t *testing.T) {
	m := NewManager(4, time.Minute)

	for i := int64(1); i <= 4; i++ {
		if err := m.Add("s", i); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}
	if err := m.Add("s", 5); !errors.Is(err, ErrSetFull) {
		t.Errorf("fifth add = %v, want ErrSetFull", err)
	}
	if err := m.Add("s", 2); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate add = %v, want ErrDuplicate", err)
	}
	if got := m.List("s"); len(got) != 4 {
		t.Errorf("set size = %d, want 4", len(got))
	}
}

func TestManager_RemoveAndContains(t *testing.T) {
	m := NewManager(4, time.Minute)

	_ = m.Add("s", 10)
	_ = m.Add("s", 20)

	if !m.Contains("s", 10) {
		t.Error("expected membership for 10")
	}
	m.Remove("s", 10)
	if m.Contains("s", 10) {
		t.Error("10 should be gone after Remove")
	}
	// Removing a missing id is a no-op.
	m.Remove("s", 99)
	if got := m.List("s"); len(got) != 1 || got[0] != 20 {
		t.Errorf("List = %v, want [20]", got)
	}
}

func TestManager_InvariantUnderRandomOps(t *testing.T) {
	m := NewManager(4, time.Minute)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		id := int64(rng.Intn(10))
		if rng.Intn(2) == 0 {
			_ = m.Add("s", id)
		} else {
			m.Remove("s", id)
		}

		ids := m.List("s")
		if len(ids) > 4 {
			t.Fatalf("set exceeded bound: %v", ids)
		}
		seen := map[int64]bool{}
		for _, v := range ids {
			if seen[v] {
				t.Fatalf("duplicate id %d in %v", v, ids)
			}
			seen[v] = true
		}
	}
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := NewManager(4, time.Minute)
	_ = m.Add("a", 1)

	if m.Contains("b", 1) {
		t.Error("sessions must not share state")
	}
}

func TestManager_Sweep(t *testing.T) {
	m := NewManager(4, time.Nanosecond)
	_ = m.Add("old", 1)
	time.Sleep(time.Millisecond)

	if removed := m.Sweep(); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if got := m.List("old"); len(got) != 0 {
		t.Errorf("swept session still has %v", got)
	}
}
