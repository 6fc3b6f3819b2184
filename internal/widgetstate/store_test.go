package widgetstate

import (
	"os"
	"path/filepath"
	"testing"
)

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "widget-states.json")
	return New(NewFileBackend(path)), path
}

func TestGetStateAbsent(t *testing.T) {
	s, _ := newFileStore(t)
	if _, ok := s.GetState("nope"); ok {
		t.Fatalf("want absent state")
	}
}

func TestSetAndGetState(t *testing.T) {
	s, _ := newFileStore(t)
	s.SetState("w1", map[string]any{"scramble": "R U R'", "count": 3})

	got, ok := s.GetState("w1")
	if !ok {
		t.Fatalf("state missing")
	}
	if got["scramble"] != "R U R'" {
		t.Fatalf("got %v", got["scramble"])
	}

	// Returned map is a copy; mutating it must not leak back.
	got["scramble"] = "tampered"
	again, _ := s.GetState("w1")
	if again["scramble"] != "R U R'" {
		t.Fatalf("store state was mutated through a returned copy")
	}
}

func TestUpdateStateMerges(t *testing.T) {
	s, _ := newFileStore(t)
	s.SetState("w1", map[string]any{"a": 1, "b": 2})
	s.UpdateState("w1", map[string]any{"b": 20, "c": 30})

	got, _ := s.GetState("w1")
	if got["a"] != 1 || got["b"] != 20 || got["c"] != 30 {
		t.Fatalf("merge wrong: %v", got)
	}
}

func TestUpdateStateOnMissingCreates(t *testing.T) {
	s, _ := newFileStore(t)
	s.UpdateState("fresh", map[string]any{"x": true})
	got, ok := s.GetState("fresh")
	if !ok || got["x"] != true {
		t.Fatalf("update on missing entry must create it: %v", got)
	}
}

func TestDeleteAndClear(t *testing.T) {
	s, _ := newFileStore(t)
	s.SetState("w1", map[string]any{"a": 1})
	s.SetState("w2", map[string]any{"a": 2})

	s.DeleteState("w1")
	if _, ok := s.GetState("w1"); ok {
		t.Fatalf("w1 must be gone")
	}

	s.ClearAll()
	if s.Len() != 0 {
		t.Fatalf("want empty store, got %d entries", s.Len())
	}
}

func TestStateSurvivesReload(t *testing.T) {
	s, path := newFileStore(t)
	s.SetState("w1", map[string]any{"holdTime": float64(400)})

	reloaded := New(NewFileBackend(path))
	got, ok := reloaded.GetState("w1")
	if !ok {
		t.Fatalf("state lost across reload")
	}
	if got["holdTime"] != float64(400) {
		t.Fatalf("got %v", got["holdTime"])
	}
}

func TestCorruptDurableDataDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget-states.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	s := New(NewFileBackend(path))
	if s.Len() != 0 {
		t.Fatalf("corrupt data must yield an empty store")
	}

	// The store stays usable and overwrites the corrupt copy.
	s.SetState("w1", map[string]any{"ok": true})
	reloaded := New(NewFileBackend(path))
	if _, ok := reloaded.GetState("w1"); !ok {
		t.Fatalf("store must recover after corrupt load")
	}
}
