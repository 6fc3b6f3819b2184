package config

import (
	"os"
	"testing"
)

func TestGetIntBool(t *testing.T) {
	os.Setenv("X_INT", "42")
	t.Cleanup(func() { os.Unsetenv("X_INT") })
	if v := getInt("X_INT", 1); v != 42 {
		t.Fatalf("want 42, got %d", v)
	}

	os.Setenv("X_BOOL_T", "true")
	os.Setenv("X_BOOL_F", "false")
	t.Cleanup(func() { os.Unsetenv("X_BOOL_T"); os.Unsetenv("X_BOOL_F") })
	if !getBool("X_BOOL_T", false) {
		t.Fatalf("want true")
	}
	if getBool("X_BOOL_F", true) {
		t.Fatalf("want false")
	}
}

func TestStoreValidatorRejects(t *testing.T) {
	cfg := &Config{}
	cfg.DB.MaxOpenConns = 10
	cfg.DB.MaxIdleConns = 5
	s := NewStore(cfg)

	s.AddValidator(func(newCfg *Config, changed map[string]bool) error {
		if newCfg.DB.MaxIdleConns > newCfg.DB.MaxOpenConns {
			return errIdleExceedsOpen
		}
		return nil
	})

	bad := cloneConfig(cfg)
	bad.DB.MaxIdleConns = 99
	if s.UpdateValidated(bad, map[string]bool{"db.max_idle": true}) {
		t.Fatalf("expected update to be rejected")
	}
	if s.Get().DB.MaxIdleConns != 5 {
		t.Fatalf("rejected update must not change the store")
	}
}

var errIdleExceedsOpen = errorString("max_idle exceeds max_open")

type errorString string

func (e errorString) Error() string { return string(e) }
