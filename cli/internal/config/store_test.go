package config

import (
	"path/filepath"
	"testing"
)

func TestStore_setGetRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := Set(path, "model", "gpt-4o-mini"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := Set(path, "max_length", "60"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := Set(path, "warn_threshold", "0.8"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := Get(path, "model")
	if err != nil || !ok || got != "gpt-4o-mini" {
		t.Errorf("Get(model) = %q, %v, %v", got, ok, err)
	}
	got, ok, err = Get(path, "max_length")
	if err != nil || !ok || got != "60" {
		t.Errorf("Get(max_length) = %q, %v, %v", got, ok, err)
	}

	// The file must load cleanly with typed fields.
	cfg, err := Load(LoadOptions{GlobalConfigPath: path, Env: []string{}})
	if err != nil {
		t.Fatalf("Load() after Set error = %v", err)
	}
	if cfg.Model != "gpt-4o-mini" || cfg.MaxLength != 60 || cfg.WarnThreshold != 0.8 {
		t.Errorf("loaded config = %+v", cfg)
	}
}

func TestStore_unknownKey(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Set(path, "nope", "x"); err == nil {
		t.Error("Set(unknown key) error = nil, want error")
	}
	if _, _, err := Get(path, "nope"); err == nil {
		t.Error("Get(unknown key) error = nil, want error")
	}
	if err := Unset(path, "nope"); err == nil {
		t.Error("Unset(unknown key) error = nil, want error")
	}
}

func TestStore_badTypedValue(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Set(path, "max_length", "plenty"); err == nil {
		t.Error("Set(max_length, non-integer) error = nil, want error")
	}
	if err := Set(path, "timeout", "whenever"); err == nil {
		t.Error("Set(timeout, non-duration) error = nil, want error")
	}
}

func TestStore_unset(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Set(path, "model", "m"); err != nil {
		t.Fatal(err)
	}
	if err := Unset(path, "model"); err != nil {
		t.Fatalf("Unset() error = %v", err)
	}
	if _, ok, _ := Get(path, "model"); ok {
		t.Error("Get() after Unset reports the key as present")
	}
	// Absent key is not an error.
	if err := Unset(path, "model"); err != nil {
		t.Errorf("Unset(absent) error = %v", err)
	}
}

func TestSettableKeys_sortedAndComplete(t *testing.T) {
	t.Parallel()
	keys := SettableKeys()
	if len(keys) != len(settableKeys) {
		t.Fatalf("SettableKeys() returned %d keys, want %d", len(keys), len(settableKeys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Errorf("keys not sorted: %q before %q", keys[i-1], keys[i])
		}
	}
}
