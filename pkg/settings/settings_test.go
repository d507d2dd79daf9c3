package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if s.ServerURL != DefaultServerURL {
		t.Errorf("server = %q", s.ServerURL)
	}
	if s.STUNServer == "" {
		t.Error("default STUN server missing")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := UserSettings{
		ServerURL:  "ws://relay.example.com/ws",
		STUNServer: "stun:stun.example.com:3478",
		TURNServer: "turn:turn.example.com:3478",
		TURNUser:   "user",
		TURNPass:   "pass",
		ForceRelay: true,
	}
	if err := Save(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadInvalidJSONFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "godesk")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if s.ServerURL != DefaultServerURL {
		t.Errorf("invalid file should yield defaults, got %+v", s)
	}
}

func TestLoadFillsEmptyServerURL(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := Save(UserSettings{STUNServer: "stun:custom:3478"}); err != nil {
		t.Fatal(err)
	}
	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.ServerURL != DefaultServerURL {
		t.Errorf("empty server url should default, got %q", s.ServerURL)
	}
	if s.STUNServer != "stun:custom:3478" {
		t.Errorf("saved field lost: %q", s.STUNServer)
	}
}
