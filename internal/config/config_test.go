package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vaulthook.yaml")

	want := &Config{
		URL:                 "https://x.test/hook",
		Enabled:             true,
		AutoSend:            false,
		Notices:             true,
		TriggerOnFileOpen:   true,
		TriggerOnPaneChange: false,
		Root:                "/vault",
		VaultName:           "notes",
		LogLevel:            "debug",
		Exclude:             []string{".obsidian/**"},
		Delay:               250 * time.Millisecond,
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.URL != want.URL || got.Enabled != want.Enabled || got.AutoSend != want.AutoSend {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.TriggerOnFileOpen != want.TriggerOnFileOpen || got.VaultName != want.VaultName {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.Delay != want.Delay {
		t.Errorf("delay = %v, want %v", got.Delay, want.Delay)
	}
	if len(got.Exclude) != 1 || got.Exclude[0] != ".obsidian/**" {
		t.Errorf("exclude = %v", got.Exclude)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("url: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestNormalize(t *testing.T) {
	c := &Config{URL: "  https://x.test/hook  ", Root: "/data/notes"}
	c.Normalize()

	if c.URL != "https://x.test/hook" {
		t.Errorf("url = %q, want trimmed", c.URL)
	}
	if c.VaultName != "notes" {
		t.Errorf("vault name = %q, want notes", c.VaultName)
	}
	if c.LogLevel != "info" {
		t.Errorf("log level = %q, want info", c.LogLevel)
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	c := &Config{URL: "https://x.test/hook", Root: "/data/notes", VaultName: "custom", LogLevel: "warn"}
	c.Normalize()

	if c.VaultName != "custom" {
		t.Errorf("vault name = %q, want custom", c.VaultName)
	}
	if c.LogLevel != "warn" {
		t.Errorf("log level = %q, want warn", c.LogLevel)
	}
}

func TestDefaults(t *testing.T) {
	c := Default()
	if !c.Enabled || !c.AutoSend || !c.Notices {
		t.Errorf("defaults = %+v, want enabled/auto_send/notices on", c)
	}
	if c.URL != "" {
		t.Errorf("url = %q, want empty", c.URL)
	}
}
