// ABOUTME: Tests for configuration loading and saving
// ABOUTME: Covers defaults, round trips, and path derivation

package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.ServerAddress != "" {
		t.Errorf("expected empty server address, got %q", cfg.ServerAddress)
	}
	if cfg.RequestTimeout() != DefaultRequestTimeout {
		t.Errorf("expected default timeout, got %v", cfg.RequestTimeout())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := &Config{
		ServerAddress:         "https://reader.example.com",
		APIToken:              "token-123",
		RequestTimeoutSeconds: 10,
		BatchLimit:            50,
	}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if got.ServerAddress != cfg.ServerAddress {
		t.Errorf("server address: got %q, want %q", got.ServerAddress, cfg.ServerAddress)
	}
	if got.APIToken != cfg.APIToken {
		t.Errorf("api token: got %q, want %q", got.APIToken, cfg.APIToken)
	}
	if got.RequestTimeout() != 10*time.Second {
		t.Errorf("timeout: got %v, want 10s", got.RequestTimeout())
	}
	if got.BatchLimit != 50 {
		t.Errorf("batch limit: got %d, want 50", got.BatchLimit)
	}
}

func TestDataDirPaths(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/minisync-test"}

	if got := cfg.DBPath(); got != "/tmp/minisync-test/minisync.db" {
		t.Errorf("db path: got %q", got)
	}
	if got := cfg.EntryQueuePath(); got != "/tmp/minisync-test/entry-status-queue.json" {
		t.Errorf("entry queue path: got %q", got)
	}
	if got := cfg.FeedQueuePath(); got != "/tmp/minisync-test/feed-queue.json" {
		t.Errorf("feed queue path: got %q", got)
	}
	if got := cfg.CategoryQueuePath(); got != "/tmp/minisync-test/category-queue.json" {
		t.Errorf("category queue path: got %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	if got := ExpandPath(""); got != "" {
		t.Errorf("empty path: got %q", got)
	}
	if got := ExpandPath("/absolute/path"); got != "/absolute/path" {
		t.Errorf("absolute path: got %q", got)
	}
	if got := ExpandPath("~/data"); got == "~/data" {
		t.Error("expected ~ to be expanded")
	}
}
