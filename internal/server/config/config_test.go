package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxy.json")
	if err := os.WriteFile(path, []byte(`{"backend":"mc.local:25570","server_version":"1.9.4"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "mc.local:25570" || cfg.ServerVersion != "1.9.4" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Port != 25565 || cfg.SendQueueSize != 256 || !cfg.EmulateWorldBorder {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestMergeRespectsExplicitFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 30000
	fromFile := DefaultConfig()
	fromFile.Port = 40000
	fromFile.Backend = "other:1"

	Merge(cfg, fromFile, map[string]bool{"port": true})
	if cfg.Port != 30000 {
		t.Errorf("Port = %d, want flag value 30000", cfg.Port)
	}
	if cfg.Backend != "other:1" {
		t.Errorf("Backend = %q, want file value", cfg.Backend)
	}
}

func TestVersions(t *testing.T) {
	tests := []struct {
		client, server string
		wantErr        bool
	}{
		{"1.7.10", "1.8", false},
		{"1.7.10", "1.9.4", false},
		{"1.8", "1.9.4", false},
		{"1.9.4", "1.8", true},
		{"1.12", "1.8", true},
	}
	for _, tt := range tests {
		t.Run(tt.client+"->"+tt.server, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ClientVersion, cfg.ServerVersion = tt.client, tt.server
			_, _, err := cfg.Versions()
			if (err != nil) != tt.wantErr {
				t.Errorf("Versions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
