package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dxomg/ViaRewind/internal/cooldown"
	"github.com/dxomg/ViaRewind/internal/packet"
	"github.com/dxomg/ViaRewind/internal/task"
)

// Config holds the proxy configuration.
type Config struct {
	Port          int    `json:"port"`
	Backend       string `json:"backend"`        // host:port of the server
	ServerVersion string `json:"server_version"` // "1.8" or "1.9.4"
	ClientVersion string `json:"client_version"` // "1.7.10" or "1.8"
	DataDir       string `json:"data_dir"`

	EmulateWorldBorder  bool   `json:"emulate_world_border"`
	WorldBorderParticle string `json:"world_border_particle"`
	CooldownIndicator   string `json:"cooldown_indicator"` // "title", "boss-bar", "action-bar" or "disabled"

	// Debug turns tracker invariant violations into connection errors.
	Debug         bool `json:"debug"`
	SendQueueSize int  `json:"send_queue_size"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:                25565,
		Backend:             "127.0.0.1:25566",
		ServerVersion:       "1.8",
		ClientVersion:       "1.7.10",
		DataDir:             "data",
		EmulateWorldBorder:  true,
		WorldBorderParticle: task.DefaultBorderParticle,
		CooldownIndicator:   string(cooldown.IndicatorTitle),
		SendQueueSize:       256,
	}
}

// Load reads a JSON config file. Fields the file omits keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["port"] {
		cfg.Port = fromFile.Port
	}
	if !explicitFlags["backend"] {
		cfg.Backend = fromFile.Backend
	}
	if !explicitFlags["server-version"] {
		cfg.ServerVersion = fromFile.ServerVersion
	}
	if !explicitFlags["client-version"] {
		cfg.ClientVersion = fromFile.ClientVersion
	}
	if !explicitFlags["data"] {
		cfg.DataDir = fromFile.DataDir
	}
	if !explicitFlags["world-border"] {
		cfg.EmulateWorldBorder = fromFile.EmulateWorldBorder
	}
	if !explicitFlags["cooldown-indicator"] {
		cfg.CooldownIndicator = fromFile.CooldownIndicator
	}
	if !explicitFlags["debug"] {
		cfg.Debug = fromFile.Debug
	}
	cfg.WorldBorderParticle = fromFile.WorldBorderParticle
	cfg.SendQueueSize = fromFile.SendQueueSize
}

// Versions resolves the configured client and server protocol versions.
func (c *Config) Versions() (client, server int32, err error) {
	if client, err = packet.ParseVersion(c.ClientVersion); err != nil {
		return 0, 0, fmt.Errorf("client version: %w", err)
	}
	if server, err = packet.ParseVersion(c.ServerVersion); err != nil {
		return 0, 0, fmt.Errorf("server version: %w", err)
	}
	if client > server {
		return 0, 0, fmt.Errorf("client version %s is newer than server version %s", c.ClientVersion, c.ServerVersion)
	}
	return client, server, nil
}
