// Package config loads the yaml configuration shared by the dungeon commands
// and applies environment overrides on top of it.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/dungeonadventure/internal/antispam"
	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/database"
	"github.com/lawnchairsociety/dungeonadventure/internal/dungeon"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/internal/namefilter"
)

// Config is the full configuration file.
type Config struct {
	Logging logger.Config  `yaml:"logging"`
	Game    GameConfig     `yaml:"game"`
	Dungeon dungeon.Config `yaml:"dungeon"`
	Storage StorageConfig  `yaml:"storage"`
	Server  ServerConfig   `yaml:"server"`
	Debug   DebugConfig    `yaml:"debug"`
}

// GameConfig holds new-game defaults.
type GameConfig struct {
	// Seed fixes dungeon generation and every roll. 0 picks a fresh seed.
	Seed     int64  `yaml:"seed" env:"DUNGEON_SEED"`
	HeroName string `yaml:"hero_name" env:"HERO_NAME"`
	Class    string `yaml:"class" env:"HERO_CLASS"`

	// DefinitionsFile overrides hero and monster stats. Empty uses the
	// built-in tables.
	DefinitionsFile string `yaml:"definitions_file" env:"DEFINITIONS_FILE"`

	Names namefilter.Config `yaml:"names"`
}

// Storage backends
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendSQL   = "sql"
)

// StorageConfig selects and configures the save backend.
type StorageConfig struct {
	Backend  string          `yaml:"backend" env:"STORAGE_BACKEND"`
	SaveDir  string          `yaml:"save_dir" env:"SAVE_DIR"`
	Redis    RedisConfig     `yaml:"redis"`
	Database database.Config `yaml:"database"`

	// MonstersFromDatabase makes the SQL monster table the source of monster
	// stats. The table is seeded with the defaults on first use.
	MonstersFromDatabase bool `yaml:"monsters_from_database" env:"MONSTERS_FROM_DATABASE"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_SAVE_TTL"`
}

// ServerConfig holds server-wide configuration settings.
type ServerConfig struct {
	Address     string            `yaml:"address" env:"SERVER_ADDRESS"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Throttle    antispam.Config   `yaml:"throttle"`

	// CommandQueueSize bounds the commands waiting for a session worker.
	CommandQueueSize int `yaml:"command_queue_size"`

	// AutoSave stores the session after every state-changing command.
	AutoSave bool `yaml:"auto_save" env:"SERVER_AUTO_SAVE"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited (not recommended).
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// RateLimitConfig holds lockout settings for failed save loads.
type RateLimitConfig struct {
	// MaxAttempts is the number of failed loads before an IP is locked out.
	MaxAttempts int `yaml:"max_attempts"`

	// LockoutSeconds is the initial lockout. It doubles on every repeat
	// lockout up to MaxLockoutSeconds.
	LockoutSeconds    int `yaml:"lockout_seconds"`
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins" env:"WS_ALLOWED_ORIGINS" envSeparator:","`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// DebugConfig holds developer switches.
type DebugConfig struct {
	// StrictInvariants panics on internal invariant violations instead of
	// logging and clamping.
	StrictInvariants bool `yaml:"strict_invariants" env:"DEBUG_STRICT_INVARIANTS"`
}

// DefaultConfig returns a Config with secure defaults.
func DefaultConfig() *Config {
	return &Config{
		Logging: logger.DefaultConfig(),
		Game: GameConfig{
			Class: string(character.Warrior),
			Names: namefilter.Config{MaxLength: namefilter.DefaultMaxLength},
		},
		Dungeon: dungeon.DefaultConfig(),
		Storage: StorageConfig{
			Backend:  BackendFile,
			SaveDir:  "data/saves",
			Redis:    RedisConfig{Addr: "localhost:6379"},
			Database: database.DefaultConfig("data/dungeon.db"),
		},
		Server: ServerConfig{
			Address: ":8080",
			WebSocket: WebSocketConfig{
				AllowedOrigins: []string{}, // Same-origin only by default
				MaxMessageSize: 4096,
			},
			Connections: ConnectionsConfig{
				MaxPerIP: 3,
				MaxTotal: 100,
			},
			RateLimit: RateLimitConfig{
				MaxAttempts:       5,
				LockoutSeconds:    30,
				MaxLockoutSeconds: 300,
			},
			Throttle:         antispam.DefaultConfig(),
			CommandQueueSize: 16,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides. If the file doesn't exist, the defaults are used; if it can't be
// parsed, the defaults are returned with the error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return cfg, fmt.Errorf("config env overrides: %w", err)
	}

	return cfg, nil
}

// Validate rejects settings that cannot start a game or a server.
func (c *Config) Validate() error {
	if err := c.Dungeon.Validate(); err != nil {
		return err
	}
	if c.Game.Class != "" {
		if _, err := character.ParseHeroClass(c.Game.Class); err != nil {
			return gameerr.Configuration(err.Error())
		}
	}

	switch strings.ToLower(c.Storage.Backend) {
	case BackendFile:
		if c.Storage.SaveDir == "" {
			return gameerr.Configuration("storage.save_dir is required for the file backend")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return gameerr.Configuration("storage.redis.addr is required for the redis backend")
		}
	case BackendSQL:
		switch database.DialectType(strings.ToLower(c.Storage.Database.Driver)) {
		case database.DialectSQLite, database.DialectPostgres:
		default:
			return gameerr.Configurationf("unknown database driver %q", c.Storage.Database.Driver)
		}
	default:
		return gameerr.Configurationf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.MonstersFromDatabase && !strings.EqualFold(c.Storage.Backend, BackendSQL) {
		return gameerr.Configuration("storage.monsters_from_database requires the sql backend")
	}

	if c.Server.WebSocket.MaxMessageSize <= 0 {
		return gameerr.Configuration("server.websocket.max_message_size must be positive")
	}
	if c.Server.CommandQueueSize < 1 {
		return gameerr.Configuration("server.command_queue_size must be at least 1")
	}
	return nil
}

// HeroClass returns the configured default class.
func (c *Config) HeroClass() character.HeroClass {
	class, err := character.ParseHeroClass(c.Game.Class)
	if err != nil {
		return character.Warrior
	}
	return class
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	// If no origins configured, enforce same-origin policy
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means a non-browser client
	}

	// "http://localhost:3000" -> "localhost:3000"
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
