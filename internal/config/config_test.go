package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/dungeon"
	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dungeon.Width != 8 || cfg.Dungeon.Height != 8 {
		t.Errorf("dungeon size = %dx%d, want 8x8", cfg.Dungeon.Width, cfg.Dungeon.Height)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("storage backend = %q, want %q", cfg.Storage.Backend, BackendFile)
	}
	if len(cfg.Server.WebSocket.AllowedOrigins) != 0 {
		t.Errorf("expected empty allowed origins by default, got %v", cfg.Server.WebSocket.AllowedOrigins)
	}
	if cfg.Server.WebSocket.MaxMessageSize != 4096 {
		t.Errorf("expected max message size 4096, got %d", cfg.Server.WebSocket.MaxMessageSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
	if cfg.HeroClass() != character.Warrior {
		t.Errorf("HeroClass() = %s, want warrior", cfg.HeroClass())
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config for missing file, got nil")
	}
	if cfg.Dungeon.Width != 8 {
		t.Errorf("expected default dungeon width, got %d", cfg.Dungeon.Width)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "dungeon.yaml")
	content := `
game:
  seed: 1234
  class: thief
dungeon:
  width: 5
  height: 6
  monster_count: 4
storage:
  backend: sql
  database:
    driver: sqlite
    sqlite_path: /tmp/saves.db
server:
  address: ":9000"
  websocket:
    allowed_origins:
      - "https://example.com"
    max_message_size: 8192
debug:
  strict_invariants: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Game.Seed != 1234 {
		t.Errorf("seed = %d, want 1234", cfg.Game.Seed)
	}
	if cfg.HeroClass() != character.Thief {
		t.Errorf("class = %s, want thief", cfg.HeroClass())
	}
	if cfg.Dungeon.Width != 5 || cfg.Dungeon.Height != 6 || cfg.Dungeon.MonsterCount != 4 {
		t.Errorf("dungeon = %+v", cfg.Dungeon)
	}
	// Unset keys keep their defaults
	if cfg.Dungeon.PitChance != 0.1 {
		t.Errorf("pit chance = %v, want default 0.1", cfg.Dungeon.PitChance)
	}
	if cfg.Storage.Database.SQLitePath != "/tmp/saves.db" {
		t.Errorf("sqlite path = %q", cfg.Storage.Database.SQLitePath)
	}
	if cfg.Server.Address != ":9000" || cfg.Server.WebSocket.MaxMessageSize != 8192 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if !cfg.Debug.StrictInvariants {
		t.Error("strict invariants not loaded")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("dungeon: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err == nil {
		t.Error("expected error for invalid yaml")
	}
	if cfg == nil || cfg.Dungeon.Width != 8 {
		t.Error("expected defaults alongside the parse error")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DUNGEON_SEED", "99")
	t.Setenv("DUNGEON_WIDTH", "10")
	t.Setenv("DUNGEON_DIFFICULTY", "easy")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_SAVE_TTL", "2h")
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("WS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Game.Seed != 99 {
		t.Errorf("seed = %d, want 99", cfg.Game.Seed)
	}
	if cfg.Dungeon.Width != 10 {
		t.Errorf("width = %d, want 10", cfg.Dungeon.Width)
	}
	if cfg.Dungeon.Difficulty != dungeon.DifficultyEasy {
		t.Errorf("difficulty = %q, want easy", cfg.Dungeon.Difficulty)
	}
	if cfg.Storage.Backend != BackendRedis || cfg.Storage.Redis.Addr != "cache:6380" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Redis.TTL != 2*time.Hour {
		t.Errorf("redis ttl = %v, want 2h", cfg.Storage.Redis.TTL)
	}
	if cfg.Server.Address != ":7000" {
		t.Errorf("address = %q, want :7000", cfg.Server.Address)
	}
	if len(cfg.Server.WebSocket.AllowedOrigins) != 2 {
		t.Errorf("allowed origins = %v", cfg.Server.WebSocket.AllowedOrigins)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("log level = %q, want DEBUG", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tiny dungeon", func(c *Config) { c.Dungeon.Width, c.Dungeon.Height = 2, 2 }},
		{"bad density", func(c *Config) { c.Dungeon.MonsterDensity = 1.5 }},
		{"bad class", func(c *Config) { c.Game.Class = "bard" }},
		{"bad backend", func(c *Config) { c.Storage.Backend = "floppy" }},
		{"no save dir", func(c *Config) { c.Storage.SaveDir = "" }},
		{"bad driver", func(c *Config) { c.Storage.Backend = BackendSQL; c.Storage.Database.Driver = "oracle" }},
		{"monsters need sql", func(c *Config) { c.Storage.MonstersFromDatabase = true }},
		{"zero queue", func(c *Config) { c.Server.CommandQueueSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !gameerr.IsConfiguration(err) {
				t.Errorf("Validate() = %v, want configuration error", err)
			}
		})
	}
}

func TestIsOriginAllowed_EmptyList_SameOrigin(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{},
	}

	// Same origin (no Origin header)
	if !cfg.IsOriginAllowed("", "localhost:4000") {
		t.Error("expected empty origin to be allowed (same-origin)")
	}

	// Same origin (matching host)
	if !cfg.IsOriginAllowed("http://localhost:4000", "localhost:4000") {
		t.Error("expected matching origin to be allowed (same-origin)")
	}

	// Different origin should be rejected
	if cfg.IsOriginAllowed("http://evil.com", "localhost:4000") {
		t.Error("expected different origin to be rejected (same-origin policy)")
	}
}

func TestIsOriginAllowed_List(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{"https://example.com", "http://localhost:3000"},
	}

	if !cfg.IsOriginAllowed("https://example.com", "localhost:4000") {
		t.Error("expected exact match to be allowed")
	}
	if cfg.IsOriginAllowed("https://example.com:8080", "localhost:4000") {
		t.Error("expected partial match to be rejected")
	}

	wildcard := WebSocketConfig{AllowedOrigins: []string{"*"}}
	if !wildcard.IsOriginAllowed("http://anything.com", "localhost:4000") {
		t.Error("expected wildcard to allow any origin")
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin      string
		requestHost string
		expected    bool
	}{
		{"", "localhost:4000", true},
		{"http://localhost:4000", "localhost:4000", true},
		{"https://localhost:4000", "localhost:4000", true},
		{"http://localhost:4000/", "localhost:4000", true},
		{"http://example.com", "localhost:4000", false},
		{"http://localhost:3000", "localhost:4000", false},
		{"ws://localhost:4000", "localhost:4000", true},
	}

	for _, tt := range tests {
		result := isSameOrigin(tt.origin, tt.requestHost)
		if result != tt.expected {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v",
				tt.origin, tt.requestHost, result, tt.expected)
		}
	}
}
