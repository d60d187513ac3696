// Package antispam throttles the commands a single connection may send.
package antispam

import (
	"sync"
	"time"
)

// Config holds command throttle configuration
type Config struct {
	Enabled     bool          `yaml:"enabled"`      // Whether throttling is enabled
	MaxCommands int           `yaml:"max_commands"` // Max commands allowed in the time window
	TimeWindow  time.Duration `yaml:"time_window"`  // Time window for rate limiting

	// Cooldowns sets a minimum gap between two uses of the same command,
	// keyed by command name.
	Cooldowns map[string]time.Duration `yaml:"cooldowns"`
}

// DefaultConfig returns sensible defaults for command throttling
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		MaxCommands: 20,
		TimeWindow:  5 * time.Second,
		Cooldowns:   map[string]time.Duration{"save": 2 * time.Second},
	}
}

// Tracker tracks command activity for a single connection
type Tracker struct {
	mu           sync.Mutex
	config       Config
	now          func() time.Time
	commandTimes []time.Time          // Timestamps of recent commands
	lastUsed     map[string]time.Time // command -> last accepted time
}

// NewTracker creates a new tracker with the given config
func NewTracker(config Config) *Tracker {
	return &Tracker{
		config:       config,
		now:          time.Now,
		commandTimes: make([]time.Time, 0, max(config.MaxCommands, 0)),
		lastUsed:     make(map[string]time.Time),
	}
}

// CheckResult contains the result of a throttle check
type CheckResult struct {
	Allowed     bool
	Reason      string
	WaitSeconds int // How long to wait before trying again (if not allowed)
}

// Check determines if a command should be allowed and records it if so.
func (t *Tracker) Check(command string) CheckResult {
	if !t.config.Enabled || t.config.MaxCommands <= 0 {
		return CheckResult{Allowed: true}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.cleanup(now)

	if cooldown := t.config.Cooldowns[command]; cooldown > 0 {
		if last, ok := t.lastUsed[command]; ok {
			if elapsed := now.Sub(last); elapsed < cooldown {
				return CheckResult{
					Allowed:     false,
					Reason:      "that command is cooling down",
					WaitSeconds: waitSeconds(cooldown - elapsed),
				}
			}
		}
	}

	if len(t.commandTimes) >= t.config.MaxCommands {
		// The oldest command leaves the window first
		remaining := t.commandTimes[0].Add(t.config.TimeWindow).Sub(now)
		return CheckResult{
			Allowed:     false,
			Reason:      "sending commands too quickly",
			WaitSeconds: waitSeconds(remaining),
		}
	}

	t.commandTimes = append(t.commandTimes, now)
	t.lastUsed[command] = now
	return CheckResult{Allowed: true}
}

func waitSeconds(d time.Duration) int {
	return int(d.Seconds()) + 1
}

// cleanup removes expired entries
func (t *Tracker) cleanup(now time.Time) {
	cutoff := now.Add(-t.config.TimeWindow)
	kept := t.commandTimes[:0]
	for _, ts := range t.commandTimes {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	t.commandTimes = kept

	for cmd, ts := range t.lastUsed {
		if now.Sub(ts) >= t.config.Cooldowns[cmd] {
			delete(t.lastUsed, cmd)
		}
	}
}

// Reset clears all tracking data
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commandTimes = t.commandTimes[:0]
	t.lastUsed = make(map[string]time.Time)
}
