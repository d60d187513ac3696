package antispam

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(config Config) (*Tracker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	tracker := NewTracker(config)
	tracker.now = clock.now
	return tracker, clock
}

func TestRateLimit(t *testing.T) {
	tracker, clock := newTestTracker(Config{
		Enabled:     true,
		MaxCommands: 3,
		TimeWindow:  2 * time.Second,
	})

	// First 3 commands should be allowed
	for i := 0; i < 3; i++ {
		if result := tracker.Check("move"); !result.Allowed {
			t.Errorf("Command %d should be allowed", i+1)
		}
		clock.advance(100 * time.Millisecond)
	}

	// 4th command should be blocked (rate limit)
	result := tracker.Check("move")
	if result.Allowed {
		t.Fatal("4th command should be blocked by rate limit")
	}
	if result.Reason != "sending commands too quickly" {
		t.Errorf("Unexpected reason: %s", result.Reason)
	}
	if result.WaitSeconds != 2 {
		t.Errorf("WaitSeconds = %d, want 2", result.WaitSeconds)
	}

	// Once the first command leaves the window there is room again
	clock.advance(1800 * time.Millisecond)
	if result := tracker.Check("move"); !result.Allowed {
		t.Error("Command should be allowed after the window slides")
	}
}

func TestBlockedCommandsAreNotCounted(t *testing.T) {
	tracker, clock := newTestTracker(Config{
		Enabled:     true,
		MaxCommands: 1,
		TimeWindow:  time.Second,
	})

	tracker.Check("view")
	for i := 0; i < 5; i++ {
		if tracker.Check("view").Allowed {
			t.Fatal("Should be blocked inside the window")
		}
	}

	clock.advance(1001 * time.Millisecond)
	if !tracker.Check("view").Allowed {
		t.Error("Blocked attempts must not extend the window")
	}
}

func TestCooldown(t *testing.T) {
	tracker, clock := newTestTracker(Config{
		Enabled:     true,
		MaxCommands: 10,
		TimeWindow:  10 * time.Second,
		Cooldowns:   map[string]time.Duration{"save": time.Second},
	})

	if !tracker.Check("save").Allowed {
		t.Error("First save should be allowed")
	}

	result := tracker.Check("save")
	if result.Allowed {
		t.Error("Repeated save should be blocked")
	}
	if result.Reason != "that command is cooling down" {
		t.Errorf("Unexpected reason: %s", result.Reason)
	}

	// Other commands have no cooldown
	if !tracker.Check("move").Allowed || !tracker.Check("move").Allowed {
		t.Error("Commands without a cooldown should not be blocked")
	}

	clock.advance(time.Second)
	if !tracker.Check("save").Allowed {
		t.Error("Save should be allowed after the cooldown")
	}
}

func TestDisabled(t *testing.T) {
	tracker, _ := newTestTracker(Config{
		Enabled:     false,
		MaxCommands: 1,
		TimeWindow:  time.Minute,
	})

	for i := 0; i < 10; i++ {
		if !tracker.Check("move").Allowed {
			t.Error("Should allow all commands when disabled")
		}
	}
}

func TestReset(t *testing.T) {
	tracker, _ := newTestTracker(Config{
		Enabled:     true,
		MaxCommands: 1,
		TimeWindow:  time.Minute,
		Cooldowns:   map[string]time.Duration{"save": time.Minute},
	})

	tracker.Check("save")
	if tracker.Check("move").Allowed {
		t.Fatal("Should be blocked")
	}

	tracker.Reset()
	if !tracker.Check("save").Allowed {
		t.Error("Should be allowed after reset")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if !config.Enabled {
		t.Error("Default config should be enabled")
	}
	if config.MaxCommands != 20 {
		t.Errorf("Expected MaxCommands=20, got %d", config.MaxCommands)
	}
	if config.TimeWindow != 5*time.Second {
		t.Errorf("Expected TimeWindow=5s, got %v", config.TimeWindow)
	}
	if config.Cooldowns["save"] != 2*time.Second {
		t.Errorf("Expected save cooldown 2s, got %v", config.Cooldowns["save"])
	}
}
