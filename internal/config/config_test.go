package config

import (
	"testing"
	"time"
)

func TestEnvStr(t *testing.T) {
	t.Setenv("CFG_TEST_STR", "custom")
	if got := envStr("CFG_TEST_STR", "fallback"); got != "custom" {
		t.Errorf("set variable: got %q, want %q", got, "custom")
	}
	if got := envStr("CFG_TEST_STR_MISSING", "fallback"); got != "fallback" {
		t.Errorf("unset variable: got %q, want %q", got, "fallback")
	}
}

func TestEnvBool(t *testing.T) {
	cases := []struct {
		name  string
		value string
		def   bool
		want  bool
	}{
		{"unset uses default", "", true, true},
		{"one is true", "1", false, true},
		{"true is true", "true", false, true},
		{"upper TRUE is true", "TRUE", false, true},
		{"yes is true", "yes", false, true},
		{"on is true", "on", false, true},
		{"zero is false", "0", true, false},
		{"false is false", "false", true, false},
		{"no is false", "NO", true, false},
		{"off is false", "off", true, false},
		{"garbage uses default", "maybe", true, true},
		{"garbage uses false default too", "maybe", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.value != "" {
				t.Setenv("CFG_TEST_BOOL", tc.value)
			}
			if got := envBool("CFG_TEST_BOOL", tc.def); got != tc.want {
				t.Errorf("envBool(%q, %v) = %v, want %v", tc.value, tc.def, got, tc.want)
			}
		})
	}
}

func TestEnvInt(t *testing.T) {
	cases := []struct {
		name  string
		value string
		def   int
		want  int
	}{
		{"unset uses default", "", 42, 42},
		{"parses value", "17", 42, 17},
		{"negative parses", "-3", 42, -3},
		{"malformed uses default", "many", 42, 42},
		{"float uses default", "1.5", 42, 42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.value != "" {
				t.Setenv("CFG_TEST_INT", tc.value)
			}
			if got := envInt("CFG_TEST_INT", tc.def); got != tc.want {
				t.Errorf("envInt(%q, %d) = %d, want %d", tc.value, tc.def, got, tc.want)
			}
		})
	}
}

func TestEnvDur(t *testing.T) {
	cases := []struct {
		name  string
		value string
		def   time.Duration
		want  time.Duration
	}{
		{"unset uses default", "", time.Second, time.Second},
		{"parses seconds", "30s", time.Second, 30 * time.Second},
		{"parses compound", "1m30s", time.Second, 90 * time.Second},
		{"bare number uses default", "30", time.Second, time.Second},
		{"malformed uses default", "soon", time.Minute, time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.value != "" {
				t.Setenv("CFG_TEST_DUR", tc.value)
			}
			if got := envDur("CFG_TEST_DUR", tc.def); got != tc.want {
				t.Errorf("envDur(%q, %v) = %v, want %v", tc.value, tc.def, got, tc.want)
			}
		})
	}
}

func TestLoadRateLimitConfigNormalizes(t *testing.T) {
	// Nonsense values must come out usable: positive capacity and
	// refill, and a TTL long enough for a full refill cycle.
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-5")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity < 1 {
		t.Errorf("capacity = %d, want >= 1", cfg.Capacity)
	}
	if cfg.RefillTokens < 1 {
		t.Errorf("refill tokens = %d, want >= 1", cfg.RefillTokens)
	}
	if cfg.TTL < 5*cfg.RefillInterval {
		t.Errorf("ttl = %v, want at least %v", cfg.TTL, 5*cfg.RefillInterval)
	}
}

func TestLoadRateLimitConfigShorthands(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "25")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "500ms")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 25 {
		t.Errorf("capacity = %d, want 25 from the burst shorthand", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 || cfg.RefillInterval != 500*time.Millisecond {
		t.Errorf("refill = %d per %v, want 1 per 500ms", cfg.RefillTokens, cfg.RefillInterval)
	}
}
