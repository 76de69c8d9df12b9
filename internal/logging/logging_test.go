package logging

import "testing"

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(42), "unknown(42)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, expected %q", tt.level, got, tt.expected)
		}
	}
}

func TestGetLevel(t *testing.T) {
	// The level is fixed at first use, so only the ordering contract can be
	// asserted here.
	level := GetLevel()
	if level < LevelDebug || level > LevelError {
		t.Errorf("GetLevel returned out-of-range level %d", level)
	}

	if IsDebugEnabled() != (level <= LevelDebug) {
		t.Error("IsDebugEnabled disagrees with GetLevel")
	}
}
