package util

import (
	"log/slog"
	"testing"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		logger := NewLogger(tt.level)
		if logger == nil {
			t.Fatalf("NewLogger(%q) returned nil", tt.level)
		}
		ctx := t.Context()
		if !logger.Enabled(ctx, tt.want) {
			t.Errorf("NewLogger(%q): level %v not enabled", tt.level, tt.want)
		}
		if tt.want > slog.LevelDebug && logger.Enabled(ctx, tt.want-4) {
			t.Errorf("NewLogger(%q): level %v unexpectedly enabled", tt.level, tt.want-4)
		}
	}
}
