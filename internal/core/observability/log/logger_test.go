package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"fatal", LevelFatal, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Level {
	t.Helper()
	l, err := ParseLevel(s)
	require.NoError(t, err)
	return l
}

func TestLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l := NewWithOptions(Options{Level: LevelDebug, OutputPaths: []string{path}})
	l.With(String("constraint", "hand")).Info("collision",
		Vec("safe", 1, 2, 3),
		Float64("influence", 0.5),
		Duration("took", time.Millisecond),
		Error(errors.New("boom")),
	)
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"constraint":"hand"`)
	assert.Contains(t, string(data), `"safe":[1,2,3]`)
	assert.Contains(t, string(data), `"error":"boom"`)
}

func TestSetLevelFiltersLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l := NewWithOptions(Options{Level: LevelInfo, OutputPaths: []string{path}})
	l.SetLevel(LevelError)
	assert.Equal(t, LevelError, l.GetLevel())
	l.Log(LevelInfo, "dropped")
	l.Log(LevelError, "kept")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info("nothing", Int("n", 1))
		l.With(Bool("b", true)).Warn("still nothing")
	})
}
