package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zap.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zap.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zap.InfoLevel, ParseLevel("verbose"))
}

func TestUntilMidnight(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 30*time.Minute, untilMidnight(now))

	now = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 24*time.Hour, untilMidnight(now))
}

func TestNew_WritesFiles(t *testing.T) {
	dir := t.TempDir()

	l, err := New(Options{Level: "info", Dir: dir})
	require.NoError(t, err)

	l.Info("hello", zap.String("k", "v"))
	l.Error("boom")
	require.NoError(t, l.Close())

	mainLog, err := os.ReadFile(filepath.Join(dir, mainLogName))
	require.NoError(t, err)
	assert.Contains(t, string(mainLog), "hello")
	assert.Contains(t, string(mainLog), "boom")

	errLog, err := os.ReadFile(filepath.Join(dir, errorLogName))
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(errLog), "hello"))
	assert.Contains(t, string(errLog), "boom")
}

func TestClose_Idempotent(t *testing.T) {
	l, err := New(Options{Level: "debug"})
	require.NoError(t, err)
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}

func TestRotateDaily_LogsThroughLogger(t *testing.T) {
	orig := nextRotation
	rotated := false
	nextRotation = func() time.Duration {
		if rotated {
			return time.Hour
		}
		rotated = true
		return 10 * time.Millisecond
	}
	t.Cleanup(func() { nextRotation = orig })

	dir := t.TempDir()
	l, err := New(Options{Level: "debug", Dir: dir})
	require.NoError(t, err)
	l.Info("before rotation")

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(filepath.Join(dir, mainLogName))
		return err == nil && strings.Contains(string(data), "Log files rotated")
	}, 2*time.Second, 10*time.Millisecond)

	// the rotated backup gets compressed in the background
	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return false
		}
		for _, e := range entries {
			name := e.Name()
			if name != mainLogName && name != errorLogName && !strings.HasSuffix(name, ".gz") {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, l.Close())
}
