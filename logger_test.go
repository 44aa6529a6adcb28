package logward

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestLogging resets the global state and initializes it against a
// temporary directory with the console discarded. Tests using it share the
// package-level state and must not run in parallel.
func setupTestLogging(t *testing.T, mutate func(*Config)) Config {
	t.Helper()

	require.NoError(t, Close())

	cfg := DefaultConfig()
	cfg.Dir = t.TempDir()
	cfg.NoColor = true
	cfg.ConsoleOutput = io.Discard
	if mutate != nil {
		mutate(&cfg)
	}

	require.NoError(t, Setup(cfg))
	t.Cleanup(func() { _ = Close() })
	return cfg
}

// readRecords parses the newline-delimited JSON records of a log file.
func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record), "line: %s", line)
		records = append(records, record)
	}
	return records
}

func TestAppLoggerWritesJSONRecord(t *testing.T) {
	cfg := setupTestLogging(t, nil)

	logger := GetAppLogger("checkout")
	logger.Info("user logged in", map[string]any{"user_id": 123, "ip": "192.168.1.1"})

	records := readRecords(t, filepath.Join(cfg.Dir, "app", "app.log"))
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "user logged in", record["event"])
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, "checkout", record["logger"])
	assert.Equal(t, "app", record["category"])
	assert.Equal(t, float64(123), record["user_id"])
	assert.NotEmpty(t, record["timestamp"])
}

func TestAppFileExcludesErrors(t *testing.T) {
	cfg := setupTestLogging(t, nil)

	logger := GetAppLogger("svc")
	logger.Info("fine")
	logger.Error("broken", map[string]any{"cause": "disk"})

	appRecords := readRecords(t, filepath.Join(cfg.Dir, "app", "app.log"))
	require.Len(t, appRecords, 1)
	assert.Equal(t, "fine", appRecords[0]["event"])

	errRecords := readRecords(t, filepath.Join(cfg.Dir, "error", "error.log"))
	require.Len(t, errRecords, 1)
	assert.Equal(t, "broken", errRecords[0]["event"])
	assert.Equal(t, "error", errRecords[0]["level"])
}

func TestErrorTeeFromOtherCategories(t *testing.T) {
	cfg := setupTestLogging(t, nil)

	GetDebugLogger("worker").Error("job crashed")
	GetSecurityLogger("auth").Error("intrusion detected")

	records := readRecords(t, filepath.Join(cfg.Dir, "error", "error.log"))
	require.Len(t, records, 2)

	events := []string{records[0]["event"].(string), records[1]["event"].(string)}
	assert.Contains(t, events, "job crashed")
	assert.Contains(t, events, "intrusion detected")
}

func TestErrorLoggerFileRecordsOnlyErrors(t *testing.T) {
	cfg := setupTestLogging(t, nil)

	logger := GetErrorLogger("db")
	logger.Info("connection pool ready")
	logger.Error("connection lost")

	records := readRecords(t, filepath.Join(cfg.Dir, "error", "error.log"))
	require.Len(t, records, 1)
	assert.Equal(t, "connection lost", records[0]["event"])
}

func TestDebugSublog(t *testing.T) {
	cfg := setupTestLogging(t, nil)

	logger := GetDebugLogger("api", "api")
	logger.Debug("api call", map[string]any{"endpoint": "/users"})

	for _, name := range []string{"debug.log", "api.log"} {
		records := readRecords(t, filepath.Join(cfg.Dir, "debug", name))
		require.Len(t, records, 1, name)
		assert.Equal(t, "api call", records[0]["event"])
		assert.Equal(t, "/users", records[0]["endpoint"])
	}
}

func TestSecurityDirectoryCreatedLazily(t *testing.T) {
	cfg := setupTestLogging(t, nil)

	_, err := os.Stat(filepath.Join(cfg.Dir, "security"))
	require.True(t, os.IsNotExist(err))

	GetSecurityLogger("auth").Info("login attempt")

	records := readRecords(t, filepath.Join(cfg.Dir, "security", "security.log"))
	require.Len(t, records, 1)
	assert.Equal(t, "security", records[0]["category"])
}

func TestConsoleLevelFiltering(t *testing.T) {
	var console bytes.Buffer
	setupTestLogging(t, func(cfg *Config) {
		cfg.ConsoleOutput = &console
		cfg.ConsoleLevel = "INFO"
	})

	logger := GetDebugLogger("quiet")
	logger.Debug("below console threshold")
	assert.Empty(t, console.String())

	logger.Info("visible on console")
	assert.Contains(t, console.String(), "visible on console")
}

func TestFileLevelFiltering(t *testing.T) {
	cfg := setupTestLogging(t, func(cfg *Config) {
		cfg.FileLevel = "WARN"
	})

	logger := GetDebugLogger("filtered")
	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")

	records := readRecords(t, filepath.Join(cfg.Dir, "debug", "debug.log"))
	require.Len(t, records, 1)
	assert.Equal(t, "kept", records[0]["event"])
}

func TestUsedCategories(t *testing.T) {
	setupTestLogging(t, nil)

	assert.Empty(t, UsedCategories())

	GetAppLogger("a")
	GetDebugLogger("b")
	GetAppLogger("c")

	assert.Equal(t, []string{"app", "debug"}, UsedCategories())
}

func TestForceRotation(t *testing.T) {
	cfg := setupTestLogging(t, nil)

	logger := GetAppLogger("svc")
	logger.Info("pre-rotation record")

	// No date change yet.
	assert.False(t, ForceRotation())

	mu.Lock()
	rot := state.rot
	mu.Unlock()
	rot.mu.Lock()
	rot.date = "2000-01-01"
	rot.mu.Unlock()

	assert.True(t, ForceRotation())
	assert.FileExists(t, filepath.Join(cfg.Dir, "app", "app-2000-01-01.hist.log"))

	logger.Info("post-rotation record")
	records := readRecords(t, filepath.Join(cfg.Dir, "app", "app.log"))
	require.Len(t, records, 1)
	assert.Equal(t, "post-rotation record", records[0]["event"])
}

func TestSetupIsIdempotent(t *testing.T) {
	cfg := setupTestLogging(t, nil)

	other := DefaultConfig()
	other.Dir = t.TempDir()
	require.NoError(t, Setup(other))

	GetAppLogger("svc").Info("still the first config")
	records := readRecords(t, filepath.Join(cfg.Dir, "app", "app.log"))
	assert.Len(t, records, 1)
}

func TestRateLimitCapsRecords(t *testing.T) {
	cfg := setupTestLogging(t, func(cfg *Config) {
		cfg.MaxLogRate = 1
	})

	logger := GetAppLogger("chatty")
	for i := 0; i < 20; i++ {
		logger.Info("burst")
	}

	records := readRecords(t, filepath.Join(cfg.Dir, "app", "app.log"))
	assert.GreaterOrEqual(t, len(records), 1)
	assert.Less(t, len(records), 20)
}

func TestNewTestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewTestLogger(&buf)
	logger.Info("captured", map[string]any{"k": "v"})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "captured", record["event"])
	assert.Equal(t, "v", record["k"])
}

func TestCloseTwice(t *testing.T) {
	setupTestLogging(t, nil)

	require.NoError(t, Close())
	require.NoError(t, Close())
}
