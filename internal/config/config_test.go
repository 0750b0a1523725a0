package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"HEATMAP_API_URL", "HEATMAP_ADDR", "HEATMAP_POLL_INTERVAL", "HEATMAP_REQUEST_TIMEOUT",
		"HEATMAP_DB", "HEATMAP_HISTORY_KEEP", "HEATMAP_GRPC", "HEATMAP_RECONNECT", "HEATMAP_FEED_PATH",
		"HEATMAP_RECONNECT_MIN", "HEATMAP_RECONNECT_MAX", "HEATMAP_DEDUPE", "HEATMAP_TZ",
		"HEATMAP_ICON_BASE", "HEATMAP_PASSWORD_HASH", "HEATMAP_MOCK", "HEATMAP_MOCK_ADDR",
		"HEATMAP_DEBUG", "HEATMAP_CONFIG",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeYAML(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "heatmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadArgs_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadArgs(nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.True(t, cfg.Reconnect)
	assert.False(t, cfg.Dedupe)
	assert.Equal(t, "Asia/Kolkata", cfg.TimeZone)
	assert.Equal(t, 9000, cfg.GRPCPort)
	assert.Equal(t, "/ws", cfg.FeedPath)
	assert.Equal(t, "heatmap.db", filepath.Base(cfg.DBPath))
}

func TestLoadArgs_Precedence(t *testing.T) {
	isolate(t)
	path := writeYAML(t, `
api_url: http://file:8000
addr: ":7000"
poll_interval: 10s
dedupe: true
grpc_port: 9100
`)
	t.Setenv("HEATMAP_CONFIG", path)
	t.Setenv("HEATMAP_ADDR", ":7001")
	t.Setenv("HEATMAP_POLL_INTERVAL", "15s")

	cfg, err := LoadArgs([]string{"-interval", "20s"})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	// file only
	assert.Equal(t, "http://file:8000", cfg.APIURL)
	assert.True(t, cfg.Dedupe)
	assert.Equal(t, 9100, cfg.GRPCPort)
	// env over file
	assert.Equal(t, ":7001", cfg.Addr)
	// flag over env
	assert.Equal(t, 20*time.Second, cfg.PollInterval)
}

func TestLoadArgs_ConfigFlagBeatsEnv(t *testing.T) {
	isolate(t)
	fromEnv := writeYAML(t, "addr: \":1111\"\n")
	fromFlag := writeYAML(t, "addr: \":2222\"\n")
	t.Setenv("HEATMAP_CONFIG", fromEnv)

	cfg, err := LoadArgs([]string{"--config=" + fromFlag})
	require.NoError(t, err)
	assert.Equal(t, ":2222", cfg.Addr)
}

func TestLoadArgs_Errors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad scheme", []string{"-api", "ftp://x"}},
		{"zero interval", []string{"-interval", "0s"}},
		{"inverted backoff", []string{"-reconnect-min", "10s", "-reconnect-max", "1s"}},
		{"unknown flag", []string{"-nope"}},
		{"missing file", []string{"-config", "/does/not/exist.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadArgs(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestLoadArgs_BadFileDuration(t *testing.T) {
	isolate(t)
	path := writeYAML(t, "poll_interval: soon\n")

	_, err := LoadArgs([]string{"-config", path})
	assert.ErrorContains(t, err, "poll_interval")
}

func TestGetEnvHelpers_IgnoreGarbage(t *testing.T) {
	t.Setenv("HEATMAP_TEST_INT", "x")
	t.Setenv("HEATMAP_TEST_BOOL", "maybe")
	t.Setenv("HEATMAP_TEST_DUR", "later")

	assert.Equal(t, 3, getEnvInt("HEATMAP_TEST_INT", 3))
	assert.True(t, getEnvBool("HEATMAP_TEST_BOOL", true))
	assert.Equal(t, time.Second, getEnvDuration("HEATMAP_TEST_DUR", time.Second))
}

func TestFindFlag(t *testing.T) {
	assert.Equal(t, "a.yaml", findFlag([]string{"-debug", "-config", "a.yaml"}, "config"))
	assert.Equal(t, "b.yaml", findFlag([]string{"--config=b.yaml"}, "config"))
	assert.Equal(t, "", findFlag([]string{"-config"}, "config"))
}
