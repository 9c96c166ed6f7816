package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvLegacyAPIURL, "")
	path := writeTempConfig(t, `
api_url: https://docgen.example.com
timeout: 30s
sink:
  type: s3
  s3:
    bucket: artifacts
    region: ap-northeast-1
influx:
  url: http://localhost:8086
  org: ops
  bucket: docgen
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://docgen.example.com", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "s3", cfg.Sink.Type)
	assert.Equal(t, "artifacts", cfg.Sink.S3.Bucket)
	assert.True(t, cfg.Influx.Enabled())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, "sink:\n  dir: out\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "dir", cfg.Sink.Type)
	assert.Equal(t, "out", cfg.Sink.Dir)
	assert.False(t, cfg.Influx.Enabled())
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeTempConfig(t, "invalid: yaml: content:"))
	assert.Error(t, err)

	_, err = Load(writeTempConfig(t, "unknown_key: 1\n"))
	assert.Error(t, err)
}

func TestResolve_EnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvLegacyAPIURL, "https://legacy.example.com")

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "https://legacy.example.com", cfg.APIURL)

	t.Setenv(EnvAPIURL, "https://primary.example.com")
	cfg, err = Resolve(writeTempConfig(t, "api_url: https://file.example.com\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://primary.example.com", cfg.APIURL)
}

func TestResolve_MissingFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvLegacyAPIURL, "")

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)

	_, err = Resolve("/nonexistent/config.yml")
	assert.Error(t, err)
}
