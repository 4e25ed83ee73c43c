package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	old := userConfigDir
	defer func() { userConfigDir = old }()
	userConfigDir = func() (string, error) { return "/home/alice/.config", nil }

	var c Config
	c.LoadDefaults()

	want := Config{
		ServerURL: "http://127.0.0.1:8080",
		Timeout:   10 * time.Second,
		TokenFile: "/home/alice/.config/authctl/token",
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaults_NoConfigDir(t *testing.T) {
	old := userConfigDir
	defer func() { userConfigDir = old }()
	userConfigDir = func() (string, error) { return "", errors.New("no home") }

	var c Config
	c.LoadDefaults()
	assert.Equal(t, filepath.Join(".", "authctl", "token"), c.TokenFile)
}

func writeJSON(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "authctl.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeJSON(t, `{"server_url":"https://auth.example.com","timeout":"3s"}`)

	var c Config
	c.LoadDefaults()
	tokenFile := c.TokenFile
	require.NoError(t, c.LoadJSON(path))

	assert.Equal(t, "https://auth.example.com", c.ServerURL)
	assert.Equal(t, 3*time.Second, c.Timeout)
	assert.Equal(t, tokenFile, c.TokenFile, "absent fields keep their value")
}

func TestLoadJSON_Errors(t *testing.T) {
	var c Config
	assert.NoError(t, c.LoadJSON(""), "empty path is a no-op")
	assert.Error(t, c.LoadJSON(filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, c.LoadJSON(writeJSON(t, `{"timeout":`)))
	assert.Error(t, c.LoadJSON(writeJSON(t, `{"timeout":"soon"}`)))
}

func TestLoadConfig_EnvOverridesJSON(t *testing.T) {
	path := writeJSON(t, `{"server_url":"https://json.example.com","token_file":"/tmp/json-token"}`)
	t.Setenv("AUTHCTL_SERVER_URL", "https://env.example.com")
	t.Setenv("AUTHCTL_TIMEOUT", "2s")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.ServerURL)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "/tmp/json-token", cfg.TokenFile)
}

func TestLoadConfig_BadEnv(t *testing.T) {
	t.Setenv("AUTHCTL_TIMEOUT", "whenever")

	_, err := LoadConfig("")
	assert.Error(t, err)
}
