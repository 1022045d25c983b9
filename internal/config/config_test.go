package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 9090
  env: production
database:
  url: postgres://u:p@localhost/studyzone
jwt:
  access_secret: file-access
  refresh_secret: file-refresh
  access_ttl: 10m
auth:
  reset_token_ttl: 30m
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("JWT_REFRESH_SECRET", "env-refresh")
	t.Setenv("JWT_REFRESH_TTL", "48h")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "file-access", cfg.JWT.AccessSecret)
	assert.Equal(t, "env-refresh", cfg.JWT.RefreshSecret)
	assert.Equal(t, 10*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 48*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, "studyzone", cfg.JWT.Issuer)
}

func TestLoad_EnvOnlyWhenDefaultFileMissing(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_ACCESS_SECRET", "a")
	t.Setenv("JWT_REFRESH_SECRET", "b")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 172.16.0.0/12")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.Server.TrustedProxies)
	assert.Equal(t, EnvDevelopment, cfg.Server.Env)
	assert.Equal(t, time.Hour, cfg.Auth.ResetTokenTTL)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.ErrorContains(t, cfg.Validate(), "access_secret is required")

	cfg.JWT.AccessSecret = "same"
	cfg.JWT.RefreshSecret = "same"
	assert.ErrorContains(t, cfg.Validate(), "must differ")

	cfg.JWT.RefreshSecret = "other"
	assert.NoError(t, cfg.Validate())

	cfg.Server.Env = EnvProduction
	assert.ErrorContains(t, cfg.Validate(), "database.url")
}

func TestLoad_BadEnvDuration(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("JWT_ACCESS_TTL", "soon")

	_, err := Load(path)
	assert.ErrorContains(t, err, "JWT_ACCESS_TTL")
}
