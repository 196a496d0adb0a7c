package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ctap/vkapi/pkg/vkx"
)

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "vkapi.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad(t *testing.T) {
	t.Setenv("VKAPI_TEST_SECRET", "s3cret")

	cfg, err := Load(write(t, `
engine:
  kind: sim
  sim:
    delay: 250ms
store:
  dir: /var/lib/vkapi
  secret: ${VKAPI_TEST_SECRET}
retry_on:
  - VKX_RESULT_ENROLL_FAIL
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, EngineSim, cfg.Engine.Kind)
	assert.Equal(t, 3, cfg.Engine.Sim.Stages)
	assert.Equal(t, 250*time.Millisecond, cfg.SimDelay())
	assert.Equal(t, "s3cret", cfg.Store.Secret)
	assert.Equal(t, "info", cfg.Log.Level)

	policy := cfg.RetryPolicy()
	assert.True(t, policy(vkx.VKX_RESULT_ENROLL_FAIL))
	assert.False(t, policy(vkx.VKX_RESULT_NOT_CONNECTED))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(write(t, "engine: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown engine", func(c *Config) { c.Engine.Kind = "usb" }, "unknown engine kind"},
		{"bad delay", func(c *Config) { c.Engine.Sim.Delay = "soon" }, "engine.sim.delay"},
		{"no stages", func(c *Config) { c.Engine.Sim.Stages = 0 }, "stages"},
		{"no store", func(c *Config) { c.Store.Dir = "" }, "store.dir"},
		{"bad code", func(c *Config) { c.RetryOn = []string{"VKX_RESULT_NOPE"} }, "retry_on"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	require.NoError(t, Default().Validate())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRetryPolicy_Default(t *testing.T) {
	assert.False(t, Default().RetryPolicy()(vkx.VKX_RESULT_ENROLL_FAIL))
}

func TestLoadDotEnv_Missing(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestFromFlags(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("VKAPI_DOTENV_SECRET=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("VKAPI_DOTENV_SECRET") })

	cfg, err := FromFlags(write(t, `
store:
  dir: prints
  secret: ${VKAPI_DOTENV_SECRET}
`), env)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Store.Secret)
}

func TestFromFlags_Defaults(t *testing.T) {
	cfg, err := FromFlags("", filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFromFlags_Invalid(t *testing.T) {
	_, err := FromFlags(write(t, "engine:\n  kind: usb\n"), "")
	require.Error(t, err)
}
