package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "vkapi.yaml")
	body := "store:\n  dir: " + filepath.Join(dir, "prints") + "\n  secret: test-secret\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestRun_Usage(t *testing.T) {
	assert.Equal(t, 2, run(nil))
	assert.Equal(t, 2, run([]string{"scan"}))
	assert.Equal(t, 0, run([]string{"help"}))
}

func TestRun_EnrollVerifyDelete(t *testing.T) {
	cfg := writeConfig(t)

	assert.Equal(t, 1, run([]string{"verify", "-config", cfg, "-env", ""}), "nothing enrolled yet")
	require.Equal(t, 0, run([]string{"enroll", "-config", cfg, "-env", "", "-finger", "left-thumb"}))
	assert.Equal(t, 0, run([]string{"verify", "-config", cfg, "-env", "", "-finger", "left-thumb"}))
	assert.Equal(t, 0, run([]string{"list", "-config", cfg, "-env", ""}))
	assert.Equal(t, 0, run([]string{"delete", "-config", cfg, "-env", "", "-finger", "left-thumb"}))
	assert.Equal(t, 1, run([]string{"verify", "-config", cfg, "-env", "", "-finger", "left-thumb"}))
}

func TestRun_UnknownFinger(t *testing.T) {
	assert.Equal(t, 1, run([]string{"enroll", "-config", writeConfig(t), "-env", "", "-finger", "tail"}))
}
