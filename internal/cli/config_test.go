package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_TokenRoundTrip(t *testing.T) {
	cfg := &Config{TokenFile: filepath.Join(t.TempDir(), "nested", "token")}

	require.NoError(t, cfg.SaveToken("abc.def.ghi"))

	info, err := os.Stat(cfg.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := &Config{TokenFile: cfg.TokenFile}
	require.NoError(t, loaded.LoadToken())
	assert.Equal(t, "abc.def.ghi", loaded.Token)
}

func TestConfig_ExplicitTokenWins(t *testing.T) {
	file := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(file, []byte("from-file\n"), 0600))

	cfg := &Config{Token: "from-flag", TokenFile: file}
	require.NoError(t, cfg.LoadToken())
	assert.Equal(t, "from-flag", cfg.Token)

	cfg = &Config{TokenFile: file}
	require.NoError(t, cfg.LoadToken())
	assert.Equal(t, "from-file", cfg.Token)
}

func TestConfig_MissingTokenFileIsFine(t *testing.T) {
	cfg := &Config{TokenFile: filepath.Join(t.TempDir(), "absent")}
	require.NoError(t, cfg.LoadToken())
	assert.Empty(t, cfg.Token)
}

func TestConfig_ClearToken(t *testing.T) {
	cfg := &Config{TokenFile: filepath.Join(t.TempDir(), "token")}
	require.NoError(t, cfg.SaveToken("abc"))

	require.NoError(t, cfg.ClearToken())
	assert.Empty(t, cfg.Token)
	_, err := os.Stat(cfg.TokenFile)
	assert.True(t, os.IsNotExist(err))

	// Clearing twice is fine
	require.NoError(t, cfg.ClearToken())
}

func TestDefaultConfig_Env(t *testing.T) {
	t.Setenv("SCOREBOARD_SERVER", "http://scores.example:9000")
	t.Setenv("SCOREBOARD_TOKEN", "tok")

	cfg := DefaultConfig()
	assert.Equal(t, "http://scores.example:9000", cfg.ServerURL)
	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, "text", cfg.Output)
}
