package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30, cfg.PageSize)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes)
}

func TestLoadYAML(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
page_size: 10
reject_orphan_replies: true
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 10, cfg.PageSize)
	assert.True(t, cfg.RejectOrphanReplies)
	assert.Equal(t, "data/badger", cfg.DBPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BOARD_UPLOAD_DIR=uploads\n"), 0644))
	t.Setenv("BOARD_PAGE_SIZE", "5")
	t.Setenv("BOARD_SYNC_WRITES", "false")
	t.Cleanup(func() { os.Unsetenv("BOARD_UPLOAD_DIR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.PageSize)
	assert.False(t, cfg.SyncWrites)
	assert.Equal(t, "uploads", cfg.UploadDir)
}

func TestLoadErrors(t *testing.T) {
	dir := chdirTemp(t)

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("page_size: [1"), 0644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad env number", func(t *testing.T) {
		t.Setenv("BOARD_PAGE_SIZE", "many")
		_, err := Load("")
		assert.ErrorContains(t, err, "BOARD_PAGE_SIZE")
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("BOARD_PAGE_SIZE", "0")
		_, err := Load("")
		assert.ErrorContains(t, err, "invalid configuration")
	})
}
