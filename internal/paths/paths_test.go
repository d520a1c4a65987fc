package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheDirHonorsXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	dir, err := CacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "frisk"), dir)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigDirHonorsXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "frisk"), dir)
}

func TestRuntimeFilesDefaultToTmp(t *testing.T) {
	t.Setenv("FRISK_RUNTIME_DIR", "")
	assert.Equal(t, "/tmp/frisk.lock", LockFile())
	assert.Equal(t, "/tmp/frisk.sock", SocketFile())
}

func TestRuntimeDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FRISK_RUNTIME_DIR", dir)
	assert.Equal(t, filepath.Join(dir, "frisk.lock"), LockFile())
	assert.Equal(t, filepath.Join(dir, "frisk.sock"), SocketFile())
}
