package cache

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calrichards/frisk/internal/catalog"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenAt(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestRoundTrip(t *testing.T) {
	s := testStore(t)
	items := []catalog.Item{
		catalog.NewApplication("Firefox", "/Applications/Firefox.app"),
		catalog.NewClipboardEntry("hello world", "hello\nworld"),
		catalog.NewNixPackage("ripgrep v14.1.1", "ripgrep"),
	}

	require.NoError(t, s.Save(AppsFile, items))

	var loaded []catalog.Item
	require.True(t, s.Load(AppsFile, DefaultTTL, &loaded))
	if diff := cmp.Diff(items, loaded); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s := testStore(t)
	var out []catalog.Item
	assert.False(t, s.Load("nope.bin", DefaultTTL, &out))
}

func TestLoadExpired(t *testing.T) {
	s := testStore(t)
	items := []catalog.Item{catalog.NewApplication("Zed", "/Applications/Zed.app")}
	require.NoError(t, s.Save(AppsFile, items))

	// Age the file past the TTL.
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(s.Path(AppsFile), old, old))

	var out []catalog.Item
	assert.False(t, s.Load(AppsFile, time.Hour, &out))

	// NoTTL ignores age entirely.
	assert.True(t, s.Load(AppsFile, NoTTL, &out))
	assert.Len(t, out, 1)
}

func TestLoadCorrupt(t *testing.T) {
	s := testStore(t)
	require.NoError(t, os.WriteFile(s.Path(AppsFile), []byte("not gob data"), 0o644))

	var out []catalog.Item
	assert.False(t, s.Load(AppsFile, DefaultTTL, &out))
}

func TestSaveOverwrites(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Save(ClipboardFile, []catalog.Item{catalog.NewClipboardEntry("a", "a")}))
	require.NoError(t, s.Save(ClipboardFile, []catalog.Item{
		catalog.NewClipboardEntry("b", "b"),
		catalog.NewClipboardEntry("a", "a"),
	}))

	var out []catalog.Item
	require.True(t, s.Load(ClipboardFile, NoTTL, &out))
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Value)
}

func TestLoadFileArbitraryPath(t *testing.T) {
	s := testStore(t)
	items := []catalog.Item{catalog.NewSystemCommand("Sleep", "pmset sleepnow")}
	require.NoError(t, s.Save("custom.bin", items))

	var out []catalog.Item
	require.True(t, LoadFile(s.Path("custom.bin"), NoTTL, &out))
	assert.Equal(t, items, out)
}
