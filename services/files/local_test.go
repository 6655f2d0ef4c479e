package filesvc

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprakportal/backend/core"
)

func TestLocalStorage(t *testing.T) {
	conf := &core.Config{MediaRoot: t.TempDir()}
	store, err := NewLocalStorage(conf)
	require.NoError(t, err)

	name, err := store.Save(strings.NewReader("video bytes"), "Lektion 1.MP4")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".mp4"), "keeps a lower-cased extension: %q", name)
	assert.NotContains(t, name, "Lektion", "original name must not leak")

	f, err := store.Open(name)
	require.NoError(t, err)
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "video bytes", string(content))

	// stored names are unique even for identical uploads
	name2, err := store.Save(strings.NewReader("video bytes"), "Lektion 1.MP4")
	require.NoError(t, err)
	assert.NotEqual(t, name, name2)

	require.NoError(t, store.Remove(name))
	_, err = store.Open(name)
	assert.Error(t, err)

	// removing twice is fine
	assert.NoError(t, store.Remove(name))

	// path traversal in a stored name is neutralized
	assert.Equal(t, store.Path("x.mp4"), store.Path("../../x.mp4"))
}
