package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModelRoot(t *testing.T, aliases ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, alias := range aliases {
		require.NoError(t, os.Mkdir(filepath.Join(root, alias), 0o755))
	}

	return root
}

func TestDiscover_RegistersSubdirectories(t *testing.T) {
	root := newModelRoot(t, "whisper-small", "whisper-medium")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	reg := Discover(root)

	assert.Equal(t, []string{"whisper-medium", "whisper-small"}, reg.Aliases())
}

func TestDiscover_MissingRootYieldsEmptyRegistry(t *testing.T) {
	reg := Discover(filepath.Join(t.TempDir(), "does-not-exist"))

	assert.Empty(t, reg.Aliases())
}

func TestResolveDefault_ReusesRegisteredAlias(t *testing.T) {
	root := newModelRoot(t, "whisper-medium")
	reg := Discover(root)

	alias, err := reg.ResolveDefault(filepath.Join(root, "whisper-medium"))
	require.NoError(t, err)

	assert.Equal(t, "whisper-medium", alias)
	assert.Equal(t, "whisper-medium", reg.DefaultAlias())
}

func TestResolveDefault_SynthesizesAliasOutsideRoot(t *testing.T) {
	root := newModelRoot(t, "whisper-small")
	outside := newModelRoot(t, "custom-large")
	reg := Discover(root)

	alias, err := reg.ResolveDefault(filepath.Join(outside, "custom-large"))
	require.NoError(t, err)

	assert.Equal(t, "custom-large", alias)
	assert.Contains(t, reg.Aliases(), "custom-large")
}

func TestResolveDefault_MissingArtifactFailsStartup(t *testing.T) {
	reg := Discover(t.TempDir())

	_, err := reg.ResolveDefault(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrDefaultMissing)
}

func TestResolveSelection(t *testing.T) {
	root := newModelRoot(t, "whisper-small", "whisper-medium")
	reg := Discover(root)
	_, err := reg.ResolveDefault(filepath.Join(root, "whisper-medium"))
	require.NoError(t, err)

	t.Run("empty selector picks the default", func(t *testing.T) {
		alias, path, err := reg.ResolveSelection("")
		require.NoError(t, err)
		assert.Equal(t, "whisper-medium", alias)
		expected, _ := reg.Path("whisper-medium")
		assert.Equal(t, expected, path)
	})

	t.Run("known alias", func(t *testing.T) {
		alias, path, err := reg.ResolveSelection("whisper-small")
		require.NoError(t, err)
		assert.Equal(t, "whisper-small", alias)
		expected, _ := reg.Path("whisper-small")
		assert.Equal(t, expected, path)
	})

	t.Run("filesystem path matches registry value", func(t *testing.T) {
		alias, _, err := reg.ResolveSelection(filepath.Join(root, "whisper-small"))
		require.NoError(t, err)
		assert.Equal(t, "whisper-small", alias)
	})

	t.Run("unknown selector", func(t *testing.T) {
		_, _, err := reg.ResolveSelection("missing-alias")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
