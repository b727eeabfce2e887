package watchlist_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/floatwatch/internal/adapters/watchlist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWatchlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFile_Items(t *testing.T) {
	path := writeWatchlist(t, `# skins a vigilar
AK-47 | Redline (Field-Tested)

  Glock-18 | Fade (Factory New)
# comentario intermedio
AWP | Asiimov (Battle-Scarred)
`)

	items, err := watchlist.NewFile(path).Items()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"AK-47 | Redline (Field-Tested)",
		"Glock-18 | Fade (Factory New)",
		"AWP | Asiimov (Battle-Scarred)",
	}, items, "comentarios y líneas en blanco fuera, espacios recortados")
}

func TestFile_MissingFileIsEmpty(t *testing.T) {
	wl := watchlist.NewFile(filepath.Join(t.TempDir(), "nope.txt"))
	items, err := wl.Items()
	require.NoError(t, err, "un watchlist ausente no es un error")
	assert.Empty(t, items)
}

func TestFile_EmptyFile(t *testing.T) {
	path := writeWatchlist(t, "\n# solo comentarios\n\n")
	items, err := watchlist.NewFile(path).Items()
	require.NoError(t, err)
	assert.Empty(t, items)
}
