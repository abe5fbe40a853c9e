package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWatchlist(t *testing.T) {
	input := `# LOF funds under watch
161725   # liquor index
501018 oil fund
161725
12345

  # indented comment
600519 extra tokens here
`
	codes, err := ParseWatchlist(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"161725", "501018", "012345", "600519"}, codes)
}

func TestParseWatchlistEmpty(t *testing.T) {
	codes, err := ParseWatchlist(strings.NewReader("# only comments\n\n"))
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestLoadWatchlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.txt")
	require.NoError(t, os.WriteFile(path, []byte("161725\n501018\n"), 0o644))

	codes, err := LoadWatchlist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"161725", "501018"}, codes)
}

func TestLoadWatchlistMissingFile(t *testing.T) {
	_, err := LoadWatchlist(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
