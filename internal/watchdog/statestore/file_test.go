package statestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

func TestFileStoreRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "watchdog.json")

	s := NewFileStore(path, zap.NewNop())
	require.NoError(t, s.Set("limit", map[string]string{"161725": "LIMIT_UP"}))

	// A fresh store on the same path sees the persisted state.
	s2 := NewFileStore(path, zap.NewNop())
	got, err := s2.Get("limit")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"161725": "LIMIT_UP"}, got)
}

func TestFileStoreMissingFileStartsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
	got, err := s.Get("limit")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewFileStore(path, zap.NewNop())
	got, err := s.Get("limit")
	require.NoError(t, err)
	assert.Empty(t, got)

	// The store still accepts writes afterwards.
	require.NoError(t, s.Set("limit", map[string]string{"501018": "NORMAL"}))
}

func TestFileStoreGetReturnsCopy(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "state.json"), zap.NewNop())
	require.NoError(t, s.Set("speed", map[string]string{"161725": "FAST_UP"}))

	got, err := s.Get("speed")
	require.NoError(t, err)
	got["161725"] = "mutated"

	again, err := s.Get("speed")
	require.NoError(t, err)
	assert.Equal(t, "FAST_UP", again["161725"])
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	got, err := s.Get("limit")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Set("limit", map[string]string{"161725": "LIMIT_DOWN"}))
	got, err = s.Get("limit")
	require.NoError(t, err)
	assert.Equal(t, "LIMIT_DOWN", got["161725"])
}
