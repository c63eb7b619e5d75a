package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStoreRoundTrip(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSStore(base)
	require.NoError(t, err)

	key, err := s.Put("imports/2026/run-1.json", strings.NewReader(`[{"id":"a"}]`))
	require.NoError(t, err)
	assert.Equal(t, "imports/2026/run-1.json", key)

	rc, err := s.Get(key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(b))

	u, err := s.SignedURL(key)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file://"))
	assert.True(t, strings.HasSuffix(u, "/imports/2026/run-1.json"))
}

func TestFSStoreStaysInsideBase(t *testing.T) {
	base := t.TempDir()
	s, err := NewFSStore(filepath.Join(base, "blobs"))
	require.NoError(t, err)

	key, err := s.Put("../../escape.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "escape.txt", key)
	_, err = os.Stat(filepath.Join(base, "blobs", "escape.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "escape.txt"))
	assert.True(t, os.IsNotExist(err))

	_, err = s.Put("", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrBadKey)
	_, err = s.Get("/")
	assert.ErrorIs(t, err, ErrBadKey)
}

func TestImportKey(t *testing.T) {
	at := time.Date(2026, 10, 16, 23, 30, 0, 0, time.FixedZone("JST", 9*60*60))
	assert.Equal(t, "imports/2026-10-16/u1.json", ImportKey("u1", at))
}
