package timestampfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadMissingFileReturnsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist")
	assert.Nil(t, Read(zap.NewNop(), path))
}

func TestReadUnsetPathReturnsNil(t *testing.T) {
	assert.Nil(t, Read(zap.NewNop(), ""))
}

func TestReadInvalidContentsReturnsNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timestamp")
	require.NoError(t, os.WriteFile(path, []byte("not a date"), 0o644))
	assert.Nil(t, Read(zap.NewNop(), path))
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timestamp")
	want := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	Write(zap.NewNop(), path, want)
	got := Read(zap.NewNop(), path)

	require.NotNil(t, got)
	assert.True(t, want.Equal(*got))
}

func TestWriteUnsetPathIsNoop(t *testing.T) {
	Write(zap.NewNop(), "", time.Now())
}

func TestReadToleratesTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timestamp")
	want := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.WriteFile(path, []byte(want.Format("2006-01-02T15:04:05Z")+"\n"), 0o644))

	got := Read(zap.NewNop(), path)
	require.NotNil(t, got)
	assert.True(t, want.Equal(*got))
}
