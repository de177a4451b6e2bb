package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestProviderReadsIdentifiersFormatsAndRecords(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "item-1", "oai_dc.xml"), "<dc/>")
	writeFile(t, filepath.Join(root, "item-1", "sets"), "a Example\na:b Example Subset")
	writeFile(t, filepath.Join(root, "item-2", "oai_dc.xml"), "<dc/>")

	p, err := New([]string{root})
	require.NoError(t, err)
	ctx := context.Background()

	identifiers, err := p.Identifiers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"item-1", "item-2"}, identifiers)

	formats, err := p.Formats(ctx)
	require.NoError(t, err)
	require.Len(t, formats, 1)
	assert.Equal(t, "oai_dc", formats[0].Prefix)

	xml, err := p.GetRecord(ctx, "item-1", "oai_dc")
	require.NoError(t, err)
	require.NotNil(t, xml)
	assert.Equal(t, "<dc/>", *xml)

	missing, err := p.GetRecord(ctx, "item-1", "no_such_prefix")
	require.NoError(t, err)
	assert.Nil(t, missing)

	sets, err := p.GetSets(ctx, "item-1")
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "a", sets[0].Spec)
	assert.Equal(t, "a:b", sets[1].Spec)
}

func TestHasChanged(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "item-1", "oai_dc.xml"), "<dc/>")

	p, err := New([]string{root})
	require.NoError(t, err)
	ctx := context.Background()

	changed, err := p.HasChanged(ctx, "item-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = p.HasChanged(ctx, "item-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "does-not-exist")})
	assert.Error(t, err)
}
