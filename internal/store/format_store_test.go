package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turahe/kuha-go/internal/storeerr"
)

func TestFormatCreateOrUpdate_Create(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	f, err := s.FormatCreateOrUpdate(ctx, "oai_dc", "http://purl.org/dc/elements/1.1/", "http://dublincore.org/schemas/xmls/simpledc20021212.xsd")
	require.NoError(t, err)
	assert.Equal(t, "oai_dc", f.Prefix)
	assert.False(t, f.Deleted)

	exists, err := s.FormatExists(ctx, "oai_dc", true)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFormatCreateOrUpdate_RejectsInvalidPrefix(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.FormatCreateOrUpdate(ctx, "bad prefix with spaces", "urn:x", "urn:y")
	require.Error(t, err)

	var storeErr *storeerr.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, storeerr.InvalidPrefix, storeErr.Code)
}

func TestFormatCreateOrUpdate_NamespaceChangeCascadesDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.FormatCreateOrUpdate(ctx, "oai_dc", "urn:a", "urn:a.xsd")
	require.NoError(t, err)
	_, err = s.ItemCreateOrUpdate(ctx, "item-1")
	require.NoError(t, err)
	doc := `<r xmlns="urn:a" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="urn:a.xsd"/>`
	_, err = s.RecordCreateOrUpdate(ctx, "item-1", "oai_dc", doc)
	require.NoError(t, err)

	_, err = s.FormatCreateOrUpdate(ctx, "oai_dc", "urn:b", "urn:b.xsd")
	require.NoError(t, err)

	records, err := s.RecordList(ctx, RecordListParams{Identifier: strPtr("item-1"), IgnoreDeleted: false})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Deleted)
}

func TestEnsureOAIDC_CreatesAndUndeletes(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureOAIDC(ctx))
	exists, err := s.FormatExists(ctx, OAIDCPrefix, true)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.FormatMarkDeleted(ctx, OAIDCPrefix))
	exists, err = s.FormatExists(ctx, OAIDCPrefix, true)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.EnsureOAIDC(ctx))
	exists, err = s.FormatExists(ctx, OAIDCPrefix, true)
	require.NoError(t, err)
	assert.True(t, exists)
}

func strPtr(s string) *string { return &s }
