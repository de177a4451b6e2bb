package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNamespace = "http://purl.org/dc/elements/1.1/"
const testSchema = "http://dublincore.org/schemas/xmls/simpledc20021212.xsd"
const testDoc = `<r xmlns="` + testNamespace + `" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="` + testSchema + `"/>`

func seedFormatAndItem(t *testing.T, s *Store, identifier string) {
	t.Helper()
	ctx := context.Background()
	_, err := s.FormatCreateOrUpdate(ctx, "oai_dc", testNamespace, testSchema)
	require.NoError(t, err)
	_, err = s.ItemCreateOrUpdate(ctx, identifier)
	require.NoError(t, err)
}

func TestRecordCreateOrUpdate_InsertBumpsDatestamp(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	seedFormatAndItem(t, s, "item-1")

	before, err := s.DatestampGet(ctx)
	require.NoError(t, err)
	assert.Nil(t, before)

	_, err = s.RecordCreateOrUpdate(ctx, "item-1", "oai_dc", testDoc)
	require.NoError(t, err)

	after, err := s.DatestampGet(ctx)
	require.NoError(t, err)
	require.NotNil(t, after)
}

func TestRecordCreateOrUpdate_UnchangedXMLIsNoop(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	seedFormatAndItem(t, s, "item-1")

	first, err := s.RecordCreateOrUpdate(ctx, "item-1", "oai_dc", testDoc)
	require.NoError(t, err)

	second, err := s.RecordCreateOrUpdate(ctx, "item-1", "oai_dc", testDoc)
	require.NoError(t, err)

	assert.True(t, first.Datestamp.Equal(second.Datestamp))
}

func TestRecordCreateOrUpdate_UnknownFormat(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	_, err := s.ItemCreateOrUpdate(ctx, "item-1")
	require.NoError(t, err)

	_, err = s.RecordCreateOrUpdate(ctx, "item-1", "no_such_format", testDoc)
	require.Error(t, err)
}

func TestRecordList_OffsetAndLimit(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	_, err := s.FormatCreateOrUpdate(ctx, "oai_dc", testNamespace, testSchema)
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := s.ItemCreateOrUpdate(ctx, id)
		require.NoError(t, err)
		_, err = s.RecordCreateOrUpdate(ctx, id, "oai_dc", testDoc)
		require.NoError(t, err)
	}

	records, err := s.RecordList(ctx, RecordListParams{Offset: strPtr("b"), Limit: 2})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].Identifier)
	assert.Equal(t, "c", records[1].Identifier)
}

func TestRecordList_RejectsNegativeLimit(t *testing.T) {
	s := setupStore(t)
	_, err := s.RecordList(context.Background(), RecordListParams{Limit: -1})
	require.Error(t, err)
}

func TestRecordSetSpecs_ReturnsMinimalAntichain(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	_, err := s.ItemCreateOrUpdate(ctx, "item-1")
	require.NoError(t, err)

	_, err = s.SetCreateOrUpdate(ctx, "a", "A")
	require.NoError(t, err)
	_, err = s.SetCreateOrUpdate(ctx, "a:b", "A-B")
	require.NoError(t, err)

	require.NoError(t, s.ItemAddToSet(ctx, "item-1", "a"))
	require.NoError(t, s.ItemAddToSet(ctx, "item-1", "a:b"))

	specs, err := s.RecordSetSpecs(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a:b"}, specs)
}
