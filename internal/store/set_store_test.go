package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCreateOrUpdate_RejectsInvalidSpec(t *testing.T) {
	s := setupStore(t)
	_, err := s.SetCreateOrUpdate(context.Background(), "bad spec!", "Bad")
	require.Error(t, err)
}

func TestSetCreateOrUpdate_UpdatesNameOnConflict(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.SetCreateOrUpdate(ctx, "a", "First name")
	require.NoError(t, err)
	_, err = s.SetCreateOrUpdate(ctx, "a", "Second name")
	require.NoError(t, err)

	got, err := s.SetGet(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Second name", got.Name)
}

func TestSetCount(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	count, err := s.SetCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = s.SetCreateOrUpdate(ctx, "a", "A")
	require.NoError(t, err)

	count, err = s.SetCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPurgeDeleted(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	seedFormatAndItem(t, s, "item-1")
	_, err := s.RecordCreateOrUpdate(ctx, "item-1", "oai_dc", testDoc)
	require.NoError(t, err)

	changed, err := s.RecordMarkDeleted(ctx, strPtr("item-1"), nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, changed)

	removed, err := s.PurgeDeleted(ctx)
	require.NoError(t, err)
	assert.True(t, removed >= 1)

	records, err := s.RecordList(ctx, RecordListParams{Identifier: strPtr("item-1")})
	require.NoError(t, err)
	assert.Empty(t, records)
}
