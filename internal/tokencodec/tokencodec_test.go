package tokencodec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestMintVerifyRoundTrip(t *testing.T) {
	codec := New("test-secret")
	date := time.Date(2021, 6, 15, 10, 30, 0, 0, time.UTC)

	token, err := codec.Mint("ListRecords", "oai_dc", "item-42", date, strPtr("2021-01-01"), nil, strPtr("a:b"))
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "ListRecords", claims.Verb)
	assert.Equal(t, "oai_dc", claims.MetadataPrefix)
	assert.Equal(t, "item-42", claims.Offset)
	assert.Equal(t, "2021-06-15T10:30:00Z", claims.Date)
	assert.Equal(t, "2021-01-01", *claims.From)
	assert.Nil(t, claims.Until)
	assert.Equal(t, "a:b", *claims.Set)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := New("test-secret")
	_, err := codec.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	minted, err := New("secret-a").Mint("ListIdentifiers", "oai_dc", "x", time.Now().UTC(), nil, nil, nil)
	assert.NoError(t, err)

	_, err = New("secret-b").Verify(minted)
	assert.ErrorIs(t, err, ErrMalformed)
}
