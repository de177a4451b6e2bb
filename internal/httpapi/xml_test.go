package httpapi

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turahe/kuha-go/internal/engine"
	"github.com/turahe/kuha-go/internal/oaierrors"
)

func TestRenderResponseIdentify(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	resp := &engine.Response{
		ResponseTime: now,
		RequestVerb:  "Identify",
		Identify: &engine.IdentifyResult{
			RepositoryName:      "Example Repository",
			AdminEmails:         []string{"admin@example.org"},
			EarliestDatestamp:   now,
			DeletedRecordPolicy: "no",
			ProtocolVersion:     "2.0",
		},
	}

	env := renderResponse("http://example.org/oai", resp)
	body, err := xml.Marshal(env)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "<OAI-PMH")
	assert.Contains(t, out, "Example Repository")
	assert.Contains(t, out, "admin@example.org")
	assert.Contains(t, out, "2026-01-02T03:04:05Z")
}

func TestRenderErrorIncludesCode(t *testing.T) {
	now := time.Now().UTC()
	env := renderError(now, "http://example.org/oai", "GetRecord", map[string]string{"verb": "GetRecord", "identifier": "missing-1"}, oaierrors.ErrIdDoesNotExist("missing-1"))

	body, err := xml.Marshal(env)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `code="idDoesNotExist"`)
	assert.Contains(t, out, "missing-1")
	assert.Contains(t, out, `identifier="missing-1"`)
	assert.Contains(t, out, "http://example.org/oai")
}

func TestRecordFromResultOmitsMetadataWhenDeleted(t *testing.T) {
	result := engine.RecordResult{
		Header: engine.HeaderResult{Identifier: "id-1", Deleted: true},
		XML:    "",
	}
	elem := recordFromResult(result)
	assert.Nil(t, elem.Metadata)
	assert.Equal(t, "deleted", elem.Header.Status)
}
