package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckVerb(t *testing.T) {
	_, err := checkVerb(Request{Params: map[string][]string{}})
	assert.Equal(t, "badVerb", err.Code())

	_, err = checkVerb(Request{Params: map[string][]string{"verb": {"NotAVerb"}}})
	assert.Equal(t, "badVerb", err.Code())

	_, err = checkVerb(Request{Params: map[string][]string{"verb": {"Identify", "ListSets"}}})
	assert.Equal(t, "badVerb", err.Code())

	verb, err := checkVerb(Request{Params: map[string][]string{"verb": {"Identify"}}})
	assert.NoError(t, err)
	assert.Equal(t, "Identify", verb)
}

func TestCheckParamsRejectsRepetition(t *testing.T) {
	req := Request{Params: map[string][]string{
		"verb":       {"ListMetadataFormats"},
		"identifier": {"a", "b"},
	}}
	err := checkParams("ListMetadataFormats", req)
	assert.Equal(t, "badArgument", err.Code())
}

func TestCheckParamsRejectsIllegalParam(t *testing.T) {
	req := Request{Params: map[string][]string{
		"verb":  {"Identify"},
		"extra": {"x"},
	}}
	err := checkParams("Identify", req)
	assert.Equal(t, "badArgument", err.Code())
}

func TestCheckParamsRequiresRequired(t *testing.T) {
	req := Request{Params: map[string][]string{"verb": {"GetRecord"}}}
	err := checkParams("GetRecord", req)
	assert.Equal(t, "badArgument", err.Code())
}

func TestCheckListParamsRejectsTokenCombinedWithOtherParams(t *testing.T) {
	req := Request{Params: map[string][]string{
		"verb":            {"ListRecords"},
		"resumptionToken": {"abc"},
		"metadataPrefix":  {"oai_dc"},
	}}
	_, isContinuation, err := checkListParams(req)
	assert.True(t, isContinuation)
	assert.NotNil(t, err)
}

func TestCheckListParamsRequiresMetadataPrefixInitially(t *testing.T) {
	req := Request{Params: map[string][]string{"verb": {"ListRecords"}}}
	_, isContinuation, err := checkListParams(req)
	assert.False(t, isContinuation)
	assert.NotNil(t, err)
}
