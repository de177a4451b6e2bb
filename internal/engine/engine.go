package engine

import (
	"context"
	"time"
)

// Dispatch routes an OAI-PMH request to its verb handler (spec §4.5).
// responseTime is stamped before any Store query is issued, so query
// latency never skews the value a client sees.
func (e *Engine) Dispatch(ctx context.Context, req Request) (*Response, error) {
	responseTime := time.Now().UTC()

	verb, err := checkVerb(req)
	if err != nil {
		return e.errorResponse(responseTime, req, err), err
	}

	if err := checkParams(verb, req); err != nil {
		return e.errorResponse(responseTime, req, err), err
	}

	var (
		resp      *Response
		handleErr error
	)

	switch verb {
	case "Identify":
		resp, handleErr = e.identify(ctx, responseTime)
	case "ListMetadataFormats":
		resp, handleErr = e.listMetadataFormats(ctx, req)
	case "ListSets":
		resp, handleErr = e.listSets(ctx, req)
	case "GetRecord":
		resp, handleErr = e.getRecord(ctx, req)
	case "ListIdentifiers":
		resp, handleErr = e.listRecords(ctx, req, "ListIdentifiers", false)
	case "ListRecords":
		resp, handleErr = e.listRecords(ctx, req, "ListRecords", true)
	}

	if handleErr != nil {
		return e.errorResponse(responseTime, req, handleErr), handleErr
	}

	resp.ResponseTime = responseTime
	resp.RequestVerb = verb
	resp.RequestArgs = flattenParams(req)
	return resp, nil
}

// errorResponse still carries the verb-agnostic envelope fields (the
// request echo is required even on error responses, spec §6).
func (e *Engine) errorResponse(responseTime time.Time, req Request, err error) *Response {
	verb, _ := req.Param("verb")
	return &Response{
		ResponseTime: responseTime,
		RequestVerb:  verb,
		RequestArgs:  flattenParams(req),
	}
}

func flattenParams(req Request) map[string]string {
	out := make(map[string]string, len(req.Params))
	for name, values := range req.Params {
		if len(values) > 0 {
			out[name] = values[0]
		}
	}
	return out
}
