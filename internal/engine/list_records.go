package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/turahe/kuha-go/internal/datecodec"
	"github.com/turahe/kuha-go/internal/domain/entities"
	"github.com/turahe/kuha-go/internal/oaierrors"
	"github.com/turahe/kuha-go/internal/store"
)

// listQuery is the resolved parameter set for a ListIdentifiers or
// ListRecords request, whether it came from initial request params or
// was substituted wholesale from a resumption token (spec §4.5).
type listQuery struct {
	metadataPrefix string
	from           *string
	until          *string
	set            *string
	offset         *string
}

// checkListParams validates ListIdentifiers/ListRecords params beyond
// the generic allowed-set check: a continuation request (carrying
// resumptionToken) may carry no other parameter, and an initial
// request must carry metadataPrefix (spec §4.5).
func checkListParams(req Request) (listQuery, bool, oaierrors.Error) {
	token, isContinuation := req.Param("resumptionToken")
	if isContinuation {
		for _, name := range []string{"metadataPrefix", "from", "until", "set"} {
			if _, ok := req.Param(name); ok {
				return listQuery{}, true, oaierrors.ErrBadArgument(
					"resumptionToken may not be combined with " + name)
			}
		}
		return listQuery{offset: &token}, true, nil
	}

	prefix, ok := req.Param("metadataPrefix")
	if !ok {
		return listQuery{}, false, oaierrors.ErrBadArgument("missing required parameter: metadataPrefix")
	}

	q := listQuery{metadataPrefix: prefix}
	if v, ok := req.Param("from"); ok {
		q.from = &v
	}
	if v, ok := req.Param("until"); ok {
		q.until = &v
	}
	if v, ok := req.Param("set"); ok {
		q.set = &v
	}
	return q, false, nil
}

// listRecords implements the shared logic behind ListIdentifiers and
// ListRecords: they differ only in whether the response carries
// metadata XML alongside each header (spec §4.5).
func (e *Engine) listRecords(ctx context.Context, req Request, verb string, includeXML bool) (*Response, error) {
	q, isContinuation, argErr := checkListParams(req)
	if argErr != nil {
		return nil, argErr
	}

	s, err := store.BeginReadOnlyTx(ctx, e.pool, e.redisClient)
	if err != nil {
		return nil, fmt.Errorf("engine: %s: %w", verb, err)
	}
	defer s.Rollback(ctx)

	if isContinuation {
		rawToken := *q.offset
		resolved, tokenErr := e.resolveToken(ctx, s, verb, rawToken)
		if tokenErr != nil {
			return nil, tokenErr
		}
		q = resolved
	}

	records, nextOffset, protoErr := e.getRecords(ctx, s, q, isContinuation)
	if protoErr != nil {
		return nil, protoErr
	}

	results := make([]RecordResult, len(records))
	for i, record := range records {
		header, err := buildHeader(ctx, s, record)
		if err != nil {
			return nil, fmt.Errorf("engine: %s: %w", verb, err)
		}
		result := RecordResult{Header: header}
		if includeXML && record.XML != nil {
			result.XML = *record.XML
		}
		results[i] = result
	}

	var token *string
	switch {
	case nextOffset != nil:
		minted, err := e.mintToken(verb, q, *nextOffset)
		if err != nil {
			return nil, fmt.Errorf("engine: %s: mint resumption token: %w", verb, err)
		}
		token = &minted
	case isContinuation:
		empty := ""
		token = &empty
	}

	if err := s.Commit(ctx); err != nil {
		return nil, fmt.Errorf("engine: %s: %w", verb, err)
	}

	resp := &Response{ResumptionToken: token}
	if includeXML {
		resp.Records = results
	} else {
		headers := make([]HeaderResult, len(results))
		for i, r := range results {
			headers[i] = r.Header
		}
		resp.Headers = headers
	}
	return resp, nil
}

// resolveToken verifies a presented resumption token (spec §4.4) and
// substitutes its fields as the request's effective parameters. Any
// structural failure is InvalidResumptionToken; a token whose issuance
// date is at or before the current Datestamp is ExpiredResumptionToken.
func (e *Engine) resolveToken(ctx context.Context, s *store.Store, verb, rawToken string) (listQuery, error) {
	claims, err := e.tokens.Verify(rawToken)
	if err != nil {
		return listQuery{}, oaierrors.ErrInvalidResumptionToken()
	}
	if claims.Verb != verb {
		return listQuery{}, oaierrors.ErrInvalidResumptionToken()
	}

	tokenDate, _, err := datecodec.Parse(claims.Date, 0)
	if err != nil {
		return listQuery{}, oaierrors.ErrInvalidResumptionToken()
	}

	current, err := s.DatestampGet(ctx)
	if err != nil {
		return listQuery{}, fmt.Errorf("engine: resolveToken: %w", err)
	}
	if current != nil && !current.Before(tokenDate) {
		return listQuery{}, oaierrors.ErrExpiredResumptionToken()
	}

	offset := claims.Offset
	return listQuery{
		metadataPrefix: claims.MetadataPrefix,
		from:           claims.From,
		until:          claims.Until,
		set:            claims.Set,
		offset:         &offset,
	}, nil
}

// getRecords is _getRecords from spec §4.5: it validates the
// (possibly token-substituted) query, runs the list query with one
// extra row of lookahead, and reports the next page's offset if the
// page was full. Every validation error is translated to
// InvalidResumptionToken when isContinuation is true.
// ExpiredResumptionToken is never produced here: resolveToken returns
// it before getRecords runs.
func (e *Engine) getRecords(ctx context.Context, s *store.Store, q listQuery, isContinuation bool) ([]entities.Record, *string, error) {
	translate := func(err error) error {
		if !isContinuation || err == nil {
			return err
		}
		return oaierrors.ErrInvalidResumptionToken()
	}

	formatExists, err := s.FormatExists(ctx, q.metadataPrefix, false)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: getRecords: %w", err)
	}
	if !formatExists {
		return nil, nil, translate(oaierrors.ErrUnsupportedMetadataFormat(q.metadataPrefix))
	}

	var fromDate, untilDate *time.Time
	if q.from != nil && q.until != nil {
		from, fromGran, err := datecodec.Parse(*q.from, datecodec.StartOfDay)
		if err != nil {
			return nil, nil, translate(oaierrors.ErrBadArgument("invalid from date"))
		}
		until, untilGran, err := datecodec.Parse(*q.until, datecodec.EndOfDay)
		if err != nil {
			return nil, nil, translate(oaierrors.ErrBadArgument("invalid until date"))
		}
		if fromGran != untilGran {
			return nil, nil, translate(oaierrors.ErrBadArgument("from and until must share a granularity"))
		}
		if from.After(until) {
			return nil, nil, translate(oaierrors.ErrBadArgument("from must not be after until"))
		}
		fromDate, untilDate = &from, &until
	} else if q.from != nil {
		from, _, err := datecodec.Parse(*q.from, datecodec.StartOfDay)
		if err != nil {
			return nil, nil, translate(oaierrors.ErrBadArgument("invalid from date"))
		}
		fromDate = &from
	} else if q.until != nil {
		until, _, err := datecodec.Parse(*q.until, datecodec.EndOfDay)
		if err != nil {
			return nil, nil, translate(oaierrors.ErrBadArgument("invalid until date"))
		}
		untilDate = &until
	}

	if q.set != nil {
		setCount, err := s.SetCount(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: getRecords: %w", err)
		}
		if setCount == 0 {
			return nil, nil, translate(oaierrors.ErrNoSetHierarchy())
		}
	}

	ignoreDeleted := e.cfg.Repository.DeletedRecords.IgnoreDeleted()
	pageLimit := e.cfg.Repository.ItemListLimit
	if pageLimit <= 0 {
		pageLimit = 100
	}

	records, err := s.RecordList(ctx, store.RecordListParams{
		Prefix:        &q.metadataPrefix,
		FromDate:      fromDate,
		UntilDate:     untilDate,
		Set:           q.set,
		IgnoreDeleted: ignoreDeleted,
		Offset:        q.offset,
		Limit:         pageLimit + 1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("engine: getRecords: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, translate(oaierrors.ErrNoRecordsMatch())
	}

	var nextOffset *string
	if len(records) == pageLimit+1 {
		next := records[len(records)-1].Identifier
		nextOffset = &next
		records = records[:len(records)-1]
	}

	return records, nextOffset, nil
}

// mintToken signs a fresh resumption token for the given query and
// next-page offset, stamped with the current time as its issuance
// date (spec §4.4).
func (e *Engine) mintToken(verb string, q listQuery, offset string) (string, error) {
	return e.tokens.Mint(verb, q.metadataPrefix, offset, datecodec.Now(), q.from, q.until, q.set)
}
