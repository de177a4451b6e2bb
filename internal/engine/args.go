package engine

import (
	"sort"
	"strings"

	"github.com/turahe/kuha-go/internal/oaierrors"
)

// verbParams describes, per verb, which parameters are legal and
// which are required (spec §4.5 per-verb contracts). "resumptionToken"
// for ListIdentifiers/ListRecords is handled separately by
// checkListParams since its legality depends on which other params
// are present (initial vs continuation request).
var verbParams = map[string]struct {
	allowed  map[string]bool
	required map[string]bool
}{
	"Identify": {
		allowed:  map[string]bool{},
		required: map[string]bool{},
	},
	"ListMetadataFormats": {
		allowed:  map[string]bool{"identifier": true},
		required: map[string]bool{},
	},
	"ListSets": {
		allowed:  map[string]bool{"resumptionToken": true},
		required: map[string]bool{},
	},
	"GetRecord": {
		allowed:  map[string]bool{"identifier": true, "metadataPrefix": true},
		required: map[string]bool{"identifier": true, "metadataPrefix": true},
	},
	"ListIdentifiers": {
		allowed:  map[string]bool{"metadataPrefix": true, "from": true, "until": true, "set": true, "resumptionToken": true},
		required: map[string]bool{},
	},
	"ListRecords": {
		allowed:  map[string]bool{"metadataPrefix": true, "from": true, "until": true, "set": true, "resumptionToken": true},
		required: map[string]bool{},
	},
}

// checkVerb validates the `verb` parameter alone: missing, repeated,
// or unrecognized all surface as BadVerb variants (spec §4.5).
func checkVerb(req Request) (string, oaierrors.Error) {
	values := req.Params["verb"]
	switch len(values) {
	case 0:
		return "", oaierrors.ErrMissingVerb()
	case 1:
		if _, ok := verbParams[values[0]]; !ok {
			return "", oaierrors.ErrInvalidVerb()
		}
		return values[0], nil
	default:
		return "", oaierrors.ErrRepeatedVerb()
	}
}

// checkParams validates every non-verb parameter against verb's
// allowed/required sets: no repetition, no unknown parameters, every
// required parameter present.
func checkParams(verb string, req Request) oaierrors.Error {
	spec := verbParams[verb]

	for name, values := range req.Params {
		if name == "verb" {
			continue
		}
		if len(values) > 1 {
			return oaierrors.ErrBadArgument("parameter " + name + " must not be repeated")
		}
		if !spec.allowed[name] {
			return oaierrors.ErrBadArgument("illegal parameter: " + name)
		}
	}

	var missing []string
	for name := range spec.required {
		if _, ok := req.Param(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return oaierrors.ErrBadArgument("missing required parameter(s): " + strings.Join(missing, ", "))
	}

	return nil
}
