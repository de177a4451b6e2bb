package reconciler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/turahe/kuha-go/internal/provider"
	"github.com/turahe/kuha-go/internal/store"
)

// updateSets rewrites identifier's set memberships from the provider's
// current view (spec §4.6 updateSets): existing links are cleared,
// then the provider's sets are created/linked in ancestors-first
// order so a descendant spec never references a not-yet-created
// parent.
//
// The source only sorts by colon-depth and trusts the provider to
// list every ancestor explicitly. When it doesn't, a descendant-only
// report would otherwise leave the hierarchy invariant (spec §3-5)
// violated, so missing ancestor specs are synthesized here with a
// spec-as-name placeholder before the provider's own entries are
// applied.
func (r *Reconciler) updateSets(ctx context.Context, p provider.MetadataProvider, identifier string, dryRun bool) error {
	defs, err := p.GetSets(ctx, identifier)
	if err != nil {
		return fmt.Errorf("fetching sets for %q: %w", identifier, err)
	}

	defs = withSynthesizedAncestors(defs)
	sort.Slice(defs, func(i, j int) bool {
		return strings.Count(defs[i].Spec, ":") < strings.Count(defs[j].Spec, ":")
	})

	s, err := store.BeginTx(ctx, r.pool, r.redisClient)
	if err != nil {
		return err
	}
	defer s.Rollback(ctx)

	if err := s.ItemSetsClear(ctx, identifier); err != nil {
		return fmt.Errorf("clearing sets for %q: %w", identifier, err)
	}

	for _, def := range defs {
		if _, err := s.SetCreateOrUpdate(ctx, def.Spec, def.Name); err != nil {
			return fmt.Errorf("upserting set %q: %w", def.Spec, err)
		}
		if err := s.ItemAddToSet(ctx, identifier, def.Spec); err != nil {
			return fmt.Errorf("linking %q to set %q: %w", identifier, def.Spec, err)
		}
	}

	if dryRun {
		return nil
	}
	return s.Commit(ctx)
}

// withSynthesizedAncestors adds a SetDef for every colon-prefix
// ancestor of a spec in defs that isn't already present, naming it
// after its own spec.
func withSynthesizedAncestors(defs []provider.SetDef) []provider.SetDef {
	present := make(map[string]bool, len(defs))
	for _, def := range defs {
		present[def.Spec] = true
	}

	out := append([]provider.SetDef(nil), defs...)
	for _, def := range defs {
		segments := strings.Split(def.Spec, ":")
		for i := 1; i < len(segments); i++ {
			ancestor := strings.Join(segments[:i], ":")
			if !present[ancestor] {
				present[ancestor] = true
				out = append(out, provider.SetDef{Spec: ancestor, Name: ancestor})
			}
		}
	}
	return out
}
