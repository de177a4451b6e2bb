// Package reconciler implements the importer's two-phase diff-and-apply
// against a provider.MetadataProvider (spec §4.6): formats and items
// are diffed and reconciled first, then records are rewritten per
// (identifier, prefix), committing after each unit of work so no
// single harvest holds a long-lived lock over the whole Store.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/turahe/kuha-go/internal/provider"
	"github.com/turahe/kuha-go/internal/store"
	"github.com/turahe/kuha-go/internal/storeerr"
)

// Reconciler owns the database handles the importer runs a harvest
// against. One Reconciler is built per importer invocation.
type Reconciler struct {
	pool        *pgxpool.Pool
	redisClient redis.Cmdable
	log         *zap.Logger
}

// New builds a Reconciler over pool. redisClient may be nil, in which
// case Store operations degrade to uncached reads.
func New(pool *pgxpool.Pool, redisClient redis.Cmdable, log *zap.Logger) *Reconciler {
	return &Reconciler{pool: pool, redisClient: redisClient, log: log}
}

// Run executes one harvest from p (spec §4.6 run). since is the
// timestamp of the last successful harvest, or nil for a full
// harvest. purge hard-removes soft-deleted rows at the end of the
// formats step and of the items step when true; the records step does
// not purge. dryRun runs every step's queries but rolls back instead of
// committing, so the Store is left bitwise unchanged.
func (r *Reconciler) Run(ctx context.Context, p provider.MetadataProvider, since *time.Time, purge, dryRun bool) error {
	prefixes, err := r.updateFormats(ctx, p, purge, dryRun)
	if err != nil {
		return storeerr.NewHarvestError("updateFormats", err)
	}
	r.log.Info("reconciler: formats updated", zap.Int("count", len(prefixes)))

	identifiers, err := r.updateItems(ctx, p, purge, dryRun)
	if err != nil {
		return storeerr.NewHarvestError("updateItems", err)
	}
	r.log.Info("reconciler: items updated", zap.Int("count", len(identifiers)))

	if err := r.updateRecords(ctx, p, identifiers, prefixes, since, dryRun); err != nil {
		return storeerr.NewHarvestError("updateRecords", err)
	}

	return nil
}

// updateFormats diffs the provider's format mapping against the Store:
// formats the provider no longer reports are marked deleted, every
// provider format is created or updated. Returns the provider's prefix
// set.
func (r *Reconciler) updateFormats(ctx context.Context, p provider.MetadataProvider, purge, dryRun bool) (map[string]bool, error) {
	defs, err := p.Formats(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching provider formats: %w", err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("provider reported zero formats")
	}

	s, err := store.BeginTx(ctx, r.pool, r.redisClient)
	if err != nil {
		return nil, err
	}
	defer s.Rollback(ctx)

	existing, err := s.FormatList(ctx, nil, true)
	if err != nil {
		return nil, err
	}

	providerPrefixes := make(map[string]bool, len(defs))
	for _, def := range defs {
		providerPrefixes[def.Prefix] = true
	}

	for _, format := range existing {
		if !providerPrefixes[format.Prefix] {
			if err := s.FormatMarkDeleted(ctx, format.Prefix); err != nil {
				return nil, fmt.Errorf("marking format %q deleted: %w", format.Prefix, err)
			}
		}
	}
	for _, def := range defs {
		if _, err := s.FormatCreateOrUpdate(ctx, def.Prefix, def.Namespace, def.Schema); err != nil {
			return nil, fmt.Errorf("upserting format %q: %w", def.Prefix, err)
		}
	}

	if purge && !dryRun {
		if _, err := s.PurgeDeleted(ctx); err != nil {
			return nil, fmt.Errorf("purging deleted rows: %w", err)
		}
	}

	if dryRun {
		return providerPrefixes, nil
	}
	if err := s.Commit(ctx); err != nil {
		return nil, err
	}
	return providerPrefixes, nil
}

// updateItems stringifies and deduplicates the provider's identifiers,
// diffs them against the Store, marks missing items deleted and
// upserts the rest. Returns the deduplicated identifier set.
func (r *Reconciler) updateItems(ctx context.Context, p provider.MetadataProvider, purge, dryRun bool) (map[string]bool, error) {
	rawIdentifiers, err := p.Identifiers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching provider identifiers: %w", err)
	}

	providerIdentifiers := make(map[string]bool, len(rawIdentifiers))
	for _, id := range rawIdentifiers {
		providerIdentifiers[id] = true
	}

	s, err := store.BeginTx(ctx, r.pool, r.redisClient)
	if err != nil {
		return nil, err
	}
	defer s.Rollback(ctx)

	items, err := s.ItemList(ctx, true)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if !providerIdentifiers[item.Identifier] {
			if err := s.ItemMarkDeleted(ctx, item.Identifier); err != nil {
				return nil, fmt.Errorf("marking item %q deleted: %w", item.Identifier, err)
			}
		}
	}
	for identifier := range providerIdentifiers {
		if _, err := s.ItemCreateOrUpdate(ctx, identifier); err != nil {
			return nil, fmt.Errorf("upserting item %q: %w", identifier, err)
		}
	}

	if purge && !dryRun {
		if _, err := s.PurgeDeleted(ctx); err != nil {
			return nil, fmt.Errorf("purging deleted rows: %w", err)
		}
	}

	if dryRun {
		return providerIdentifiers, nil
	}
	if err := s.Commit(ctx); err != nil {
		return nil, err
	}
	return providerIdentifiers, nil
}

// updateRecords walks every identifier, skipping ones the provider
// reports unchanged since the last harvest, refreshes the identifier's
// set memberships, then rewrites each (identifier, prefix) record. A
// failure on one (identifier, prefix) unit is logged and skipped; the
// harvest continues with the next one.
func (r *Reconciler) updateRecords(ctx context.Context, p provider.MetadataProvider, identifiers map[string]bool, prefixes map[string]bool, since *time.Time, dryRun bool) error {
	for identifier := range identifiers {
		if since != nil {
			changed, err := p.HasChanged(ctx, identifier, *since)
			if err != nil {
				r.log.Error("reconciler: checking hasChanged failed, processing anyway", zap.String("identifier", identifier), zap.Error(err))
			} else if !changed {
				continue
			}
		}

		if err := r.updateSets(ctx, p, identifier, dryRun); err != nil {
			r.log.Error("reconciler: updateSets failed, skipping identifier's records", zap.String("identifier", identifier), zap.Error(err))
			continue
		}

		for prefix := range prefixes {
			if err := r.updateRecord(ctx, p, identifier, prefix, dryRun); err != nil {
				r.log.Error("reconciler: record update failed", zap.String("identifier", identifier), zap.String("prefix", prefix), zap.Error(err))
			}
		}
	}
	return nil
}

// updateRecord commits exactly one (identifier, prefix) unit of work.
func (r *Reconciler) updateRecord(ctx context.Context, p provider.MetadataProvider, identifier, prefix string, dryRun bool) error {
	xml, err := p.GetRecord(ctx, identifier, prefix)
	if err != nil {
		return fmt.Errorf("fetching record (%s, %s): %w", identifier, prefix, err)
	}

	s, err := store.BeginTx(ctx, r.pool, r.redisClient)
	if err != nil {
		return err
	}
	defer s.Rollback(ctx)

	if xml == nil {
		if _, err := s.RecordMarkDeleted(ctx, &identifier, &prefix); err != nil {
			return fmt.Errorf("marking record (%s, %s) deleted: %w", identifier, prefix, err)
		}
	} else {
		if _, err := s.RecordCreateOrUpdate(ctx, identifier, prefix, *xml); err != nil {
			return fmt.Errorf("upserting record (%s, %s): %w", identifier, prefix, err)
		}
	}

	if dryRun {
		return nil
	}
	return s.Commit(ctx)
}
