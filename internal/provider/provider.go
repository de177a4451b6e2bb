// Package provider defines the MetadataProvider contract the
// Reconciler harvests from (spec §4.6, §4.7) and a small registry of
// named provider constructors, replacing the reference
// implementation's dynamic `module:Class` import with an explicit,
// compile-time-checked factory table.
package provider

import (
	"context"
	"fmt"
	"time"
)

// FormatDef is one entry of a provider's format mapping: prefix to
// (namespace, schema).
type FormatDef struct {
	Prefix    string
	Namespace string
	Schema    string
}

// SetDef is one (spec, name) pair a provider reports an item as
// belonging to.
type SetDef struct {
	Spec string
	Name string
}

// MetadataProvider is the capability surface the Reconciler needs from
// an external data source (spec §4.6).
type MetadataProvider interface {
	// Formats returns the provider's complete, non-empty format
	// mapping.
	Formats(ctx context.Context) ([]FormatDef, error)

	// Identifiers returns every identifier the provider currently
	// knows about. May contain duplicates; the Reconciler dedupes.
	Identifiers(ctx context.Context) ([]string, error)

	// HasChanged reports whether identifier was modified at or after
	// since. Used to skip untouched items on incremental harvests.
	HasChanged(ctx context.Context, identifier string, since time.Time) (bool, error)

	// GetSets returns identifier's set memberships.
	GetSets(ctx context.Context, identifier string) ([]SetDef, error)

	// GetRecord returns the XML text for (identifier, prefix), or nil
	// if this format is not available for this item -- the Reconciler
	// turns a nil into a tombstone.
	GetRecord(ctx context.Context, identifier, prefix string) (*string, error)
}

// Factory builds a MetadataProvider from the whitespace-split argument
// list configured for the importer (spec §4.7).
type Factory func(args []string) (MetadataProvider, error)

var registry = map[string]Factory{}

// Register adds a named provider factory. Called from each provider
// implementation's init().
func Register(name string, factory Factory) {
	registry[name] = factory
}

// New builds the provider named by name, the importer's
// metadata_provider_class equivalent, with the given constructor args.
func New(name string, args []string) (MetadataProvider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("provider: unknown metadata provider %q", name)
	}
	return factory(args)
}
