// Package entities holds the persistent data model described in spec
// §3: Format, Item, Record, Set, ItemSetLink and the singleton
// Datestamp. These are plain structs with no ORM tags -- the store
// package owns all persistence concerns.
package entities

import "time"

// Format is a named metadata serialization identified by a prefix.
type Format struct {
	Prefix    string
	Namespace string
	Schema    string
	Deleted   bool
}

// Item is the abstract resource identified by an OAI identifier.
type Item struct {
	Identifier string
	Deleted    bool
}

// Record is one metadata document for one Item in one Format.
// XML is nil if and only if Deleted is true (spec §3 invariant 2).
type Record struct {
	Identifier string
	Prefix     string
	Datestamp  time.Time
	XML        *string
	Deleted    bool
}

// Set is a named grouping of items. Spec forms a colon-separated
// hierarchy: "a:b:c" is a child of "a:b", which is a child of "a".
type Set struct {
	Spec string
	Name string
}

// ItemSetLink is the many-to-many join between Item and Set.
type ItemSetLink struct {
	ItemIdentifier string
	SetSpec        string
}
