// Package migrations holds the schema migrations for the persistent
// metadata store (spec §3, §4.1). Each migration file registers
// itself into Migrations via init(), the same self-registration
// pattern internal/provider's factories use.
package migrations

// Migration is one forward/backward schema step.
type Migration struct {
	Name string
	Up   func() error
	Down func() error
}

// Migrations is the ordered set of registered migrations, appended to
// by each migration file's init(). Order follows the Name's timestamp
// prefix, oldest first.
var Migrations []*Migration

// Up applies every registered migration in order, stopping at the
// first failure.
func Up() error {
	for _, m := range Migrations {
		if err := m.Up(); err != nil {
			return err
		}
	}
	return nil
}

// Down reverts every registered migration in reverse order, stopping
// at the first failure.
func Down() error {
	for i := len(Migrations) - 1; i >= 0; i-- {
		if err := Migrations[i].Down(); err != nil {
			return err
		}
	}
	return nil
}
