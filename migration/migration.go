// Package migration chains per-version snapshot transforms so a save
// produced by an older build can still be loaded: each registered function
// migrates data from version N to N+1, and Migrate composes the functions
// registered between an old snapshot's version and the current one.
package migration

import (
	"fmt"

	"github.com/nova-forge/factorial-sim/serialize"
)

// Fn transforms serialized data from one format version to the next.
type Fn func(data []byte) ([]byte, error)

// Registry holds migration functions keyed by source version.
type Registry struct {
	steps map[uint32]Fn
}

// NewRegistry creates an empty migration registry.
func NewRegistry() *Registry {
	return &Registry{steps: make(map[uint32]Fn)}
}

// Register adds a migration step from fromVersion to fromVersion+1.
func (r *Registry) Register(fromVersion uint32, migrate Fn) {
	r.steps[fromVersion] = migrate
}

// CanMigrate reports whether a complete chain of registered steps connects
// from to to. from == to is always migratable (the identity case).
func (r *Registry) CanMigrate(from, to uint32) bool {
	if from >= to {
		return from == to
	}
	for v := from; v < to; v++ {
		if _, ok := r.steps[v]; !ok {
			return false
		}
	}
	return true
}

// StepCount reports the number of registered migration steps.
func (r *Registry) StepCount() int { return len(r.steps) }

// Migrate chains registered steps to transform data from version from to
// version to, returning data unchanged if from == to. Returns a
// *serialize.Error wrapping NoMigrationPath if any step in the chain is
// missing, or if from > to (migration only ever moves forward).
func (r *Registry) Migrate(data []byte, from, to uint32) ([]byte, error) {
	if from == to {
		return data, nil
	}
	if from > to {
		return nil, noPathError(from, to)
	}

	current := data
	for v := from; v < to; v++ {
		step, ok := r.steps[v]
		if !ok {
			return nil, noPathError(from, to)
		}
		migrated, err := step(current)
		if err != nil {
			return nil, fmt.Errorf("migration from version %d to %d failed: %w", v, v+1, err)
		}
		current = migrated
	}
	return current, nil
}

func noPathError(from, to uint32) error {
	return &serialize.Error{
		Kind: serialize.NoMigrationPath,
		Msg:  fmt.Sprintf("no migration path from version %d to version %d", from, to),
	}
}

// MigrateFrame migrates a snapshot's raw bytes up to serialize.CurrentVersion
// (peeking its declared version first) and parses the migrated result,
// composing this registry with the serialize package's frame parser — the
// intended collaboration: serialize.ParseFrame never migrates on its own,
// it only accepts frames already at CurrentVersion.
func (r *Registry) MigrateFrame(data []byte) (serialize.Frame, error) {
	header, err := serialize.PeekHeader(data)
	if err != nil {
		return serialize.Frame{}, err
	}
	migrated, err := r.Migrate(data, header.Version, serialize.CurrentVersion)
	if err != nil {
		return serialize.Frame{}, err
	}
	return serialize.ParseFrame(migrated)
}
