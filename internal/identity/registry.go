// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identity

import (
	"cmp"
	"slices"
	"sync"

	"github.com/pdiddy/governance-engine/pkg/types"
)

// Source is one record that produced an identifier.
type Source struct {
	Identifier  string `json:"identifier" yaml:"identifier"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`

	// RunID is empty for the current run and set for sources seeded from
	// earlier runs.
	RunID  string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Row    int    `json:"row" yaml:"row"`
	Khasra string `json:"khasra" yaml:"khasra"`
	Owner  string `json:"owner" yaml:"owner"`
}

// SourceFor describes rec as a source of id in the current run.
func SourceFor(id string, rec types.LandRecord) Source {
	return Source{
		Identifier:  id,
		Fingerprint: Fingerprint(rec),
		Row:         rec.Row,
		Khasra:      rec.Parcel.Khasra,
		Owner:       rec.OwnerName,
	}
}

// Registry records every source of every identifier. Lookups do not take
// a lock; inserts are serialized and publish a new slice, so a reader
// never sees a partially written entry. Sources are never overwritten or
// merged.
type Registry struct {
	mu      sync.Mutex
	entries sync.Map // identifier -> []Source
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds src under its identifier. Registering the same source
// twice is a no-op.
func (r *Registry) Register(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.load(src.Identifier)
	if slices.Contains(cur, src) {
		return
	}
	next := make([]Source, len(cur), len(cur)+1)
	copy(next, cur)
	r.entries.Store(src.Identifier, append(next, src))
}

// Seed registers sources persisted by earlier runs.
func (r *Registry) Seed(sources []Source) {
	for _, s := range sources {
		r.Register(s)
	}
}

// Collisions returns the sources of id whose fingerprint differs from
// fingerprint, ordered by run then row so the report does not depend on
// registration order. Sources with the same fingerprint are
// re-registrations of the same occupant and are not collisions.
func (r *Registry) Collisions(id, fingerprint string) []types.CollisionRef {
	var out []types.CollisionRef
	for _, s := range r.load(id) {
		if s.Fingerprint == fingerprint {
			continue
		}
		out = append(out, types.CollisionRef{RunID: s.RunID, Row: s.Row, Khasra: s.Khasra, Owner: s.Owner})
	}
	slices.SortFunc(out, func(a, b types.CollisionRef) int {
		return cmp.Or(cmp.Compare(a.RunID, b.RunID), cmp.Compare(a.Row, b.Row), cmp.Compare(a.Khasra, b.Khasra))
	})
	return out
}

// Sources returns every source of id.
func (r *Registry) Sources(id string) []Source {
	return slices.Clone(r.load(id))
}

// Len returns the number of distinct identifiers.
func (r *Registry) Len() int {
	n := 0
	r.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (r *Registry) load(id string) []Source {
	v, ok := r.entries.Load(id)
	if !ok {
		return nil
	}
	return v.([]Source)
}
