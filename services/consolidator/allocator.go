package consolidator

import (
	"fmt"
	"strconv"

	"politeia-backend/lib/tabular"
)

// Allocator hands out per-table identifiers. The first request for a table
// scans its persisted rows and resumes at max(id)+1, so identifiers stay
// strictly increasing across runs and retracted ids are never reused.
//
// NextID is not idempotent: call it exactly once per row actually written,
// in insertion order, so ascending id keeps matching ascending insertion
// time for downstream readers.
type Allocator struct {
	store tabular.Store
	next  map[tabular.Table]int64
}

func NewAllocator(store tabular.Store) *Allocator {
	return &Allocator{
		store: store,
		next:  make(map[tabular.Table]int64),
	}
}

func (a *Allocator) NextID(t tabular.Table) (int64, error) {
	id, err := a.Peek(t)
	if err != nil {
		return 0, err
	}
	a.next[t] = id + 1
	return id, nil
}

// Peek returns the id the next NextID call would hand out, without
// consuming it.
func (a *Allocator) Peek(t tabular.Table) (int64, error) {
	if id, ok := a.next[t]; ok {
		return id, nil
	}
	max, err := a.scanMaxID(t)
	if err != nil {
		return 0, err
	}
	a.next[t] = max + 1
	return max + 1, nil
}

func (a *Allocator) scanMaxID(t tabular.Table) (int64, error) {
	var max int64
	err := a.store.Scan(t, func(row tabular.Row) error {
		raw := row.Get("id")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			// a corrupt identifier is a dataset integrity failure,
			// never something to skip over
			return fmt.Errorf("%s: corrupt id %q: %w", t.Name(), raw, err)
		}
		if id > max {
			max = id
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return max, nil
}
