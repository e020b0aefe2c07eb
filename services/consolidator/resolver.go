package consolidator

import (
	"fmt"
	"strconv"
	"time"

	"politeia-backend/lib/tabular"
)

// RowSink receives newly created rows. The pipeline's append writer set is
// the production implementation.
type RowSink interface {
	Append(t tabular.Table, fields []string) error
}

// Resolver deduplicates the three entity kinds that recur across batches:
// people, political parties and jurisdictions. Each kind has one cache,
// natural key -> id, rebuilt from a full table scan when the resolver is
// constructed; no state file outside the tables themselves is trusted.
// As long as a fresh resolver is built per run, each distinct natural key
// maps to at most one row for the lifetime of the dataset.
type Resolver struct {
	alloc *Allocator
	sink  RowSink

	people        map[string]int64
	parties       map[string]int64
	jurisdictions map[string]int64
}

func NewResolver(store tabular.Store, alloc *Allocator, sink RowSink) (*Resolver, error) {
	r := &Resolver{
		alloc:         alloc,
		sink:          sink,
		people:        make(map[string]int64),
		parties:       make(map[string]int64),
		jurisdictions: make(map[string]int64),
	}

	err := store.Scan(tabular.People, func(row tabular.Row) error {
		id, err := rowID(row)
		if err != nil {
			return err
		}
		key := PersonKey(row.Get("given_names"), row.Get("paternal_surname"))
		r.people[key] = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = store.Scan(tabular.PoliticalParties, func(row tabular.Row) error {
		id, err := rowID(row)
		if err != nil {
			return err
		}
		r.parties[row.Get("official_name")] = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = store.Scan(tabular.Jurisdictions, func(row tabular.Row) error {
		id, err := rowID(row)
		if err != nil {
			return err
		}
		r.jurisdictions[row.Get("official_name")] = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

func rowID(row tabular.Row) (int64, error) {
	raw := row.Get("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: corrupt id %q: %w", row.Table.Name(), raw, err)
	}
	return id, nil
}

// Person resolves a candidate's full name to a person id, creating the row
// on first sight. The name-split heuristic in SplitFullName derives the
// stored given/paternal fields; the cache key is the trimmed full name.
func (r *Resolver) Person(fullName string, now time.Time) (id int64, created bool, err error) {
	given, paternal := SplitFullName(fullName)
	key := PersonKey(given, paternal)
	if id, ok := r.people[key]; ok {
		return id, false, nil
	}

	id, err = r.alloc.NextID(tabular.People)
	if err != nil {
		return 0, false, err
	}
	stamp := Stamp(now)
	err = r.sink.Append(tabular.People, Person{
		ID:              id,
		GivenNames:      given,
		PaternalSurname: paternal,
		CreatedAt:       stamp,
		UpdatedAt:       stamp,
	}.Fields())
	if err != nil {
		return 0, false, err
	}
	r.people[key] = id
	return id, true, nil
}

// Party resolves a party label to a party id, creating the row (with the
// derived short name) on first sight.
func (r *Resolver) Party(officialName string, now time.Time) (id int64, created bool, err error) {
	if id, ok := r.parties[officialName]; ok {
		return id, false, nil
	}

	id, err = r.alloc.NextID(tabular.PoliticalParties)
	if err != nil {
		return 0, false, err
	}
	stamp := Stamp(now)
	err = r.sink.Append(tabular.PoliticalParties, Party{
		ID:           id,
		OfficialName: officialName,
		ShortName:    PartyShortName(officialName),
		CreatedAt:    stamp,
		UpdatedAt:    stamp,
	}.Fields())
	if err != nil {
		return 0, false, err
	}
	r.parties[officialName] = id
	return id, true, nil
}

// Jurisdiction resolves an official name to a jurisdiction id. The type and
// parent are only consulted when the row has to be created; the resolver
// cannot infer hierarchy on its own. Note the key is the official name
// alone: a region and a commune sharing a display name would collide on one
// row. The fixed region/commune roster makes that unlikely but the gap is
// real.
func (r *Resolver) Jurisdiction(officialName, typ string, parentID int64, now time.Time) (id int64, created bool, err error) {
	if id, ok := r.jurisdictions[officialName]; ok {
		return id, false, nil
	}

	id, err = r.alloc.NextID(tabular.Jurisdictions)
	if err != nil {
		return 0, false, err
	}
	stamp := Stamp(now)
	err = r.sink.Append(tabular.Jurisdictions, Jurisdiction{
		ID:           id,
		OfficialName: officialName,
		CommonName:   officialName,
		Type:         typ,
		ParentID:     parentID,
		CreatedAt:    stamp,
		UpdatedAt:    stamp,
	}.Fields())
	if err != nil {
		return 0, false, err
	}
	r.jurisdictions[officialName] = id
	return id, true, nil
}
