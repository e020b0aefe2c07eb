// Package tabular implements the flat-file table layout the consolidation
// pipeline writes and downstream reporting reads: one CSV file per table,
// header row, fixed column order.
package tabular

import "fmt"

// Table identifies one of the eight persisted tables. The set is closed;
// every table's column order is fixed so readers may parse by position as
// well as by header name.
type Table int

const (
	Jurisdictions Table = iota
	Elections
	ElectionResults
	Candidacies
	PoliticalParties
	PartyMemberships
	OfficeTerms
	People
)

// All returns every table, in a stable order.
func All() []Table {
	return []Table{
		Jurisdictions,
		Elections,
		ElectionResults,
		Candidacies,
		PoliticalParties,
		PartyMemberships,
		OfficeTerms,
		People,
	}
}

var tableNames = map[Table]string{
	Jurisdictions:    "wp_politeia_jurisdictions",
	Elections:        "wp_politeia_elections",
	ElectionResults:  "wp_politeia_election_results",
	Candidacies:      "wp_politeia_candidacies",
	PoliticalParties: "wp_politeia_political_parties",
	PartyMemberships: "wp_politeia_party_memberships",
	OfficeTerms:      "wp_politeia_office_terms",
	People:           "wp_politeia_people",
}

var tableColumns = map[Table][]string{
	Jurisdictions:    {"id", "official_name", "common_name", "type", "parent_id", "external_code", "created_at", "updated_at"},
	Elections:        {"id", "office_id", "jurisdiction_id", "election_date", "created_at", "updated_at"},
	ElectionResults:  {"id", "election_id", "jurisdiction_id", "valid_votes", "blank_votes", "null_votes", "total_votes", "participation_rate", "created_at", "updated_at"},
	Candidacies:      {"id", "election_id", "person_id", "party_id", "votes", "vote_share", "elected", "created_at", "updated_at"},
	PoliticalParties: {"id", "official_name", "short_name", "created_at", "updated_at"},
	PartyMemberships: {"id", "person_id", "party_id", "started_on", "created_at", "updated_at"},
	OfficeTerms:      {"id", "person_id", "office_id", "jurisdiction_id", "started_on", "status", "created_at", "updated_at"},
	People:           {"id", "given_names", "paternal_surname", "created_at", "updated_at"},
}

var columnIndexes = func() map[Table]map[string]int {
	out := make(map[Table]map[string]int, len(tableColumns))
	for t, cols := range tableColumns {
		idx := make(map[string]int, len(cols))
		for i, c := range cols {
			idx[c] = i
		}
		out[t] = idx
	}
	return out
}()

func (t Table) Name() string {
	name, ok := tableNames[t]
	if !ok {
		panic(fmt.Sprintf("unknown table %d", int(t)))
	}
	return name
}

// Columns returns the table's column names in persisted order. The returned
// slice must not be mutated.
func (t Table) Columns() []string {
	return tableColumns[t]
}

// HasColumn reports whether the table schema carries the given column.
func (t Table) HasColumn(name string) bool {
	_, ok := columnIndexes[t][name]
	return ok
}

// ByName looks a table up by its persisted file/table name.
func ByName(name string) (Table, error) {
	for t, n := range tableNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown table %q", name)
}
