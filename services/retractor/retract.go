// Package retractor removes previously consolidated rows by logical
// predicate, cascading through dependent tables. It operates directly on
// the table store, independent of the ingestion pipeline.
package retractor

import (
	"context"
	"fmt"
	"log/slog"

	"politeia-backend/lib/tabular"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("services/retractor")

type Engine struct {
	store tabular.Store
}

func New(store tabular.Store) Engine {
	return Engine{store: store}
}

// ElectionResult reports how many rows each table lost in an election
// cascade.
type ElectionResult struct {
	Elections       int
	ElectionResults int
	Candidacies     int
}

// RetractElections removes every election held on the given date, then
// cascades: election results and candidacies referencing a removed election
// id go too. Jurisdictions, parties and people are never removed: they may
// still be referenced by rows outside the retracted date.
func (e Engine) RetractElections(ctx context.Context, electionDate string) (ElectionResult, error) {
	ctx, span := tracer.Start(ctx, "RetractElections")
	span.SetAttributes(attribute.String("election_date", electionDate))
	defer span.End()

	var out ElectionResult

	removedIDs := map[string]bool{}
	removed, err := e.store.Rewrite(tabular.Elections, func(row tabular.Row) bool {
		if row.Get("election_date") != electionDate {
			return false
		}
		removedIDs[row.Get("id")] = true
		return true
	})
	if err != nil {
		return out, err
	}
	out.Elections = removed
	slog.InfoContext(ctx, "retracted elections", "date", electionDate, "count", removed)

	if len(removedIDs) == 0 {
		return out, nil
	}

	out.ElectionResults, err = e.retractByElectionID(ctx, tabular.ElectionResults, removedIDs)
	if err != nil {
		return out, err
	}
	out.Candidacies, err = e.retractByElectionID(ctx, tabular.Candidacies, removedIDs)
	if err != nil {
		return out, err
	}
	return out, nil
}

func (e Engine) retractByElectionID(ctx context.Context, t tabular.Table, electionIDs map[string]bool) (int, error) {
	removed, err := e.store.Rewrite(t, func(row tabular.Row) bool {
		return electionIDs[row.Get("election_id")]
	})
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "retracted dependent rows", "table", t.Name(), "count", removed)
	return removed, nil
}

// RetractByDate removes every row of the table whose date column equals the
// given value. Used for the leaf tables (party memberships by election date,
// office terms by term start date) which nothing else references.
func (e Engine) RetractByDate(ctx context.Context, t tabular.Table, column, date string) (int, error) {
	ctx, span := tracer.Start(ctx, "RetractByDate")
	span.SetAttributes(
		attribute.String("table", t.Name()),
		attribute.String("column", column),
		attribute.String("date", date),
	)
	defer span.End()

	if !t.HasColumn(column) {
		return 0, fmt.Errorf("%s has no column %q", t.Name(), column)
	}

	removed, err := e.store.Rewrite(t, func(row tabular.Row) bool {
		return row.Get(column) == date
	})
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "retracted rows by date", "table", t.Name(), "column", column, "count", removed)
	return removed, nil
}
