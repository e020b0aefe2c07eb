package consolidator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"politeia-backend/lib/tabular"
	"politeia-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

var testConfig = Config{
	Office:        OfficePresident,
	ElectionDate:  "2021-11-21",
	TermStartDate: "2022-03-11",
}

func communeA() CommuneResult {
	return CommuneResult{
		Commune: "Commune A",
		Candidates: []Candidate{
			{Name: "Juan Perez", Party: "UDI - Union", Votes: 1000, Percentage: 55.0, Elected: true},
			{Name: "Maria Soto", Party: "PPD", Votes: 800, Percentage: 45.0, Elected: false},
		},
		Stats: BatchStats{
			ValidVotes:        1800,
			BlankVotes:        10,
			NullVotes:         5,
			TotalVotes:        1815,
			ParticipationRate: 47.3,
		},
	}
}

func countRows(t *testing.T, store tabular.Store, table tabular.Table) int {
	count, err := store.Count(table)
	require.NoError(t, err)
	return count
}

func TestIngestSingleCommune(t *testing.T) {
	setup, cleanup := testutil.Setup(t, testutil.Params{Name: "services/consolidator"})
	defer cleanup()

	pipeline, err := NewPipeline(setup.Store, testConfig)
	require.NoError(t, err)

	err = pipeline.IngestRegion(context.Background(), "Región X", []CommuneResult{communeA()})
	require.NoError(t, err)
	require.NoError(t, pipeline.Close())

	require.Equal(t, 2, countRows(t, setup.Store, tabular.Jurisdictions))
	require.Equal(t, 1, countRows(t, setup.Store, tabular.Elections))
	require.Equal(t, 1, countRows(t, setup.Store, tabular.ElectionResults))
	require.Equal(t, 2, countRows(t, setup.Store, tabular.People))
	require.Equal(t, 2, countRows(t, setup.Store, tabular.PoliticalParties))
	require.Equal(t, 2, countRows(t, setup.Store, tabular.Candidacies))
	require.Equal(t, 2, countRows(t, setup.Store, tabular.PartyMemberships))
	require.Equal(t, 1, countRows(t, setup.Store, tabular.OfficeTerms))

	// the election references the commune, not the region
	err = setup.Store.Scan(tabular.Elections, func(row tabular.Row) error {
		require.Equal(t, "2", row.Get("office_id"))
		require.Equal(t, "2", row.Get("jurisdiction_id"))
		require.Equal(t, "2021-11-21", row.Get("election_date"))
		return nil
	})
	require.NoError(t, err)

	var juanID string
	err = setup.Store.Scan(tabular.People, func(row tabular.Row) error {
		if row.Get("given_names") == "Juan" && row.Get("paternal_surname") == "Perez" {
			juanID = row.Get("id")
		}
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, juanID)

	elected := map[string]string{}
	err = setup.Store.Scan(tabular.Candidacies, func(row tabular.Row) error {
		elected[row.Get("person_id")] = row.Get("elected")
		require.Equal(t, "1", row.Get("election_id"))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "1", elected[juanID])

	// exactly one term, for the winner, at the configured start date
	err = setup.Store.Scan(tabular.OfficeTerms, func(row tabular.Row) error {
		require.Equal(t, juanID, row.Get("person_id"))
		require.Equal(t, "2022-03-11", row.Get("started_on"))
		require.Equal(t, TermStatusActive, row.Get("status"))
		return nil
	})
	require.NoError(t, err)

	// memberships start on the election date, for every candidacy
	err = setup.Store.Scan(tabular.PartyMemberships, func(row tabular.Row) error {
		require.Equal(t, "2021-11-21", row.Get("started_on"))
		return nil
	})
	require.NoError(t, err)

	report := pipeline.Report()
	require.Equal(t, 1, report.RegionsMerged)
	require.Equal(t, 0, report.RegionsSkipped)
	require.Equal(t, 2, report.Created[tabular.Jurisdictions])
	require.Equal(t, 1, report.Created[tabular.OfficeTerms])
}

func TestIngestSecondCommuneReusesEntities(t *testing.T) {
	setup, cleanup := testutil.Setup(t, testutil.Params{Name: "services/consolidator"})
	defer cleanup()

	pipeline, err := NewPipeline(setup.Store, testConfig)
	require.NoError(t, err)

	communeB := CommuneResult{
		Commune: "Commune B",
		Candidates: []Candidate{
			{Name: "Juan Perez", Party: "UDI - Union", Votes: 500, Percentage: 60.0, Elected: true},
		},
		Stats: BatchStats{ValidVotes: 833, TotalVotes: 840},
	}

	err = pipeline.IngestRegion(context.Background(), "Región X", []CommuneResult{communeA(), communeB})
	require.NoError(t, err)
	require.NoError(t, pipeline.Close())

	// one region + two communes; person and party rows are not duplicated
	require.Equal(t, 3, countRows(t, setup.Store, tabular.Jurisdictions))
	require.Equal(t, 2, countRows(t, setup.Store, tabular.People))
	require.Equal(t, 2, countRows(t, setup.Store, tabular.PoliticalParties))
	require.Equal(t, 2, countRows(t, setup.Store, tabular.Elections))
	require.Equal(t, 3, countRows(t, setup.Store, tabular.Candidacies))
}

func TestIngestAcrossRunsContinuesIDs(t *testing.T) {
	setup, cleanup := testutil.Setup(t, testutil.Params{Name: "services/consolidator"})
	defer cleanup()

	first, err := NewPipeline(setup.Store, testConfig)
	require.NoError(t, err)
	require.NoError(t, first.IngestRegion(context.Background(), "Región X", []CommuneResult{communeA()}))
	require.NoError(t, first.Close())

	second, err := NewPipeline(setup.Store, testConfig)
	require.NoError(t, err)
	require.NoError(t, second.IngestRegion(context.Background(), "Región X", []CommuneResult{{
		Commune: "Commune B",
		Candidates: []Candidate{
			{Name: "Juan Perez", Party: "UDI - Union", Votes: 300, Percentage: 52.0, Elected: false},
		},
	}}))
	require.NoError(t, second.Close())

	// entity tables dedupe across runs
	require.Equal(t, 2, countRows(t, setup.Store, tabular.People))
	require.Equal(t, 2, countRows(t, setup.Store, tabular.PoliticalParties))
	require.Equal(t, 3, countRows(t, setup.Store, tabular.Jurisdictions))

	// election ids keep ascending, no reuse
	var ids []string
	err = setup.Store.Scan(tabular.Elections, func(row tabular.Row) error {
		ids = append(ids, row.Get("id"))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, ids)
}

func TestIngestMissingStatsDefaultToZero(t *testing.T) {
	setup, cleanup := testutil.Setup(t, testutil.Params{Name: "services/consolidator"})
	defer cleanup()

	pipeline, err := NewPipeline(setup.Store, testConfig)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "region_x_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"commune": "Commune A", "candidates": [], "stats": {"valid_votes": 100}}]`), 0o644))

	skipped, err := pipeline.IngestRegionFile(context.Background(), "Región X", path)
	require.NoError(t, err)
	require.False(t, skipped)
	require.NoError(t, pipeline.Close())

	err = setup.Store.Scan(tabular.ElectionResults, func(row tabular.Row) error {
		require.Equal(t, "100", row.Get("valid_votes"))
		require.Equal(t, "0", row.Get("blank_votes"))
		require.Equal(t, "0", row.Get("null_votes"))
		require.Equal(t, "0", row.Get("total_votes"))
		require.Equal(t, "0", row.Get("participation_rate"))
		return nil
	})
	require.NoError(t, err)
}

func TestIngestMissingFileSkips(t *testing.T) {
	setup, cleanup := testutil.Setup(t, testutil.Params{Name: "services/consolidator"})
	defer cleanup()

	pipeline, err := NewPipeline(setup.Store, testConfig)
	require.NoError(t, err)
	defer pipeline.Close()

	skipped, err := pipeline.IngestRegionFile(context.Background(), "Región X", filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	require.True(t, skipped)
	require.Equal(t, 1, pipeline.Report().RegionsSkipped)
}

func TestIngestMalformedFileFails(t *testing.T) {
	setup, cleanup := testutil.Setup(t, testutil.Params{Name: "services/consolidator"})
	defer cleanup()

	pipeline, err := NewPipeline(setup.Store, testConfig)
	require.NoError(t, err)
	defer pipeline.Close()

	path := filepath.Join(t.TempDir(), "region_x_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"commune": not json`), 0o644))

	_, err = pipeline.IngestRegionFile(context.Background(), "Región X", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed batch")
}

func TestNewPipelineRejectsBadConfig(t *testing.T) {
	setup, cleanup := testutil.Setup(t, testutil.Params{Name: "services/consolidator"})
	defer cleanup()

	_, err := NewPipeline(setup.Store, Config{Office: Office(99), ElectionDate: "2021-11-21", TermStartDate: "2022-03-11"})
	require.Error(t, err)

	_, err = NewPipeline(setup.Store, Config{Office: OfficePresident})
	require.Error(t, err)
}
