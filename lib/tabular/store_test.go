package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func scanAll(t *testing.T, store Store, table Table) [][]string {
	var rows [][]string
	err := store.Scan(table, func(row Row) error {
		rows = append(rows, row.Fields)
		return nil
	})
	require.NoError(t, err)
	return rows
}

func TestRoundTrip(t *testing.T) {
	store := newTestStore(t)

	written := [][]string{
		{"1", "Juan", "Perez", "2021-11-21 10:00:00", "2021-11-21 10:00:00"},
		{"2", "María José", "Soto", "2021-11-21 10:00:00", "2021-11-21 10:00:00"},
		{"3", "Unknown", "", "2021-11-21 10:00:00", "2021-11-21 10:00:00"},
	}

	w, err := store.OpenAppend(People)
	require.NoError(t, err)
	for _, fields := range written {
		require.NoError(t, w.Write(fields))
	}
	require.NoError(t, w.Close())

	rows := scanAll(t, store, People)
	diff := cmp.Diff(written, rows)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestAppendWritesHeaderOnlyOnce(t *testing.T) {
	store := newTestStore(t)

	w, err := store.OpenAppend(PoliticalParties)
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"1", "UDI - Union", "UDI", "x", "x"}))
	require.NoError(t, w.Close())

	// reopening must position after existing rows without rewriting the header
	w, err = store.OpenAppend(PoliticalParties)
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"2", "PPD", "", "x", "x"}))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(store.Path(PoliticalParties))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, strings.Join(PoliticalParties.Columns(), ","), lines[0])

	rows := scanAll(t, store, PoliticalParties)
	require.Len(t, rows, 2)
}

func TestWriteRejectsShortRows(t *testing.T) {
	store := newTestStore(t)

	w, err := store.OpenAppend(People)
	require.NoError(t, err)
	defer w.Close()

	err = w.Write([]string{"1", "Juan"})
	require.Error(t, err)
}

func TestScanAbsentTable(t *testing.T) {
	store := newTestStore(t)

	rows := scanAll(t, store, Elections)
	require.Empty(t, rows)

	count, err := store.Count(Elections)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestRewrite(t *testing.T) {
	store := newTestStore(t)

	w, err := store.OpenAppend(Elections)
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"1", "2", "10", "2021-11-21", "x", "x"}))
	require.NoError(t, w.Write([]string{"2", "2", "11", "2021-05-15", "x", "x"}))
	require.NoError(t, w.Write([]string{"3", "2", "12", "2021-11-21", "x", "x"}))
	require.NoError(t, w.Close())

	removed, err := store.Rewrite(Elections, func(row Row) bool {
		return row.Get("election_date") == "2021-11-21"
	})
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	rows := scanAll(t, store, Elections)
	require.Len(t, rows, 1)
	require.Equal(t, "2", rows[0][0])

	// the temp file must not survive the rename
	_, err = os.Stat(store.Path(Elections) + ".tmp")
	require.True(t, os.IsNotExist(err))

	// header must still be present
	raw, err := os.ReadFile(store.Path(Elections))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), strings.Join(Elections.Columns(), ",")))
}

func TestRewriteAbsentTable(t *testing.T) {
	store := newTestStore(t)

	removed, err := store.Rewrite(Candidacies, func(Row) bool { return true })
	require.NoError(t, err)
	require.Equal(t, 0, removed)

	_, err = os.Stat(filepath.Join(store.Dir(), Candidacies.Name()+".csv"))
	require.True(t, os.IsNotExist(err))
}

func TestByName(t *testing.T) {
	for _, table := range All() {
		got, err := ByName(table.Name())
		require.NoError(t, err)
		require.Equal(t, table, got)
	}
	_, err := ByName("wp_politeia_nonsense")
	require.Error(t, err)
}
