package consolidator

import (
	"testing"

	"politeia-backend/lib/tabular"
	"politeia-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestAllocatorEmptyTable(t *testing.T) {
	setup, cleanup := testutil.Setup(t, testutil.Params{Name: "services/consolidator"})
	defer cleanup()

	alloc := NewAllocator(setup.Store)
	id, err := alloc.NextID(tabular.People)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	id, err = alloc.NextID(tabular.People)
	require.NoError(t, err)
	require.Equal(t, int64(2), id)

	// tables allocate independently
	id, err = alloc.NextID(tabular.Elections)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
}

func TestAllocatorResumesAfterRestart(t *testing.T) {
	setup, cleanup := testutil.Setup(t, testutil.Params{Name: "services/consolidator"})
	defer cleanup()

	w, err := setup.Store.OpenAppend(tabular.People)
	require.NoError(t, err)
	for _, fields := range [][]string{
		{"1", "Juan", "Perez", "x", "x"},
		{"3", "Maria", "Soto", "x", "x"},
		{"2", "Pedro", "Rojas", "x", "x"},
	} {
		require.NoError(t, w.Write(fields))
	}
	require.NoError(t, w.Close())

	alloc := NewAllocator(setup.Store)
	id, err := alloc.NextID(tabular.People)
	require.NoError(t, err)
	require.Equal(t, int64(4), id)
}

func TestAllocatorPeekDoesNotConsume(t *testing.T) {
	setup, cleanup := testutil.Setup(t, testutil.Params{Name: "services/consolidator"})
	defer cleanup()

	alloc := NewAllocator(setup.Store)

	peeked, err := alloc.Peek(tabular.Candidacies)
	require.NoError(t, err)
	next, err := alloc.NextID(tabular.Candidacies)
	require.NoError(t, err)
	require.Equal(t, peeked, next)
}

func TestAllocatorCorruptIDIsFatal(t *testing.T) {
	setup, cleanup := testutil.Setup(t, testutil.Params{Name: "services/consolidator"})
	defer cleanup()

	w, err := setup.Store.OpenAppend(tabular.People)
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"1", "Juan", "Perez", "x", "x"}))
	require.NoError(t, w.Write([]string{"not-a-number", "Maria", "Soto", "x", "x"}))
	require.NoError(t, w.Close())

	alloc := NewAllocator(setup.Store)
	_, err = alloc.NextID(tabular.People)
	require.Error(t, err)
	require.Contains(t, err.Error(), "corrupt id")
}
