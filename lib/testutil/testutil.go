package testutil

import (
	"fmt"
	"testing"

	"politeia-backend/lib/tabular"
	"politeia-backend/lib/telemetry"
)

type Params struct {
	Name string
	// if unspecified, the store lives in a fresh temp dir
	DataDir string
}

type Result struct {
	Store tabular.Store
}

// Setup prepares a test environment: logging/telemetry plus a table store
// in a throwaway directory.
func Setup(t testing.TB, params Params) (Result, func()) {
	cleanup := telemetry.SetupForTesting(fmt.Sprintf("test:%s", params.Name))

	dir := params.DataDir
	if dir == "" {
		dir = t.TempDir()
	}
	store, err := tabular.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	return Result{Store: store}, cleanup
}
