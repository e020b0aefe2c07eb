package main

import (
	"context"

	"politeia-backend/cmd/politeia-cli/commands"
	"politeia-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)
	telemetry.SetupFromEnv(context.Background(), "politeia-cli")
	commands.ExecuteContext(context.Background())
}
