package main

import (
	"context"
	"fmt"
	"os"

	"gtrends/cmd/gtrends/commands"
	"gtrends/lib/telemetry"
	"gtrends/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "gtrends")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}

	err = commands.ExecuteContext(ctx)
	shutdownErr := tel.Shutdown(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if shutdownErr != nil {
		serviceutil.Fatal("failed to shutdown telemetry", shutdownErr)
	}
}
