// Command destinations queries the destination aggregation layer from the
// command line and prints JSON.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, &http.Client{}); err != nil {
		stop()
		os.Exit(1)
	}
}
