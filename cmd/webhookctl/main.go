package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcelsud/scalable-webhook/config"
	"github.com/spf13/cobra"
)

/* webhookctl - operator CLI for the dead letter store, policy files and persisted records
 * Usage: go run ./cmd/webhookctl dlq list
 * Reads the same environment (.env, PORT, REDIS_*, PG*) as the api and the worker
 */

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "webhookctl",
		Short:         "Operate the scalable webhook queue",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDLQCmd(), newPolicyCmd(), newRecordsCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}
	if cfg.QueueBackend == "memory" {
		return nil, fmt.Errorf("the memory queue lives inside the api process, use the /v1/dlq endpoints instead")
	}
	return cfg, nil
}
