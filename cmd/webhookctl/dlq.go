package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/marcelsud/scalable-webhook/internal/bootstrap"
	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/spf13/cobra"
)

func newDLQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect and replay dead-lettered messages",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List dead-lettered messages, oldest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDeadLetters(cmd.Context(), func(store webhook.DeadLetterStore) error {
					letters, err := store.List(cmd.Context())
					if err != nil {
						return err
					}
					return printDeadLetters(cmd.OutOrStdout(), letters)
				})
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one dead-lettered message with its body",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDeadLetters(cmd.Context(), func(store webhook.DeadLetterStore) error {
					dl, err := store.Get(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					w := cmd.OutOrStdout()
					fmt.Fprintf(w, "ID:               %s\n", dl.ID)
					fmt.Fprintf(w, "Source queue:     %s\n", dl.SourceQueue)
					fmt.Fprintf(w, "Receive count:    %d\n", dl.ReceiveCount)
					fmt.Fprintf(w, "Received at:      %s\n", dl.ReceivedAt.Format(time.RFC3339))
					fmt.Fprintf(w, "Dead-lettered at: %s\n", dl.DeadLetteredAt.Format(time.RFC3339))
					fmt.Fprintf(w, "Body:\n%s\n", dl.Body)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "redeliver <id>...",
			Short: "Move messages back to their source queue with a receive count of zero",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDeadLetters(cmd.Context(), func(store webhook.DeadLetterStore) error {
					for _, id := range args {
						if err := store.Redeliver(cmd.Context(), id); err != nil {
							return err
						}
						fmt.Fprintf(cmd.OutOrStdout(), "✓ redelivered %s\n", id)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete <id>...",
			Short: "Permanently discard dead-lettered messages",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDeadLetters(cmd.Context(), func(store webhook.DeadLetterStore) error {
					for _, id := range args {
						if err := store.Delete(cmd.Context(), id); err != nil {
							return err
						}
						fmt.Fprintf(cmd.OutOrStdout(), "✓ deleted %s\n", id)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

func withDeadLetters(ctx context.Context, fn func(webhook.DeadLetterStore) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	policy, err := cfg.ResolvePolicy()
	if err != nil {
		return err
	}
	queue, err := bootstrap.OpenQueue(cfg, policy)
	if err != nil {
		return err
	}
	defer queue.Close(ctx)
	return fn(queue.DeadLetters)
}

func printDeadLetters(out io.Writer, letters []webhook.DeadLetter) error {
	if len(letters) == 0 {
		fmt.Fprintln(out, "dead letter store is empty")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tRECEIVES\tDEAD-LETTERED AT\tBYTES")
	for _, dl := range letters {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\n",
			dl.ID, dl.SourceQueue, dl.ReceiveCount, dl.DeadLetteredAt.Format(time.RFC3339), len(dl.Body))
	}
	return w.Flush()
}
