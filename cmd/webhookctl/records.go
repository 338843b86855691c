package main

import (
	"fmt"
	"time"

	"github.com/marcelsud/scalable-webhook/config"
	"github.com/marcelsud/scalable-webhook/internal/bootstrap"
	"github.com/spf13/cobra"
)

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Read persisted webhook records",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <message-id>",
		Short: "Show the record persisted for a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			sink, err := bootstrap.OpenSink(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer sink.Close(cmd.Context())

			rec, err := sink.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Message ID:  %s\n", rec.MessageID)
			fmt.Fprintf(w, "Event type:  %s\n", rec.EventType)
			fmt.Fprintf(w, "Checksum:    %s\n", rec.Checksum)
			fmt.Fprintf(w, "Received at: %s\n", rec.ReceivedAt.Format(time.RFC3339Nano))
			fmt.Fprintf(w, "Payload:\n%s\n", rec.Payload)
			return nil
		},
	})
	return cmd
}
