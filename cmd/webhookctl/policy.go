package main

import (
	"fmt"

	"github.com/marcelsud/scalable-webhook/config"
	"github.com/marcelsud/scalable-webhook/policy"
	"github.com/marcelsud/scalable-webhook/webhook"
	"github.com/spf13/cobra"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Work with queue policy files",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [policy.yaml]",
		Short: "Validate a policy file and print the effective policy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := "policy.yaml"
			if len(args) > 0 {
				file = args[0]
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Validating policy file: %s\n\n", file)

			// DLQ_NAME fills in a missing dead_letter_target, as it does at startup
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			p, err := policy.Load(file, webhook.DefaultPolicy(cfg.DLQName))
			if err != nil {
				return fmt.Errorf("VALIDATION FAILED: %w", err)
			}
			fmt.Fprintf(w, "✓ VALIDATION PASSED\n\n")
			fmt.Fprintf(w, "   Visibility timeout: %s\n", p.VisibilityTimeout)
			fmt.Fprintf(w, "   Max receive count:  %d\n", p.MaxReceiveCount)
			fmt.Fprintf(w, "   Dead letter target: %s\n", p.DeadLetterTarget)
			return nil
		},
	})
	return cmd
}
