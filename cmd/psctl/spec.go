package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pitabwire/pscale/client"
)

func (a *app) specCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Check the client against an OpenAPI document",
	}
	cmd.AddCommand(&cobra.Command{
		Use:         "verify <openapi-file>",
		Short:       "Verify every client endpoint exists in an OpenAPI document",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{offlineAnnotation: "true"},
		RunE: func(_ *cobra.Command, args []string) error {
			report, err := client.VerifyFile(args[0])
			if err != nil {
				return usageError{err}
			}
			a.metrics.SetOperationsVerified(len(report.Matched), len(report.Mismatches))
			a.logger.Info("openapi document verified",
				zap.String("file", args[0]),
				zap.Int("matched", len(report.Matched)),
				zap.Int("mismatched", len(report.Mismatches)),
			)

			if a.jsonOutput {
				if err := writeJSON(a.stdout, report); err != nil {
					return err
				}
			} else {
				for _, m := range report.Mismatches {
					fmt.Fprintf(a.stdout, "MISMATCH  %s: %s\n", m.Operation, m.Reason)
				}
				fmt.Fprintf(a.stdout, "%d of %d operations match %s\n",
					len(report.Matched), len(report.Matched)+len(report.Mismatches), args[0])
			}
			if !report.OK() {
				return fmt.Errorf("%d operations do not match the document", len(report.Mismatches))
			}
			return nil
		},
	})
	return cmd
}
