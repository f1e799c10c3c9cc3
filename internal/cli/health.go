package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server and storage health",
		Long:  "Check server and storage health. Exits non-zero when the server reports degraded storage.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result HealthResult

			err := client.Health(&result)
			if result.Status != "" {
				out := NewOutput(cfg.Output)
				out.Print(result)
			}
			return err
		},
	}
}
