package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Score commands for the logged-in account",
	}

	cmd.AddCommand(newScoresListCmd())
	cmd.AddCommand(newScoresAddCmd())
	cmd.AddCommand(newScoresUpdateCmd())
	cmd.AddCommand(newScoresDeleteCmd())

	return cmd
}

func newScoresListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scores, highest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ScoreList

			if err := client.Get("/api/scores", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newScoresAddCmd() *cobra.Command {
	var name, score string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new score",
		RunE: func(cmd *cobra.Command, args []string) error {
			// The server coerces numeric strings
			req := map[string]string{
				"player_name": name,
				"score":       score,
			}
			var result Score

			if err := client.Post("/api/scores", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name (required)")
	cmd.Flags().StringVar(&score, "score", "", "Score value (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newScoresUpdateCmd() *cobra.Command {
	var name, score string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the name and value of a score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"player_name": name,
				"score":       score,
			}
			var result Score

			if err := client.Put("/api/scores/"+url.PathEscape(args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name (required)")
	cmd.Flags().StringVar(&score, "score", "", "Score value (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("score")

	return cmd
}

func newScoresDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Message

			if err := client.Delete("/api/scores/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
