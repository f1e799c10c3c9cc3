package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Account commands",
	}

	cmd.AddCommand(newAuthRegisterCmd())
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthMeCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthRegisterCmd() *cobra.Command {
	var user, email, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"email":    email,
				"password": pass,
			}
			var result AuthResult

			if err := client.Post("/api/auth/register", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password, at least 6 characters (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username": user,
				"password": pass,
			}
			var result AuthResult

			if err := client.Post("/api/auth/login", req, &result); err != nil {
				return err
			}

			// Save token
			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAuthMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result User

			if err := client.Get("/api/auth/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Logged out")
			return nil
		},
	}
}
