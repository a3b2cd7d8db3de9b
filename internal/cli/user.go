package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User and wallet commands",
	}

	cmd.AddCommand(newUserConnectCmd())
	cmd.AddCommand(newUserGetCmd())
	cmd.AddCommand(newUserStatsCmd())
	cmd.AddCommand(newUserSessionCmd())
	cmd.AddCommand(newUserDisconnectCmd())
	cmd.AddCommand(newUserDeleteCmd())

	return cmd
}

func newUserConnectCmd() *cobra.Command {
	var wallet string

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect a wallet, creating the user on first use",
		RunE: func(cmd *cobra.Command, args []string) error {
			if wallet == "" {
				return fmt.Errorf("--wallet is required")
			}

			req := map[string]string{"wallet_address": wallet}
			var result ConnectResult

			if err := client.Post("/api/v1/users/connect", req, &result); err != nil {
				return err
			}

			// Remember the user for later commands
			if err := cfg.SaveUser(result.User.ID); err != nil {
				return fmt.Errorf("failed to save user: %w", err)
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&wallet, "wallet", "", "Wallet address (required)")
	_ = cmd.MarkFlagRequired("wallet")

	return cmd
}

func newUserGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			var result User
			if err := client.Get(userPath(id), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newUserStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show score, level and badge progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			var result Stats
			if err := client.Get(userPath(id, "stats"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newUserSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show wallet connection and last error",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			var result SessionState
			if err := client.Get(userPath(id, "session"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newUserDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Disconnect the wallet from the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			if err := client.Post(userPath(id, "disconnect"), nil, nil); err != nil {
				return err
			}

			output(cmd).PrintMessage("Wallet disconnected")
			return nil
		},
	}
}

func newUserDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			if err := client.Delete(userPath(id)); err != nil {
				return err
			}

			output(cmd).PrintMessage("User deleted")
			return nil
		},
	}
}
