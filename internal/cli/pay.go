package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newPayCmd() *cobra.Command {
	var (
		amount      string
		recipient   string
		description string
		metadata    map[string]string
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Send a token payment from the connected wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireUser()
			if err != nil {
				return err
			}
			if amount == "" || recipient == "" {
				return fmt.Errorf("--amount and --to are required")
			}

			req := map[string]any{
				"amount":      amount,
				"recipient":   recipient,
				"description": description,
				"metadata":    metadata,
			}
			var result PaymentOutcome

			err = client.Post(userPath(id, "payments"), req, &result)
			var reqErr *RequestError
			if errors.As(err, &reqErr) {
				// failed payments still carry an outcome, with the tx ref if one was submitted
				if json.Unmarshal(reqErr.Body, &result) == nil && result.State != "" {
					output(cmd).Print(result)
				}
			}
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Amount in token units, e.g. 0.99 (required)")
	cmd.Flags().StringVar(&recipient, "to", "", "Recipient address (required)")
	cmd.Flags().StringVar(&description, "description", "", "Payment description")
	cmd.Flags().StringToStringVar(&metadata, "meta", nil, "Metadata key=value pairs")

	cmd.AddCommand(newPayTestCmd())
	cmd.AddCommand(newPayStatusCmd())
	cmd.AddCommand(newPayListCmd())

	return cmd
}

func newPayTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Dry-run the payment flow without submitting",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			var result DryRunResult
			if err := client.Post(userPath(id, "payments", "test"), nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			if !result.Success {
				return errors.New(result.Message)
			}
			return nil
		},
	}
}

func newPayStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <tx-ref>",
		Short: "Show the network status of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			var result PaymentStatus
			if err := client.Get(userPath(id, "payments", args[0]), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newPayListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List successful payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			var result []Receipt
			if err := client.Get(userPath(id, "payments"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
