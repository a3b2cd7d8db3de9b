package cli

import (
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the module, badge and level tables",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "modules",
		Short: "List learning modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Module
			if err := client.Get("/api/v1/catalog/modules", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "badges",
		Short: "List badges",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Badge
			if err := client.Get("/api/v1/catalog/badges", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "levels",
		Short: "List levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Level
			if err := client.Get("/api/v1/catalog/levels", &result); err != nil {
				return err
			}
			output(cmd).Print(result)
			return nil
		},
	})

	return cmd
}
