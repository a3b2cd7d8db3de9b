package cli

import (
	"github.com/spf13/cobra"
)

func newModuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Learning module commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List modules with lock and completion state",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			var result []ModuleStatus
			if err := client.Get(userPath(id, "modules"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "start <module-id>",
		Short: "Start and complete an unlocked module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			var result StartModuleResult
			if err := client.Post(userPath(id, "modules", args[0], "start"), nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	})

	return cmd
}
