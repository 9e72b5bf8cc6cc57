package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with a fresh user id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.configPath)
			}

			cfg := a.cfg
			if cfg.UserID == "" || force {
				cfg.UserID = uuid.NewString()
			}
			if a.userID != "" {
				cfg.UserID = a.userID
			}
			if err := SaveConfig(a.configPath, cfg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config written to %s\n", a.configPath)
			fmt.Fprintf(out, "  user_id       = %s\n", cfg.UserID)
			fmt.Fprintf(out, "  database_path = %s\n", cfg.DatabasePath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}
