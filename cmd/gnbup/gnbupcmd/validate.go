package gnbupcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/srsran/srsRAN-Project-sub026/config"
)

func newValidateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a gnbup configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "gnbup.yaml", "path to the YAML configuration file")
	return cmd
}
