// Package gnbupcmd implements the gnbup CLI's cobra command tree,
// mirroring caddy's cmd package: a root command built once by
// newRootCommand and extended with subcommands in their own files.
package gnbupcmd

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gnbup",
		Short: "Uplink upper-PHY core demonstration CLI",
		Long: `gnbup wires a small processor pool for the 5G NR uplink upper-PHY core
(PRACH detection, PUSCH decoding, PUCCH reception, SRS channel estimation)
and drives synthetic traffic through it end-to-end, logging every reception
result that the FAPI-facing notifier would otherwise receive.

This binary is a demonstration harness, not a deployable gNB component: the
channel kernels it wires (sequence generator, time-alignment estimator,
PUSCH/PUCCH/PRACH processors) are synthetic stand-ins under
internal/demokernels, not the hardware-accelerated DSP kernels a real
distribution would link in.`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCommand())
	root.AddCommand(newValidateCommand())
	return root
}

// Execute runs the gnbup command tree.
func Execute() error {
	return newRootCommand().Execute()
}
