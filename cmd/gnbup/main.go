// Command gnbup demonstrates the upper-PHY uplink core end-to-end: it
// wires a numerology's worth of slot processors behind a processor pool,
// drives a few slots of synthetic PUSCH/PUCCH/SRS traffic through the
// admission -> symbol-dispatch -> notification pipeline, and logs every
// result, mirroring the way caddy's cmd/caddy/main.go is a thin wrapper
// around its cmd package's cobra root command.
package main

import (
	"fmt"
	"os"

	"github.com/srsran/srsRAN-Project-sub026/cmd/gnbup/gnbupcmd"
)

func main() {
	if err := gnbupcmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
