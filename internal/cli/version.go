package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the tos release version.
const Version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tos version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tos %s (%s)\n", Version, runtime.Version())
		},
	}
}
