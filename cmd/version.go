package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("inboxtriage version %s\n", version)
		},
	}
}
