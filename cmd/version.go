package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the contactkeeper version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("contactkeeper version %s\n", version)
		},
	}
}
