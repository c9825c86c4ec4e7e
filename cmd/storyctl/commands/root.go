// Package commands holds the storyctl command tree.
package commands

import (
	"github.com/spf13/cobra"
)

func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "storyctl",
		Short:        "Offline tools for storyboard stories",
		SilenceUsage: true,
	}

	root.AddCommand(tokenizeCmd(), exportCmd())
	return root
}
