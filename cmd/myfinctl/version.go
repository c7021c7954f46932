package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fanzirfan/MyFinance/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			if warning := info.Check(); warning != "" {
				fmt.Fprintln(cmd.OutOrStderr(), warning)
			}
		},
	}
}
