package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fanzirfan/MyFinance/internal/money"
	"github.com/fanzirfan/MyFinance/internal/services/ledger"
)

func newReconcileCmd() *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stored wallet balances with their transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := ownerID()
			if err != nil {
				return err
			}
			db, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			drifts, err := ledger.New(db, time.UTC).Reconcile(cmd.Context(), uid, fix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(drifts) == 0 {
				fmt.Fprintln(out, "All wallet balances match their transactions")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WALLET\tSTORED\tEXPECTED\tDRIFT\tFIXED")
			for _, d := range drifts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", d.Name,
					money.FormatIDR(d.Stored), money.FormatIDR(d.Expected), money.FormatIDR(d.Drift), d.Fixed)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if !fix {
				fmt.Fprintln(out, "\nRun again with --fix to rewrite the stored balances")
			}
			return nil
		},
	}
	addOwnerFlag(cmd)
	cmd.Flags().BoolVar(&fix, "fix", false, "Rewrite drifted balances")
	return cmd
}
