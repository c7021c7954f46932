package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/fanzirfan/MyFinance/internal/models"
	"github.com/fanzirfan/MyFinance/internal/services/archive"
	"github.com/fanzirfan/MyFinance/internal/services/export"
)

func newExportCmd() *cobra.Command {
	var (
		format   string
		outDir   string
		from, to string
		encrypt  bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's CSV or PDF statement into the export archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := ownerID()
			if err != nil {
				return err
			}
			var render func(io.Writer, *export.Statement) error
			switch format {
			case "csv":
				render = export.WriteCSV
			case "pdf":
				render = export.WritePDF
			default:
				return fmt.Errorf("unknown format %q (csv or pdf)", format)
			}
			fromDate, toDate, err := parseRange(from, to)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.ExportDirectory
			}

			// Open the archive first so a wrong passphrase fails before
			// any query runs.
			a, err := openArchive(outDir, encrypt)
			if err != nil {
				return err
			}

			db, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			now := time.Now().In(cfg.Location())
			st, err := export.Load(cmd.Context(), db, uid, fromDate, toDate, now)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := render(&buf, st); err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}

			path, err := a.Write(export.FileName(models.DateOf(now), format), buf.Bytes())
			if err != nil {
				return err
			}
			status := "plain"
			if a.IsEncrypted() {
				status = "encrypted"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transactions to %s (%s)\n", len(st.Transactions), path, status)
			return nil
		},
	}

	addOwnerFlag(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "Export format: csv or pdf")
	cmd.Flags().StringVar(&outDir, "out", "", "Archive directory (defaults to MYFIN_EXPORT_DIR)")
	cmd.Flags().StringVar(&from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "Encrypt the archive with a passphrase if it is not already")
	return cmd
}

// openArchive opens dir, unlocking it when it is encrypted and encrypting
// it first when encrypt is set.
func openArchive(dir string, encrypt bool) (*archive.Archive, error) {
	a, err := archive.Open(dir)
	if err != nil {
		return nil, err
	}
	switch {
	case a.IsEncrypted():
		pass, err := readPassphrase("Archive passphrase: ", false)
		if err != nil {
			return nil, err
		}
		if err := a.Unlock(pass); err != nil {
			return nil, err
		}
	case encrypt:
		pass, err := readPassphrase("New archive passphrase: ", true)
		if err != nil {
			return nil, err
		}
		if err := a.EnableEncryption(pass); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func parseRange(from, to string) (*models.Date, *models.Date, error) {
	var fromDate, toDate *models.Date
	if from != "" {
		d, err := models.ParseDate(from)
		if err != nil {
			return nil, nil, err
		}
		fromDate = &d
	}
	if to != "" {
		d, err := models.ParseDate(to)
		if err != nil {
			return nil, nil, err
		}
		toDate = &d
	}
	if fromDate != nil && toDate != nil && toDate.Before(fromDate.Time) {
		return nil, nil, errors.New("--to is before --from")
	}
	return fromDate, toDate, nil
}
