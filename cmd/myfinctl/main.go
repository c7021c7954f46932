// Command myfinctl administers a MyFinance deployment: schema, seeds,
// the Telegram webhook, exports and balance reconciliation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fanzirfan/MyFinance/internal/config"
	"github.com/fanzirfan/MyFinance/internal/store"
)

var (
	cfg      *config.Config
	owner    string
	database string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "myfinctl",
		Short:         "Administer a MyFinance deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			if database != "" {
				cfg.DatabaseURL = database
			}
		},
	}
	root.PersistentFlags().StringVar(&database, "database", "", "Database URL (overrides DATABASE_URL)")

	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newWebhookCmd(),
		newExportCmd(),
		newArchiveCmd(),
		newReconcileCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)
	return root
}

// openStore connects to the configured database and applies the schema.
func openStore(ctx context.Context) (*store.Store, error) {
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func addOwnerFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&owner, "owner", "", "User ID (UUID) to act on")
	cmd.MarkFlagRequired("owner")
}

func ownerID() (uuid.UUID, error) {
	id, err := uuid.Parse(owner)
	if err != nil {
		return uuid.Nil, errors.New("--owner must be a UUID")
	}
	return id, nil
}
