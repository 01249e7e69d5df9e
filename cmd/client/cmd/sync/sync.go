package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"initium/cmd/client/cmd/types"
	"initium/internal/app/client"
	"initium/internal/domain/collection"
	domainsync "initium/internal/domain/sync"
)

var (
	pushOnly   bool
	pullOnly   bool
	migrate    bool
	clearCloud bool
	syncStatus bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync [collection]",
	Short: "Synchronize local data with the server",
	Long: `Push then pull every synced collection. With a collection argument,
only that collection is exchanged.

Guest sessions never touch the network. A collection that fails is
reported and skipped; the rest of the batch still runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application not initialized")
		}

		if syncStatus {
			return showStatus(app)
		}

		if !app.Session().CanSync() {
			if app.Session().Guest() {
				return fmt.Errorf("guest mode is local only, create an account first: initium auth register")
			}
			return fmt.Errorf("authentication required, run: initium auth login")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		if migrate {
			return runMigrate(ctx, app)
		}

		if clearCloud {
			return runClear(ctx, app)
		}

		if len(args) == 1 {
			return runSingle(ctx, app, args[0])
		}

		if pushOnly || pullOnly {
			for _, name := range collection.Synced {
				if err := runSingle(ctx, app, name); err != nil {
					return err
				}
			}
			return nil
		}

		return runBatch(ctx, app)
	},
}

func runBatch(ctx context.Context, app *client.App) error {
	fmt.Println("Syncing...")
	start := time.Now()

	result, err := app.Syncer().SyncAll(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Println()
	for _, name := range collection.Synced {
		printStatus(name, result.Collections[name])
	}

	fmt.Println()
	if result.Success {
		color.Green("Sync completed in %v", time.Since(start).Round(time.Millisecond))
	} else {
		color.Yellow("Sync completed with errors in %v", time.Since(start).Round(time.Millisecond))
	}
	fmt.Printf("Pushed %d, pulled %d documents\n", result.Pushed, result.Pulled)
	return nil
}

func runSingle(ctx context.Context, app *client.App, name string) error {
	if !pullOnly {
		result, err := app.Syncer().PushCollection(ctx, name)
		if err != nil {
			return err
		}
		if result.Error != "" {
			color.Red("push %-10s %s", name, result.Error)
		} else {
			fmt.Printf("push %-10s %d documents\n", name, result.Synced)
		}
	}

	if !pushOnly {
		result, err := app.Syncer().PullCollection(ctx, name)
		if err != nil {
			return err
		}
		if result.Error != "" {
			color.Red("pull %-10s %s", name, result.Error)
		} else {
			fmt.Printf("pull %-10s %d documents\n", name, result.Synced)
		}
	}

	return nil
}

func runMigrate(ctx context.Context, app *client.App) error {
	fmt.Println("Uploading local dataset...")

	resp, err := app.Syncer().MigrateToCloud(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	for name, report := range resp.Collections {
		if report.Success {
			fmt.Printf("  %-10s %d documents\n", name, report.SyncedCount)
		} else {
			color.Red("  %-10s %s", name, report.Message)
		}
	}

	fmt.Println()
	color.Green("%s (%d documents)", resp.Message, resp.TotalSynced)
	return nil
}

func runClear(ctx context.Context, app *client.App) error {
	fmt.Print("This deletes your cloud data, local data is kept. Type 'yes' to confirm: ")
	var answer string
	_, _ = fmt.Scanln(&answer)
	if answer != "yes" {
		fmt.Println("Aborted.")
		return nil
	}

	resp, err := app.Syncer().ClearCloud(ctx)
	if err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	total := 0
	for name, count := range resp.DeletedCounts {
		fmt.Printf("  %-10s %d documents\n", name, count)
		total += count
	}
	color.Green("Deleted %d documents from the cloud", total)
	return nil
}

func showStatus(app *client.App) error {
	session := app.Session()

	fmt.Print("Session:    ")
	switch {
	case session.Guest():
		color.Yellow("guest (local only)")
	case session.Authenticated():
		color.Green("authenticated")
	default:
		color.Red("not logged in")
	}

	fmt.Print("Server:     ")
	if err := app.CheckConnection(); err != nil {
		color.Red("unreachable (%v)", err)
	} else {
		color.Green("reachable")
	}

	last := app.Syncer().LastSync()
	if last.IsZero() {
		fmt.Println("Last sync:  never")
	} else {
		fmt.Printf("Last sync:  %s\n", last.Format("2006-01-02 15:04:05"))
	}
	if app.Syncer().IsSyncing() {
		fmt.Println("A sync is currently running")
	}
	return nil
}

func printStatus(name string, status *domainsync.CollectionStatus) {
	if status == nil {
		return
	}
	if status.OK() {
		fmt.Printf("  %-10s pushed %d, pulled %d\n", name, status.Pushed, status.Pulled)
		return
	}
	if status.PushError != "" {
		color.Red("  %-10s push failed: %s", name, status.PushError)
	}
	if status.PullError != "" {
		color.Red("  %-10s pull failed: %s", name, status.PullError)
	}
}

func init() {
	SyncCmd.Flags().BoolVar(&pushOnly, "push", false, "push only, skip pulling")
	SyncCmd.Flags().BoolVar(&pullOnly, "pull", false, "pull only, skip pushing")
	SyncCmd.Flags().BoolVar(&migrate, "migrate", false, "upload the full local dataset")
	SyncCmd.Flags().BoolVar(&clearCloud, "clear", false, "delete cloud data, keep local data")
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "show sync status")
}
