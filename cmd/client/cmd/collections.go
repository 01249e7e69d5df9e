package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"initium/cmd/client/cmd/types"
	"initium/internal/app/client"
	"initium/internal/domain/collection"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Show the local collections and their document counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application not initialized")
		}

		bold := color.New(color.Bold)
		bold.Printf("%-15s %8s  %s\n", "COLLECTION", "COUNT", "SYNC")

		for _, name := range collection.All {
			count, err := app.Store().Count(cmd.Context(), name)
			if err != nil {
				return fmt.Errorf("failed to count %s: %w", name, err)
			}

			mode := "local"
			if collection.IsSynced(name) {
				mode = "synced"
			}
			fmt.Printf("%-15s %8d  %s\n", name, count, mode)
		}

		return nil
	},
}
