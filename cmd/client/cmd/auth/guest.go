package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"initium/cmd/client/cmd/types"
	"initium/internal/app/client"
)

var GuestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Use Initium without an account",
	Long: `Switch to guest mode.

Everything stays on this device. Create an account later and run
'initium auth login --migrate' to move your data to the cloud.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application not initialized")
		}

		if err := app.BeginGuest(); err != nil {
			return fmt.Errorf("failed to enter guest mode: %w", err)
		}

		fmt.Println("Guest mode enabled. Your data stays on this device.")
		return nil
	},
}
