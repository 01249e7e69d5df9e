package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"initium/cmd/client/cmd/types"
	"initium/internal/app/client"
)

var migrateLocal bool

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your Initium account",
	Long: `Authenticate against the Initium server.

The returned tokens are stored locally, so later commands run without
logging in again. With --migrate, the local dataset is uploaded to the
account right after login.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application not initialized")
		}

		fmt.Print("Email: ")
		var email string
		_, _ = fmt.Scanln(&email)

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Login(ctx, email, string(password)); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Println()
		fmt.Println("Logged in.")

		if migrateLocal {
			fmt.Println("Migrating local data to your account...")
			resp, err := app.Syncer().MigrateToCloud(ctx)
			if err != nil {
				fmt.Printf("Warning: migration failed: %v\n", err)
				fmt.Println("Your data is still on this device, retry with: initium sync --migrate")
				return nil
			}
			fmt.Printf("%s (%d documents)\n", resp.Message, resp.TotalSynced)
		}

		return nil
	},
}

func init() {
	LoginCmd.Flags().BoolVarP(&migrateLocal, "migrate", "m", false, "upload the local dataset after login")
}
