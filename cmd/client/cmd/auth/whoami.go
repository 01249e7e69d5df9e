package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"initium/cmd/client/cmd/types"
	"initium/internal/app/client"
)

var WhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current identity",
	Long: `Print the identity behind the stored session. Stored credentials are
confirmed against the server; a session that was previously in guest
mode falls back to guest when the server rejects them.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("application not initialized")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		identity, err := app.LoadUser(ctx)
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		if app.Session().Guest() {
			bold.Println(identity.Username)
			fmt.Println("Mode:  guest (local only)")
			return nil
		}

		bold.Println(identity.Username)
		fmt.Printf("Email: %s\n", identity.Email)
		fmt.Printf("Level: %d (%d XP, %d to next level)\n",
			identity.Level, identity.XP, identity.XPToNextLevel)
		if !identity.CreatedAt.IsZero() {
			fmt.Printf("Since: %s\n", identity.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}
