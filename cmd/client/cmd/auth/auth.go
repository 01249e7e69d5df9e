package auth

import (
	"github.com/spf13/cobra"
)

// AuthCmd is the parent command for every account operation.
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your account",
	Long:  `Register, log in, switch to guest mode and inspect the current identity.`,
}
