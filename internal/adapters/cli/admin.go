package cli

import (
	"fmt"
	"os"

	"shellfish-ops/internal/core"

	"github.com/spf13/cobra"
)

func (c *cli) createAdminCommand() *cobra.Command {
	var in core.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a staff login",
		Long: `Create a user who can sign in to the staff API. The password is read from
--password or, when omitted, from the ADMIN_PASSWORD environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("ADMIN_PASSWORD")
			}
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			user, err := rt.App.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (id %d)\n", user.Role, user.Email, user.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&in.Name, "name", "Admin", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&in.Role, "role", core.RoleAdmin, "admin or staff")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
