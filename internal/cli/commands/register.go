package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gametu-dev/gametu/internal/services"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(opts ...Option) *cobra.Command {
	var in services.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new GameTu account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := newOptions(opts)
			return o.run(cmd, func(ctx context.Context, c *client) error {
				user, err := c.svc.Auth.Register(ctx, in)
				if err != nil {
					return err
				}

				fmt.Fprintf(c.out, "✓ Account created for %s (id %d)\n", user.Email, user.ID)
				fmt.Fprintln(c.out, "\nSign in with: gametu login --email", user.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "First name")
	cmd.Flags().StringVar(&in.Surname, "surname", "", "Surname")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password")
	cmd.Flags().StringVar(&in.Course, "course", "", "Course")
	cmd.Flags().BoolVar(&in.AccepNotifications, "notifications", false, "Accept e-mail notifications")

	return cmd
}
