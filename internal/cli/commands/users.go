package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewUsersCmd creates the users command group (admin only)
func NewUsersCmd(opts ...Option) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage registered users (admin)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all registered users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newOptions(opts).run(cmd, runUsersList)
		},
	})

	return cmd
}

func runUsersList(ctx context.Context, c *client) error {
	admin, err := c.requireAdmin()
	if err != nil {
		return err
	}

	users, err := c.svc.Users.List(ctx, admin.ID)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		fmt.Fprintln(c.out, "No users found.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
	fmt.Fprintln(w, "──\t────\t─────\t────")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, fullName(u.Name, u.Surname), u.Email, u.Role)
	}
	return w.Flush()
}

// NewProfileCmd creates the profile command
func NewProfileCmd(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newOptions(opts).run(cmd, runProfile)
		},
	}
}

func runProfile(ctx context.Context, c *client) error {
	if _, err := c.requireLogin(); err != nil {
		return err
	}

	user, err := c.svc.Users.Profile(ctx)
	if err != nil {
		return err
	}

	role := user.Role
	if role == "" {
		role = "user"
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", fullName(user.Name, user.Surname))
	fmt.Fprintf(w, "Email:\t%s\n", user.Email)
	fmt.Fprintf(w, "Role:\t%s\n", role)
	if user.Course != "" {
		fmt.Fprintf(w, "Course:\t%s\n", user.Course)
	}
	fmt.Fprintf(w, "Active:\t%s\n", yesNo(user.Active))
	fmt.Fprintf(w, "Notifications:\t%s\n", yesNo(user.AccepNotifications))
	return w.Flush()
}

func fullName(name, surname string) string {
	if surname == "" {
		return name
	}
	return name + " " + surname
}
