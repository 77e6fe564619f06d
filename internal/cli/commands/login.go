package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gametu-dev/gametu/internal/cli/userconfig"
)

// NewLoginCmd creates the login command
func NewLoginCmd(opts ...Option) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to a GameTu server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, newOptions(opts), email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set GAMETU_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set GAMETU_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, o *options, email, password string) error {
	c, err := o.connect(cmd)
	if err != nil {
		return err
	}
	defer c.close()

	// Environment variables are useful for scripts and CI
	if email == "" {
		email = os.Getenv("GAMETU_EMAIL")
	}
	if email == "" {
		email, err = userconfig.LastEmail(c.server.URL)
		if err != nil {
			log.Debug().Err(err).Msg("Could not read last login email")
		}
		if email != "" {
			fmt.Fprintf(c.out, "Using %s (last login on this server)\n", email)
		}
	}
	if password == "" {
		password = os.Getenv("GAMETU_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or GAMETU_EMAIL env var)")
	}

	if password == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or GAMETU_PASSWORD env var)")
		}
		fmt.Fprint(c.out, "Password: ")
		bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
		fmt.Fprintln(c.out)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintf(c.out, "Logging in to %s...\n", c.server.Label())

	if err := c.session.Login(ctx, email, password); err != nil {
		return err
	}

	user := c.session.User()
	if err := userconfig.RememberEmail(c.server.URL, user.Email); err != nil {
		log.Warn().Err(err).Msg("Failed to remember login email")
	}

	fmt.Fprintln(c.out, "✓ Login successful!")
	fmt.Fprintf(c.out, "  User: %s (id %d)\n", user.Email, user.ID)
	if user.IsAdmin() {
		fmt.Fprintln(c.out, "  Role: Admin")
	}

	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := newOptions(opts)

			c, err := o.connect(cmd)
			if err != nil {
				return err
			}
			defer c.close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			c.session.Logout(ctx)
			if err := c.store.Delete(c.server.URL); err != nil {
				return fmt.Errorf("failed to delete stored session: %w", err)
			}

			fmt.Fprintf(c.out, "Logged out from %s\n", c.server.Label())
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(opts ...Option) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := newOptions(opts)
			return o.run(cmd, func(ctx context.Context, c *client) error {
				user := c.session.User()
				if user == nil {
					fmt.Fprintf(c.out, "Not logged in to %s\n", c.server.Label())
					fmt.Fprintln(c.out, "\nSign in with: gametu login --email <email>")
					return nil
				}

				role := "user"
				if user.IsAdmin() {
					role = "admin"
				}
				fmt.Fprintf(c.out, "%s (id %d, %s) on %s\n", user.Email, user.ID, role, c.server.Label())
				return nil
			})
		},
	}
}
