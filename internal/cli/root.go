package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gametu-dev/gametu/internal/cli/commands"
	"github.com/gametu-dev/gametu/internal/config"
	"github.com/gametu-dev/gametu/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the gametu command tree. opts are passed to every subcommand.
func NewRootCmd(opts ...commands.Option) *cobra.Command {
	var (
		verbose   bool
		logFormat string
	)

	rootCmd := &cobra.Command{
		Use:   "gametu",
		Short: "GameTu - video game offers from the terminal",
		Long: `GameTu CLI - browse, rate and manage video game offers.

Sign in once with 'gametu login'; the session is kept in your OS keychain
until you log out or it expires.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			level := cfg.Logging.LevelOr("warn")
			if verbose {
				level = "debug"
			}
			format := cfg.Logging.Format
			if logFormat != "" {
				format = logFormat
			}

			// Logs go to stderr so command output stays pipeable
			logger.InitWithWriter(os.Stderr, level, format)
			return nil
		},
	}

	rootCmd.PersistentFlags().String("server", "", "Server URL or alias from gametu.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log HTTP traffic and session changes")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gametu version %s\n", version)
		},
	})

	rootCmd.AddCommand(
		commands.NewInitCmd(opts...),
		commands.NewSelectServerCmd(opts...),
		commands.NewLoginCmd(opts...),
		commands.NewLogoutCmd(opts...),
		commands.NewWhoamiCmd(opts...),
		commands.NewRegisterCmd(opts...),
		commands.NewOffersCmd(opts...),
		commands.NewUsersCmd(opts...),
		commands.NewProfileCmd(opts...),
		commands.NewComplaintsCmd(opts...),
		commands.NewNewsCmd(opts...),
		commands.NewCategoriesCmd(opts...),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
