package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gametu-dev/gametu/internal/cli/config"
	appconfig "github.com/gametu-dev/gametu/internal/config"
)

// NewInitCmd creates the init command
func NewInitCmd(opts ...Option) *cobra.Command {
	var alias string

	cmd := &cobra.Command{
		Use:   "init [api-url]",
		Short: "Add a GameTu server to ./gametu.yaml",
		Long: `Add a GameTu server to ./gametu.yaml, creating the file if needed.

The URL is the API root, e.g. https://gametu.example.com/api.
Without an argument the local development server is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL := appconfig.DefaultBaseURL
			if len(args) > 0 {
				serverURL = args[0]
			}
			return runInit(newOptions(opts), serverURL, alias)
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Name for the server (default: local, server-N)")

	return cmd
}

func runInit(o *options, serverURL, alias string) error {
	if err := config.ValidateServerURL(serverURL); err != nil {
		return err
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	cfg := &config.Config{}
	isNewConfig := true

	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		isNewConfig = false
		fmt.Fprintf(o.out, "Found existing %s\n", config.ConfigFileName)
	}

	if alias == "" {
		if len(cfg.Servers) == 0 {
			alias = "local"
		} else {
			alias = fmt.Sprintf("server-%d", len(cfg.Servers)+1)
		}
	}

	server := config.Server{URL: serverURL, Alias: alias}
	if !cfg.AddServer(server) {
		fmt.Fprintf(o.out, "Server %s already exists in %s\n", serverURL, config.ConfigFileName)
		return nil
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	if isNewConfig {
		fmt.Fprintf(o.out, "✓ Created ./%s with server %s\n", config.ConfigFileName, server.Label())
	} else {
		fmt.Fprintf(o.out, "✓ Added server %s to ./%s\n", server.Label(), config.ConfigFileName)
	}

	fmt.Fprintln(o.out, "\nNext steps:")
	fmt.Fprintln(o.out, "  1. Run 'gametu register' if you do not have an account yet")
	fmt.Fprintln(o.out, "  2. Run 'gametu login' to authenticate")

	return nil
}
