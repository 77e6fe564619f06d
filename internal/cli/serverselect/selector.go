package serverselect

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"

	"github.com/gametu-dev/gametu/internal/cli/config"
	"github.com/gametu-dev/gametu/internal/cli/userconfig"
)

// ResolveServer determines which server to use based on the following priority:
//  1. If override is provided, use the server it names (URL or alias); a URL
//     not listed in the project config is used as is
//  2. If user has a selected server in their local config, use that
//  3. If only one server in project config, use that
//  4. Otherwise, prompt user to select a server interactively
func ResolveServer(projectConfig *config.Config, override string) (*config.Server, error) {
	if override != "" {
		server, err := projectConfig.GetServerByURLOrAlias(override)
		if err == nil {
			return server, nil
		}
		if config.ValidateServerURL(override) == nil {
			return &config.Server{URL: strings.TrimRight(override, "/")}, nil
		}
		return nil, err
	}

	selectedURL, err := userconfig.SelectedServer()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	if selectedURL != "" {
		server, err := projectConfig.GetServerByURLOrAlias(selectedURL)
		if err != nil {
			// Selected server no longer exists in project config
			if err := userconfig.SelectServer(""); err != nil {
				log.Warn().Err(err).Msg("Failed to forget stale server selection")
			}
		} else {
			return server, nil
		}
	}

	if len(projectConfig.Servers) == 1 {
		server := &projectConfig.Servers[0]
		if err := userconfig.SelectServer(server.URL); err != nil {
			log.Warn().Err(err).Msg("Failed to save selected server")
		}
		return server, nil
	}

	server, err := PromptServerSelection(projectConfig)
	if err != nil {
		return nil, err
	}

	if err := userconfig.SelectServer(server.URL); err != nil {
		log.Warn().Err(err).Msg("Failed to save selected server")
	}

	return server, nil
}

// PromptServerSelection shows an interactive prompt for the user to select a server
func PromptServerSelection(projectConfig *config.Config) (*config.Server, error) {
	if len(projectConfig.Servers) == 0 {
		return nil, fmt.Errorf("no servers configured in %s", config.ConfigFileName)
	}

	type serverOption struct {
		Label  string
		Server *config.Server
	}

	options := make([]serverOption, len(projectConfig.Servers))
	for i := range projectConfig.Servers {
		server := &projectConfig.Servers[i]
		options[i] = serverOption{
			Label:  server.Label(),
			Server: server,
		}
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label }}",
		Selected: "{{ .Label | green }}",
	}

	prompt := promptui.Select{
		Label:     "Select a server",
		Items:     options,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server selection cancelled: %w", err)
	}

	return options[index].Server, nil
}
