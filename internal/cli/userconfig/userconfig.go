// Package userconfig holds per-user gametu preferences that do not belong in a
// project's gametu.yaml: the server picked with select-server and the email
// last used to sign in to each server.
//
// Preferences live in $XDG_CONFIG_HOME/gametu/config.json, or
// ~/.config/gametu/config.json when XDG_CONFIG_HOME is unset.
package userconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

const (
	appDirName   = "gametu"
	fileName     = "config.json"
	filePerm     = 0600
	dirPerm      = 0700
	tempFileGlob = ".config-*.json"
)

// Preferences is the on-disk document
type Preferences struct {
	SelectedServerURL string `json:"selected_server_url,omitempty"`

	// LastEmails maps a server URL to the email last signed in with there
	LastEmails map[string]string `json:"last_emails,omitempty"`
}

// Path returns where preferences are stored
func Path() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDirName, fileName), nil
}

// Load reads the preferences. A missing file yields empty preferences.
func Load() (*Preferences, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Preferences{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to parse user config file %s: %w", path, err)
	}
	return &prefs, nil
}

// Save replaces the preferences file. The write goes through a temp file so
// a crash never leaves a half-written document behind.
func Save(prefs *Preferences) error {
	path, err := Path()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempFileGlob)
	if err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	return nil
}

// update loads, applies fn and saves
func update(fn func(*Preferences)) error {
	prefs, err := Load()
	if err != nil {
		return err
	}
	fn(prefs)
	return Save(prefs)
}

func serverKey(serverURL string) string {
	return strings.TrimRight(serverURL, "/")
}

// SelectedServer returns the server URL picked by the user, or "" when none
func SelectedServer() (string, error) {
	prefs, err := Load()
	if err != nil {
		return "", err
	}
	return prefs.SelectedServerURL, nil
}

// SelectServer remembers serverURL as the default server. An empty URL
// forgets the selection.
func SelectServer(serverURL string) error {
	return update(func(p *Preferences) {
		p.SelectedServerURL = serverKey(serverURL)
	})
}

// LastEmail returns the email last used to sign in to serverURL
func LastEmail(serverURL string) (string, error) {
	prefs, err := Load()
	if err != nil {
		return "", err
	}
	return prefs.LastEmails[serverKey(serverURL)], nil
}

// RememberEmail records a successful sign-in so the next login can default to it
func RememberEmail(serverURL, email string) error {
	return update(func(p *Preferences) {
		if p.LastEmails == nil {
			p.LastEmails = make(map[string]string)
		}
		p.LastEmails[serverKey(serverURL)] = email
	})
}
