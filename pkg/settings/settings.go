package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultServerURL is the relay server used when nothing is configured.
const DefaultServerURL = "ws://localhost:8080/ws"

// UserSettings holds persistable user preferences.
type UserSettings struct {
	ServerURL  string `json:"serverUrl"`
	STUNServer string `json:"stunServer"`
	TURNServer string `json:"turnServer"`
	TURNUser   string `json:"turnUser"`
	TURNPass   string `json:"turnPass"`
	ForceRelay bool   `json:"forceRelay"`
}

// DefaultSettings returns the default settings.
func DefaultSettings() UserSettings {
	return UserSettings{
		ServerURL:  DefaultServerURL,
		STUNServer: "stun:stun.l.google.com:19302",
	}
}

// getConfigPath returns the config file path.
// Uses XDG_CONFIG_HOME if set, otherwise the platform config directory.
func getConfigPath() (string, error) {
	var configDir string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "godesk")
	} else {
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(userConfigDir, "godesk")
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load reads settings from the config file.
// Returns default settings if the file doesn't exist or is invalid.
func Load() (UserSettings, error) {
	s := DefaultSettings()

	path, err := getConfigPath()
	if err != nil {
		return s, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist - use defaults, not an error
			return s, nil
		}
		return s, err
	}

	// Parse JSON, keeping defaults for missing fields
	if err := json.Unmarshal(data, &s); err != nil {
		// Invalid JSON - use defaults
		return DefaultSettings(), nil
	}

	if s.ServerURL == "" {
		s.ServerURL = DefaultServerURL
	}

	return s, nil
}

// Save writes settings to the config file.
func Save(s UserSettings) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal with indentation for readability
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
