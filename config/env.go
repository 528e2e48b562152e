package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// DefaultExtension is the file suffix used when no extension is configured.
const DefaultExtension = ".mp3"

// DefaultFilter matches every file name.
const DefaultFilter = "*"

func GetLibraryLocation() string {
	// First check environment variable for custom location
	if customPath := os.Getenv("CADENZA_LIBRARY"); customPath != "" {
		return customPath
	}

	// Then the persisted user settings
	if userPath := getUserLibraryLocation(); userPath != "" {
		return userPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if can't get home dir
		return filepath.Join(".", "music")
	}

	return filepath.Join(homeDir, "Music")
}

// GetExtension returns the configured playable-file extension suffix. A
// set-but-empty CADENZA_EXT means no extension filtering at all, so
// presence is what matters, not the value.
func GetExtension() string {
	if ext, ok := os.LookupEnv("CADENZA_EXT"); ok {
		return ext
	}
	if settings, err := LoadSettings(); err == nil && settings.Extension != "" {
		return settings.Extension
	}
	return DefaultExtension
}

// GetFilter returns the configured file name glob pattern.
func GetFilter() string {
	if pattern, ok := os.LookupEnv("CADENZA_FILTER"); ok {
		return pattern
	}
	if settings, err := LoadSettings(); err == nil && settings.Filter != "" {
		return settings.Filter
	}
	return DefaultFilter
}

// UserSettings represents the user's personal settings
type UserSettings struct {
	LibraryLocation string `json:"libraryLocation"`
	Extension       string `json:"extension,omitempty"`
	Filter          string `json:"filter,omitempty"`
}

// SettingsFilePath returns the path to the settings file
func SettingsFilePath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".cadenza-settings.json")
}

// LoadSettings loads the user settings file, returning defaults if it does
// not exist.
func LoadSettings() (*UserSettings, error) {
	settingsPath := SettingsFilePath()

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return &UserSettings{
			Extension: DefaultExtension,
			Filter:    DefaultFilter,
		}, nil
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, err
	}

	var settings UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// SaveSettings persists the user settings file.
func SaveSettings(settings *UserSettings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(SettingsFilePath(), data, 0644)
}

// getUserLibraryLocation loads the user's preferred library location from
// the settings file.
func getUserLibraryLocation() string {
	settings, err := LoadSettings()
	if err != nil {
		return ""
	}
	return settings.LibraryLocation
}
