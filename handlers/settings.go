package handlers

import (
	"cadenza/config"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// SettingsHandler handles settings-related endpoints
type SettingsHandler struct{}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler() *SettingsHandler {
	return &SettingsHandler{}
}

// validatePath validates that the path exists and is readable
func validatePath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Try to create the directory
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return errors.New("path is not a directory")
	}

	// Test read permissions by listing the directory
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	f.Close()

	return nil
}

// GetSettings returns the current settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := config.LoadSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load settings",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings updates the user settings. Library location, extension and
// filter changes take effect for new sources; the server re-arms its player
// source on restart.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var newSettings config.UserSettings
	if err := c.ShouldBindJSON(&newSettings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid settings format",
			"details": err.Error(),
		})
		return
	}

	// Validate the library location path
	if newSettings.LibraryLocation != "" {
		if err := validatePath(newSettings.LibraryLocation); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid library location",
				"details": err.Error(),
			})
			return
		}
	}

	// Save the settings
	if err := config.SaveSettings(&newSettings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save settings",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Settings updated successfully",
		"settings": newSettings,
	})
}
