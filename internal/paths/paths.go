// Package paths resolves the standard on-disk locations for livecfg data.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths contains the standard directories livecfg uses.
type Paths struct {
	Data   string // ~/.local/share/livecfg
	Config string // ~/.config/livecfg
	State  string // ~/.local/state/livecfg
}

// Get returns the standard paths, honoring the XDG environment overrides.
func Get() *Paths {
	return &Paths{
		Data:   filepath.Join(getEnvOrDefault("XDG_DATA_HOME", defaultDataHome()), "livecfg"),
		Config: filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", defaultConfigHome()), "livecfg"),
		State:  filepath.Join(getEnvOrDefault("XDG_STATE_HOME", defaultStateHome()), "livecfg"),
	}
}

// Ensure creates all required directories.
func (p *Paths) Ensure() error {
	for _, dir := range []string{p.Data, p.Config, p.State} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ConfigFile returns the default config file path.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.Config, "config.json")
}

// LanguagesDir returns the directory holding one dictionary file per
// language code.
func (p *Paths) LanguagesDir() string {
	return filepath.Join(p.Data, "languages")
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultDataHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share")
}

func defaultConfigHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}

func defaultStateHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state")
}
