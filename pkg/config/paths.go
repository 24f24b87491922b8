package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	EnvConfig = "TGFILTERS_CONFIG"
	EnvHome   = "TGFILTERS_HOME"
)

type RuntimePaths struct {
	HomeDir    string
	ConfigPath string
	LogPath    string
}

// ResolveRuntimePaths picks the config location: TGFILTERS_CONFIG, then
// TGFILTERS_HOME/config.json, then ~/.tgfilters/config.json.
func ResolveRuntimePaths() RuntimePaths {
	if configPath := expandHome(strings.TrimSpace(os.Getenv(EnvConfig))); configPath != "" {
		return buildRuntimePaths(filepath.Dir(configPath), configPath)
	}

	homeDir := expandHome(strings.TrimSpace(os.Getenv(EnvHome)))
	if homeDir == "" {
		homeDir = defaultHome()
	}

	return buildRuntimePaths(homeDir, filepath.Join(homeDir, "config.json"))
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".tgfilters"
	}
	return filepath.Join(home, ".tgfilters")
}

func buildRuntimePaths(homeDir, configPath string) RuntimePaths {
	return RuntimePaths{
		HomeDir:    homeDir,
		ConfigPath: configPath,
		LogPath:    filepath.Join(homeDir, "tgfilters.log"),
	}
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
