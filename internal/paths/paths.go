// Package paths resolves the configuration, data, and watch directory
// locations and the artifact layout inside the data directory.
package paths

import (
	"os"
	"path/filepath"
)

// CWD-relative default directory names.
const (
	DefaultConfigDirName = ".sheetlog"
	DefaultDataDirName   = ".sheetlog-data"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "SHEETLOG_CONFIG_DIR"
	EnvDataDir   = "SHEETLOG_DATA_DIR"
)

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// Artifact subdirectories of the data directory.
const (
	SnapshotsDirName = "snapshots"
	ChangesDirName   = "changes"
)

// getwd is overridden in tests.
var getwd = os.Getwd

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > SHEETLOG_CONFIG_DIR env > <cwd>/.sheetlog.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return cwdJoin(DefaultConfigDirName)
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configValue > SHEETLOG_DATA_DIR env > <cwd>/.sheetlog-data.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return cwdJoin(DefaultDataDirName)
}

// ResolveWatchDir returns the watched directory: arg > configValue > cwd.
func ResolveWatchDir(arg, configValue string) (string, error) {
	if arg != "" {
		return filepath.Abs(arg)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	return getwd()
}

// ConfigFile returns the config.yaml path inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// SnapshotsDir returns the snapshot store directory inside dataDir.
func SnapshotsDir(dataDir string) string {
	return filepath.Join(dataDir, SnapshotsDirName)
}

// ChangesDir returns the change record store directory inside dataDir.
func ChangesDir(dataDir string) string {
	return filepath.Join(dataDir, ChangesDirName)
}

func cwdJoin(name string) (string, error) {
	cwd, err := getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
