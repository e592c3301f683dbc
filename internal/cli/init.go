package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/sheetlog/internal/paths"
	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	WatchDir     string `yaml:"watch_dir,omitempty"`
	DataDir      string `yaml:"data_dir,omitempty"`
	Extension    string `yaml:"extension"`
	LockPrefix   string `yaml:"lock_prefix"`
	Debounce     string `yaml:"debounce"`
	SettleDelay  string `yaml:"settle_delay"`
	DiffOnCreate bool   `yaml:"diff_on_create"`
	ReaderKeys   string `yaml:"reader_keys"`
	MetricsAddr  string `yaml:"metrics_addr,omitempty"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
}

func newInitCmd(a *app) *cobra.Command {
	var watchDir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize sheetlog configuration and storage",
		Long: "Create the configuration directory with a default config.yaml and the\n" +
			"data directory with its snapshot and change record stores.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, watchDir)
		},
	}
	cmd.Flags().StringVar(&watchDir, "watch-dir", "", "directory to record in config.yaml")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, watchDir string) error {
	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return sysError("create config directory: %w", err)
	}

	if watchDir != "" {
		dir, err := paths.ResolveWatchDir(watchDir, "")
		if err != nil {
			return sysError("resolve watch dir: %w", err)
		}
		watchDir = dir
	}

	configPath := paths.ConfigFile(a.configDir)
	written, err := writeConfigIfMissing(configPath, a.cfg, watchDir, a.flags.dataDir != "")
	if err != nil {
		return sysError("write config: %w", err)
	}

	for _, dir := range []string{paths.SnapshotsDir(a.cfg.DataDir), paths.ChangesDir(a.cfg.DataDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return sysError("create data directory: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if written {
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	}
	fmt.Fprintf(out, "Data directory: %s\n", a.cfg.DataDir)
	fmt.Fprintln(out, "Sheetlog initialized successfully")
	return nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. If it already exists, the function returns false (idempotent).
// data_dir is recorded only when it was given explicitly.
func writeConfigIfMissing(path string, cfg types.Config, watchDir string, recordDataDir bool) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	file := configFile{
		WatchDir:     watchDir,
		Extension:    cfg.Extension,
		LockPrefix:   cfg.LockPrefix,
		Debounce:     cfg.Debounce.String(),
		SettleDelay:  cfg.SettleDelay.String(),
		DiffOnCreate: cfg.DiffOnCreate,
		ReaderKeys:   cfg.ReaderKeys,
		MetricsAddr:  cfg.MetricsAddr,
		LogLevel:     cfg.LogLevel,
		LogFormat:    cfg.LogFormat,
	}
	if recordDataDir {
		file.DataDir = cfg.DataDir
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
