package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/sheetlog/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix = "SHEETLOG"
)

// Config keys.
const (
	cfgKeyWatchDir     = "watch_dir"
	cfgKeyDataDir      = "data_dir"
	cfgKeyExtension    = "extension"
	cfgKeyLockPrefix   = "lock_prefix"
	cfgKeyDebounce     = "debounce"
	cfgKeySettleDelay  = "settle_delay"
	cfgKeyDiffOnCreate = "diff_on_create"
	cfgKeyReaderKeys   = "reader_keys"
	cfgKeyMetricsAddr  = "metrics_addr"
	cfgKeyLogLevel     = "log_level"
	cfgKeyLogFormat    = "log_format"
)

// envKeys lists the keys overridable by SHEETLOG_<KEY>. data_dir is left
// out: SHEETLOG_DATA_DIR ranks below config.yaml and is resolved by the
// paths package.
var envKeys = []string{
	cfgKeyWatchDir,
	cfgKeyExtension,
	cfgKeyLockPrefix,
	cfgKeyDebounce,
	cfgKeySettleDelay,
	cfgKeyDiffOnCreate,
	cfgKeyReaderKeys,
	cfgKeyMetricsAddr,
	cfgKeyLogLevel,
	cfgKeyLogFormat,
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	def := types.DefaultConfig()

	v := viper.New()
	v.SetDefault(cfgKeyExtension, def.Extension)
	v.SetDefault(cfgKeyLockPrefix, def.LockPrefix)
	v.SetDefault(cfgKeyDebounce, def.Debounce)
	v.SetDefault(cfgKeySettleDelay, def.SettleDelay)
	v.SetDefault(cfgKeyDiffOnCreate, def.DiffOnCreate)
	v.SetDefault(cfgKeyReaderKeys, def.ReaderKeys)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyLogFormat, def.LogFormat)

	for _, key := range envKeys {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// decodeConfig builds a validated Config from v. DataDir holds the raw
// config.yaml value and is resolved by the caller.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.Config{
		WatchDir:     v.GetString(cfgKeyWatchDir),
		DataDir:      v.GetString(cfgKeyDataDir),
		Extension:    v.GetString(cfgKeyExtension),
		LockPrefix:   v.GetString(cfgKeyLockPrefix),
		Debounce:     v.GetDuration(cfgKeyDebounce),
		SettleDelay:  v.GetDuration(cfgKeySettleDelay),
		DiffOnCreate: v.GetBool(cfgKeyDiffOnCreate),
		ReaderKeys:   v.GetString(cfgKeyReaderKeys),
		MetricsAddr:  v.GetString(cfgKeyMetricsAddr),
		LogLevel:     strings.ToLower(v.GetString(cfgKeyLogLevel)),
		LogFormat:    strings.ToLower(v.GetString(cfgKeyLogFormat)),
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}
