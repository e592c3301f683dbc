package types

import (
	"errors"
	"time"
)

// Config holds the static configuration of the watcher and capture
// pipeline.
type Config struct {
	WatchDir     string        `json:"watch_dir" yaml:"watch_dir"`
	DataDir      string        `json:"data_dir" yaml:"data_dir"`
	Extension    string        `json:"extension" yaml:"extension"`
	LockPrefix   string        `json:"lock_prefix" yaml:"lock_prefix"`
	Debounce     time.Duration `json:"debounce" yaml:"debounce"`
	SettleDelay  time.Duration `json:"settle_delay" yaml:"settle_delay"`
	DiffOnCreate bool          `json:"diff_on_create" yaml:"diff_on_create"`
	ReaderKeys   string        `json:"reader_keys" yaml:"reader_keys"`
	MetricsAddr  string        `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
	LogLevel     string        `json:"log_level" yaml:"log_level"`
	LogFormat    string        `json:"log_format" yaml:"log_format"`
}

// Reader key modes.
const (
	// KeysIndex uses zero-based row and column positions.
	KeysIndex = "index"
	// KeysLabel uses spreadsheet row numbers and column letters.
	KeysLabel = "label"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Defaults.
const (
	DefaultExtension   = ".xlsx"
	DefaultLockPrefix  = "~$"
	DefaultDebounce    = 5 * time.Second
	DefaultSettleDelay = 2 * time.Second
	DefaultReaderKeys  = KeysIndex
	DefaultLogLevel    = "info"
	DefaultLogFormat   = LogFormatText
)

// Config validation errors.
var (
	ErrExtensionEmpty    = errors.New("extension must not be empty")
	ErrDebounceNegative  = errors.New("debounce must not be negative")
	ErrSettleNegative    = errors.New("settle delay must not be negative")
	ErrReaderKeysUnknown = errors.New("unknown reader key mode")
	ErrLogLevelUnknown   = errors.New("unknown log level")
	ErrLogFormatUnknown  = errors.New("unknown log format")
)

var knownReaderKeys = map[string]bool{
	KeysIndex: true,
	KeysLabel: true,
}

var knownLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var knownLogFormats = map[string]bool{
	LogFormatText: true,
	LogFormatJSON: true,
}

// DefaultConfig returns a Config populated with defaults. WatchDir and
// DataDir are left empty for the caller to resolve.
func DefaultConfig() Config {
	return Config{
		Extension:   DefaultExtension,
		LockPrefix:  DefaultLockPrefix,
		Debounce:    DefaultDebounce,
		SettleDelay: DefaultSettleDelay,
		ReaderKeys:  DefaultReaderKeys,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
	}
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Extension == "" {
		return ErrExtensionEmpty
	}
	if c.Debounce < 0 {
		return ErrDebounceNegative
	}
	if c.SettleDelay < 0 {
		return ErrSettleNegative
	}
	if !knownReaderKeys[c.ReaderKeys] {
		return ErrReaderKeysUnknown
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	if !knownLogFormats[c.LogFormat] {
		return ErrLogFormatUnknown
	}
	return nil
}
