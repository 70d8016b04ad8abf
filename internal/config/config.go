// Package config loads Refract's configuration from defaults, the YAML
// config file and REFRACT_* environment variables through viper.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Refract configuration
type Config struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Stream  StreamConfig  `mapstructure:"stream" yaml:"stream"`
	TUI     TUIConfig     `mapstructure:"tui" yaml:"tui"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`
	Counter CounterConfig `mapstructure:"counter" yaml:"counter"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logs are written at all (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory holding refract.log. Empty means {ConfigDir}/logs.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// StreamConfig selects how component channels are backed
type StreamConfig struct {
	// Binding is "subject" for in-process subjects or "bus" to route every
	// channel through the event bus (default: "subject")
	Binding string `mapstructure:"binding" yaml:"binding"`
}

// TUIConfig controls the terminal UI
type TUIConfig struct {
	// AltScreen runs interactive programs in the alternate screen (default: true)
	AltScreen bool `mapstructure:"alt_screen" yaml:"alt_screen"`
	// EffectLogSize is the number of effects shown in the demo log (default: 8)
	EffectLogSize int `mapstructure:"effect_log_size" yaml:"effect_log_size"`
}

// WatchConfig controls the props-file watcher
type WatchConfig struct {
	// DebounceMs coalesces bursts of file writes (default: 100)
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
}

// CounterConfig holds the counter demo's starting values
type CounterConfig struct {
	// InitialValue is the value the counter mounts with (default: 0)
	InitialValue int `mapstructure:"initial_value" yaml:"initial_value"`
	// SetValue is the payload of the scripted set action and the prompt's
	// prefill (default: 10)
	SetValue int `mapstructure:"set_value" yaml:"set_value"`
}

// Binding names accepted by stream.binding
const (
	BindingSubject = "subject"
	BindingBus     = "bus"
)

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Stream: StreamConfig{
			Binding: BindingSubject,
		},
		TUI: TUIConfig{
			AltScreen:     true,
			EffectLogSize: 8,
		},
		Watch: WatchConfig{
			DebounceMs: 100,
		},
		Counter: CounterConfig{
			InitialValue: 0,
			SetValue:     10,
		},
	}
}

// Debounce returns DebounceMs as a duration.
func (w *WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// LogDir returns the directory for log files.
func (l *LoggingConfig) LogDir() string {
	if l.Dir != "" {
		return l.Dir
	}
	return filepath.Join(ConfigDir(), "logs")
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// Stream defaults
	viper.SetDefault("stream.binding", defaults.Stream.Binding)

	// TUI defaults
	viper.SetDefault("tui.alt_screen", defaults.TUI.AltScreen)
	viper.SetDefault("tui.effect_log_size", defaults.TUI.EffectLogSize)

	// Watch defaults
	viper.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	// Counter defaults
	viper.SetDefault("counter.initial_value", defaults.Counter.InitialValue)
	viper.SetDefault("counter.set_value", defaults.Counter.SetValue)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "refract")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".refract"
	}
	return filepath.Join(home, ".config", "refract")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
