// Package config provides CLI commands for managing Refract configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	appconfig "github.com/Iron-Ham/refract/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify Refract configuration",
	Long: `View or modify Refract configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  refract config set stream.binding bus
  refract config set watch.debounce_ms 250

Valid keys:
  logging.enabled         - Write logs (true/false)
  logging.level           - Log level: debug, info, warn, error
  logging.dir             - Log directory
  stream.binding          - Channel binding: subject, bus
  tui.alt_screen          - Use the alternate screen (true/false)
  tui.effect_log_size     - Effects shown in the demo log
  watch.debounce_ms       - Props file debounce in milliseconds
  counter.initial_value   - Counter starting value
  counter.set_value       - Value used by the set action`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/refract/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// Register adds all config-related commands to the given parent command.
func Register(parent *cobra.Command) {
	parent.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg, err := appconfig.Load()
	if err != nil {
		_, _ = fmt.Fprintf(out, "Warning: %v\nShowing defaults.\n\n", err)
		cfg = appconfig.Default()
	}

	if viper.ConfigFileUsed() != "" {
		_, _ = fmt.Fprintf(out, "Config file: %s\n\n", viper.ConfigFileUsed())
	} else {
		_, _ = fmt.Fprintf(out, "Config file: (none - using defaults)\n\n")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// keyKinds maps every settable key to the kind of value it takes.
var keyKinds = map[string]string{
	"logging.enabled":       "bool",
	"logging.level":         "level",
	"logging.dir":           "string",
	"stream.binding":        "binding",
	"tui.alt_screen":        "bool",
	"tui.effect_log_size":   "int",
	"watch.debounce_ms":     "int",
	"counter.initial_value": "signed",
	"counter.set_value":     "signed",
}

// parseValue converts value to the typed form expected for key.
func parseValue(key, value string) (any, error) {
	kind, ok := keyKinds[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'refract config set --help' to see valid keys", key)
	}

	switch kind {
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case "int", "signed":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if kind == "int" && n < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return n, nil
	case "level":
		level := strings.ToLower(value)
		if !slices.Contains(appconfig.ValidLogLevels(), level) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(appconfig.ValidLogLevels(), ", "))
		}
		return level, nil
	case "binding":
		if !slices.Contains(appconfig.ValidBindings(), value) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(appconfig.ValidBindings(), ", "))
		}
		return value, nil
	}
	return value, nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	typedValue, err := parseValue(key, args[1])
	if err != nil {
		return err
	}

	// Ensure config directory exists
	configDir := appconfig.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set(key, typedValue)

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = appconfig.ConfigFile()
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\nConfig saved to %s\n", key, typedValue, configFile)
	return nil
}

// defaultConfigContent is written by config init.
const defaultConfigContent = `# Refract Configuration

# Debug logging
logging:
  # Write logs at all
  enabled: true
  # One of: debug, info, warn, error
  level: info
  # Directory for refract.log (default: ~/.config/refract/logs)
  dir: ""

# How component channels are backed
stream:
  # subject: in-process subjects
  # bus: route every channel through the event bus
  binding: subject

# Terminal UI
tui:
  alt_screen: true
  # Number of effects shown in the demo log
  effect_log_size: 8

# Properties file watcher
watch:
  # Coalesce bursts of writes within this many milliseconds
  debounce_ms: 100

# Counter demo
counter:
  initial_value: 0
  # Prefilled value of the set prompt and the scripted setValue call
  set_value: 10
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := appconfig.ConfigDir()
	configFile := appconfig.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'refract config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if viper.ConfigFileUsed() != "" {
		_, _ = fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		_, _ = fmt.Fprintf(out, "Default path: %s (not created)\n", appconfig.ConfigFile())
	}

	_, _ = fmt.Fprintln(out, "\nSearch paths:")
	_, _ = fmt.Fprintf(out, "  1. %s\n", filepath.Join(appconfig.ConfigDir(), "config.yaml"))
	_, _ = fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	_, _ = fmt.Fprintln(out, "\nEnvironment variables: REFRACT_* (e.g., REFRACT_STREAM_BINDING)")
	return nil
}
