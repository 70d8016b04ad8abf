package cmd

import (
	"strings"

	cfgcmd "github.com/Iron-Ham/refract/internal/cmd/config"
	"github.com/Iron-Ham/refract/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "refract",
	Short: "Reactive effect streams for stateless components",
	Long: `Refract mounts stateless view functions inside a wrapper that turns
their lifecycle and properties into observable streams. An effect factory
composes those streams into effects and a handler reacts to each one.

The counter command runs the interactive demo. The watch command drives the
same component from a YAML properties file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/refract/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	cfgcmd.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("REFRACT")
	// Replace dots with underscores for nested keys in env vars
	// e.g., REFRACT_STREAM_BINDING for stream.binding
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
