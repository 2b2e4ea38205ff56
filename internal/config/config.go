// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port         int    `mapstructure:"port"`
	SyncInterval int    `mapstructure:"sync_interval"`
	Environment  string `mapstructure:"environment"`
	Database     struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Plugins struct {
		Path         string `mapstructure:"path"`
		AssetBaseURL string `mapstructure:"asset_base_url"`
	} `mapstructure:"plugins"`
	Bridge struct {
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"bridge"`
	API struct {
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"api"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a "TALAWA_" prefix.
	// e.g., TALAWA_DATABASE_PATH will override the `database.path` key.
	viper.SetEnvPrefix("TALAWA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("sync_interval", 60)
	viper.SetDefault("environment", "direct")
	viper.SetDefault("database.path", "./talawa-plugins.db")
	viper.SetDefault("plugins.path", "./plugin/available")
	viper.SetDefault("plugins.asset_base_url", "/src/plugin/available")
	viper.SetDefault("bridge.endpoint", "/internal/file-bridge")
	viper.SetDefault("api.endpoint", "http://localhost:4000/graphql")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
