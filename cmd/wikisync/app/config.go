package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/wikisync/pkg/catalogs"
)

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Instance configuration
	DataDir string
	Server  string

	// Run settings
	Settings *catalogs.Settings

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.wikisync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix("WIKISYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := v.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".wikisync")
	}

	// Missing config file is fine, defaults apply
	_ = v.ReadInConfig()

	settings := catalogs.DefaultSettings()
	if v.IsSet("settings") {
		if err := v.UnmarshalKey("settings", settings); err != nil {
			return nil, err
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),

		ConfigFile: v.ConfigFileUsed(),

		DataDir: getOrDefault(v, "data_dir", "data"),
		Server:  v.GetString("server"),

		Settings: settings,

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
	}
	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags so flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads .env files from the working directory, most specific
// first. Missing files are ignored.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		_ = godotenv.Load(file)
	}
}

func getOrDefault(v *viper.Viper, key, fallback string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return fallback
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
