package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Lokesh1028/agentjobs/internal/config"
	"github.com/Lokesh1028/agentjobs/internal/logger"
)

const appName = "jobsctl"

// Actual version can be specified in build command.
var version = "unknown"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          appName,
		Short:        "jobsctl manages the agentjobs database and runs searches from the shell",
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("%s version: %s\n", appName, version)
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobsctl.yaml in current directory, if present)")
	rootCmd.PersistentFlags().String("database-url", "", "database URL (env DATABASE_URL)")
	rootCmd.PersistentFlags().String("regions-file", "", "YAML city to region table (env REGIONS_FILE)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	for _, name := range []string{"database-url", "regions-file", "debug", "json"} {
		viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	godotenv.Load()

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "reading config %s: %v\n", cfgFile, err)
			os.Exit(1)
		}
		return
	}
	viper.AddConfigPath(".")
	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	// The default config file is optional.
	viper.ReadInConfig()
}

// loadConfig starts from the service environment and applies anything set
// through flags, the config file or viper-bound environment keys.
func loadConfig() *config.Config {
	cfg := config.Load()

	strs := map[string]*string{
		"database-url":    &cfg.DatabaseURL,
		"regions-file":    &cfg.RegionsFile,
		"currency-symbol": &cfg.CurrencySymbol,
		"redis-url":       &cfg.RedisURL,
		"gemini-api-key":  &cfg.GeminiAPIKey,
		"gemini-model":    &cfg.GeminiModel,
	}
	for key, dst := range strs {
		if viper.IsSet(key) && viper.GetString(key) != "" {
			*dst = viper.GetString(key)
		}
	}
	if viper.IsSet("match-threshold") {
		cfg.MatchThreshold = viper.GetInt("match-threshold")
	}
	return cfg
}

func newLogger() *logger.Logger {
	cfg := &logger.Config{Level: logger.LevelWarn, Format: logger.FormatText, Output: os.Stderr}
	if viper.GetBool("debug") {
		cfg.Level = logger.LevelDebug
	}
	if viper.GetBool("json") {
		cfg.Format = logger.FormatJSON
	}
	return logger.New(cfg)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
