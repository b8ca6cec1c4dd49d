package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsxbet/sql-sandbox/pkg/config"
	"github.com/nsxbet/sql-sandbox/pkg/hint"
	"github.com/nsxbet/sql-sandbox/pkg/logger"
	"github.com/nsxbet/sql-sandbox/pkg/sandbox"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sql-sandbox",
	Short: "A SQL practice sandbox with dialect hints",
	Long: `SQL Sandbox runs SQL against an in-memory SQLite database seeded with a
small smart-home dataset (rooms and sensors).

When a statement uses a MySQL construct that SQLite rejects, the engine error
is shown together with a hint about the SQLite equivalent.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sql-sandbox.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug output")
	rootCmd.PersistentFlags().String("seed", "", "seed file (TOML); the embedded seed is used by default")
	rootCmd.PersistentFlags().String("dsn", config.DefaultDSN, "go-sqlite3 data source name")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format (text, json, yaml)")

	// Bind flags to viper
	for _, name := range []string{"verbose", "debug", "seed", "dsn", "output"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sql-sandbox")
	}

	err := viper.ReadInConfig()
	setupLogger()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("No config file found")
			return
		}
		slog.Warn("Ignoring config file", "file", viper.ConfigFileUsed(), logger.Error(err))
		return
	}
	slog.Debug("Using config file", "file", viper.ConfigFileUsed())
}

func setupLogger() {
	_ = logger.NewWithLevel(logLevel())
}

func logLevel() slog.Level {
	switch {
	case viper.GetBool("debug"):
		return slog.LevelDebug
	case viper.GetBool("verbose"):
		return slog.LevelInfo
	}
	return slog.LevelWarn
}

func loadSettings() (*config.Settings, error) {
	return config.LoadSettings(viper.GetViper())
}

// openSession opens a sandbox configured by settings.
func openSession(ctx context.Context, settings *config.Settings) (*sandbox.Session, error) {
	seed, err := sandbox.LoadSeed(settings.Seed)
	if err != nil {
		return nil, err
	}
	return sandbox.Open(ctx,
		sandbox.WithDSN(settings.DSN),
		sandbox.WithSeed(seed),
		sandbox.WithHints(hintSet(settings)),
	)
}

func hintSet(settings *config.Settings) *hint.Set {
	if len(settings.DisabledHints) == 0 {
		return hint.Catalog()
	}
	return hint.Catalog().Without(settings.DisabledHints...)
}
