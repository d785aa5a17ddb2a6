package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/riddhika-19/openboxcodelearn/internal/config"
	"github.com/riddhika-19/openboxcodelearn/internal/store"
)

// v holds flag, env and file configuration for the current invocation.
var v = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "openbox",
	Short: "Mistake tracking for the C++ learning platform",
	Long: "openbox records learner mistakes, analyzes their history and emits " +
		"first-mistake, consultation and weekly report signals.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides OPENBOX_DB env var)")
	pf.String("store", config.StoreSQLite, "Storage backend: sqlite, memory or redis")
	pf.StringSlice("dispatch", []string{config.DispatchLog}, "Signal dispatchers: log, email, nats")
	pf.String("log-mode", "dev", "Log format: dev or prod")
	pf.String("config", "", "Path to a config file (yaml, json or toml)")
	pf.String("env-file", ".env", "Path to a dotenv file loaded before reading the environment")

	bindFlag(v, config.KeyDB, "db")
	bindFlag(v, config.KeyStore, "store")
	bindFlag(v, config.KeyDispatch, "dispatch")
	bindFlag(v, config.KeyLogMode, "log-mode")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(consultCmd)
	rootCmd.AddCommand(weeklyCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(learnersCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

func bindFlag(v *viper.Viper, key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// resolveDBPath returns the database path from configuration (flag, env or
// file), falling back to the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
