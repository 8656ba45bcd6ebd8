// Package cli implements the rivebrain CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/rivebrain/internal/config"
	"github.com/rcliao/rivebrain/internal/loader"
	"github.com/rcliao/rivebrain/internal/logging"
	"github.com/rcliao/rivebrain/internal/parser"
	"github.com/rcliao/rivebrain/internal/store"
)

var (
	dbPath     string
	configDir  string
	logLevel   string
	formatFlag string

	cfg    *config.Config
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "rivebrain",
	Short: "Compile RiveScript documents into a queryable brain",
	Long:  "Parse RiveScript (.rive/.rs) documents into topics, triggers and replies. Snapshots are kept in SQLite.",

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.InitViper(configDir)
		if err != nil {
			return err
		}
		if err := v.BindPFlag("storage.db_path", cmd.Flags().Lookup("db")); err != nil {
			return err
		}
		if err := v.BindPFlag("log.level", cmd.Flags().Lookup("log-level")); err != nil {
			return err
		}
		if cfg, err = config.FromViper(v); err != nil {
			return err
		}
		if logger, err = logging.New(cfg.Log.Level); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $RIVEBRAIN_DB or ~/.rivebrain/brain.db)")
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory holding config.toml (default: ~/.rivebrain)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json, text or yaml (dump only)")
}

func getDBPath() string {
	if cfg != nil && cfg.Storage.DBPath != "" {
		return cfg.Storage.DBPath
	}
	return config.NewDefaultConfig().Storage.DBPath
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

// buildParams returns load settings for path from the active config.
func buildParams(path string, reporter parser.Reporter) loader.BuildParams {
	return loader.BuildParams{
		Path:             path,
		SupportedVersion: cfg.Parser.SupportedVersion,
		Reporter:         reporter,
		Loader: loader.Options{
			BeginFile:  cfg.Loader.BeginFile,
			Extensions: cfg.Loader.Extensions,
			Logger:     logger,
		},
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func textOutput() bool {
	return formatFlag == "text"
}

func exitErr(msg string, err error) {
	logger.Debug(msg, zap.Error(err))
	_ = logger.Sync()
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
