package main

import (
	"fmt"
	"os"

	"github.com/logia/portal/internal/domain/shared/valueobject"
	"github.com/logia/portal/internal/infrastructure/config"
	csvimport "github.com/logia/portal/internal/infrastructure/import"
	"github.com/logia/portal/internal/infrastructure/logger"
	"github.com/logia/portal/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// env is shared by every subcommand once the root pre-run has connected
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *persistence.Database
	currency valueobject.Currency
}

var app env

var rootCmd = &cobra.Command{
	Use:   "portalctl",
	Short: "Operator tool for the lodge portal",
	Long: `portalctl loads the lodge workbook into the portal database and prints
member statements from the command line.

Configuration comes from config.toml and PORTAL_* environment variables;
a .env file in the working directory is loaded first.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: connect,
	PersistentPostRun: func(*cobra.Command, []string) {
		if app.db != nil {
			_ = app.db.Close()
		}
		if app.log != nil {
			_ = app.log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func connect(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	level, _ := cmd.Flags().GetString("log-level")
	log := logger.New(logger.Config{Level: level, Format: "console", Output: "stderr"})

	db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, logger.GormLevel(level), 0))
	if err != nil {
		return err
	}

	app = env{
		cfg:      cfg,
		log:      log,
		db:       db,
		currency: valueobject.Currency(cfg.Treasury.Currency),
	}
	return nil
}

func decoder() *csvimport.Decoder {
	var opts []csvimport.DecoderOption
	if d := app.cfg.Import.Delimiter; d != "" {
		opts = append(opts, csvimport.WithSeparator([]rune(d)[0]))
	}
	return csvimport.NewDecoder(app.cfg.Import.DateLayout, app.currency, opts...)
}
