// Package commands implements the poctl command tree.
package commands

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/purchase-orders/internal/common"
)

var (
	cfgFile  string
	dbURL    string
	logLevel string
	noColor  bool

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "poctl",
	Short: "Turn purchase order page fragments into a searchable order store",
	Long: `poctl merges the page fragments of a purchase order (pipe tables or JSON
record arrays, one file per page) into a single order-line dataset, upserts it into
SQLite or PostgreSQL, and searches or exports what was stored.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		c, err := common.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if dbURL != "" {
			c.Database.DSN = dbURL
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		logger = common.NewLogger(c.Log, os.Stderr)
		slog.SetDefault(logger)
		initUI(noColor)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "store DSN, overrides DB_URL (postgres:// URL or SQLite path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(processCmd, saveCmd, searchCmd, exportCmd, serveCmd)
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("%v", err)
		return err
	}
	return nil
}
