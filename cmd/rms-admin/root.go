package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"records-portal-api/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App carries what every subcommand needs. DB is opened from the environment
// on first use unless it is already set.
type App struct {
	DB     *gorm.DB
	Format string // "text" | "json"
}

func (a *App) database() (*gorm.DB, error) {
	if a.DB != nil {
		return a.DB, nil
	}
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()
	// stdout carries command output; logs go to stderr.
	config.LogWriter = os.Stderr
	if logger, err := zap.NewDevelopment(); err == nil {
		zap.ReplaceGlobals(logger)
	}

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a.DB = db
	return db, nil
}

// NewRootCommand creates the root command for the admin CLI.
func NewRootCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rms-admin",
		Short:         "Records management maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Format != "text" && app.Format != "json" {
				return fmt.Errorf("invalid format %q: must be text or json", app.Format)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&app.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newMigrateCommand(app))
	cmd.AddCommand(newVerifyLogCommand(app))
	cmd.AddCommand(newStatsCommand(app))
	cmd.AddCommand(newSeedUsersCommand(app))
	cmd.AddCommand(newHashPasswordsCommand(app))

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
