package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	datafeed "github.com/fazecat/niftyscreener/Internal/database"
	"github.com/fazecat/niftyscreener/Internal/utils/config"
)

var (
	universeCSV string
	configOut   string
	configForce bool
)

var (
	errEmptyCSV     = errors.New("instrument CSV has no rows")
	errConfigExists = errors.New("config file already exists (use --force to overwrite)")
)

var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Manage the instrument universe stored in Postgres",
}

var universeImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load an instrument CSV into the Postgres universe table",
	Long: `Replace the active Postgres universe with the rows of an instrument CSV.
Rows keep their file order as scan order; symbols missing from the file are
deactivated, not deleted.

Examples:
  niftyscreener universe import --csv nifty500.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		path := universeCSV
		if path == "" {
			path = cfg.Universe.Path
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open instrument CSV: %w", err)
		}
		defer f.Close()

		db, err := datafeed.OpenDatabase(cmd.Context(), cfg.Secrets.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := importUniverse(cmd.Context(), db, f)
		if err != nil {
			return err
		}
		log.Info().Int("instruments", n).Str("file", path).Msg("universe imported")
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Imported %d instruments from %s\n", n, path)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the YAML configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := writeDefaultConfig(configOut, configForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote default configuration to %s\n", configOut)
		return nil
	},
}

func init() {
	universeImportCmd.Flags().StringVar(&universeCSV, "csv", "", "instrument CSV (default: universe.path from config)")
	universeCmd.AddCommand(universeImportCmd)

	configInitCmd.Flags().StringVar(&configOut, "out", "config.yaml", "destination file")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(universeCmd, configCmd)
}

// importUniverse parses r, creates the instruments table if needed and
// replaces the active universe. An empty file is rejected so a bad export
// cannot deactivate every symbol.
func importUniverse(ctx context.Context, db *sqlx.DB, r io.Reader) (int, error) {
	instruments, err := datafeed.ParseInstruments(r)
	if err != nil {
		return 0, err
	}
	if len(instruments) == 0 {
		return 0, errEmptyCSV
	}
	if err := datafeed.EnsureSchema(ctx, db); err != nil {
		return 0, fmt.Errorf("failed to create instruments table: %w", err)
	}
	if err := datafeed.ImportInstruments(ctx, db, instruments); err != nil {
		return 0, err
	}
	return len(instruments), nil
}

func writeDefaultConfig(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errConfigExists
		}
	}
	return config.SaveConfig(config.DefaultConfig(), path)
}
