package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/hojanyaz/hr-psychobot/internal/config"
	"github.com/hojanyaz/hr-psychobot/internal/report"
	"github.com/hojanyaz/hr-psychobot/internal/store"
)

var exportSurvey string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all stored results as CSV to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		defer db.Close()
		sqlite, err := store.NewSQLiteStore(db)
		if err != nil {
			return err
		}
		results, err := sqlite.ListResults(context.Background(), store.ResultFilter{SurveyKey: exportSurvey})
		if err != nil {
			return err
		}
		data, err := report.ResultsCSV(results)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportSurvey, "survey", "", "limit export to one survey key")
}
