package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hojanyaz/hr-psychobot/internal/catalog"
	"github.com/hojanyaz/hr-psychobot/internal/config"
	"github.com/hojanyaz/hr-psychobot/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every survey file and the optional overlay configs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		cat, issues, err := catalog.Load(cfg.SurveyDir)
		if err != nil {
			return err
		}
		fmt.Printf("Checking %s/\n", cfg.SurveyDir)
		for _, is := range issues {
			fmt.Println("  " + is.String())
		}

		if _, err := report.LoadOverlays(cfg.ConfigDir); err != nil {
			fmt.Println("  " + err.Error())
			issues = append(issues, catalog.Issue{File: cfg.ConfigDir, Err: err})
		}

		if len(issues) > 0 {
			return fmt.Errorf("%d file(s) failed validation", len(issues))
		}
		fmt.Printf("OK: %d surveys valid\n", cat.Len())
		return nil
	},
}
