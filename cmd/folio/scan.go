package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Print the discovered collections and series as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig(envFiles, sitePath)
		if err != nil {
			return err
		}
		return runScan(cmd.Context(), cfg, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

type scanResult struct {
	Source      string               `json:"source"`
	Collections []content.Collection `json:"collections"`
	Series      []content.SeriesLink `json:"series"`
	InfoPages   []string             `json:"infoPages"`
}

func runScan(ctx context.Context, cfg folio.SiteConfig, w io.Writer) error {
	// Scanning never serves, so the watcher and admin are not needed.
	cfg.WatchContent = false
	cfg.AdminPassword = ""

	app := folio.New(cfg, folio.WithLogger(zap.NewNop()))
	defer app.Close()
	if err := app.Init(ctx); err != nil {
		return err
	}

	res := scanResult{Source: app.Config.Source}
	var err error
	if res.Collections, err = app.Content.Collections(ctx); err != nil {
		return err
	}
	if res.Series, err = app.Content.SeriesList(ctx); err != nil {
		return err
	}
	if res.InfoPages, err = app.Content.InfoPageSlugs(ctx); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
