package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	envFiles []string
	sitePath string
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Photo portfolio site engine",
	Long: `folio serves a photo portfolio from image folders on disk or from a
Sanity dataset, with collection, gallery and info pages, an RSS feed,
a sitemap and on-demand thumbnails.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env.local", ".env"}, "dotenv files to load when present")
	rootCmd.PersistentFlags().StringVar(&sitePath, "site", "site.yaml", "optional YAML site file")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"folio %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}
