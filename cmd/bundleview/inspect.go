package main

import (
	"log/slog"

	"github.com/jchantrell/bundleview/internal/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Browse a support bundle interactively",
	Long: `Inspect opens a full screen dashboard over the bundle. Move through the
file list with the arrow keys, press ENTER to preview an entry and SPACE to
leave the dashboard and write the selected entry to stdout.

The dashboard is drawn on stderr, so stdout can be redirected:

  bundleview inspect bundle.tar.gz > service.log`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		archive, closeArchive, err := openArchive(ctx, args[0])
		if err != nil {
			return err
		}
		defer closeArchive()

		slog.Info("Inspecting bundle", "path", archive.Path())

		return tui.Run(ctx, archive, tui.Options{
			Match:          cfg.Match,
			Highlight:      cfg.Highlight,
			HighlightStyle: cfg.HighlightStyle,
			Progress:       cfg.Progress,
			StatusLog:      cfg.LogFile == "",
			LogLevel:       cfg.SlogLevel(),
			Output:         cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&forceDownload, "force", false, "re-download remote bundles even if cached")
}
