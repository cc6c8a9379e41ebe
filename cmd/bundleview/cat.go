package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jchantrell/bundleview/internal/bundle"
	"github.com/jchantrell/bundleview/internal/utils"
	"github.com/spf13/cobra"
)

var catOutput string

var catCmd = &cobra.Command{
	Use:   "cat <archive> <entry>",
	Short: "Write one bundle entry to stdout or a file",
	Long: `Cat decompresses a single entry of the bundle and writes it to stdout,
or to the file given with --output. Entry paths are as printed by ls.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return catEntry(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], catOutput)
	},
}

// catEntry writes entry of the archive at path to the file output, or to
// stdout when output is empty
func catEntry(ctx context.Context, stdout io.Writer, path, entry, output string) error {
	start := time.Now()

	if bundle.IsDir(entry) {
		return fmt.Errorf("%s is a directory", entry)
	}

	archive, closeArchive, err := openArchive(ctx, path)
	if err != nil {
		return err
	}
	defer closeArchive()

	stream, err := archive.File(ctx, entry)
	if err != nil {
		return err
	}
	defer stream.Close()

	out := stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	progress := utils.NewProgress(0, entry, cfg.Progress && output != "")
	n, err := io.Copy(out, progress.Reader(stream))
	progress.Finish()
	if err != nil {
		return &bundle.IOError{Op: fmt.Sprintf("writing %s", entry), Err: err}
	}

	slog.Info("Wrote entry",
		"entry", entry,
		"size", utils.Bytes(n),
		"duration", utils.Duration(time.Since(start)))

	return nil
}

func init() {
	rootCmd.AddCommand(catCmd)
	catCmd.Flags().StringVarP(&catOutput, "output", "o", "", "write the entry to a file instead of stdout")
	catCmd.Flags().BoolVar(&forceDownload, "force", false, "re-download remote bundles even if cached")
}
