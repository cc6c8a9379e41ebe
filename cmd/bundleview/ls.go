package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/jchantrell/bundleview/internal/bundle"
	"github.com/jchantrell/bundleview/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type listEntry struct {
	Name string `json:"name" yaml:"name"`
	Dir  bool   `json:"dir" yaml:"dir"`
}

type listing struct {
	Source  string      `json:"source" yaml:"source"`
	Entries []listEntry `json:"entries" yaml:"entries"`
}

var listFormat string

var lsCmd = &cobra.Command{
	Use:   "ls <archive>",
	Short: "List the entries of a support bundle",
	Long: `Ls prints the bundle index in archive order, one entry per line.
Directories end with a slash. Use --format json or yaml for structured
output and --match to filter entries with a glob pattern.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		archive, closeArchive, err := openArchive(ctx, args[0])
		if err != nil {
			return err
		}
		defer closeArchive()

		index, err := archive.Index(ctx)
		if err != nil {
			return err
		}
		if cfg.Match != "" {
			if index, err = index.Filter(cfg.Match); err != nil {
				return err
			}
		}

		slog.Info("Listed bundle", "path", archive.Path(), "entries", utils.Number(int64(index.Len())))

		return writeListing(cmd.OutOrStdout(), args[0], index, listFormat)
	},
}

func writeListing(w io.Writer, source string, index *bundle.Index, format string) error {
	switch format {
	case "text":
		for _, name := range index.Files() {
			if _, err := fmt.Fprintln(w, name); err != nil {
				return err
			}
		}
		return nil
	case "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format '%s': supported formats are text, json, yaml", format)
	}

	out := listing{Source: source, Entries: make([]listEntry, 0, index.Len())}
	for _, name := range index.Files() {
		out.Entries = append(out.Entries, listEntry{Name: name, Dir: bundle.IsDir(name)})
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "output format (text, json, yaml)")
	lsCmd.Flags().BoolVar(&forceDownload, "force", false, "re-download remote bundles even if cached")
}
