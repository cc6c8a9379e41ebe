package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jchantrell/bundleview/internal/config"
	"github.com/jchantrell/bundleview/internal/utils"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	cfgFile string
	logFile *os.File

	logLevel    string
	logFormat   string
	logPath     string
	cacheDir    string
	match       string
	indexCache  bool
	noProgress  bool
	noHighlight bool
)

var rootCmd = &cobra.Command{
	Use:   "bundleview",
	Short: "Support bundle inspection tool",
	Long: `bundleview is a tool for browsing the contents of support bundles:
compressed archives of logs, configuration and diagnostics collected from a
running system.

Bundles can be zip, 7z, rar or tar archives (plain or compressed with gzip,
zstd, lz4, xz or brotli), either local or fetched over http(s) into a local
cache.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logPath
		}
		if cmd.Flags().Changed("cache-dir") {
			cfg.CacheDir = cacheDir
		}
		if cmd.Flags().Changed("match") {
			cfg.Match = match
		}
		if cmd.Flags().Changed("index-cache") {
			cfg.IndexCache = indexCache
		}
		if noProgress {
			cfg.Progress = false
		}
		if noHighlight {
			cfg.Highlight = false
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		var out io.Writer = os.Stderr
		if cfg.LogFile != "" {
			logFile, err = os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			out = logFile
		}

		var handler slog.Handler
		if cfg.LogFormat == "json" {
			handler = slog.NewJSONHandler(out, &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			})
		} else {
			handler = tint.NewHandler(out, &tint.Options{
				Level:   cfg.SlogLevel(),
				NoColor: logFile != nil || !utils.IsTerminal(os.Stderr),
			})
		}

		logger := slog.New(handler)
		slog.SetDefault(logger)

		slog.Debug("Configuration",
			"log_level", cfg.LogLevel,
			"log_format", cfg.LogFormat,
			"log_file", cfg.LogFile,
			"cache_dir", cfg.CacheDir,
			"entry_cache_size", cfg.EntryCacheSize,
			"index_cache", cfg.IndexCache,
			"highlight", cfg.Highlight,
			"match", cfg.Match)

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logFile != nil {
			return logFile.Close()
		}
		return nil
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is bundleview.yaml in home or pwd)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-file", "", "write logs to a file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "cache directory (default is ~/.bundleview/cache)")
	rootCmd.PersistentFlags().StringVarP(&match, "match", "m", "", "only show entries matching a glob pattern")
	rootCmd.PersistentFlags().BoolVar(&indexCache, "index-cache", false, "cache archive listings between runs")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable progress bars")
	rootCmd.PersistentFlags().BoolVar(&noHighlight, "no-highlight", false, "disable syntax highlighting")
}
