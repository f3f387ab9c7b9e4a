// Package main provides the lciafmt binary entry point.
// It standardizes LCIA method data, maps elementary flows onto a
// canonical vocabulary, and manages the local method cache.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lcacommons/lciafmt"
	"github.com/lcacommons/lciafmt/cache"
	"github.com/lcacommons/lciafmt/config"
	"github.com/lcacommons/lciafmt/table"
)

const Version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type appFlags struct {
	cacheDir string
	logLevel string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	flags := &appFlags{}

	root := &cobra.Command{
		Use:           "lciafmt",
		Short:         "Standardize and map LCIA method data",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.cacheDir, "cache-dir", "", "method cache directory (overrides config)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newMethodsCmd(),
		newGenerateCmd(),
		newClearCacheCmd(),
		newEndpointsCmd(flags),
	)

	return root
}

// setup loads layered config, applies flag overrides, and wires the
// default logger and the process cache.
func setup(flags *appFlags) error {
	cfg, err := config.NewLoader(nil).Load()
	if err != nil {
		return err
	}
	cfg.Merge(&config.Config{CacheDir: flags.cacheDir, LogLevel: flags.logLevel})

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	compression, err := cfg.CompressionType()
	if err != nil {
		return err
	}
	c, err := cache.New(
		cache.WithDir(cfg.CacheDir),
		cache.WithCompression(compression),
	)
	if err != nil {
		return err
	}
	lciafmt.SetCache(c)
	flags.cfg = cfg

	return nil
}

// resolveDataPath resolves a bare file name against the configured data
// directory. Names that exist as given, carry a directory component, or
// have no data directory to fall back to are returned unchanged.
func resolveDataPath(dataDir, name string) string {
	if dataDir == "" || name != filepath.Base(name) {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}

	return filepath.Join(dataDir, name)
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List supported LCIA methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, rec := range lciafmt.SupportedMethods() {
				line := fmt.Sprintf("%-12s %s", rec.ID, rec.Name)
				if rec.HasMapping() {
					line += fmt.Sprintf("  (mapping: %s)", rec.Mapping)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		output     string
		indicators []string
	)

	cmd := &cobra.Command{
		Use:   "generate <method>",
		Short: "Generate a mapped method and write it as CSV",
		Long: "Generate a mapped method, serving it from the cache when " +
			"present. The method may be given by ID, display name, " +
			"mapping-system name, or sub-method key.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []lciafmt.MethodOption
			if len(indicators) > 0 {
				opts = append(opts, lciafmt.WithIndicators(indicators...))
			}

			tbl, err := lciafmt.GetMappedMethod(args[0], opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			if err := table.WriteCSV(out, tbl); err != nil {
				return err
			}
			slog.Info("method written",
				slog.String("method", args[0]),
				slog.Int("rows", tbl.Len()),
			)

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringSliceVar(&indicators, "indicators", nil, "restrict output to these indicators")

	return cmd
}

func newClearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Delete all cached mapped methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return lciafmt.ClearCache()
		},
	}
}

func newEndpointsCmd(flags *appFlags) *cobra.Command {
	var (
		midpointPath string
		name         string
		matchFields  []string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "endpoints <spec.csv>",
		Short: "Expand a midpoint method into endpoint indicators",
		Long: "Expand a midpoint method into endpoint indicators using an " +
			"endpoint spec table. Bare file names are looked up in the " +
			"configured data directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			midFile, err := os.Open(resolveDataPath(flags.cfg.DataDir, midpointPath))
			if err != nil {
				return err
			}
			defer midFile.Close()

			midpoint, err := table.ReadCSV(midFile)
			if err != nil {
				return err
			}

			specFile, err := os.Open(resolveDataPath(flags.cfg.DataDir, args[0]))
			if err != nil {
				return err
			}
			defer specFile.Close()

			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), ".csv")
			}
			result, stats, err := lciafmt.GenerateEndpoints(midpoint, specFile, name, matchFields)
			if err != nil {
				return err
			}
			slog.Info("endpoints generated",
				slog.Int("expanded", stats.Expanded),
				slog.Int("dropped", stats.Dropped),
			)

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			return table.WriteCSV(out, result)
		},
	}

	cmd.Flags().StringVar(&midpointPath, "midpoint", "", "midpoint method CSV to expand (required)")
	cmd.Flags().StringVar(&name, "name", "", "method name stamped on the output (default: spec file stem)")
	cmd.Flags().StringSliceVar(&matchFields, "match", nil, "matching fields for the join (default: Indicator)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("midpoint")

	return cmd
}
