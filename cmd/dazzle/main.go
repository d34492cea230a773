// Command dazzle is the CLI for the dazzle spec compiler.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	dazzle "github.com/manwithacat/dazzle-sub010"
)

var rootCmd = &cobra.Command{
	Use:           "dazzle",
	Short:         "Compile and check dazzle application specs",
	Long:          "dazzle parses application spec modules, links them into a model, and reports problems.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCode is set by commands that succeed operationally but found problems.
var exitCode int

func main() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("manifest", "", "path to dazzle.yaml (default: search upward from the working directory)")
	rootCmd.PersistentFlags().StringArray("dir", nil, "directory tree to load spec files from")
	rootCmd.PersistentFlags().StringArray("glob", nil, "glob pattern of spec files, e.g. 'specs/**/*.dazzle'")
	rootCmd.PersistentFlags().String("root", "", "root module to build from (default: all discovered modules)")
	rootCmd.PersistentFlags().String("log-level", "off", "log verbosity (off|info|debug|trace)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dazzle:", err)
		os.Exit(2)
	}
	os.Exit(exitCode)
}

// newLogger builds a stderr logger for the requested level, or nil for off.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	var min slog.Level
	switch strings.ToLower(level) {
	case "off", "":
		return nil, nil
	case "info":
		min = slog.LevelInfo
	case "debug":
		min = slog.LevelDebug
	case "trace":
		min = dazzle.LevelTrace
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: min})), nil
}

// resolveProject determines the source and root module from flags, falling
// back to a dazzle.yaml manifest when no source flags are given.
func resolveProject(cmd *cobra.Command) (dazzle.Source, string, bool, error) {
	dirs, err := cmd.Flags().GetStringArray("dir")
	if err != nil {
		return nil, "", false, err
	}
	globs, err := cmd.Flags().GetStringArray("glob")
	if err != nil {
		return nil, "", false, err
	}
	root, err := cmd.Flags().GetString("root")
	if err != nil {
		return nil, "", false, err
	}

	var sources []dazzle.Source
	for _, dir := range dirs {
		src, err := dazzle.DirTree(dir)
		if err != nil {
			return nil, "", false, err
		}
		sources = append(sources, src)
	}
	if len(globs) > 0 {
		src, err := dazzle.Glob(globs...)
		if err != nil {
			return nil, "", false, err
		}
		sources = append(sources, src)
	}
	if len(sources) > 0 {
		return dazzle.Multi(sources...), root, false, nil
	}

	manifest, err := loadManifest(cmd)
	if err != nil {
		return nil, "", false, err
	}
	src, err := manifest.Source()
	if err != nil {
		return nil, "", false, err
	}
	if root == "" {
		root = manifest.Root
	}
	return src, root, manifest.Strict, nil
}

func loadManifest(cmd *cobra.Command) (*dazzle.Manifest, error) {
	path, err := cmd.Flags().GetString("manifest")
	if err != nil {
		return nil, err
	}
	if path != "" {
		return dazzle.LoadManifest(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	manifest, err := dazzle.FindManifest(wd)
	if err != nil {
		return nil, fmt.Errorf("no spec sources: pass --dir or --glob, or add a %s", dazzle.ManifestName)
	}
	return manifest, nil
}
