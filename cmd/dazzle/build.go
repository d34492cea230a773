package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dazzle "github.com/manwithacat/dazzle-sub010"
	"github.com/manwithacat/dazzle-sub010/spec"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile specs and write the linked model",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	buildCmd.Flags().String("format", "yaml", "output format (yaml|json)")
	buildCmd.Flags().Bool("strict", false, "treat warnings as failures")
}

func runBuild(cmd *cobra.Command, args []string) error {
	model, cfg, err := compileProject(cmd)
	if err == errReported {
		exitCode = 1
		return nil
	}
	if err != nil {
		return err
	}

	renderDiagnostics(cmd, model.Diagnostics)
	if model.Failed(cfg) {
		exitCode = 1
		return nil
	}

	format, err := parseFormat(cmd)
	if err != nil {
		return err
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if output == "" {
		return model.Encode(os.Stdout, format)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := model.Encode(f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// errReported signals that the failure was already rendered as diagnostics;
// callers set the exit code instead of printing the error again.
var errReported = errors.New("problems reported")

// compileProject runs the shared front half of build and check: resolve the
// project, compile it, and render graph errors when the run is fatal.
func compileProject(cmd *cobra.Command) (*spec.Model, spec.Config, error) {
	source, root, manifestStrict, err := resolveProject(cmd)
	if err != nil {
		return nil, spec.Config{}, err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, spec.Config{}, err
	}

	cfg := spec.DefaultConfig()
	if strict, _ := cmd.Flags().GetBool("strict"); strict || manifestStrict {
		cfg = spec.StrictConfig()
	}

	model, err := dazzle.Load(cmd.Context(), source, root,
		dazzle.WithLogger(logger),
		dazzle.WithConfig(cfg),
	)
	if err != nil {
		var gerr *spec.GraphError
		if errors.As(err, &gerr) {
			renderDiagnostics(cmd, gerr.Diagnostics())
			return nil, cfg, errReported
		}
		return nil, cfg, err
	}
	return model, cfg, nil
}

func parseFormat(cmd *cobra.Command) (spec.Format, error) {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", err
	}
	switch format {
	case "yaml":
		return spec.FormatYAML, nil
	case "json":
		return spec.FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}
