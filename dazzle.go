// Package dazzle compiles dazzle application specifications into a linked,
// validated intermediate model.
//
// A dazzle project is a set of module files. Each file declares one module,
// its dependencies, and its constructs: entities, surfaces, experiences,
// services, foreign shapes, and integrations. Compile parses every module,
// orders the dependency graph, links cross-construct references, and runs
// semantic validation; the result is a spec.Model ready for code generators
// and editor tooling.
//
// Example:
//
//	source, err := dazzle.DirTree("./specs")
//	if err != nil {
//	    return err
//	}
//	model, err := dazzle.Load(ctx, source, "shop.app",
//	    dazzle.WithLogger(slog.Default()),
//	)
package dazzle

import (
	"errors"
	"log/slog"
	"runtime"

	"github.com/manwithacat/dazzle-sub010/spec"
)

// ErrNoSources is returned when Load is called with no source.
var ErrNoSources = errors.New("no spec sources provided")

// ErrNoInputs is returned when Compile is called with no module inputs.
var ErrNoInputs = errors.New("no module inputs provided")

// LevelTrace is a custom log level more verbose than Debug. Use for per-item
// iteration logging (tokens, declarations, references). Enable with:
// &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = slog.Level(-8)

// Option configures Compile and Load.
type Option func(*buildConfig)

type buildConfig struct {
	logger      *slog.Logger
	diag        spec.Config
	parallelism int
	noHeuristic bool
}

func defaultBuildConfig() buildConfig {
	return buildConfig{
		diag:        spec.DefaultConfig(),
		parallelism: runtime.NumCPU(),
	}
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) Option {
	return func(c *buildConfig) { c.logger = logger }
}

// WithConfig sets the diagnostic configuration: severity overrides, ignored
// codes, and strict mode.
func WithConfig(cfg spec.Config) Option {
	return func(c *buildConfig) { c.diag = cfg }
}

// WithParallelism caps the number of module files parsed concurrently.
// Values below one fall back to the number of CPUs.
func WithParallelism(n int) Option {
	return func(c *buildConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithNoHeuristic disables the content sniff that skips files which do not
// look like dazzle modules.
func WithNoHeuristic() Option {
	return func(c *buildConfig) { c.noHeuristic = true }
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("component", component))
}
