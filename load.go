package dazzle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/manwithacat/dazzle-sub010/internal/graph"
	"github.com/manwithacat/dazzle-sub010/internal/linker"
	"github.com/manwithacat/dazzle-sub010/internal/module"
	"github.com/manwithacat/dazzle-sub010/internal/parser"
	"github.com/manwithacat/dazzle-sub010/internal/validator"
	"github.com/manwithacat/dazzle-sub010/spec"
)

// ModuleInput is one module file handed directly to Compile. Name is the
// expected module name, used as a fallback when the file's header is
// unparseable; Path is reported in tooling output and may be empty for
// in-memory sources.
type ModuleInput struct {
	Name   string
	Source string
	Path   string
}

// Compile parses the given modules, orders their dependency graph, links
// cross-construct references, and validates the result.
//
// A missing dependency or a dependency cycle is fatal: Compile returns a nil
// model and a *spec.GraphError describing every missing module and cycle.
// All other problems are reported as diagnostics on the returned model;
// inspect Model.HasErrors or Model.Failed to decide whether to proceed.
//
// Inputs sharing a module name are collapsed to the first occurrence, with a
// warning. Identical inputs yield an identical model, including diagnostic
// order.
func Compile(ctx context.Context, inputs []ModuleInput, opts ...Option) (*spec.Model, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}

	if logEnabled(cfg.logger, slog.LevelInfo) {
		cfg.logger.LogAttrs(ctx, slog.LevelInfo, "compiling",
			slog.Int("inputs", len(inputs)))
	}

	// Parse in parallel; results land at the input's index so the outcome
	// is independent of scheduling.
	parsed := make([]*module.Module, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.parallelism)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parsed[i] = parseOne(in, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mods, extra := dedupeModules(parsed, cfg.diag)
	return build(ctx, mods, extra, cfg)
}

// Load discovers modules through a source. With a root module name it loads
// that module and, transitively, everything it uses; with an empty root it
// loads every file the source lists. Use Multi() to combine sources.
func Load(ctx context.Context, source Source, root string, opts ...Option) (*spec.Model, error) {
	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if source == nil {
		return nil, ErrNoSources
	}

	if root == "" {
		return loadAll(ctx, source, cfg)
	}
	return loadByRoot(ctx, source, root, cfg)
}

// loadAll parses every file the source lists, in parallel.
func loadAll(ctx context.Context, source Source, cfg buildConfig) (*spec.Model, error) {
	files, err := source.ListFiles()
	if err != nil {
		return nil, err
	}

	if logEnabled(cfg.logger, slog.LevelInfo) {
		cfg.logger.LogAttrs(ctx, slog.LevelInfo, "loading source tree",
			slog.Int("files", len(files)))
	}

	parsed := make([]*module.Module, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.parallelism)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if !cfg.noHeuristic && !looksLikeModule(content) {
				if logEnabled(cfg.logger, slog.LevelDebug) {
					cfg.logger.LogAttrs(gctx, slog.LevelDebug, "content rejected by heuristic",
						slog.String("path", path))
				}
				return nil
			}
			parsed[i] = parseOne(ModuleInput{
				Name:   moduleNameFromPath(path),
				Source: string(content),
				Path:   path,
			}, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mods, extra := dedupeModules(parsed, cfg.diag)
	return build(ctx, mods, extra, cfg)
}

// loadByRoot loads the root module and walks its uses clauses depth-first in
// declared order. Modules the source cannot find are left out; the graph
// phase reports them as missing dependencies.
func loadByRoot(ctx context.Context, source Source, root string, cfg buildConfig) (*spec.Model, error) {
	loaded := make(map[string]bool)
	var mods []*module.Module

	var loadOne func(name string) error
	loadOne = func(name string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if loaded[name] {
			return nil
		}
		loaded[name] = true

		content, path, err := findModuleContent(source, name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if logEnabled(cfg.logger, slog.LevelDebug) {
					cfg.logger.LogAttrs(ctx, slog.LevelDebug, "module not found",
						slog.String("module", name))
				}
				return nil
			}
			return err
		}
		if !cfg.noHeuristic && !looksLikeModule(content) {
			if logEnabled(cfg.logger, slog.LevelDebug) {
				cfg.logger.LogAttrs(ctx, slog.LevelDebug, "content rejected by heuristic",
					slog.String("module", name))
			}
			return nil
		}

		mod := parseOne(ModuleInput{Name: name, Source: string(content), Path: path}, cfg)
		mods = append(mods, mod)

		for _, use := range mod.Uses {
			if err := loadOne(use.Module); err != nil {
				return err
			}
		}
		return nil
	}

	if err := loadOne(root); err != nil {
		return nil, err
	}
	if len(mods) == 0 {
		return nil, fmt.Errorf("root module %q: %w", root, fs.ErrNotExist)
	}

	return build(ctx, mods, nil, cfg)
}

// parseOne parses and lowers a single module input. It never returns nil;
// parse failures surface as diagnostics on the lowered module.
func parseOne(in ModuleInput, cfg buildConfig) *module.Module {
	source := []byte(in.Source)
	p := parser.New(source, componentLogger(cfg.logger, "parser"), cfg.diag)
	tree := p.ParseModule()
	return module.Lower(tree, source, in.Path, in.Name,
		componentLogger(cfg.logger, "module"), cfg.diag)
}

// dedupeModules collapses modules sharing a name to the first occurrence,
// preserving input order. Later occurrences produce a warning.
func dedupeModules(parsed []*module.Module, diag spec.Config) ([]*module.Module, []spec.Diagnostic) {
	seen := make(map[string]bool)
	var mods []*module.Module
	var extra []spec.Diagnostic
	for _, mod := range parsed {
		if mod == nil {
			continue
		}
		if seen[mod.Name] {
			if diag.ShouldReport(spec.CodeDuplicateModule) {
				extra = append(extra, spec.Diagnostic{
					Severity: diag.Effective(spec.CodeDuplicateModule, spec.SeverityWarning),
					Code:     spec.CodeDuplicateModule,
					Message:  "module " + mod.Name + " is declared more than once; using the first occurrence",
					Module:   mod.Name,
				})
			}
			continue
		}
		seen[mod.Name] = true
		mods = append(mods, mod)
	}
	return mods, extra
}

// build runs the back half of the pipeline: graph ordering, linking, and
// validation.
func build(ctx context.Context, mods []*module.Module, extra []spec.Diagnostic, cfg buildConfig) (*spec.Model, error) {
	ordered, gerr := graph.Order(mods, componentLogger(cfg.logger, "graph"))
	if gerr != nil {
		return nil, gerr
	}

	model := linker.Link(ordered, componentLogger(cfg.logger, "linker"), cfg.diag)
	model.Diagnostics = append(model.Diagnostics, extra...)

	if err := validator.Run(ctx, model, componentLogger(cfg.logger, "validator"), cfg.diag); err != nil {
		return nil, err
	}

	if logEnabled(cfg.logger, slog.LevelInfo) {
		cfg.logger.LogAttrs(ctx, slog.LevelInfo, "build complete",
			slog.Int("modules", len(ordered)),
			slog.Int("declarations", model.DeclCount()),
			slog.Int("diagnostics", len(model.Diagnostics)))
	}
	return model, nil
}

func findModuleContent(source Source, name string) ([]byte, string, error) {
	r, path, err := source.Find(name)
	if err != nil {
		return nil, "", err
	}
	defer r.Close()
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, path, err
	}
	return content, path, nil
}

// looksLikeModule sniffs whether content is plausibly a dazzle module: no
// binary junk, and the first significant line starts with the module keyword.
func looksLikeModule(content []byte) bool {
	head := content
	if len(head) > 512 {
		head = head[:512]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	for line := range bytes.Lines(content) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '#' {
			continue
		}
		return bytes.HasPrefix(trimmed, []byte("module")) &&
			(len(trimmed) == len("module") || trimmed[len("module")] == ' ' || trimmed[len("module")] == '\t')
	}
	return false
}

// logEnabled returns true if logging is enabled at the given level.
func logEnabled(logger *slog.Logger, level slog.Level) bool {
	return logger != nil && logger.Enabled(context.Background(), level)
}
