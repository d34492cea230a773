package module

import (
	"fmt"
	"log/slog"

	"github.com/manwithacat/dazzle-sub010/internal/ast"
	"github.com/manwithacat/dazzle-sub010/internal/types"
	"github.com/manwithacat/dazzle-sub010/spec"
)

// Lower converts a parsed AST into a Module. The fallbackName (usually the
// module name the input tuple was supplied under) is used when the file's
// own header failed to parse, so diagnostics stay attributable. Lower never
// returns nil: even a file that produced nothing but syntax errors yields a
// module carrying those diagnostics.
func Lower(tree *ast.Module, source []byte, path, fallbackName string, logger *slog.Logger, cfg spec.Config) *Module {
	log := types.Logger{L: logger}

	mod := &Module{
		Name:      tree.Name.Name,
		Path:      path,
		Decls:     tree.Decls,
		Span:      tree.Span,
		lineTable: buildLineTable(source),
	}
	if mod.Name == "" {
		mod.Name = fallbackName
	}

	for _, d := range tree.Diagnostics {
		mod.Diagnostics = append(mod.Diagnostics, mod.Diagnostic(d))
	}

	seen := make(map[string]struct{}, len(tree.Uses))
	for _, use := range tree.Uses {
		name := use.Module.Name
		line, column := mod.Position(use.Module.Span)
		if _, dup := seen[name]; dup {
			if cfg.ShouldReport(spec.CodeDuplicateUses) {
				mod.Diagnostics = append(mod.Diagnostics, spec.Diagnostic{
					Severity: cfg.Effective(spec.CodeDuplicateUses, spec.SeverityWarning),
					Code:     spec.CodeDuplicateUses,
					Message:  fmt.Sprintf("duplicate uses of module %q", name),
					Module:   mod.Name,
					Line:     line,
					Column:   column,
				})
			}
			continue
		}
		seen[name] = struct{}{}
		mod.Uses = append(mod.Uses, Use{Module: name, Line: line, Column: column})
	}

	log.Log(slog.LevelDebug, "module lowered",
		slog.String("module", mod.Name),
		slog.Int("uses", len(mod.Uses)),
		slog.Int("declarations", len(mod.Decls)),
		slog.Int("diagnostics", len(mod.Diagnostics)))

	return mod
}
