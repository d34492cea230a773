package graph

import (
	"log/slog"

	"github.com/manwithacat/dazzle-sub010/internal/module"
	"github.com/manwithacat/dazzle-sub010/internal/types"
	"github.com/manwithacat/dazzle-sub010/spec"
)

// Order builds the dependency graph over the given modules and returns them
// in processing order: dependencies before dependents, ties broken by name.
// A dependency on a module that was never parsed, or any dependency cycle,
// is fatal: no valid processing order exists and no ordering is returned.
func Order(mods []*module.Module, logger *slog.Logger) ([]*module.Module, *spec.GraphError) {
	log := types.Logger{L: logger}

	byName := make(map[string]*module.Module, len(mods))
	g := New()
	for _, mod := range mods {
		byName[mod.Name] = mod
		g.AddNode(mod.Name)
	}

	var missing []spec.MissingDep
	for _, mod := range mods {
		for _, use := range mod.Uses {
			if _, ok := byName[use.Module]; !ok {
				missing = append(missing, spec.MissingDep{Module: mod.Name, Target: use.Module})
				continue
			}
			g.AddEdge(mod.Name, use.Module)
		}
	}

	cycles := g.FindCycles()
	if len(missing) > 0 || len(cycles) > 0 {
		log.Log(slog.LevelWarn, "module graph has no valid processing order",
			slog.Int("missing", len(missing)),
			slog.Int("cycles", len(cycles)))
		return nil, &spec.GraphError{Missing: missing, Cycles: cycles}
	}

	names, _ := g.ProcessingOrder()
	ordered := make([]*module.Module, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, byName[name])
	}

	log.Log(slog.LevelDebug, "processing order settled",
		slog.Int("modules", len(ordered)))

	return ordered, nil
}
