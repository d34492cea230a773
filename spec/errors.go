package spec

import (
	"fmt"
	"strings"
)

// MissingDep records a declared dependency whose target module was never
// parsed.
type MissingDep struct {
	Module string // declaring module
	Target string // missing dependency target
}

// GraphError reports a module dependency graph that admits no valid
// processing order: missing modules, dependency cycles, or both. It is fatal
// for the whole run; no model is produced.
type GraphError struct {
	Missing []MissingDep
	Cycles  [][]string // each cycle lists participants in dependency order
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	var parts []string
	for _, m := range e.Missing {
		parts = append(parts, fmt.Sprintf("module %q depends on missing module %q", m.Module, m.Target))
	}
	for _, c := range e.Cycles {
		parts = append(parts, fmt.Sprintf("dependency cycle: %s", strings.Join(c, " -> ")))
	}
	if len(parts) == 0 {
		return "module graph error"
	}
	return "module graph error: " + strings.Join(parts, "; ")
}

// Diagnostics renders the graph error as diagnostics, one per missing
// dependency and one per cycle.
func (e *GraphError) Diagnostics() []Diagnostic {
	var diags []Diagnostic
	for _, m := range e.Missing {
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Code:     CodeMissingModule,
			Message:  fmt.Sprintf("module %q depends on missing module %q", m.Module, m.Target),
			Module:   m.Module,
			Hint:     fmt.Sprintf("add a file declaring module %s or drop the uses line", m.Target),
		})
	}
	for _, c := range e.Cycles {
		if len(c) == 0 {
			continue
		}
		// One diagnostic per cycle, attributed to its first participant.
		diags = append(diags, Diagnostic{
			Severity: SeverityError,
			Code:     CodeDependencyCycle,
			Message:  fmt.Sprintf("dependency cycle: %s", strings.Join(c, " -> ")),
			Module:   c[0],
		})
	}
	return diags
}
