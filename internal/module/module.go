// Package module provides the normalized per-module representation consumed
// by the graph builder and linker.
//
// Lowering keeps the AST's declarations untouched (linking owns all
// cross-construct interpretation) and adds what the later phases need:
// flattened, deduplicated dependency edges, a line table for converting raw
// spans to line/column positions after the source bytes are released, and
// the module's diagnostics converted to their final reportable form.
package module

import (
	"sort"

	"github.com/manwithacat/dazzle-sub010/internal/ast"
	"github.com/manwithacat/dazzle-sub010/internal/types"
	"github.com/manwithacat/dazzle-sub010/spec"
)

// Module is a parsed, lowered module ready for graph building and linking.
type Module struct {
	Name        string
	Path        string // origin path, for tooling; empty for in-memory sources
	Uses        []Use
	Decls       []ast.Decl
	Span        types.Span
	Diagnostics []spec.Diagnostic

	// lineTable holds the byte offset where each line begins.
	// Entry i is the start of line i+1.
	lineTable []int
}

// Use is one declared dependency edge, in declaration order.
type Use struct {
	Module string
	Line   int
	Column int
}

// HasErrors reports whether this module has any error-level diagnostics.
func (m *Module) HasErrors() bool {
	for _, d := range m.Diagnostics {
		if d.Severity == spec.SeverityError {
			return true
		}
	}
	return false
}

// Position converts a span to a 1-based line and column.
func (m *Module) Position(span types.Span) (line, column int) {
	offset := int(span.Start)
	idx := sort.Search(len(m.lineTable), func(i int) bool {
		return m.lineTable[i] > offset
	})
	if idx == 0 {
		return 1, offset + 1
	}
	return idx, offset - m.lineTable[idx-1] + 1
}

// Diagnostic converts a span diagnostic to its final reportable form,
// attributed to this module.
func (m *Module) Diagnostic(d types.SpanDiagnostic) spec.Diagnostic {
	line, column := m.Position(d.Span)
	return spec.Diagnostic{
		Severity: d.Severity,
		Code:     d.Code,
		Message:  d.Message,
		Module:   m.Name,
		Line:     line,
		Column:   column,
	}
}

// buildLineTable records the byte offset of every line start.
func buildLineTable(source []byte) []int {
	table := []int{0}
	for i, b := range source {
		if b == '\n' {
			table = append(table, i+1)
		}
	}
	return table
}
