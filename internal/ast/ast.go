// Package ast provides syntax tree types for parsed dazzle modules.
//
// The tree is a faithful, ordered record of one module file: the module
// header, its uses clauses, and its top-level declarations in source order.
// Every node carries a byte-offset span for diagnostics and editor use.
// Nothing here is resolved; cross-construct names stay raw text until the
// linker runs.
package ast

import (
	"slices"

	"github.com/manwithacat/dazzle-sub010/internal/types"
	"github.com/manwithacat/dazzle-sub010/spec"
)

// Ident is an identifier with source location. Name may be dotted for
// module-qualified references.
type Ident struct {
	Name string
	Span types.Span
}

// NewIdent creates a new identifier.
func NewIdent(name string, span types.Span) Ident {
	return Ident{Name: name, Span: span}
}

// IsQualified reports whether the identifier carries a module qualifier.
func (i Ident) IsQualified() bool {
	for j := 0; j < len(i.Name); j++ {
		if i.Name[j] == '.' {
			return true
		}
	}
	return false
}

// StringLit is a quoted string literal with source location.
type StringLit struct {
	Value string
	Span  types.Span
}

// Module is the top-level syntax tree for one parsed module file.
type Module struct {
	Name        Ident
	Uses        []UseClause
	Decls       []Decl
	Span        types.Span
	Diagnostics []types.SpanDiagnostic
}

// HasErrors reports whether any diagnostic has error severity.
func (m *Module) HasErrors() bool {
	return slices.ContainsFunc(m.Diagnostics, func(d types.SpanDiagnostic) bool {
		return d.Severity == spec.SeverityError
	})
}

// UseClause declares a dependency on another module. Order is significant
// for unqualified reference resolution.
type UseClause struct {
	Module Ident
	Span   types.Span
}

// Decl is a top-level declaration. The kind set is closed.
type Decl interface {
	DeclName() string
	DeclKind() spec.Kind
	DeclSpan() types.Span
	isDecl()
}

// EntityDecl is a data entity with ordered fields.
type EntityDecl struct {
	Name   Ident
	Label  *StringLit
	Fields []FieldDecl
	Span   types.Span
}

func (d *EntityDecl) DeclName() string     { return d.Name.Name }
func (d *EntityDecl) DeclKind() spec.Kind  { return spec.KindEntity }
func (d *EntityDecl) DeclSpan() types.Span { return d.Span }
func (d *EntityDecl) isDecl()              {}

// TypeExpr is a field type descriptor as written: scalar name, ref target,
// or inline enum members.
type TypeExpr struct {
	Kind   spec.TypeKind
	Scalar spec.ScalarType
	Ref    Ident    // set for TypeRef
	Enum   []Ident  // set for TypeEnum
	Span   types.Span
}

// LiteralExpr is a default-value literal as written.
type LiteralExpr struct {
	Kind spec.LiteralKind
	Text string
	Span types.Span
}

// FieldDecl is one ordered field of an entity or foreign shape.
type FieldDecl struct {
	Name       Ident
	Type       TypeExpr
	Required   bool
	Unique     bool
	PrimaryKey bool
	Default    *LiteralExpr
	Span       types.Span
}

// SurfaceDecl is a UI-facing view over an entity.
type SurfaceDecl struct {
	Name  Ident
	Label *StringLit
	Over  Ident
	Mode  spec.SurfaceMode
	Shows []ShowClause
	Span  types.Span
}

func (d *SurfaceDecl) DeclName() string     { return d.Name.Name }
func (d *SurfaceDecl) DeclKind() spec.Kind  { return spec.KindSurface }
func (d *SurfaceDecl) DeclSpan() types.Span { return d.Span }
func (d *SurfaceDecl) isDecl()              {}

// ShowClause selects one field of the surface's entity for display.
type ShowClause struct {
	Field Ident
	Span  types.Span
}

// ExperienceDecl is a workflow with named steps and transitions.
type ExperienceDecl struct {
	Name  Ident
	Label *StringLit
	Entry *Ident
	Steps []StepDecl
	Span  types.Span
}

func (d *ExperienceDecl) DeclName() string     { return d.Name.Name }
func (d *ExperienceDecl) DeclKind() spec.Kind  { return spec.KindExperience }
func (d *ExperienceDecl) DeclSpan() types.Span { return d.Span }
func (d *ExperienceDecl) isDecl()              {}

// StepDecl is one named state of an experience workflow.
type StepDecl struct {
	Name  Ident
	Label *StringLit
	Gotos []Ident
	Span  types.Span
}

// ServiceDecl is an external-service binding with ordered operations.
type ServiceDecl struct {
	Name       Ident
	Label      *StringLit
	Protocol   *Ident
	Endpoint   *StringLit
	Operations []OperationDecl
	Span       types.Span
}

func (d *ServiceDecl) DeclName() string     { return d.Name.Name }
func (d *ServiceDecl) DeclKind() spec.Kind  { return spec.KindService }
func (d *ServiceDecl) DeclSpan() types.Span { return d.Span }
func (d *ServiceDecl) isDecl()              {}

// OperationDecl is one callable operation of a service.
type OperationDecl struct {
	Name   Ident
	Params []ParamDecl
	Result *TypeExpr
	Span   types.Span
}

// ParamDecl is one named parameter of a service operation.
type ParamDecl struct {
	Name Ident
	Type TypeExpr
	Span types.Span
}

// ForeignDecl is a data shape owned by an external service.
type ForeignDecl struct {
	Name   Ident
	Label  *StringLit
	Of     Ident
	Fields []FieldDecl
	Span   types.Span
}

func (d *ForeignDecl) DeclName() string     { return d.Name.Name }
func (d *ForeignDecl) DeclKind() spec.Kind  { return spec.KindForeign }
func (d *ForeignDecl) DeclSpan() types.Span { return d.Span }
func (d *ForeignDecl) isDecl()              {}

// IntegrationDecl binds a service operation to the entity it feeds.
type IntegrationDecl struct {
	Name  Ident
	Label *StringLit
	Calls *CallClause
	Feeds *Ident
	Span  types.Span
}

func (d *IntegrationDecl) DeclName() string     { return d.Name.Name }
func (d *IntegrationDecl) DeclKind() spec.Kind  { return spec.KindIntegration }
func (d *IntegrationDecl) DeclSpan() types.Span { return d.Span }
func (d *IntegrationDecl) isDecl()              {}

// CallClause names a service operation, e.g. "Stripe.charge". Service holds
// everything before the final dot; Operation the final segment.
type CallClause struct {
	Service   Ident
	Operation string
	Span      types.Span
}
