package spec

import "fmt"

// ID addresses a declaration in the model's flat arena. IDs are stable for
// one build invocation and identical across runs on identical input.
type ID int

// NoID marks an absent or unresolved declaration reference.
const NoID ID = -1

// RefState tracks the lifecycle of a cross-construct reference.
type RefState int

const (
	// RefUnresolved is the initial state, before resolution runs.
	RefUnresolved RefState = iota
	// RefResolved means Target points at the resolved declaration.
	RefResolved
	// RefError means resolution failed; exactly one diagnostic explains why.
	RefError
)

// String returns the lowercase name of the state.
func (s RefState) String() string {
	switch s {
	case RefUnresolved:
		return "unresolved"
	case RefResolved:
		return "resolved"
	case RefError:
		return "error"
	default:
		return fmt.Sprintf("refstate(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s RefState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Ref is a mention of another declaration by name, optionally
// module-qualified (e.g. "User" or "shop.core.User"). After linking it is
// either Resolved with a concrete target id, or Error with Target == NoID.
type Ref struct {
	Raw    string   `json:"raw" yaml:"raw"`
	Target ID       `json:"target" yaml:"target"`
	State  RefState `json:"state" yaml:"state"`
	Line   int      `json:"line,omitempty" yaml:"line,omitempty"`
	Column int      `json:"column,omitempty" yaml:"column,omitempty"`
}

// Resolved reports whether the reference points at a concrete declaration.
func (r Ref) Resolved() bool {
	return r.State == RefResolved && r.Target != NoID
}

// SplitName splits a possibly qualified name into module and local parts.
// "shop.core.User" yields ("shop.core", "User"); "User" yields ("", "User").
func SplitName(raw string) (module, name string) {
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i] == '.' {
			return raw[:i], raw[i+1:]
		}
	}
	return "", raw
}

// Kind identifies a declaration's construct kind. The set is closed; the
// linker and validator switch exhaustively over it.
type Kind int

const (
	KindEntity Kind = iota
	KindSurface
	KindExperience
	KindService
	KindForeign
	KindIntegration
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindSurface:
		return "surface"
	case KindExperience:
		return "experience"
	case KindService:
		return "service"
	case KindForeign:
		return "foreign"
	case KindIntegration:
		return "integration"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DeclInfo is the header shared by every declaration kind.
type DeclInfo struct {
	ID     ID     `json:"id" yaml:"id"`
	Kind   Kind   `json:"kind" yaml:"kind"`
	Module string `json:"module" yaml:"module"`
	Name   string `json:"name" yaml:"name"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// QualifiedName returns "module.Name".
func (d *DeclInfo) QualifiedName() string {
	return d.Module + "." + d.Name
}

// Decl is the closed variant over declaration kinds.
type Decl interface {
	Info() *DeclInfo
	isDecl()
}

// TypeKind discriminates field type descriptors.
type TypeKind int

const (
	TypeScalar TypeKind = iota
	TypeRef
	TypeEnum
)

// String returns the lowercase name of the type kind.
func (k TypeKind) String() string {
	switch k {
	case TypeScalar:
		return "scalar"
	case TypeRef:
		return "ref"
	case TypeEnum:
		return "enum"
	default:
		return fmt.Sprintf("typekind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k TypeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ScalarType enumerates the built-in scalar field types.
type ScalarType int

const (
	ScalarText ScalarType = iota
	ScalarInt
	ScalarDecimal
	ScalarBool
	ScalarDate
	ScalarTimestamp
	ScalarUUID
	ScalarJSON
)

var scalarNames = map[ScalarType]string{
	ScalarText:      "text",
	ScalarInt:       "int",
	ScalarDecimal:   "decimal",
	ScalarBool:      "bool",
	ScalarDate:      "date",
	ScalarTimestamp: "timestamp",
	ScalarUUID:      "uuid",
	ScalarJSON:      "json",
}

// String returns the surface-syntax name of the scalar type.
func (s ScalarType) String() string {
	if name, ok := scalarNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scalar(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s ScalarType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseScalar maps a surface-syntax type name to its ScalarType.
func ParseScalar(name string) (ScalarType, bool) {
	switch name {
	case "text":
		return ScalarText, true
	case "int":
		return ScalarInt, true
	case "decimal":
		return ScalarDecimal, true
	case "bool":
		return ScalarBool, true
	case "date":
		return ScalarDate, true
	case "timestamp":
		return ScalarTimestamp, true
	case "uuid":
		return ScalarUUID, true
	case "json":
		return ScalarJSON, true
	default:
		return 0, false
	}
}

// FieldType describes a field's declared type: a scalar, a reference to an
// entity or foreign shape, or an inline enum.
type FieldType struct {
	Kind   TypeKind   `json:"kind" yaml:"kind"`
	Scalar ScalarType `json:"scalar,omitempty" yaml:"scalar,omitempty"`
	Ref    *Ref       `json:"ref,omitempty" yaml:"ref,omitempty"`
	Enum   []string   `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// LiteralKind discriminates default-value literals.
type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitString
	LitBool
	LitIdent
)

// String returns the lowercase name of the literal kind.
func (k LiteralKind) String() string {
	switch k {
	case LitNumber:
		return "number"
	case LitString:
		return "string"
	case LitBool:
		return "bool"
	case LitIdent:
		return "ident"
	default:
		return fmt.Sprintf("litkind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k LiteralKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Literal is a default value as written in source, plus its lexical kind.
type Literal struct {
	Kind LiteralKind `json:"kind" yaml:"kind"`
	Text string      `json:"text" yaml:"text"`
}

// Field is one ordered field of an entity or foreign shape.
type Field struct {
	Name       string    `json:"name" yaml:"name"`
	Type       FieldType `json:"type" yaml:"type"`
	Required   bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Unique     bool      `json:"unique,omitempty" yaml:"unique,omitempty"`
	PrimaryKey bool      `json:"pk,omitempty" yaml:"pk,omitempty"`
	Default    *Literal  `json:"default,omitempty" yaml:"default,omitempty"`
	Line       int       `json:"line,omitempty" yaml:"line,omitempty"`
	Column     int       `json:"column,omitempty" yaml:"column,omitempty"`
}

// Entity is a data entity with ordered fields.
type Entity struct {
	DeclInfo `yaml:",inline"`
	Fields   []Field `json:"fields" yaml:"fields"`
}

func (e *Entity) Info() *DeclInfo { return &e.DeclInfo }
func (e *Entity) isDecl()         {}

// Field returns the named field, if present.
func (e *Entity) Field(name string) (*Field, bool) {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i], true
		}
	}
	return nil, false
}

// SurfaceMode selects the presentation style of a surface.
type SurfaceMode int

const (
	ModeList SurfaceMode = iota
	ModeDetail
	ModeForm
)

// String returns the surface-syntax name of the mode.
func (m SurfaceMode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeDetail:
		return "detail"
	case ModeForm:
		return "form"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m SurfaceMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseSurfaceMode maps a surface-syntax mode name to its SurfaceMode.
func ParseSurfaceMode(name string) (SurfaceMode, bool) {
	switch name {
	case "list":
		return ModeList, true
	case "detail":
		return ModeDetail, true
	case "form":
		return ModeForm, true
	default:
		return 0, false
	}
}

// Show is one ordered field display of a surface. The field name is checked
// against the resolved entity after reference resolution.
type Show struct {
	Field  string `json:"field" yaml:"field"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// Surface is a UI-facing view over an entity.
type Surface struct {
	DeclInfo `yaml:",inline"`
	Over     Ref         `json:"over" yaml:"over"`
	Mode     SurfaceMode `json:"mode" yaml:"mode"`
	Shows    []Show      `json:"shows" yaml:"shows"`
}

func (s *Surface) Info() *DeclInfo { return &s.DeclInfo }
func (s *Surface) isDecl()         {}

// Goto is a transition from one workflow step to another by name.
type Goto struct {
	Target string `json:"target" yaml:"target"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// Step is one named state of an experience workflow.
type Step struct {
	Name   string `json:"name" yaml:"name"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Gotos  []Goto `json:"gotos,omitempty" yaml:"gotos,omitempty"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// Experience is a workflow with named steps and transitions.
type Experience struct {
	DeclInfo `yaml:",inline"`
	Entry    string `json:"entry,omitempty" yaml:"entry,omitempty"`
	Steps    []Step `json:"steps" yaml:"steps"`
}

func (e *Experience) Info() *DeclInfo { return &e.DeclInfo }
func (e *Experience) isDecl()         {}

// Step returns the named step, if present.
func (e *Experience) Step(name string) (*Step, bool) {
	for i := range e.Steps {
		if e.Steps[i].Name == name {
			return &e.Steps[i], true
		}
	}
	return nil, false
}

// Param is one named parameter of a service operation.
type Param struct {
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"type" yaml:"type"`
}

// Operation is one callable operation of a service.
type Operation struct {
	Name   string     `json:"name" yaml:"name"`
	Params []Param    `json:"params,omitempty" yaml:"params,omitempty"`
	Result *FieldType `json:"result,omitempty" yaml:"result,omitempty"`
	Line   int        `json:"line,omitempty" yaml:"line,omitempty"`
	Column int        `json:"column,omitempty" yaml:"column,omitempty"`
}

// Service is an external-service binding with ordered operations.
type Service struct {
	DeclInfo   `yaml:",inline"`
	Protocol   string      `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Endpoint   string      `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Operations []Operation `json:"operations" yaml:"operations"`
}

func (s *Service) Info() *DeclInfo { return &s.DeclInfo }
func (s *Service) isDecl()         {}

// Operation returns the named operation, if present.
func (s *Service) Operation(name string) (*Operation, bool) {
	for i := range s.Operations {
		if s.Operations[i].Name == name {
			return &s.Operations[i], true
		}
	}
	return nil, false
}

// ForeignModel is a data shape owned by an external service.
type ForeignModel struct {
	DeclInfo `yaml:",inline"`
	Of       Ref     `json:"of" yaml:"of"`
	Fields   []Field `json:"fields" yaml:"fields"`
}

func (f *ForeignModel) Info() *DeclInfo { return &f.DeclInfo }
func (f *ForeignModel) isDecl()         {}

// Field returns the named field, if present.
func (f *ForeignModel) Field(name string) (*Field, bool) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i], true
		}
	}
	return nil, false
}

// ServiceCall names a service operation: "Stripe.charge".
type ServiceCall struct {
	Service   Ref    `json:"service" yaml:"service"`
	Operation string `json:"operation" yaml:"operation"`
}

// Integration binds a service operation to the entity it feeds.
type Integration struct {
	DeclInfo `yaml:",inline"`
	Calls    ServiceCall `json:"calls" yaml:"calls"`
	Feeds    Ref         `json:"feeds" yaml:"feeds"`
}

func (i *Integration) Info() *DeclInfo { return &i.DeclInfo }
func (i *Integration) isDecl()         {}

// ModuleInfo records one module in processing order.
type ModuleInfo struct {
	Name string   `json:"name" yaml:"name"`
	Path string   `json:"path,omitempty" yaml:"path,omitempty"`
	Uses []string `json:"uses,omitempty" yaml:"uses,omitempty"`
}

// Model is the fully linked intermediate representation consumed by
// downstream generators and editor tooling. It is immutable after linking.
type Model struct {
	Modules       []ModuleInfo    `json:"modules" yaml:"modules"`
	Entities      []*Entity       `json:"entities" yaml:"entities"`
	Surfaces      []*Surface      `json:"surfaces" yaml:"surfaces"`
	Experiences   []*Experience   `json:"experiences" yaml:"experiences"`
	Services      []*Service      `json:"services" yaml:"services"`
	ForeignModels []*ForeignModel `json:"foreign_models" yaml:"foreign_models"`
	Integrations  []*Integration  `json:"integrations" yaml:"integrations"`
	Diagnostics   []Diagnostic    `json:"diagnostics" yaml:"diagnostics"`

	decls  []Decl
	byName map[symbolKey]ID
}

type symbolKey struct {
	module string
	name   string
}

// Decl returns the declaration with the given arena id, or nil.
func (m *Model) Decl(id ID) Decl {
	if id < 0 || int(id) >= len(m.decls) {
		return nil
	}
	return m.decls[id]
}

// DeclCount returns the number of declarations in the arena.
func (m *Model) DeclCount() int {
	return len(m.decls)
}

// Lookup returns the declaration with the given module-local name.
func (m *Model) Lookup(module, name string) (Decl, bool) {
	id, ok := m.byName[symbolKey{module: module, name: name}]
	if !ok {
		return nil, false
	}
	return m.decls[id], true
}

// HasErrors reports whether any diagnostic has error severity.
func (m *Model) HasErrors() bool {
	for _, d := range m.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Failed reports whether the run failed under the given configuration.
func (m *Model) Failed(cfg Config) bool {
	for _, d := range m.Diagnostics {
		if cfg.Fails(d.Severity) {
			return true
		}
	}
	return false
}
