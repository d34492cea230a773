package spec

// Builder constructs a Model incrementally.
// Use NewBuilder() to create a builder, add modules and declarations,
// then call Model() to get the final immutable Model.
//
// This type is intended for internal use by the linker.
// Most users should use the Compile and Load functions from the root package.
type Builder struct {
	model *Model
}

// NewBuilder creates a new Builder with an empty Model.
func NewBuilder() *Builder {
	return &Builder{model: &Model{
		Modules:       []ModuleInfo{},
		Entities:      []*Entity{},
		Surfaces:      []*Surface{},
		Experiences:   []*Experience{},
		Services:      []*Service{},
		ForeignModels: []*ForeignModel{},
		Integrations:  []*Integration{},
		Diagnostics:   []Diagnostic{},
		byName:        make(map[symbolKey]ID),
	}}
}

// Model returns the constructed Model.
// After calling this, the Builder should not be used further.
func (b *Builder) Model() *Model {
	return b.model
}

// AddModule records a module in processing order.
func (b *Builder) AddModule(info ModuleInfo) {
	b.model.Modules = append(b.model.Modules, info)
}

// Add appends a declaration to the arena, assigns its id, and indexes it by
// (module, name). The caller must have rejected duplicates via Lookup first.
func (b *Builder) Add(d Decl) ID {
	info := d.Info()
	id := ID(len(b.model.decls))
	info.ID = id
	b.model.decls = append(b.model.decls, d)
	b.model.byName[symbolKey{module: info.Module, name: info.Name}] = id

	switch d := d.(type) {
	case *Entity:
		b.model.Entities = append(b.model.Entities, d)
	case *Surface:
		b.model.Surfaces = append(b.model.Surfaces, d)
	case *Experience:
		b.model.Experiences = append(b.model.Experiences, d)
	case *Service:
		b.model.Services = append(b.model.Services, d)
	case *ForeignModel:
		b.model.ForeignModels = append(b.model.ForeignModels, d)
	case *Integration:
		b.model.Integrations = append(b.model.Integrations, d)
	}
	return id
}

// Lookup returns the already-registered declaration with the given
// module-local name.
func (b *Builder) Lookup(module, name string) (Decl, bool) {
	return b.model.Lookup(module, name)
}

// AddDiagnostic appends a diagnostic to the model.
func (b *Builder) AddDiagnostic(d Diagnostic) {
	b.model.Diagnostics = append(b.model.Diagnostics, d)
}

// DeclCount returns the number of declarations added so far.
func (b *Builder) DeclCount() int {
	return len(b.model.decls)
}
