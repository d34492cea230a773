package linker

import (
	"github.com/manwithacat/dazzle-sub010/internal/ast"
	"github.com/manwithacat/dazzle-sub010/internal/module"
	"github.com/manwithacat/dazzle-sub010/spec"
)

// convert lowers an AST declaration into its model form. Positions are
// resolved through the module's line table here, after which spans are no
// longer needed. The switch is exhaustive over the closed declaration set.
func (l *linker) convert(mod *module.Module, d ast.Decl) spec.Decl {
	switch d := d.(type) {
	case *ast.EntityDecl:
		return &spec.Entity{
			DeclInfo: l.declInfo(mod, spec.KindEntity, d.Name, d.Label),
			Fields:   l.convertFields(mod, d.Fields),
		}
	case *ast.SurfaceDecl:
		return &spec.Surface{
			DeclInfo: l.declInfo(mod, spec.KindSurface, d.Name, d.Label),
			Over:     l.ref(mod, d.Over),
			Mode:     d.Mode,
			Shows:    l.convertShows(mod, d.Shows),
		}
	case *ast.ExperienceDecl:
		exp := &spec.Experience{
			DeclInfo: l.declInfo(mod, spec.KindExperience, d.Name, d.Label),
			Steps:    make([]spec.Step, 0, len(d.Steps)),
		}
		if d.Entry != nil {
			exp.Entry = d.Entry.Name
		}
		for _, step := range d.Steps {
			line, column := mod.Position(step.Name.Span)
			s := spec.Step{
				Name:   step.Name.Name,
				Label:  litText(step.Label),
				Line:   line,
				Column: column,
			}
			for _, g := range step.Gotos {
				gl, gc := mod.Position(g.Span)
				s.Gotos = append(s.Gotos, spec.Goto{Target: g.Name, Line: gl, Column: gc})
			}
			exp.Steps = append(exp.Steps, s)
		}
		return exp
	case *ast.ServiceDecl:
		svc := &spec.Service{
			DeclInfo:   l.declInfo(mod, spec.KindService, d.Name, d.Label),
			Endpoint:   litText(d.Endpoint),
			Operations: make([]spec.Operation, 0, len(d.Operations)),
		}
		if d.Protocol != nil {
			svc.Protocol = d.Protocol.Name
		}
		for _, opDecl := range d.Operations {
			line, column := mod.Position(opDecl.Name.Span)
			op := spec.Operation{
				Name:   opDecl.Name.Name,
				Line:   line,
				Column: column,
			}
			for _, p := range opDecl.Params {
				op.Params = append(op.Params, spec.Param{
					Name: p.Name.Name,
					Type: l.fieldType(mod, p.Type),
				})
			}
			if opDecl.Result != nil {
				result := l.fieldType(mod, *opDecl.Result)
				op.Result = &result
			}
			svc.Operations = append(svc.Operations, op)
		}
		return svc
	case *ast.ForeignDecl:
		return &spec.ForeignModel{
			DeclInfo: l.declInfo(mod, spec.KindForeign, d.Name, d.Label),
			Of:       l.ref(mod, d.Of),
			Fields:   l.convertFields(mod, d.Fields),
		}
	case *ast.IntegrationDecl:
		// Absent clauses still get Target == NoID so no reference ever
		// carries a live arena id without being resolved.
		integ := &spec.Integration{
			DeclInfo: l.declInfo(mod, spec.KindIntegration, d.Name, d.Label),
			Calls:    spec.ServiceCall{Service: spec.Ref{Target: spec.NoID}},
			Feeds:    spec.Ref{Target: spec.NoID},
		}
		if d.Calls != nil {
			integ.Calls = spec.ServiceCall{
				Service:   l.ref(mod, d.Calls.Service),
				Operation: d.Calls.Operation,
			}
		}
		if d.Feeds != nil {
			integ.Feeds = l.ref(mod, *d.Feeds)
		}
		return integ
	default:
		return nil
	}
}

func (l *linker) declInfo(mod *module.Module, kind spec.Kind, name ast.Ident, label *ast.StringLit) spec.DeclInfo {
	line, column := mod.Position(name.Span)
	return spec.DeclInfo{
		ID:     spec.NoID, // assigned by the builder
		Kind:   kind,
		Module: mod.Name,
		Name:   name.Name,
		Label:  litText(label),
		Line:   line,
		Column: column,
	}
}

func (l *linker) convertFields(mod *module.Module, fields []ast.FieldDecl) []spec.Field {
	out := make([]spec.Field, 0, len(fields))
	for _, f := range fields {
		line, column := mod.Position(f.Name.Span)
		field := spec.Field{
			Name:       f.Name.Name,
			Type:       l.fieldType(mod, f.Type),
			Required:   f.Required,
			Unique:     f.Unique,
			PrimaryKey: f.PrimaryKey,
			Line:       line,
			Column:     column,
		}
		if f.Default != nil {
			field.Default = &spec.Literal{Kind: f.Default.Kind, Text: f.Default.Text}
		}
		out = append(out, field)
	}
	return out
}

func (l *linker) convertShows(mod *module.Module, shows []ast.ShowClause) []spec.Show {
	out := make([]spec.Show, 0, len(shows))
	for _, s := range shows {
		line, column := mod.Position(s.Field.Span)
		out = append(out, spec.Show{Field: s.Field.Name, Line: line, Column: column})
	}
	return out
}

func (l *linker) fieldType(mod *module.Module, t ast.TypeExpr) spec.FieldType {
	switch t.Kind {
	case spec.TypeRef:
		ref := l.ref(mod, t.Ref)
		return spec.FieldType{Kind: spec.TypeRef, Ref: &ref}
	case spec.TypeEnum:
		members := make([]string, 0, len(t.Enum))
		for _, m := range t.Enum {
			members = append(members, m.Name)
		}
		return spec.FieldType{Kind: spec.TypeEnum, Enum: members}
	default:
		return spec.FieldType{Kind: spec.TypeScalar, Scalar: t.Scalar}
	}
}

// ref creates an unresolved reference from a raw identifier.
func (l *linker) ref(mod *module.Module, id ast.Ident) spec.Ref {
	line, column := mod.Position(id.Span)
	return spec.Ref{
		Raw:    id.Name,
		Target: spec.NoID,
		State:  spec.RefUnresolved,
		Line:   line,
		Column: column,
	}
}

func litText(s *ast.StringLit) string {
	if s == nil {
		return ""
	}
	return s.Value
}
