// Package linker composes parsed modules into one reference-resolved model.
//
// Linking runs two passes over the modules in topological processing order:
//
//  1. Collection: every declaration's (module, name) is registered in the
//     symbol table and converted into its model form. Duplicates within a
//     module are fatal; the first registration wins.
//  2. Resolution: every cross-construct reference is resolved against the
//     completed symbol table. Collection finishes across all modules before
//     resolution starts anywhere, so forward references (a name declared in
//     a module processed later) resolve correctly.
//
// Structural checks that need a fully resolved graph (operation names on
// resolved services, shown fields on resolved entities) run last, over
// resolved references only.
//
// Determinism: collection and resolution iterate slices in module processing
// order and source order; no map iteration influences output.
package linker

import (
	"fmt"
	"log/slog"

	"github.com/manwithacat/dazzle-sub010/internal/module"
	"github.com/manwithacat/dazzle-sub010/internal/types"
	"github.com/manwithacat/dazzle-sub010/spec"
)

type linker struct {
	mods      []*module.Module
	modByName map[string]*module.Module
	builder   *spec.Builder
	cfg       spec.Config

	// entries tracks declarations in registration order for the resolution
	// pass, paired with their owning module.
	entries []entry

	types.Logger
}

type entry struct {
	decl spec.Decl
	mod  *module.Module
}

// Link composes the given modules, which must already be in processing
// order, into a reference-resolved model. Collected diagnostics land on the
// model; linking itself never fails.
func Link(mods []*module.Module, logger *slog.Logger, cfg spec.Config) *spec.Model {
	l := &linker{
		mods:      mods,
		modByName: make(map[string]*module.Module, len(mods)),
		builder:   spec.NewBuilder(),
		cfg:       cfg,
		Logger:    types.Logger{L: logger},
	}
	for _, mod := range mods {
		l.modByName[mod.Name] = mod
	}

	l.Log(slog.LevelDebug, "starting phase", slog.String("phase", "collect"))
	l.collect()
	l.Log(slog.LevelDebug, "phase complete", slog.String("phase", "collect"),
		slog.Int("declarations", l.builder.DeclCount()))

	l.Log(slog.LevelDebug, "starting phase", slog.String("phase", "resolve"))
	l.resolve()

	l.Log(slog.LevelDebug, "starting phase", slog.String("phase", "check"))
	l.check()

	model := l.builder.Model()
	l.Log(slog.LevelInfo, "linking complete",
		slog.Int("modules", len(mods)),
		slog.Int("declarations", model.DeclCount()),
		slog.Int("diagnostics", len(model.Diagnostics)))
	return model
}

// collect registers every declaration of every module, in order.
func (l *linker) collect() {
	for _, mod := range l.mods {
		uses := make([]string, len(mod.Uses))
		for i, use := range mod.Uses {
			uses[i] = use.Module
		}
		l.builder.AddModule(spec.ModuleInfo{Name: mod.Name, Path: mod.Path, Uses: uses})

		// Carry over diagnostics collected during parsing and lowering.
		for _, d := range mod.Diagnostics {
			l.builder.AddDiagnostic(d)
		}

		for _, astDecl := range mod.Decls {
			decl := l.convert(mod, astDecl)
			if decl == nil {
				continue
			}
			info := decl.Info()
			if first, exists := l.builder.Lookup(info.Module, info.Name); exists {
				l.emit(spec.CodeDuplicateDecl, spec.SeverityError, mod.Name, info.Line, info.Column,
					fmt.Sprintf("duplicate declaration %q in module %q (first declared at line %d)",
						info.Name, info.Module, first.Info().Line),
					"rename one of the declarations")
				continue
			}
			l.builder.Add(decl)
			l.entries = append(l.entries, entry{decl: decl, mod: mod})

			if l.TraceEnabled() {
				l.Trace("registered declaration",
					slog.String("module", info.Module),
					slog.String("name", info.Name),
					slog.String("kind", info.Kind.String()))
			}
		}
	}
}

// resolve walks every registered declaration and resolves its references.
// The switch over declaration kinds is exhaustive.
func (l *linker) resolve() {
	for _, e := range l.entries {
		switch d := e.decl.(type) {
		case *spec.Entity:
			l.resolveFields(e.mod, d.Fields)
		case *spec.Surface:
			// An absent over clause is the validator's missing-binding case.
			if d.Over.Raw != "" {
				l.resolveRef(e.mod, &d.Over, "over", spec.KindEntity)
			}
		case *spec.Experience:
			// Step transitions are declaration-local; the validator checks them.
		case *spec.Service:
			// Operations reference nothing outside the declaration.
		case *spec.ForeignModel:
			if d.Of.Raw != "" {
				l.resolveRef(e.mod, &d.Of, "of", spec.KindService)
			}
			l.resolveFields(e.mod, d.Fields)
		case *spec.Integration:
			if d.Calls.Service.Raw != "" {
				l.resolveRef(e.mod, &d.Calls.Service, "calls", spec.KindService)
			}
			if d.Feeds.Raw != "" {
				l.resolveRef(e.mod, &d.Feeds, "feeds", spec.KindEntity)
			}
		}
	}
}

func (l *linker) resolveFields(mod *module.Module, fields []spec.Field) {
	for i := range fields {
		if fields[i].Type.Kind == spec.TypeRef && fields[i].Type.Ref != nil {
			l.resolveRef(mod, fields[i].Type.Ref, "field type",
				spec.KindEntity, spec.KindForeign)
		}
	}
}

// resolveRef resolves one reference in place. Unqualified names search the
// declaring module first, then each dependency in declared order; the first
// match wins. A name found in more than one dependency is ambiguous: a
// warning is reported and the first match, in dependency-declaration order,
// is used. Qualified names are looked up directly. No match is fatal; the
// reference is retained in the Error state so unrelated declarations stay
// usable.
func (l *linker) resolveRef(mod *module.Module, ref *spec.Ref, context string, want ...spec.Kind) {
	qualifier, name := spec.SplitName(ref.Raw)

	if qualifier != "" {
		if _, ok := l.modByName[qualifier]; !ok {
			l.fail(ref, mod, fmt.Sprintf("reference %q names unknown module %q", ref.Raw, qualifier),
				fmt.Sprintf("declare module %s or fix the qualifier", qualifier))
			return
		}
		target, ok := l.builder.Lookup(qualifier, name)
		if !ok {
			l.fail(ref, mod, fmt.Sprintf("module %q has no declaration named %q", qualifier, name), "")
			return
		}
		l.bind(ref, mod, target, context, want)
		return
	}

	if target, ok := l.builder.Lookup(mod.Name, name); ok {
		l.bind(ref, mod, target, context, want)
		return
	}

	var matches []spec.Decl
	for _, use := range mod.Uses {
		if target, ok := l.builder.Lookup(use.Module, name); ok {
			matches = append(matches, target)
		}
	}
	if len(matches) == 0 {
		l.fail(ref, mod, fmt.Sprintf("unresolved reference %q", ref.Raw),
			fmt.Sprintf("declare %s in %s or one of its dependencies", name, mod.Name))
		return
	}
	if len(matches) > 1 {
		modules := make([]string, len(matches))
		for i, m := range matches {
			modules[i] = m.Info().Module
		}
		l.emit(spec.CodeAmbiguousRef, spec.SeverityWarning, mod.Name, ref.Line, ref.Column,
			fmt.Sprintf("reference %q is ambiguous: declared in %s; using %s",
				ref.Raw, joinNames(modules), modules[0]),
			fmt.Sprintf("qualify the reference, e.g. %s.%s", modules[0], name))
	}
	l.bind(ref, mod, matches[0], context, want)
}

// bind marks the reference resolved after checking the target's kind.
func (l *linker) bind(ref *spec.Ref, mod *module.Module, target spec.Decl, context string, want []spec.Kind) {
	info := target.Info()
	if len(want) > 0 && !kindAllowed(info.Kind, want) {
		l.emit(spec.CodeRefKind, spec.SeverityError, mod.Name, ref.Line, ref.Column,
			fmt.Sprintf("%s reference %q resolves to a %s; expected %s",
				context, ref.Raw, info.Kind, kindList(want)), "")
		ref.State = spec.RefError
		ref.Target = spec.NoID
		return
	}
	ref.State = spec.RefResolved
	ref.Target = info.ID

	if l.TraceEnabled() {
		l.Trace("reference resolved",
			slog.String("module", mod.Name),
			slog.String("raw", ref.Raw),
			slog.String("target", info.QualifiedName()))
	}
}

// fail marks the reference errored and reports an unresolved-reference
// diagnostic.
func (l *linker) fail(ref *spec.Ref, mod *module.Module, message, hint string) {
	ref.State = spec.RefError
	ref.Target = spec.NoID
	l.emit(spec.CodeUnresolvedRef, spec.SeverityError, mod.Name, ref.Line, ref.Column, message, hint)
}

// check runs post-resolution structural checks over resolved references.
func (l *linker) check() {
	model := l.builder.Model()

	for _, integ := range model.Integrations {
		if !integ.Calls.Service.Resolved() {
			continue
		}
		service, ok := model.Decl(integ.Calls.Service.Target).(*spec.Service)
		if !ok {
			continue
		}
		if _, ok := service.Operation(integ.Calls.Operation); !ok {
			l.emit(spec.CodeUnknownOp, spec.SeverityError, integ.Module,
				integ.Calls.Service.Line, integ.Calls.Service.Column,
				fmt.Sprintf("service %q has no operation %q",
					service.QualifiedName(), integ.Calls.Operation), "")
		}
	}

	for _, surface := range model.Surfaces {
		if !surface.Over.Resolved() {
			continue
		}
		target, ok := model.Decl(surface.Over.Target).(*spec.Entity)
		if !ok {
			continue
		}
		for _, show := range surface.Shows {
			if _, ok := target.Field(show.Field); !ok {
				l.emit(spec.CodeUnknownField, spec.SeverityError, surface.Module,
					show.Line, show.Column,
					fmt.Sprintf("entity %q has no field %q", target.QualifiedName(), show.Field),
					"")
			}
		}
	}
}

func (l *linker) emit(code string, severity spec.Severity, moduleName string, line, column int, message, hint string) {
	if !l.cfg.ShouldReport(code) {
		return
	}
	l.builder.AddDiagnostic(spec.Diagnostic{
		Severity: l.cfg.Effective(code, severity),
		Code:     code,
		Message:  message,
		Module:   moduleName,
		Line:     line,
		Column:   column,
		Hint:     hint,
	})
}

func kindAllowed(kind spec.Kind, want []spec.Kind) bool {
	for _, w := range want {
		if kind == w {
			return true
		}
	}
	return false
}

func kindList(want []spec.Kind) string {
	out := ""
	for i, w := range want {
		if i > 0 {
			out += " or "
		}
		out += w.String()
	}
	return out
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
