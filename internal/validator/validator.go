// Package validator runs semantic checks over a linked model.
//
// Validation is organized as an ordered list of independent rules. Each rule
// walks the model, appends diagnostics, and never mutates declarations. Rules
// run over whatever linking produced, including declarations whose references
// failed to resolve; checks that need a resolved target skip errored
// references, which already carry their own diagnostic.
package validator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/manwithacat/dazzle-sub010/internal/types"
	"github.com/manwithacat/dazzle-sub010/spec"
)

// Rule is one named validation pass.
type Rule struct {
	Name  string
	Check func(v *visit)
}

// Rules returns the validation rules in execution order.
func Rules() []Rule {
	return []Rule{
		{Name: "naming", Check: checkNaming},
		{Name: "workflow-reachability", Check: checkReachability},
		{Name: "bindings", Check: checkBindings},
		{Name: "field-domains", Check: checkFieldDomains},
	}
}

// visit carries shared state for one validation run.
type visit struct {
	model *spec.Model
	cfg   spec.Config
	types.Logger
}

// Run executes every rule against the model, appending diagnostics in rule
// order. The context is checked between rules so long validations can be
// cancelled; rules themselves are not interruptible.
func Run(ctx context.Context, model *spec.Model, logger *slog.Logger, cfg spec.Config) error {
	v := &visit{
		model:  model,
		cfg:    cfg,
		Logger: types.Logger{L: logger},
	}
	for _, rule := range Rules() {
		if err := ctx.Err(); err != nil {
			return err
		}
		before := len(model.Diagnostics)
		rule.Check(v)
		v.Log(slog.LevelDebug, "rule complete",
			slog.String("rule", rule.Name),
			slog.Int("diagnostics", len(model.Diagnostics)-before))
	}
	return nil
}

func (v *visit) emit(code string, severity spec.Severity, moduleName string, line, column int, message, hint string) {
	if !v.cfg.ShouldReport(code) {
		return
	}
	v.model.Diagnostics = append(v.model.Diagnostics, spec.Diagnostic{
		Severity: v.cfg.Effective(code, severity),
		Code:     code,
		Message:  message,
		Module:   moduleName,
		Line:     line,
		Column:   column,
		Hint:     hint,
	})
}

func (v *visit) emitDecl(code string, severity spec.Severity, info *spec.DeclInfo, message, hint string) {
	v.emit(code, severity, info.Module, info.Line, info.Column, message, hint)
}

// checkNaming enforces the naming conventions: UpperCamelCase declaration
// names, lowerCamelCase or snake_case member names. Violations are warnings;
// generators downstream cope, humans reading the output do not.
func checkNaming(v *visit) {
	for id := spec.ID(0); int(id) < v.model.DeclCount(); id++ {
		decl := v.model.Decl(id)
		info := decl.Info()
		if !isUpperCamel(info.Name) {
			v.emitDecl(spec.CodeNaming, spec.SeverityWarning, info,
				fmt.Sprintf("%s name %q should be UpperCamelCase", info.Kind, info.Name), "")
		}
		switch d := decl.(type) {
		case *spec.Entity:
			checkFieldNames(v, info, d.Fields)
		case *spec.ForeignModel:
			checkFieldNames(v, info, d.Fields)
		case *spec.Experience:
			for _, step := range d.Steps {
				if !isMemberName(step.Name) {
					v.emit(spec.CodeNaming, spec.SeverityWarning, info.Module, step.Line, step.Column,
						fmt.Sprintf("step name %q should be lowerCamelCase or snake_case", step.Name), "")
				}
			}
		case *spec.Service:
			for _, op := range d.Operations {
				if !isMemberName(op.Name) {
					v.emit(spec.CodeNaming, spec.SeverityWarning, info.Module, op.Line, op.Column,
						fmt.Sprintf("operation name %q should be lowerCamelCase or snake_case", op.Name), "")
				}
			}
		}
	}
}

func checkFieldNames(v *visit, info *spec.DeclInfo, fields []spec.Field) {
	for _, f := range fields {
		if !isMemberName(f.Name) {
			v.emit(spec.CodeNaming, spec.SeverityWarning, info.Module, f.Line, f.Column,
				fmt.Sprintf("field name %q should be lowerCamelCase or snake_case", f.Name), "")
		}
	}
}

// checkReachability verifies that every experience has a resolvable entry
// step, that every goto targets a declared step, and that every step is
// reachable from the entry.
func checkReachability(v *visit) {
	for _, exp := range v.model.Experiences {
		if len(exp.Steps) == 0 {
			continue
		}
		entry := exp.Entry
		if entry == "" {
			entry = exp.Steps[0].Name
		}
		if _, ok := exp.Step(entry); !ok {
			v.emitDecl(spec.CodeNoEntry, spec.SeverityError, exp.Info(),
				fmt.Sprintf("experience %q declares entry step %q, which does not exist",
					exp.Name, entry), "")
			continue
		}

		reached := map[string]bool{entry: true}
		frontier := []string{entry}
		for len(frontier) > 0 {
			name := frontier[0]
			frontier = frontier[1:]
			step, _ := exp.Step(name)
			for _, g := range step.Gotos {
				if _, ok := exp.Step(g.Target); !ok {
					v.emit(spec.CodeUnknownStep, spec.SeverityError, exp.Module, g.Line, g.Column,
						fmt.Sprintf("goto targets unknown step %q in experience %q", g.Target, exp.Name),
						"")
					continue
				}
				if !reached[g.Target] {
					reached[g.Target] = true
					frontier = append(frontier, g.Target)
				}
			}
		}
		for _, step := range exp.Steps {
			if !reached[step.Name] {
				v.emit(spec.CodeUnreachableStep, spec.SeverityWarning, exp.Module, step.Line, step.Column,
					fmt.Sprintf("step %q is unreachable from entry %q", step.Name, entry),
					"add a goto leading to it or remove the step")
			}
		}
	}
}

// checkBindings verifies that constructs requiring a binding actually carry
// one: surfaces need an entity, foreign shapes a service, integrations both a
// call and a fed entity. Refs present but unresolved are skipped; the linker
// already reported those.
func checkBindings(v *visit) {
	for _, surface := range v.model.Surfaces {
		if surface.Over.Raw == "" {
			v.emitDecl(spec.CodeMissingBinding, spec.SeverityError, surface.Info(),
				fmt.Sprintf("surface %q is not bound to an entity", surface.Name),
				"add an over clause")
		}
	}
	for _, foreign := range v.model.ForeignModels {
		if foreign.Of.Raw == "" {
			v.emitDecl(spec.CodeMissingBinding, spec.SeverityError, foreign.Info(),
				fmt.Sprintf("foreign shape %q is not bound to a service", foreign.Name),
				"add an of clause")
		}
	}
	for _, integ := range v.model.Integrations {
		if integ.Calls.Service.Raw == "" {
			v.emitDecl(spec.CodeMissingBinding, spec.SeverityError, integ.Info(),
				fmt.Sprintf("integration %q does not call a service operation", integ.Name),
				"add a calls clause")
		}
		if integ.Feeds.Raw == "" {
			v.emitDecl(spec.CodeMissingBinding, spec.SeverityError, integ.Info(),
				fmt.Sprintf("integration %q does not feed an entity", integ.Name),
				"add a feeds clause")
		}
	}
}

// checkFieldDomains validates field-level constraints: default literals must
// match the field's type, enum defaults must name a member, reference fields
// cannot carry defaults, and primary keys must be unique per declaration and
// implicitly required.
func checkFieldDomains(v *visit) {
	for _, entity := range v.model.Entities {
		checkFields(v, entity.Info(), entity.Fields, true)
	}
	for _, foreign := range v.model.ForeignModels {
		// Foreign shapes mirror external data; they have no primary key of ours.
		checkFields(v, foreign.Info(), foreign.Fields, false)
	}
}

func checkFields(v *visit, info *spec.DeclInfo, fields []spec.Field, allowPK bool) {
	pkSeen := false
	for _, f := range fields {
		if f.Default != nil {
			checkDefault(v, info, f)
		}
		if !f.PrimaryKey {
			continue
		}
		if !allowPK {
			v.emit(spec.CodeMultiplePrimary, spec.SeverityError, info.Module, f.Line, f.Column,
				fmt.Sprintf("foreign shape %q cannot declare a primary key", info.Name), "")
			continue
		}
		if pkSeen {
			v.emit(spec.CodeMultiplePrimary, spec.SeverityError, info.Module, f.Line, f.Column,
				fmt.Sprintf("entity %q declares more than one primary key", info.Name), "")
		}
		pkSeen = true
		if !f.Required {
			v.emit(spec.CodePrimaryOptional, spec.SeverityWarning, info.Module, f.Line, f.Column,
				fmt.Sprintf("primary key field %q should be required", f.Name),
				"add the required modifier")
		}
	}
}

func checkDefault(v *visit, info *spec.DeclInfo, f spec.Field) {
	switch f.Type.Kind {
	case spec.TypeRef:
		v.emit(spec.CodeRefDefault, spec.SeverityError, info.Module, f.Line, f.Column,
			fmt.Sprintf("reference field %q cannot have a default value", f.Name), "")
	case spec.TypeEnum:
		if f.Default.Kind != spec.LitIdent {
			v.emit(spec.CodeDefaultNotMember, spec.SeverityError, info.Module, f.Line, f.Column,
				fmt.Sprintf("enum field %q default must be a bare member name", f.Name), "")
			return
		}
		for _, m := range f.Type.Enum {
			if m == f.Default.Text {
				return
			}
		}
		v.emit(spec.CodeDefaultNotMember, spec.SeverityError, info.Module, f.Line, f.Column,
			fmt.Sprintf("default %q is not a member of enum field %q", f.Default.Text, f.Name), "")
	case spec.TypeScalar:
		if !literalFitsScalar(f.Default.Kind, f.Type.Scalar) {
			v.emit(spec.CodeDefaultMismatch, spec.SeverityError, info.Module, f.Line, f.Column,
				fmt.Sprintf("default value of field %q is a %s literal; field type is %s",
					f.Name, f.Default.Kind, f.Type.Scalar), "")
		}
	}
}

// literalFitsScalar reports whether a literal of the given lexical kind is an
// acceptable default for the scalar type. String-ish scalars accept string
// literals; the dates and uuid are strings at the source level too.
func literalFitsScalar(lit spec.LiteralKind, scalar spec.ScalarType) bool {
	switch scalar {
	case spec.ScalarInt, spec.ScalarDecimal:
		return lit == spec.LitNumber
	case spec.ScalarBool:
		return lit == spec.LitBool
	case spec.ScalarText, spec.ScalarDate, spec.ScalarTimestamp, spec.ScalarUUID, spec.ScalarJSON:
		return lit == spec.LitString
	default:
		return true
	}
}

// isUpperCamel reports whether the name starts with an uppercase ASCII letter
// and contains only letters and digits.
func isUpperCamel(name string) bool {
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isAlnum(name[i]) {
			return false
		}
	}
	return true
}

// isMemberName reports whether the name is lowerCamelCase or snake_case: a
// lowercase first letter, then letters, digits, and underscores.
func isMemberName(name string) bool {
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isAlnum(name[i]) && name[i] != '_' {
			return false
		}
	}
	return true
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
