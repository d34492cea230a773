package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manwithacat/dazzle-sub010/spec"
)

// Print renders the module back to canonical dazzle source text. The output
// preserves declaration order, field order, and every name and kind, so
// parsing the result yields an equivalent tree. Comments and the original
// whitespace are not preserved.
func Print(m *Module) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n", m.Name.Name)
	for _, use := range m.Uses {
		fmt.Fprintf(&b, "  uses %s\n", use.Module.Name)
	}
	for _, decl := range m.Decls {
		b.WriteByte('\n')
		printDecl(&b, decl)
	}
	return b.String()
}

func printDecl(b *strings.Builder, decl Decl) {
	switch d := decl.(type) {
	case *EntityDecl:
		printHeader(b, "entity", d.Name, d.Label)
		printFields(b, d.Fields)
	case *SurfaceDecl:
		printHeader(b, "surface", d.Name, d.Label)
		if d.Over.Name != "" {
			fmt.Fprintf(b, "  over %s\n", d.Over.Name)
		}
		fmt.Fprintf(b, "  mode %s\n", d.Mode)
		for _, show := range d.Shows {
			fmt.Fprintf(b, "  show %s\n", show.Field.Name)
		}
	case *ExperienceDecl:
		printHeader(b, "experience", d.Name, d.Label)
		if d.Entry != nil {
			fmt.Fprintf(b, "  entry %s\n", d.Entry.Name)
		}
		for _, step := range d.Steps {
			b.WriteString("  step ")
			b.WriteString(step.Name.Name)
			if step.Label != nil {
				fmt.Fprintf(b, " %s", strconv.Quote(step.Label.Value))
			}
			b.WriteByte('\n')
			for _, g := range step.Gotos {
				fmt.Fprintf(b, "    goto %s\n", g.Name)
			}
		}
	case *ServiceDecl:
		printHeader(b, "service", d.Name, d.Label)
		if d.Protocol != nil {
			fmt.Fprintf(b, "  protocol %s\n", d.Protocol.Name)
		}
		if d.Endpoint != nil {
			fmt.Fprintf(b, "  endpoint %s\n", strconv.Quote(d.Endpoint.Value))
		}
		for _, op := range d.Operations {
			fmt.Fprintf(b, "  operation %s(", op.Name.Name)
			for i, p := range op.Params {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(b, "%s: %s", p.Name.Name, typeText(p.Type))
			}
			b.WriteByte(')')
			if op.Result != nil {
				fmt.Fprintf(b, " -> %s", typeText(*op.Result))
			}
			b.WriteByte('\n')
		}
	case *ForeignDecl:
		printHeader(b, "foreign", d.Name, d.Label)
		if d.Of.Name != "" {
			fmt.Fprintf(b, "  of %s\n", d.Of.Name)
		}
		printFields(b, d.Fields)
	case *IntegrationDecl:
		printHeader(b, "integration", d.Name, d.Label)
		if d.Calls != nil {
			fmt.Fprintf(b, "  calls %s.%s\n", d.Calls.Service.Name, d.Calls.Operation)
		}
		if d.Feeds != nil {
			fmt.Fprintf(b, "  feeds %s\n", d.Feeds.Name)
		}
	}
}

func printHeader(b *strings.Builder, keyword string, name Ident, label *StringLit) {
	b.WriteString(keyword)
	b.WriteByte(' ')
	b.WriteString(name.Name)
	if label != nil {
		fmt.Fprintf(b, " %s", strconv.Quote(label.Value))
	}
	b.WriteByte('\n')
}

func printFields(b *strings.Builder, fields []FieldDecl) {
	for _, f := range fields {
		fmt.Fprintf(b, "  field %s: %s", f.Name.Name, typeText(f.Type))
		if f.Required {
			b.WriteString(" required")
		}
		if f.Unique {
			b.WriteString(" unique")
		}
		if f.PrimaryKey {
			b.WriteString(" pk")
		}
		if f.Default != nil {
			b.WriteString(" default ")
			if f.Default.Kind == spec.LitString {
				b.WriteString(strconv.Quote(f.Default.Text))
			} else {
				b.WriteString(f.Default.Text)
			}
		}
		b.WriteByte('\n')
	}
}

func typeText(t TypeExpr) string {
	switch t.Kind {
	case spec.TypeRef:
		return "ref " + t.Ref.Name
	case spec.TypeEnum:
		names := make([]string, len(t.Enum))
		for i, m := range t.Enum {
			names[i] = m.Name
		}
		return "enum(" + strings.Join(names, " ") + ")"
	default:
		return t.Scalar.String()
	}
}
