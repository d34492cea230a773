package validator

import (
	"context"
	"testing"

	"github.com/manwithacat/dazzle-sub010/internal/graph"
	"github.com/manwithacat/dazzle-sub010/internal/linker"
	"github.com/manwithacat/dazzle-sub010/internal/module"
	"github.com/manwithacat/dazzle-sub010/internal/parser"
	"github.com/manwithacat/dazzle-sub010/internal/testutil"
	"github.com/manwithacat/dazzle-sub010/spec"
)

// validate links the sources and runs every rule over the result.
func validate(t *testing.T, sources ...string) *spec.Model {
	t.Helper()
	var mods []*module.Module
	for _, source := range sources {
		src := []byte(source)
		p := parser.New(src, nil, spec.DefaultConfig())
		mods = append(mods, module.Lower(p.ParseModule(), src, "", "", nil, spec.DefaultConfig()))
	}
	ordered, gerr := graph.Order(mods, nil)
	if gerr != nil {
		t.Fatalf("Order failed: %v", gerr)
	}
	model := linker.Link(ordered, nil, spec.DefaultConfig())
	if err := Run(context.Background(), model, nil, spec.DefaultConfig()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return model
}

func TestCleanModelPasses(t *testing.T) {
	model := validate(t, `module shop
entity Product
    field id: uuid pk required
    field title: text required
    field status: enum(draft, live) default draft
surface ProductList
    over Product
    mode list
    show title
experience Publish
    entry review
    step review
        goto live
    step live
service Search
    operation query(q: text) -> json
foreign SearchHit
    of Search
    field score: decimal
integration Index
    calls Search.query
    feeds Product
`)

	testutil.Len(t, model.Diagnostics, 0, "diagnostics: %v", model.Diagnostics)
}

func TestNamingConventions(t *testing.T) {
	model := validate(t, `module shop
entity product
    field Title: text
service Api
    operation DoThing()
`)

	found := 0
	for _, d := range model.Diagnostics {
		if d.Code == spec.CodeNaming {
			testutil.Equal(t, spec.SeverityWarning, d.Severity, "naming is a warning")
			found++
		}
	}
	testutil.Equal(t, 3, found, "entity, field, and operation flagged")
}

func TestMissingEntryStep(t *testing.T) {
	model := validate(t, `module shop
experience Checkout
    entry ghost
    step cart
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeNoEntry)
	testutil.Equal(t, spec.SeverityError, d.Severity, "severity")
	testutil.Contains(t, d.Message, "ghost", "names the entry")
}

func TestEntryDefaultsToFirstStep(t *testing.T) {
	model := validate(t, `module shop
experience Checkout
    step cart
        goto done
    step done
`)

	testutil.NoDiagnostic(t, model.Diagnostics, spec.CodeNoEntry)
	testutil.NoDiagnostic(t, model.Diagnostics, spec.CodeUnreachableStep)
}

func TestUnknownGotoTarget(t *testing.T) {
	model := validate(t, `module shop
experience Checkout
    step cart
        goto nowhere
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeUnknownStep)
	testutil.Contains(t, d.Message, "nowhere", "names the target")
}

func TestUnreachableStep(t *testing.T) {
	model := validate(t, `module shop
experience Checkout
    entry cart
    step cart
    step orphan
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeUnreachableStep)
	testutil.Equal(t, spec.SeverityWarning, d.Severity, "unreachable is a warning")
	testutil.Contains(t, d.Message, "orphan", "names the step")
}

func TestMissingBindings(t *testing.T) {
	model := validate(t, `module shop
surface Floating
    mode list
integration Hollow
`)

	count := 0
	for _, d := range model.Diagnostics {
		if d.Code == spec.CodeMissingBinding {
			count++
		}
	}
	// Surface without over, integration without calls and without feeds.
	testutil.Equal(t, 3, count, "missing bindings")
}

func TestDefaultTypeMismatch(t *testing.T) {
	model := validate(t, `module shop
entity Thing
    field count: int default "many"
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeDefaultMismatch)
	testutil.Contains(t, d.Message, "count", "names the field")
}

func TestBoolAndStringDefaultsAccepted(t *testing.T) {
	model := validate(t, `module shop
entity Thing
    field active: bool default true
    field note: text default "n/a"
`)

	testutil.NoDiagnostic(t, model.Diagnostics, spec.CodeDefaultMismatch)
}

func TestEnumDefaultMustBeMember(t *testing.T) {
	model := validate(t, `module shop
entity Thing
    field status: enum(draft, live) default retired
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeDefaultNotMember)
	testutil.Contains(t, d.Message, "retired", "names the bad member")
}

func TestRefDefaultRejected(t *testing.T) {
	model := validate(t, `module shop
entity User
    field id: int pk required
entity Thing
    field owner: ref User default admin
`)

	testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeRefDefault)
}

func TestMultiplePrimaryKeys(t *testing.T) {
	model := validate(t, `module shop
entity Thing
    field a: int pk required
    field b: int pk required
`)

	testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeMultiplePrimary)
}

func TestOptionalPrimaryKeyWarns(t *testing.T) {
	model := validate(t, `module shop
entity Thing
    field id: int pk
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodePrimaryOptional)
	testutil.Equal(t, spec.SeverityWarning, d.Severity, "severity")
}

func TestForeignPrimaryKeyRejected(t *testing.T) {
	model := validate(t, `module shop
service Api
    operation get()
foreign Remote
    of Api
    field id: int pk required
`)

	testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeMultiplePrimary)
}

func TestRunHonorsCancellation(t *testing.T) {
	src := []byte("module shop\n")
	p := parser.New(src, nil, spec.DefaultConfig())
	mods := []*module.Module{module.Lower(p.ParseModule(), src, "", "", nil, spec.DefaultConfig())}
	ordered, _ := graph.Order(mods, nil)
	model := linker.Link(ordered, nil, spec.DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, model, nil, spec.DefaultConfig()); err == nil {
		t.Fatal("expected a context error")
	}
}

func TestIgnoreSuppressesCodes(t *testing.T) {
	src := []byte(`module shop
entity thing
    field x: int
`)
	p := parser.New(src, nil, spec.DefaultConfig())
	mods := []*module.Module{module.Lower(p.ParseModule(), src, "", "", nil, spec.DefaultConfig())}
	ordered, _ := graph.Order(mods, nil)
	cfg := spec.Config{Ignore: []string{"naming-*"}}
	model := linker.Link(ordered, nil, cfg)
	if err := Run(context.Background(), model, nil, cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	testutil.NoDiagnostic(t, model.Diagnostics, spec.CodeNaming)
}
