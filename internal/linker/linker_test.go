package linker

import (
	"testing"

	"github.com/manwithacat/dazzle-sub010/internal/graph"
	"github.com/manwithacat/dazzle-sub010/internal/module"
	"github.com/manwithacat/dazzle-sub010/internal/parser"
	"github.com/manwithacat/dazzle-sub010/internal/testutil"
	"github.com/manwithacat/dazzle-sub010/spec"
)

// link parses the given sources, orders them, and links the result.
func link(t *testing.T, sources ...string) *spec.Model {
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
	model := Link(ordered, nil, spec.DefaultConfig())
	if model == nil {
		t.Fatal("Link returned nil")
	}
	return model
}

func TestLinkSingleModule(t *testing.T) {
	model := link(t, `module shop.catalog
entity Product
    field id: uuid pk required
    field title: text
surface ProductList
    over Product
    mode list
    show title
`)

	testutil.Len(t, model.Modules, 1, "modules")
	testutil.Len(t, model.Entities, 1, "entities")
	testutil.Len(t, model.Surfaces, 1, "surfaces")
	testutil.Equal(t, 2, model.DeclCount(), "arena size")

	surface := model.Surfaces[0]
	testutil.True(t, surface.Over.Resolved(), "over resolved")
	target := model.Decl(surface.Over.Target)
	testutil.Equal(t, "Product", target.Info().Name, "over target")
	testutil.False(t, model.HasErrors(), "no errors expected")
}

func TestForwardReferenceAcrossModules(t *testing.T) {
	// shop.orders is processed after shop.core, but resolution must also work
	// when the dependent parses first; collection completes everywhere before
	// any reference resolves.
	model := link(t,
		`module shop.orders
    uses shop.core
entity Order
    field buyer: ref User
`,
		`module shop.core
entity User
    field id: uuid pk required
`)

	testutil.False(t, model.HasErrors(), "no errors expected")
	var order *spec.Entity
	for _, e := range model.Entities {
		if e.Name == "Order" {
			order = e
		}
	}
	if order == nil {
		t.Fatal("Order entity not linked")
	}
	ref := order.Fields[0].Type.Ref
	testutil.True(t, ref.Resolved(), "buyer ref resolved")
	testutil.Equal(t, "shop.core.User", model.Decl(ref.Target).Info().QualifiedName(), "target")
}

func TestOwnModuleShadowsDependencies(t *testing.T) {
	model := link(t,
		`module shop.orders
    uses shop.core
entity User
    field id: int pk required
entity Order
    field buyer: ref User
`,
		`module shop.core
entity User
    field id: uuid pk required
`)

	testutil.NoDiagnostic(t, model.Diagnostics, spec.CodeAmbiguousRef)
	order, ok := model.Lookup("shop.orders", "Order")
	testutil.True(t, ok, "Order present")
	ref := order.(*spec.Entity).Fields[0].Type.Ref
	testutil.Equal(t, "shop.orders.User", model.Decl(ref.Target).Info().QualifiedName(), "own module wins")
}

func TestAmbiguousReferenceWarnsAndPicksFirst(t *testing.T) {
	model := link(t,
		`module shop.app
    uses shop.alpha
    uses shop.beta
entity Order
    field item: ref Widget
`,
		`module shop.alpha
entity Widget
    field id: int pk required
`,
		`module shop.beta
entity Widget
    field id: int pk required
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeAmbiguousRef)
	testutil.Equal(t, spec.SeverityWarning, d.Severity, "ambiguity is a warning")
	testutil.Contains(t, d.Message, "shop.alpha", "message names candidates")

	order, _ := model.Lookup("shop.app", "Order")
	ref := order.(*spec.Entity).Fields[0].Type.Ref
	testutil.True(t, ref.Resolved(), "still resolves")
	// First match in dependency-declaration order wins.
	testutil.Equal(t, "shop.alpha.Widget", model.Decl(ref.Target).Info().QualifiedName(), "picked first")
}

func TestUnresolvedWhenNotADependency(t *testing.T) {
	// shop.core declares User, but shop.orders never uses shop.core, so the
	// unqualified reference must not resolve.
	model := link(t,
		`module shop.orders
entity Order
    field buyer: ref User
`,
		`module shop.core
entity User
    field id: uuid pk required
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeUnresolvedRef)
	testutil.Equal(t, spec.SeverityError, d.Severity, "unresolved is an error")

	order, _ := model.Lookup("shop.orders", "Order")
	ref := order.(*spec.Entity).Fields[0].Type.Ref
	testutil.Equal(t, spec.RefError, ref.State, "ref state")
	testutil.Equal(t, spec.NoID, ref.Target, "no target")
}

func TestQualifiedReferenceSkipsDependencySearch(t *testing.T) {
	model := link(t,
		`module shop.orders
    uses shop.core
entity Order
    field buyer: ref shop.core.User
`,
		`module shop.core
entity User
    field id: uuid pk required
`)

	testutil.False(t, model.HasErrors(), "no errors expected")
	order, _ := model.Lookup("shop.orders", "Order")
	ref := order.(*spec.Entity).Fields[0].Type.Ref
	testutil.Equal(t, "shop.core.User", model.Decl(ref.Target).Info().QualifiedName(), "target")
}

func TestQualifiedReferenceUnknownModule(t *testing.T) {
	model := link(t, `module shop.orders
entity Order
    field buyer: ref shop.ghost.User
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeUnresolvedRef)
	testutil.Contains(t, d.Message, "shop.ghost", "message names the module")
}

func TestDuplicateDeclarationFirstWins(t *testing.T) {
	model := link(t, `module shop
entity Thing
    field a: int
entity Thing
    field b: text
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeDuplicateDecl)
	testutil.Equal(t, spec.SeverityError, d.Severity, "duplicate is an error")

	testutil.Len(t, model.Entities, 1, "one survives")
	testutil.Equal(t, "a", model.Entities[0].Fields[0].Name, "first wins")
}

func TestReferenceKindMismatch(t *testing.T) {
	model := link(t, `module shop
service Stripe
    operation charge(amount: decimal)
surface Broken
    over Stripe
    mode list
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeRefKind)
	testutil.Contains(t, d.Message, "service", "names the actual kind")

	surface := model.Surfaces[0]
	testutil.Equal(t, spec.RefError, surface.Over.State, "ref errored")
}

func TestUnknownOperation(t *testing.T) {
	model := link(t, `module shop
service Stripe
    operation charge(amount: decimal)
entity Payment
    field id: int pk required
integration Sync
    calls Stripe.refund
    feeds Payment
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeUnknownOp)
	testutil.Contains(t, d.Message, "refund", "names the operation")
}

func TestUnknownShowField(t *testing.T) {
	model := link(t, `module shop
entity Product
    field title: text
surface ProductList
    over Product
    mode list
    show title
    show price
`)

	d := testutil.HasDiagnostic(t, model.Diagnostics, spec.CodeUnknownField)
	testutil.Contains(t, d.Message, "price", "names the field")
}

func TestForeignOfServiceAndFeeds(t *testing.T) {
	model := link(t, `module shop
service Stripe
    operation charge(amount: decimal) -> uuid
entity Payment
    field id: uuid pk required
foreign StripeCharge
    of Stripe
    field amount: decimal
integration Sync
    calls Stripe.charge
    feeds Payment
`)

	testutil.False(t, model.HasErrors(), "no errors expected")
	testutil.True(t, model.ForeignModels[0].Of.Resolved(), "of resolved")
	integ := model.Integrations[0]
	testutil.True(t, integ.Calls.Service.Resolved(), "calls resolved")
	testutil.True(t, integ.Feeds.Resolved(), "feeds resolved")
}

func TestModulesRecordedInProcessingOrder(t *testing.T) {
	model := link(t,
		`module shop.app
    uses shop.core
`,
		`module shop.core
`)

	testutil.Len(t, model.Modules, 2, "modules")
	testutil.Equal(t, "shop.core", model.Modules[0].Name, "dependency first")
	testutil.Equal(t, "shop.app", model.Modules[1].Name, "dependent second")
	testutil.Len(t, model.Modules[1].Uses, 1, "uses recorded")
}

func TestDeterministicArenaIDs(t *testing.T) {
	sources := []string{
		`module shop.app
    uses shop.core
entity Order
    field buyer: ref User
surface Orders
    over Order
    mode list
`,
		`module shop.core
entity User
    field id: uuid pk required
`,
	}

	first := link(t, sources...)
	for range 5 {
		again := link(t, sources...)
		testutil.Equal(t, first.DeclCount(), again.DeclCount(), "arena size")
		for id := spec.ID(0); int(id) < first.DeclCount(); id++ {
			testutil.Equal(t,
				first.Decl(id).Info().QualifiedName(),
				again.Decl(id).Info().QualifiedName(),
				"arena slot %d", id)
		}
		testutil.Len(t, again.Diagnostics, len(first.Diagnostics), "diagnostic count")
	}
}

func TestBareIntegrationKeepsNoID(t *testing.T) {
	// An integration with no calls/feeds clauses must not leave zero-value
	// refs behind: Target 0 is a live arena id.
	model := link(t, `module shop
entity Payment
    field id: int pk required
integration Sync
`)

	integ := model.Integrations[0]
	testutil.Equal(t, spec.NoID, integ.Calls.Service.Target, "calls target")
	testutil.False(t, integ.Calls.Service.Resolved(), "calls resolved")
	testutil.Equal(t, spec.NoID, integ.Feeds.Target, "feeds target")
	testutil.False(t, integ.Feeds.Resolved(), "feeds resolved")
}
