package graph

import (
	"testing"

	"github.com/manwithacat/dazzle-sub010/internal/module"
	"github.com/manwithacat/dazzle-sub010/internal/testutil"
)

func TestProcessingOrderSimpleChain(t *testing.T) {
	g := New()
	g.AddEdge("app", "orders")
	g.AddEdge("orders", "catalog")

	order, cyclic := g.ProcessingOrder()

	testutil.Len(t, cyclic, 0, "cyclic")
	testutil.Len(t, order, 3, "order length")
	testutil.Equal(t, "catalog", order[0], "first")
	testutil.Equal(t, "orders", order[1], "second")
	testutil.Equal(t, "app", order[2], "third")
}

func TestProcessingOrderBreaksTiesByName(t *testing.T) {
	g := New()
	g.AddNode("zebra")
	g.AddNode("alpha")
	g.AddNode("mango")

	order, _ := g.ProcessingOrder()
	testutil.Equal(t, "alpha", order[0], "first")
	testutil.Equal(t, "mango", order[1], "second")
	testutil.Equal(t, "zebra", order[2], "third")
}

func TestProcessingOrderDeterministic(t *testing.T) {
	build := func() *Graph {
		g := New()
		g.AddEdge("app", "billing")
		g.AddEdge("app", "catalog")
		g.AddEdge("billing", "core")
		g.AddEdge("catalog", "core")
		g.AddNode("standalone")
		return g
	}

	first, _ := build().ProcessingOrder()
	for range 10 {
		again, _ := build().ProcessingOrder()
		testutil.Len(t, again, len(first), "order length")
		for i := range first {
			testutil.Equal(t, first[i], again[i], "position %d", i)
		}
	}
}

func TestFindCyclesReportsParticipants(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")
	g.AddEdge("d", "a")

	cycles := g.FindCycles()
	testutil.Len(t, cycles, 1, "cycle count")
	testutil.Len(t, cycles[0], 3, "participants")

	_, cyclic := g.ProcessingOrder()
	// d depends on the cycle, so it cannot be ordered either.
	testutil.Len(t, cyclic, 4, "unorderable modules")
}

func TestSelfEdgeIsACycle(t *testing.T) {
	g := New()
	g.AddEdge("loop", "loop")

	cycles := g.FindCycles()
	testutil.Len(t, cycles, 1, "cycle count")
	testutil.Len(t, cycles[0], 1, "participants")
	testutil.Equal(t, "loop", cycles[0][0], "participant")
}

func TestDuplicateEdgesIgnored(t *testing.T) {
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("a", "b")

	testutil.Len(t, g.Dependencies("a"), 1, "dependencies")
}

func mod(name string, uses ...string) *module.Module {
	m := &module.Module{Name: name}
	for _, u := range uses {
		m.Uses = append(m.Uses, module.Use{Module: u})
	}
	return m
}

func TestOrderMissingModuleIsFatal(t *testing.T) {
	mods := []*module.Module{
		mod("shop.app", "shop.ghost"),
	}

	ordered, err := Order(mods, nil)
	if err == nil {
		t.Fatal("expected a graph error")
	}
	if ordered != nil {
		t.Fatal("no ordering should be produced")
	}
	testutil.Len(t, err.Missing, 1, "missing deps")
	testutil.Equal(t, "shop.app", err.Missing[0].Module, "declaring module")
	testutil.Equal(t, "shop.ghost", err.Missing[0].Target, "missing target")
	testutil.Contains(t, err.Error(), "shop.ghost", "error text")
}

func TestOrderCycleIsFatal(t *testing.T) {
	mods := []*module.Module{
		mod("a", "b"),
		mod("b", "a"),
	}

	ordered, err := Order(mods, nil)
	if err == nil {
		t.Fatal("expected a graph error")
	}
	if ordered != nil {
		t.Fatal("no ordering should be produced")
	}
	testutil.Len(t, err.Cycles, 1, "cycles")

	diags := err.Diagnostics()
	testutil.Len(t, diags, 1, "diagnostics")
}

func TestOrderSucceeds(t *testing.T) {
	mods := []*module.Module{
		mod("shop.app", "shop.orders", "shop.catalog"),
		mod("shop.orders", "shop.catalog"),
		mod("shop.catalog"),
	}

	ordered, err := Order(mods, nil)
	if err != nil {
		t.Fatalf("Order failed: %v", err)
	}
	testutil.Len(t, ordered, 3, "ordered modules")
	testutil.Equal(t, "shop.catalog", ordered[0].Name, "first")
	testutil.Equal(t, "shop.orders", ordered[1].Name, "second")
	testutil.Equal(t, "shop.app", ordered[2].Name, "third")
}
