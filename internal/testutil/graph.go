package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/beltline/internal/graph"
	"github.com/roach88/beltline/internal/ir"
)

// Builder assembles a graph for a test, failing the test on any
// rejected node or edge.
type Builder struct {
	t testing.TB
	G *graph.Graph
}

// NewBuilder starts an empty graph.
func NewBuilder(t testing.TB) *Builder {
	return &Builder{t: t, G: graph.New()}
}

// Item adds an item node.
func (b *Builder) Item(id, itemKey string, speedThou int64, kind ir.InterfaceKind) *Builder {
	b.t.Helper()
	require.NoError(b.t, b.G.AddNode(ir.Node{
		ID:   id,
		Kind: ir.KindItem,
		Item: &ir.ItemConfig{ItemKey: itemKey, SpeedThou: speedThou, InterfaceKind: kind},
	}))
	return b
}

// Recipe adds a recipe node at the default clock speed.
func (b *Builder) Recipe(id, recipeKey string) *Builder {
	b.t.Helper()
	require.NoError(b.t, b.G.AddNode(ir.Node{
		ID:     id,
		Kind:   ir.KindRecipe,
		Recipe: &ir.RecipeConfig{RecipeKey: recipeKey},
	}))
	return b
}

// Logistic adds a logistic node.
func (b *Builder) Logistic(id string, cfg ir.LogisticConfig) *Builder {
	b.t.Helper()
	require.NoError(b.t, b.G.AddNode(ir.Node{ID: id, Kind: ir.KindLogistic, Logistic: &cfg}))
	return b
}

// Edge connects src/srcHandle to dst/dstHandle.
func (b *Builder) Edge(id, src string, srcHandle ir.HandleID, dst string, dstHandle ir.HandleID) *Builder {
	b.t.Helper()
	_, err := b.G.Connect(ir.Edge{ID: id, Source: src, SourceHandle: srcHandle, Target: dst, TargetHandle: dstHandle})
	require.NoError(b.t, err)
	return b
}

// Handles used by the fixture graphs.
const (
	LeftSolidIn    ir.HandleID = "left-solid-in-0"
	TopSolidIn     ir.HandleID = "top-solid-in-0"
	BottomSolidIn  ir.HandleID = "bottom-solid-in-0"
	TopSolidOut    ir.HandleID = "top-solid-out-0"
	RightSolidOut  ir.HandleID = "right-solid-out-0"
	BottomSolidOut ir.HandleID = "bottom-solid-out-0"
)

// SplitterGraph is one 30/min ingot source feeding two rod constructors,
// 15/min each, through a plain splitter. Every edge balances.
func SplitterGraph(t testing.TB) *graph.Graph {
	return NewBuilder(t).
		Item("ingots", IronIngot, 30000, ir.InterfaceOut).
		Logistic("split", ir.LogisticConfig{Type: ir.LogisticSplitter}).
		Recipe("rods-a", RecipeRod).
		Recipe("rods-b", RecipeRod).
		Edge("e1", "ingots", RightSolidOut, "split", LeftSolidIn).
		Edge("e2", "split", TopSolidOut, "rods-a", LeftSolidIn).
		Edge("e3", "split", RightSolidOut, "rods-b", LeftSolidIn).
		G
}
