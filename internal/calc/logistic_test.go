package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/beltline/internal/ir"
	"github.com/roach88/beltline/internal/testutil"
)

const (
	hLeftIn    ir.HandleID = "left-solid-in-0"
	hTopIn     ir.HandleID = "top-solid-in-0"
	hBottomIn  ir.HandleID = "bottom-solid-in-0"
	hTopOut    ir.HandleID = "top-solid-out-0"
	hRightOut  ir.HandleID = "right-solid-out-0"
	hBottomOut ir.HandleID = "bottom-solid-out-0"
)

// neighbors is a fixed NeighborFunc: the flow each neighbour exposes.
type neighbors map[ir.HandleID]ir.Flow

func (n neighbors) fn(h ir.HandleID) (ir.Flow, bool) {
	f, ok := n[h]
	return f, ok
}

// wire builds an adjacency map for the given handles.
func wire(handles ...ir.HandleID) map[ir.HandleID]string {
	adj := make(map[ir.HandleID]string, len(handles))
	for i, h := range handles {
		adj[h] = "e" + string(rune('0'+i))
	}
	return adj
}

func produces(item string, rate int64) ir.Flow {
	return ir.PerItem(ir.Rates{item: rate})
}

func logistic(cfg *ir.LogisticConfig) ir.LogisticConfig {
	return ResolveLogistic(cfg)
}

func sumOut(res *ir.Result, item string) int64 {
	var total int64
	for h, f := range res.Actual {
		if ir.MustDecodeHandle(h).PortType == ir.PortOut {
			total += f.Rate(item)
		}
	}
	return total
}

func TestLogisticPort(t *testing.T) {
	splitter := logistic(&ir.LogisticConfig{Type: ir.LogisticSplitter})
	assert.Equal(t, []ir.HandleID{hLeftIn, hTopOut, hRightOut, hBottomOut}, LogisticHandles(splitter))

	merger := logistic(&ir.LogisticConfig{Type: ir.LogisticMerger})
	assert.Equal(t, []ir.HandleID{hLeftIn, hTopIn, hRightOut, hBottomIn}, LogisticHandles(merger))

	junc := logistic(&ir.LogisticConfig{
		Type:        ir.LogisticPipeJunction,
		PipeJuncInt: map[ir.Direction]ir.PortType{ir.DirTop: ir.PortIn, ir.DirLeft: ir.PortOut},
	})
	assert.Equal(t, []ir.HandleID{"left-fluid-in-0", "top-fluid-in-0", "right-fluid-out-0", "bottom-fluid-out-0"}, LogisticHandles(junc))
}

func TestLogistic_Unconfigured(t *testing.T) {
	assert.Nil(t, Logistic("l", logistic(nil), wire(hLeftIn), nil, neighbors{}.fn, &captureSink{}))
}

func TestLogistic_SplitterFeedsTwoConsumersBalanced(t *testing.T) {
	// 30/min ingots into a splitter feeding two constructors at 15/min each
	n := neighbors{
		hLeftIn:   produces(testutil.IronIngot, 30000),
		hRightOut: produces(testutil.IronIngot, -15000),
		hTopOut:   produces(testutil.IronIngot, -15000),
	}
	res := Logistic("s", logistic(&ir.LogisticConfig{Type: ir.LogisticSplitter}), wire(hLeftIn, hRightOut, hTopOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	assert.Equal(t, int64(-30000), res.Actual[hLeftIn].Rate(testutil.IronIngot))
	assert.Equal(t, int64(15000), res.Actual[hRightOut].Rate(testutil.IronIngot))
	assert.Equal(t, int64(15000), res.Actual[hTopOut].Rate(testutil.IronIngot))
	assert.NotContains(t, res.Actual, hBottomOut)

	for _, h := range []ir.HandleID{hLeftIn, hRightOut, hTopOut} {
		assert.True(t, res.Expected[h].Unconstrained, "expected flow of %s is a placeholder", h)
	}
}

func TestLogistic_SplitterSurplusSplitsEvenly(t *testing.T) {
	for _, supply := range []int64{30000, 31000, 1, 0} {
		n := neighbors{hLeftIn: produces(testutil.IronIngot, supply)}
		res := Logistic("s", logistic(&ir.LogisticConfig{Type: ir.LogisticSplitter}),
			wire(hLeftIn, hTopOut, hRightOut, hBottomOut), nil, n.fn, &captureSink{})
		require.NotNil(t, res)

		share := floorDiv(supply, 3)
		for _, h := range []ir.HandleID{hTopOut, hRightOut, hBottomOut} {
			assert.Equal(t, share, res.Actual[h].Rate(testutil.IronIngot))
		}
		assert.Equal(t, 3*share, sumOut(res, testutil.IronIngot))
	}
}

func TestLogistic_SplitterDeficitPullsFromInput(t *testing.T) {
	n := neighbors{
		hLeftIn:   produces(testutil.IronIngot, 30000),
		hRightOut: produces(testutil.IronIngot, -20000),
		hTopOut:   produces(testutil.IronIngot, -20000),
	}
	res := Logistic("s", logistic(&ir.LogisticConfig{Type: ir.LogisticSplitter}), wire(hLeftIn, hRightOut, hTopOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	assert.Equal(t, int64(-40000), res.Actual[hLeftIn].Rate(testutil.IronIngot))
	assert.Equal(t, int64(20000), res.Actual[hRightOut].Rate(testutil.IronIngot))
}

func TestLogistic_DeficitWithoutInputsFallsBackToOutputs(t *testing.T) {
	n := neighbors{
		hRightOut: produces(testutil.IronIngot, -10000),
		hTopOut:   produces(testutil.IronIngot, -10000),
	}
	res := Logistic("s", logistic(&ir.LogisticConfig{Type: ir.LogisticSplitter}), wire(hRightOut, hTopOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	// Mirrored +10000 each, then the -20000 deficit is spread over both outputs
	assert.Equal(t, int64(0), res.Actual[hRightOut].Rate(testutil.IronIngot))
	assert.Equal(t, int64(0), res.Actual[hTopOut].Rate(testutil.IronIngot))
	assert.Empty(t, res.Actual[hRightOut].Rates, "zero rates are dropped")
}

func TestLogistic_MergerCombinesInputs(t *testing.T) {
	n := neighbors{
		hLeftIn:   produces(testutil.IronIngot, 30000),
		hTopIn:    produces(testutil.IronIngot, 30000),
		hBottomIn: produces(testutil.IronRod, 5000),
	}
	res := Logistic("m", logistic(&ir.LogisticConfig{Type: ir.LogisticMerger}), wire(hLeftIn, hTopIn, hBottomIn, hRightOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	assert.Equal(t, int64(60000), res.Actual[hRightOut].Rate(testutil.IronIngot))
	assert.Equal(t, int64(5000), res.Actual[hRightOut].Rate(testutil.IronRod))
	assert.Equal(t, int64(-30000), res.Actual[hTopIn].Rate(testutil.IronIngot))
	assert.Equal(t, int64(60000), sumOut(res, testutil.IronIngot))
}

func TestLogistic_SplitterProRoutesSpecificItems(t *testing.T) {
	cfg := logistic(&ir.LogisticConfig{
		Type: ir.LogisticSplitterPro,
		SmartProRules: map[ir.Direction][]ir.Rule{
			ir.DirTop:   {ir.ItemRule(testutil.IronRod)},
			ir.DirRight: {ir.RuleAny},
		},
	})
	n := neighbors{
		hLeftIn:   ir.PerItem(ir.Rates{testutil.IronIngot: 20000, testutil.IronRod: 10000}),
		hTopOut:   produces(testutil.IronRod, -10000),
		hRightOut: produces(testutil.IronIngot, -20000),
	}
	res := Logistic("p", cfg, wire(hLeftIn, hTopOut, hRightOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	assert.Equal(t, int64(10000), res.Actual[hTopOut].Rate(testutil.IronRod))
	assert.Equal(t, int64(0), res.Actual[hTopOut].Rate(testutil.IronIngot))
	assert.Equal(t, int64(20000), res.Actual[hRightOut].Rate(testutil.IronIngot))
	assert.Equal(t, int64(0), res.Actual[hRightOut].Rate(testutil.IronRod))
}

func TestLogistic_SpecificBucketSharesWithAnyBucket(t *testing.T) {
	cfg := logistic(&ir.LogisticConfig{
		Type: ir.LogisticSplitterPro,
		SmartProRules: map[ir.Direction][]ir.Rule{
			ir.DirTop:   {ir.ItemRule(testutil.IronRod)},
			ir.DirRight: {ir.RuleAny},
		},
	})
	n := neighbors{hLeftIn: ir.PerItem(ir.Rates{testutil.IronIngot: 20000, testutil.IronRod: 10000})}
	res := Logistic("p", cfg, wire(hLeftIn, hTopOut, hRightOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	// Unclaimed surplus: the specific bucket is joined by the any bucket
	assert.Equal(t, int64(5000), res.Actual[hTopOut].Rate(testutil.IronRod))
	assert.Equal(t, int64(5000), res.Actual[hRightOut].Rate(testutil.IronRod))
	assert.Equal(t, int64(20000), res.Actual[hRightOut].Rate(testutil.IronIngot))
}

func TestLogistic_AnyUndefinedTakesUnlistedItems(t *testing.T) {
	cfg := logistic(&ir.LogisticConfig{
		Type: ir.LogisticSplitterSmart,
		SmartProRules: map[ir.Direction][]ir.Rule{
			ir.DirTop:    {ir.ItemRule(testutil.IronRod)},
			ir.DirBottom: {ir.RuleAnyUndefined},
		},
	})
	n := neighbors{hLeftIn: ir.PerItem(ir.Rates{testutil.IronIngot: 20000, testutil.IronRod: 10000})}
	res := Logistic("p", cfg, wire(hLeftIn, hTopOut, hBottomOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	assert.Equal(t, int64(10000), res.Actual[hTopOut].Rate(testutil.IronRod))
	assert.Equal(t, int64(20000), res.Actual[hBottomOut].Rate(testutil.IronIngot))
	assert.Equal(t, int64(0), res.Actual[hBottomOut].Rate(testutil.IronRod))
}

func TestLogistic_AnyUndefinedWithoutSpecificFallsBackToInputs(t *testing.T) {
	cfg := logistic(&ir.LogisticConfig{
		Type:          ir.LogisticSplitterSmart,
		SmartProRules: map[ir.Direction][]ir.Rule{ir.DirBottom: {ir.RuleAnyUndefined}},
	})
	n := neighbors{hLeftIn: produces(testutil.IronIngot, 20000)}
	res := Logistic("p", cfg, wire(hLeftIn, hBottomOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	// No specific rules anywhere, so anyUndefined is not a target tier and
	// the empty any bucket sends the surplus back onto the input.
	assert.Equal(t, int64(0), res.Actual[hBottomOut].Rate(testutil.IronIngot))
	assert.Equal(t, int64(0), res.Actual[hLeftIn].Rate(testutil.IronIngot))
}

func TestLogistic_MultipleItemTokensRegisterEveryBucket(t *testing.T) {
	cfg := logistic(&ir.LogisticConfig{
		Type: ir.LogisticSplitterPro,
		SmartProRules: map[ir.Direction][]ir.Rule{
			ir.DirTop: {ir.ItemRule(testutil.IronRod), ir.ItemRule(testutil.Screw)},
		},
	})
	n := neighbors{hLeftIn: ir.PerItem(ir.Rates{testutil.IronRod: 6000, testutil.Screw: 8000})}
	res := Logistic("p", cfg, wire(hLeftIn, hTopOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	assert.Equal(t, int64(6000), res.Actual[hTopOut].Rate(testutil.IronRod))
	assert.Equal(t, int64(8000), res.Actual[hTopOut].Rate(testutil.Screw))
}

func TestLogistic_FirstTokenDecidesMode(t *testing.T) {
	cfg := logistic(&ir.LogisticConfig{
		Type: ir.LogisticSplitterPro,
		SmartProRules: map[ir.Direction][]ir.Rule{
			ir.DirTop:   {ir.RuleNone, ir.RuleAny},
			ir.DirRight: {ir.RuleAny},
		},
	})
	n := neighbors{hLeftIn: produces(testutil.IronIngot, 9000)}
	res := Logistic("p", cfg, wire(hLeftIn, hTopOut, hRightOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	assert.Equal(t, int64(0), res.Actual[hTopOut].Rate(testutil.IronIngot))
	assert.Equal(t, int64(9000), res.Actual[hRightOut].Rate(testutil.IronIngot))
}

func TestLogistic_OverflowHandlesReceiveNothing(t *testing.T) {
	cfg := logistic(&ir.LogisticConfig{
		Type: ir.LogisticSplitterSmart,
		SmartProRules: map[ir.Direction][]ir.Rule{
			ir.DirTop:   {ir.RuleOverflow},
			ir.DirRight: {ir.RuleAny},
		},
	})
	n := neighbors{
		hLeftIn:   produces(testutil.IronIngot, 30000),
		hRightOut: produces(testutil.IronIngot, -10000),
	}
	res := Logistic("p", cfg, wire(hLeftIn, hTopOut, hRightOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	assert.Empty(t, res.Actual[hTopOut].Rates)
	assert.Equal(t, int64(30000), res.Actual[hRightOut].Rate(testutil.IronIngot))
}

func TestLogistic_InvalidRuleExcludesHandle(t *testing.T) {
	cfg := logistic(&ir.LogisticConfig{
		Type: ir.LogisticSplitterPro,
		SmartProRules: map[ir.Direction][]ir.Rule{
			ir.DirTop:   {"sometimes"},
			ir.DirRight: {ir.RuleAny},
		},
	})
	sink := &captureSink{}
	n := neighbors{hLeftIn: produces(testutil.IronIngot, 8000)}
	res := Logistic("p", cfg, wire(hLeftIn, hTopOut, hRightOut), nil, n.fn, sink)
	require.NotNil(t, res)

	assert.Equal(t, []ir.ErrorCode{ir.ErrCodeInvalidDistributionRule}, sink.codes())
	assert.Equal(t, int64(0), res.Actual[hTopOut].Rate(testutil.IronIngot))
	assert.Equal(t, int64(8000), res.Actual[hRightOut].Rate(testutil.IronIngot))
}

func TestLogistic_IgnoredHandleStillReceivesShare(t *testing.T) {
	n := neighbors{
		hLeftIn:   produces(testutil.IronIngot, 30000),
		hRightOut: produces(testutil.IronIngot, -99999), // never read
	}
	res := Logistic("s", logistic(&ir.LogisticConfig{Type: ir.LogisticSplitter}),
		wire(hLeftIn, hRightOut, hTopOut), []ir.HandleID{hRightOut}, n.fn, &captureSink{})
	require.NotNil(t, res)

	assert.True(t, res.Partial())
	assert.True(t, res.Ignores(hRightOut))
	assert.Equal(t, int64(15000), res.Actual[hRightOut].Rate(testutil.IronIngot))
	assert.Equal(t, int64(15000), res.Actual[hTopOut].Rate(testutil.IronIngot))
}

func TestLogistic_UnconstrainedNeighborContributesNothing(t *testing.T) {
	n := neighbors{
		hLeftIn:   produces(testutil.IronIngot, 12000),
		hRightOut: ir.Unconstrained(),
	}
	res := Logistic("s", logistic(&ir.LogisticConfig{Type: ir.LogisticSplitter}), wire(hLeftIn, hRightOut), nil, n.fn, &captureSink{})
	require.NotNil(t, res)
	assert.Equal(t, int64(12000), res.Actual[hRightOut].Rate(testutil.IronIngot))
}

func TestLogistic_PipeJunction(t *testing.T) {
	cfg := logistic(&ir.LogisticConfig{
		Type:        ir.LogisticPipeJunction,
		PipeJuncInt: map[ir.Direction]ir.PortType{ir.DirTop: ir.PortIn},
	})
	const (
		left   ir.HandleID = "left-fluid-in-0"
		top    ir.HandleID = "top-fluid-in-0"
		right  ir.HandleID = "right-fluid-out-0"
		bottom ir.HandleID = "bottom-fluid-out-0"
	)
	n := neighbors{
		left: produces(testutil.Water, 60000),
		top:  produces(testutil.Water, 60000),
	}
	res := Logistic("j", cfg, wire(left, top, right, bottom), nil, n.fn, &captureSink{})
	require.NotNil(t, res)

	assert.Equal(t, int64(60000), res.Actual[right].Rate(testutil.Water))
	assert.Equal(t, int64(60000), res.Actual[bottom].Rate(testutil.Water))
}
