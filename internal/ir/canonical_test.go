package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	out, err := MarshalCanonical(Object{"zebra": Int(1), "alpha": Int(2), "mid": Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":true,"zebra":1}`, string(out))
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+1F600 encodes as surrogates D83D DE00, which sort before U+FF5E
	// in UTF-16 even though its UTF-8 bytes sort after.
	out, err := MarshalCanonical(Object{"\uFF5E": Int(1), "\U0001F600": Int(2)})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":2,\"\uFF5E\":1}", string(out))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	out, err := MarshalCanonical(Str("<a&b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(out))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	decomposed, err := MarshalCanonical(Str("e\u0301"))
	require.NoError(t, err)
	composed, err := MarshalCanonical(Str("\u00e9"))
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonical_LineSeparatorsLiteral(t *testing.T) {
	out, err := MarshalCanonical(Str("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(out))

	// An escaped backslash followed by the text u2028 stays escaped
	out, err = MarshalCanonical(Str(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(out))
}

func TestMarshalCanonical_NestedList(t *testing.T) {
	out, err := MarshalCanonical(List{Str("x"), Int(-3), List{}})
	require.NoError(t, err)
	assert.Equal(t, `["x",-3,[]]`, string(out))
}

func TestMarshalCanonical_RejectsNil(t *testing.T) {
	_, err := MarshalCanonical(Object{"x": nil})
	assert.Error(t, err)
}

func TestSnapshots_StableAndSensitive(t *testing.T) {
	a, err := ItemSnapshot(ItemConfig{ItemKey: "Desc_IronIngot_C", SpeedThou: 30000, InterfaceKind: InterfaceBoth})
	require.NoError(t, err)
	b, err := ItemSnapshot(ItemConfig{ItemKey: "Desc_IronIngot_C", SpeedThou: 30000, InterfaceKind: InterfaceBoth})
	require.NoError(t, err)
	c, err := ItemSnapshot(ItemConfig{ItemKey: "Desc_IronIngot_C", SpeedThou: 30001, InterfaceKind: InterfaceBoth})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestSnapshots_DomainSeparation(t *testing.T) {
	item, err := ItemSnapshot(ItemConfig{})
	require.NoError(t, err)
	recipe, err := RecipeSnapshot(RecipeConfig{})
	require.NoError(t, err)
	assert.NotEqual(t, item, recipe)
}

func TestLogisticSnapshot_IncludesAdjacency(t *testing.T) {
	cfg := LogisticConfig{
		Type:          LogisticSplitterPro,
		SmartProRules: map[Direction][]Rule{DirRight: {RuleAny}, DirTop: {ItemRule("Desc_IronRod_C")}},
	}

	unwired, err := LogisticSnapshot(cfg, nil)
	require.NoError(t, err)
	wired, err := LogisticSnapshot(cfg, map[HandleID]string{"left-solid-in-0": "e1"})
	require.NoError(t, err)
	again, err := LogisticSnapshot(cfg, map[HandleID]string{"left-solid-in-0": "e1"})
	require.NoError(t, err)

	assert.NotEqual(t, unwired, wired)
	assert.Equal(t, wired, again)
}

func TestFlow_PersistedForm(t *testing.T) {
	assert.Equal(t, map[string]int64{AnyKey: 0}, Unconstrained().MarshalRates())
	assert.True(t, FlowFromRates(map[string]int64{AnyKey: 0}).Unconstrained)

	f := FlowFromRates(map[string]int64{"Desc_IronIngot_C": -30000})
	assert.False(t, f.Unconstrained)
	assert.Equal(t, int64(-30000), f.Rate("Desc_IronIngot_C"))
	assert.Equal(t, int64(0), Unconstrained().Rate("Desc_IronIngot_C"))
}

func TestResult_Flows(t *testing.T) {
	r := &Result{
		NodeID: "split",
		Kind:   KindLogistic,
		Expected: HandleFlows{
			"left-solid-in-0":   Unconstrained(),
			"top-solid-out-0":   Unconstrained(),
			"right-solid-out-0": PerItem(nil),
		},
		Actual: HandleFlows{
			"left-solid-in-0": PerItem(Rates{"Desc_IronIngot_C": -30000}),
			"top-solid-out-0": PerItem(Rates{"Desc_IronIngot_C": 30000}),
		},
	}

	flows := r.Flows()
	assert.Equal(t, map[string]int64{AnyKey: 0}, flows.Expected["top-solid-out-0"])
	assert.Equal(t, map[string]int64{}, flows.Expected["right-solid-out-0"])
	assert.Equal(t, map[string]int64{"Desc_IronIngot_C": -30000}, flows.Actual["left-solid-in-0"])

	// The persisted copy is independent of the result
	flows.Actual["left-solid-in-0"]["Desc_IronIngot_C"] = 0
	assert.Equal(t, int64(-30000), r.Actual["left-solid-in-0"].Rate("Desc_IronIngot_C"))

	back := flows.Actual.Flows()
	assert.Equal(t, int64(30000), back["top-solid-out-0"].Rate("Desc_IronIngot_C"))
	assert.True(t, flows.Expected.Flows()["left-solid-in-0"].Unconstrained)

	var nilResult *Result
	assert.Equal(t, NodeFlows{}, nilResult.Flows())
	assert.Nil(t, (&Result{}).Flows().Actual)
}
