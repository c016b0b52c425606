package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/beltline/internal/ir"
)

// Snapshot converts a scenario result into a canonical object covering
// the flows of every computed node, every edge annotation and every
// diagnostic in emission order. Node flows use their persisted form, so
// unconstrained handles read {"any":0}. basedOn hashes are left out: they
// would churn the golden files on any config encoding change.
func Snapshot(scenarioName string, result *Result) ir.Object {
	nodes := ir.Object{}
	for id, res := range result.Results {
		if res == nil {
			continue
		}
		flows := res.Flows()
		obj := ir.Object{"expected": flowsObject(flows.Expected)}
		if len(flows.Actual) > 0 {
			obj["actual"] = flowsObject(flows.Actual)
		}
		nodes[id] = obj
	}

	edges := ir.Object{}
	for id, ann := range result.Edges {
		if ann == nil {
			continue
		}
		edges[id] = annotationObject(ann)
	}

	diags := make(ir.List, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		obj := ir.Object{
			"severity": ir.Str(d.Severity),
			"message":  ir.Str(d.Message),
		}
		if d.Code != "" {
			obj["code"] = ir.Str(d.Code)
		}
		if d.NodeID != "" {
			obj["nodeId"] = ir.Str(d.NodeID)
		}
		if d.EdgeID != "" {
			obj["edgeId"] = ir.Str(d.EdgeID)
		}
		diags = append(diags, obj)
	}

	return ir.Object{
		"scenario":    ir.Str(scenarioName),
		"run_id":      ir.Str(result.RunID),
		"nodes":       nodes,
		"edges":       edges,
		"diagnostics": diags,
	}
}

func flowsObject(p ir.PersistedFlows) ir.Object {
	out := make(ir.Object, len(p))
	for h, rates := range p {
		obj := make(ir.Object, len(rates))
		for item, v := range rates {
			obj[item] = ir.Int(v)
		}
		out[string(h)] = obj
	}
	return out
}

func annotationObject(ann *ir.EdgeAnnotation) ir.Object {
	items := make(ir.List, 0, len(ann.Items))
	for _, b := range ann.Items {
		items = append(items, ir.Object{
			"itemKey": ir.Str(b.ItemKey),
			"status":  ir.Str(b.Status),
			"rate":    ir.Int(b.Rate),
		})
	}
	obj := ir.Object{
		"state": ir.Str(ann.State),
		"items": items,
	}
	if ann.Label != "" {
		obj["label"] = ir.Str(ann.Label)
	}
	if ann.Message != "" {
		obj["message"] = ir.Str(ann.Message)
	}
	return obj
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already computed result against its golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(Snapshot(scenarioName, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
