package calc

import (
	"fmt"
	"slices"

	"github.com/roach88/beltline/internal/ir"
)

// NeighborFunc returns the flow the neighbour across h exposes at its own
// end of the edge, and false when there is no usable neighbour result.
// The engine implements it on top of the memo table and cycle guard.
type NeighborFunc func(h ir.HandleID) (ir.Flow, bool)

// LogisticPort returns the form and port type of a logistic node's handle
// on dir.
//
// Pipe junctions are fluid; left is always in and the other directions use
// the configured assignment, defaulting to out. Belt logistics are solid;
// a merger takes input everywhere except right, every other type only on
// the left.
func LogisticPort(cfg ir.LogisticConfig, dir ir.Direction) (ir.Form, ir.PortType) {
	if cfg.Type == ir.LogisticPipeJunction {
		if dir == ir.DirLeft {
			return ir.FormFluid, ir.PortIn
		}
		if port, ok := cfg.PipeJuncInt[dir]; ok && port != "" {
			return ir.FormFluid, port
		}
		return ir.FormFluid, ir.PortOut
	}
	if cfg.Type == ir.LogisticMerger {
		if dir == ir.DirRight {
			return ir.FormSolid, ir.PortOut
		}
		return ir.FormSolid, ir.PortIn
	}
	if dir == ir.DirLeft {
		return ir.FormSolid, ir.PortIn
	}
	return ir.FormSolid, ir.PortOut
}

// LogisticHandles returns the slot-0 handle of every direction.
func LogisticHandles(cfg ir.LogisticConfig) []ir.HandleID {
	out := make([]ir.HandleID, 0, len(ir.Directions))
	for _, dir := range ir.Directions {
		form, port := LogisticPort(cfg, dir)
		out = append(out, ir.EncodeHandle(dir, form, port, 0))
	}
	return out
}

// buckets groups the connected handles of one logistic node by role.
type buckets struct {
	in           []ir.HandleID
	out          []ir.HandleID
	anyOut       []ir.HandleID
	overflowOut  []ir.HandleID // collected, never fed: overflow routing is not implemented
	undefinedOut []ir.HandleID
	specific     map[string][]ir.HandleID
}

// Logistic computes a splitter, merger or pipe junction.
//
// Each connected handle starts with the mirror of what its neighbour
// exposes (a neighbour producing +N is -N here), and the neighbour values
// are summed per item into remaining: positive means surplus supplied,
// negative means unmet demand. Each non-zero remaining amount is then
// split with floor division over one target tier:
//
//   - deficit: the in handles, else the out handles
//   - surplus: the item's specific bucket plus the any bucket; else, when
//     specific buckets and anyUndefined handles both exist, anyUndefined
//     plus any; else the any bucket alone; an empty tier falls back to the
//     in handles
//
// Handles in ignore are still wired and still receive a share; only the
// neighbour lookup is skipped.
func Logistic(
	nodeID string,
	cfg ir.LogisticConfig,
	adjacency map[ir.HandleID]string,
	ignore []ir.HandleID,
	neighbor NeighborFunc,
	sink Sink,
) *ir.Result {
	if cfg.Type == "" {
		return nil
	}

	res := &ir.Result{
		NodeID:   nodeID,
		Kind:     ir.KindLogistic,
		Expected: make(ir.HandleFlows),
		Actual:   make(ir.HandleFlows),
	}
	if len(ignore) > 0 {
		res.IgnoredHandles = slices.Clone(ignore)
		slices.Sort(res.IgnoredHandles)
	}

	remaining := ir.Rates{}
	b := buckets{specific: make(map[string][]ir.HandleID)}
	rulesApply := cfg.Type == ir.LogisticSplitterSmart || cfg.Type == ir.LogisticSplitterPro

	for _, h := range LogisticHandles(cfg) {
		if _, wired := adjacency[h]; !wired {
			continue
		}
		parts, _ := ir.DecodeHandle(h, false)
		dir, port := parts.Direction, parts.PortType

		actual := ir.Rates{}
		res.Expected[h] = ir.Unconstrained()
		res.Actual[h] = ir.PerItem(actual)

		if !slices.Contains(ignore, h) {
			if f, ok := neighbor(h); ok && !f.Unconstrained {
				for item, v := range f.Rates {
					if v == 0 {
						continue
					}
					actual.Add(item, -v)
					remaining.Add(item, v)
				}
			}
		}

		if port == ir.PortIn {
			b.in = append(b.in, h)
			continue
		}
		if dir == ir.DirLeft {
			continue
		}
		b.out = append(b.out, h)
		if !rulesApply {
			b.anyOut = append(b.anyOut, h)
			continue
		}
		b.classify(nodeID, h, cfg.SmartProRules[dir], sink)
	}

	for _, item := range remaining.Keys() {
		amount := remaining[item]
		if amount == 0 {
			continue
		}
		targets := b.targets(item, amount)
		if len(targets) == 0 {
			continue
		}
		share := floorDiv(amount, int64(len(targets)))
		for _, h := range targets {
			res.Actual[h].Rates.Add(item, share)
		}
	}

	for _, f := range res.Actual {
		for item, v := range f.Rates {
			if v == 0 {
				delete(f.Rates, item)
			}
		}
	}
	return res
}

// classify buckets an out handle by the first token of its rule list.
// An item rule registers the handle under every item token in the list.
func (b *buckets) classify(nodeID string, h ir.HandleID, rules []ir.Rule, sink Sink) {
	if len(rules) == 0 {
		return
	}

	switch rules[0] {
	case ir.RuleAny:
		b.anyOut = append(b.anyOut, h)
	case ir.RuleNone:
	case ir.RuleAnyUndefined:
		b.undefinedOut = append(b.undefinedOut, h)
	case ir.RuleOverflow:
		b.overflowOut = append(b.overflowOut, h)
	default:
		if _, ok := rules[0].ItemKey(); !ok {
			emitInvalidRule(nodeID, h, rules[0], sink)
			return
		}
		for _, r := range rules {
			if key, ok := r.ItemKey(); ok {
				if !slices.Contains(b.specific[key], h) {
					b.specific[key] = append(b.specific[key], h)
				}
				continue
			}
			if !knownRule(r) {
				emitInvalidRule(nodeID, h, r, sink)
			}
		}
	}
}

// targets picks the handles that absorb the remaining amount of item.
func (b *buckets) targets(item string, amount int64) []ir.HandleID {
	if amount < 0 {
		if len(b.in) > 0 {
			return b.in
		}
		return b.out
	}

	var t []ir.HandleID
	switch specific, ok := b.specific[item]; {
	case ok:
		t = append(slices.Clone(specific), b.anyOut...)
	case len(b.specific) > 0 && len(b.undefinedOut) > 0:
		t = append(slices.Clone(b.undefinedOut), b.anyOut...)
	default:
		t = b.anyOut
	}
	if len(t) == 0 {
		return b.in
	}
	return t
}

func knownRule(r ir.Rule) bool {
	switch r {
	case ir.RuleAny, ir.RuleNone, ir.RuleAnyUndefined, ir.RuleOverflow:
		return true
	}
	return false
}

func emitInvalidRule(nodeID string, h ir.HandleID, r ir.Rule, sink Sink) {
	sink.Emit(ir.Diagnostic{
		Severity: ir.SeverityWarning,
		Code:     ir.ErrCodeInvalidDistributionRule,
		NodeID:   nodeID,
		Message:  fmt.Sprintf("%s: unknown rule %q on handle %s", ir.ErrCodeInvalidDistributionRule, r, h),
	})
}
