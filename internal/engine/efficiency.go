package engine

import (
	"slices"

	"github.com/roach88/beltline/internal/calc"
	"github.com/roach88/beltline/internal/ir"
)

// Efficiency is the delivery of one consuming item node.
type Efficiency struct {
	NodeID     string  `json:"nodeId"`
	ItemKey    string  `json:"itemKey"`
	Expected   int64   `json:"expected"`
	Available  int64   `json:"available"`
	Speed      int64   `json:"speed"`
	Efficiency float64 `json:"efficiency"`
}

// ItemEfficiency reports, for every item node with a wired in handle, how
// much of its requested rate the neighbour actually supplies. It reads
// the memo table and should follow ComputeGraph.
//
// Behind a splitter or merger the available rate is the consumer's share
// of what reaches that node, not the mirrored demand on its out handle.
func (c *Context) ItemEfficiency() []Efficiency {
	var out []Efficiency
	for _, id := range c.graph.NodeIDsOfKind(ir.KindItem) {
		res, ok := c.memo.Result(id)
		if !ok {
			continue
		}
		for _, h := range res.Expected.Handles() {
			if ir.MustDecodeHandle(h).PortType != ir.PortIn {
				continue
			}
			edgeID, wired := c.graph.Adjacency(id)[h]
			if !wired {
				continue
			}
			e, ok := c.graph.Edge(edgeID)
			if !ok {
				continue
			}
			otherID, otherHandle, ok := e.Opposite(id, h)
			if !ok {
				continue
			}
			if _, ok := c.memo.Result(otherID); !ok {
				continue
			}

			for _, item := range res.Expected[h].Items() {
				expected := -res.Expected[h].Rate(item)
				available := c.delivered(otherID, otherHandle, item, nil)
				speed, eff := calc.FactoryItemSpeed(expected, available)
				out = append(out, Efficiency{
					NodeID:     id,
					ItemKey:    item,
					Expected:   expected,
					Available:  available,
					Speed:      speed,
					Efficiency: eff,
				})
			}
		}
	}
	return out
}

// delivered is the rate of item that actually leaves nodeID through the
// out handle h.
//
// Item and recipe nodes deliver what they declare. A logistic node mirrors
// downstream demand on its out handles, so when the supply reaching its in
// handles falls short, every out handle is scaled by supply/demand.
// Supply is resolved recursively through chained logistic nodes; a node
// already on the path delivers its offered rate unscaled.
func (c *Context) delivered(nodeID string, h ir.HandleID, item string, path []string) int64 {
	res, ok := c.memo.Result(nodeID)
	if !ok {
		return 0
	}
	flow, _ := res.FlowAt(h)
	offered := flow.Rate(item)
	if res.Kind != ir.KindLogistic || offered <= 0 || slices.Contains(path, nodeID) {
		return offered
	}
	path = append(slices.Clip(path), nodeID)

	var supply, demand int64
	adj := c.graph.Adjacency(nodeID)
	for _, lh := range res.Actual.Handles() {
		edgeID, wired := adj[lh]
		if !wired {
			continue
		}
		switch ir.MustDecodeHandle(lh).PortType {
		case ir.PortOut:
			demand += max(res.Actual[lh].Rate(item), 0)
		case ir.PortIn:
			e, ok := c.graph.Edge(edgeID)
			if !ok {
				continue
			}
			upID, upHandle, ok := e.Opposite(nodeID, lh)
			if !ok {
				continue
			}
			supply += max(c.delivered(upID, upHandle, item, path), 0)
		}
	}

	if demand <= supply {
		return offered
	}
	return offered * supply / demand
}
