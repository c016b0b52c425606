package engine

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/beltline/internal/ir"
)

// annotate derives the balance annotation of one edge from the results
// at both ends. It returns nil when either end has no result.
//
// Source out-flows are positive and target in-flows negative, so the sum
// per item is zero on a balanced edge.
func (c *Context) annotate(e *ir.Edge) *ir.EdgeAnnotation {
	if e.SourceHandle == "" || e.TargetHandle == "" {
		return missingHandleData(e)
	}

	src, err := c.computeNode(e.Source, nil, nil)
	if err != nil || src == nil {
		return nil
	}
	dst, err := c.computeNode(e.Target, nil, nil)
	if err != nil || dst == nil {
		return nil
	}

	srcFlow, okSrc := src.FlowAt(e.SourceHandle)
	dstFlow, okDst := dst.FlowAt(e.TargetHandle)
	if !okSrc || !okDst {
		return missingHandleData(e)
	}

	keys := append(srcFlow.Items(), dstFlow.Items()...)
	slices.Sort(keys)
	keys = slices.Compact(keys)
	keys = slices.DeleteFunc(keys, func(k string) bool { return k == ir.AnyKey })

	ann := &ir.EdgeAnnotation{State: ir.EdgeStateOK}
	labels := make([]string, 0, len(keys))
	for _, key := range keys {
		source := srcFlow.Rate(key)
		sum := source + dstFlow.Rate(key)

		b := ir.ItemBalance{ItemKey: key}
		switch {
		case sum == 0:
			b.Status, b.Rate = ir.BalanceBalanced, source
		case sum > 0:
			b.Status, b.Rate = ir.BalanceOverproducing, sum
		default:
			b.Status, b.Rate = ir.BalanceUnderproducing, -sum
		}
		if b.Status != ir.BalanceBalanced {
			ann.State = ir.EdgeStateWarning
		}
		ann.Items = append(ann.Items, b)
		labels = append(labels, c.label(b))
	}
	ann.Label = strings.Join(labels, ", ")
	if ann.State == ir.EdgeStateWarning {
		ann.Message = fmt.Sprintf("%d of %d items unbalanced", countUnbalanced(ann.Items), len(ann.Items))
	}
	return ann
}

func missingHandleData(e *ir.Edge) *ir.EdgeAnnotation {
	return &ir.EdgeAnnotation{
		State:   ir.EdgeStateError,
		Message: fmt.Sprintf("edge %s: missing handle data", e.ID),
	}
}

// label renders one item balance, e.g. "Iron Ingot 30/min" or
// "Iron Ingot +2.5/min over".
func (c *Context) label(b ir.ItemBalance) string {
	name := b.ItemKey
	if it, ok := c.catalog.Item(b.ItemKey); ok && it.DisplayName != "" {
		name = it.DisplayName
	}
	switch b.Status {
	case ir.BalanceOverproducing:
		return fmt.Sprintf("%s +%s/min over", name, FormatRate(b.Rate))
	case ir.BalanceUnderproducing:
		return fmt.Sprintf("%s -%s/min under", name, FormatRate(b.Rate))
	}
	return fmt.Sprintf("%s %s/min", name, FormatRate(b.Rate))
}

// FormatRate renders a thou rate as items per minute: 30000 is "30",
// 2500 is "2.5".
func FormatRate(thou int64) string {
	return strconv.FormatFloat(float64(thou)/1000, 'f', -1, 64)
}

func countUnbalanced(items []ir.ItemBalance) int {
	n := 0
	for _, b := range items {
		if b.Status != ir.BalanceBalanced {
			n++
		}
	}
	return n
}
