package calc

import (
	"github.com/roach88/beltline/internal/ir"
	"github.com/roach88/beltline/internal/refdata"
)

// Reference is the read-only reference data lookup used by calculators.
// *refdata.Catalog implements it.
type Reference interface {
	Item(key string) (refdata.Item, bool)
	Recipe(key string) (refdata.Recipe, bool)
	Machine(key string) (refdata.Machine, bool)
}

// Sink receives fail-soft diagnostics.
type Sink interface {
	Emit(d ir.Diagnostic)
}

// Item computes the expected flow of an item source/sink node.
//
// The in handle sits on the left with rate -speed; the out handle sits on
// the right with rate +speed. Which of the two exist is selected by the
// interface kind.
func Item(nodeID string, cfg ir.ItemConfig, ref Reference, sink Sink) *ir.Result {
	if cfg.ItemKey == "" {
		return nil
	}

	item, ok := ref.Item(cfg.ItemKey)
	if !ok {
		err := ir.NewNotFoundError(ir.ErrCodeReferencedItemNotFound, nodeID, cfg.ItemKey)
		sink.Emit(ir.DiagnosticFromError(ir.SeverityError, err))
		return nil
	}
	form := item.HandleForm()

	res := &ir.Result{
		NodeID:   nodeID,
		Kind:     ir.KindItem,
		Expected: make(ir.HandleFlows, 2),
	}
	if cfg.InterfaceKind == ir.InterfaceBoth || cfg.InterfaceKind == ir.InterfaceIn {
		h := ir.EncodeHandle(ir.DirLeft, form, ir.PortIn, 0)
		res.Expected[h] = ir.PerItem(ir.Rates{cfg.ItemKey: -cfg.SpeedThou})
	}
	if cfg.InterfaceKind == ir.InterfaceBoth || cfg.InterfaceKind == ir.InterfaceOut {
		h := ir.EncodeHandle(ir.DirRight, form, ir.PortOut, 0)
		res.Expected[h] = ir.PerItem(ir.Rates{cfg.ItemKey: cfg.SpeedThou})
	}
	return res
}
