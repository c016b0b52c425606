package calc

import (
	"fmt"

	"github.com/roach88/beltline/internal/ir"
	"github.com/roach88/beltline/internal/refdata"
)

const (
	millisPerMinute = 60_000

	// Solid amounts are whole items; fluid amounts are already stored in
	// thousandths, so only solids are scaled up to thou.
	solidUnit = 1000
	fluidUnit = 1
)

// RecipeRate returns the per-minute rate in thou of a signed per-cycle
// amount, for a recipe of the given duration run at clock speed clockThou.
//
//	rate = amount * unit * 60 / (duration * clock/ClockSpeedFull), floored
func RecipeRate(signedAmount int64, form ir.Form, durationMillis, clockThou int64) int64 {
	unit := int64(solidUnit)
	if form == ir.FormFluid {
		unit = fluidUnit
	}
	return floorDiv(signedAmount*unit*millisPerMinute*clockThou, durationMillis*ir.ClockSpeedFull)
}

// Recipe computes the expected flow of a production node.
//
// Ingredients bind to sequential left in handles and products to
// sequential right out handles, in declaration order. The in and out slot
// counters advance independently, and a slot is consumed even when its
// item is missing from the reference data so later ports keep their place.
func Recipe(nodeID string, cfg ir.RecipeConfig, ref Reference, sink Sink) *ir.Result {
	if cfg.RecipeKey == "" {
		return nil
	}

	recipe, ok := ref.Recipe(cfg.RecipeKey)
	if !ok {
		err := ir.NewNotFoundError(ir.ErrCodeReferencedRecipeNotFound, nodeID, cfg.RecipeKey)
		sink.Emit(ir.DiagnosticFromError(ir.SeverityError, err))
		return nil
	}
	if recipe.DurationMillis <= 0 {
		sink.Emit(ir.Diagnostic{
			Severity: ir.SeverityError,
			NodeID:   nodeID,
			Message:  fmt.Sprintf("recipe %q has no manufacturing duration", cfg.RecipeKey),
		})
		return nil
	}

	clock := ir.ClockSpeedFull
	if cfg.ClockSpeedThou != nil {
		clock = *cfg.ClockSpeedThou
	}

	res := &ir.Result{
		NodeID:   nodeID,
		Kind:     ir.KindRecipe,
		Expected: make(ir.HandleFlows, len(recipe.Ingredients)+len(recipe.Products)),
	}
	var used portUsage

	bind := func(amounts []refdata.Amount, dir ir.Direction, port ir.PortType, sign int64) {
		slot := 0
		for _, a := range amounts {
			idx := slot
			slot++

			item, ok := ref.Item(a.ItemKey)
			if !ok {
				err := ir.NewNotFoundError(ir.ErrCodeReferencedItemNotFound, nodeID, a.ItemKey)
				sink.Emit(ir.DiagnosticFromError(ir.SeverityWarning, err))
				continue
			}
			form := item.HandleForm()
			used.count(form, port)

			h := ir.EncodeHandle(dir, form, port, idx)
			rate := RecipeRate(sign*a.Amount, form, recipe.DurationMillis, clock)
			res.Expected[h] = ir.PerItem(ir.Rates{a.ItemKey: rate})
		}
	}
	bind(recipe.Ingredients, ir.DirLeft, ir.PortIn, -1)
	bind(recipe.Products, ir.DirRight, ir.PortOut, 1)

	checkMachine(nodeID, recipe, used, ref, sink)
	return res
}

// portUsage counts the handles a recipe needs per form and direction.
type portUsage struct {
	solidIn, solidOut, fluidIn, fluidOut int
}

func (u *portUsage) count(form ir.Form, port ir.PortType) {
	switch {
	case form == ir.FormSolid && port == ir.PortIn:
		u.solidIn++
	case form == ir.FormSolid:
		u.solidOut++
	case port == ir.PortIn:
		u.fluidIn++
	default:
		u.fluidOut++
	}
}

// checkMachine warns when the producing machine is unknown or offers
// fewer ports than the recipe binds. Neither stops the computation.
func checkMachine(nodeID string, recipe refdata.Recipe, used portUsage, ref Reference, sink Sink) {
	if recipe.ProducedIn == "" {
		return
	}
	m, ok := ref.Machine(recipe.ProducedIn)
	if !ok {
		err := ir.NewNotFoundError(ir.ErrCodeReferencedMachineNotFound, nodeID, recipe.ProducedIn)
		sink.Emit(ir.DiagnosticFromError(ir.SeverityWarning, err))
		return
	}
	if used.solidIn > m.SolidIn || used.solidOut > m.SolidOut || used.fluidIn > m.FluidIn || used.fluidOut > m.FluidOut {
		sink.Emit(ir.Diagnostic{
			Severity: ir.SeverityWarning,
			NodeID:   nodeID,
			Message: fmt.Sprintf("recipe %q needs %d/%d solid and %d/%d fluid in/out ports, machine %q has %d/%d and %d/%d",
				recipe.Key, used.solidIn, used.solidOut, used.fluidIn, used.fluidOut,
				m.Key, m.SolidIn, m.SolidOut, m.FluidIn, m.FluidOut),
		})
	}
}
