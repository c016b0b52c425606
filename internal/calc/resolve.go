package calc

import "github.com/roach88/beltline/internal/ir"

// ResolveItem returns a fully defaulted copy of an item configuration.
// A nil configuration resolves to the defaults.
func ResolveItem(c *ir.ItemConfig) ir.ItemConfig {
	var out ir.ItemConfig
	if c != nil {
		out = *c
	}
	if out.InterfaceKind == "" {
		out.InterfaceKind = ir.InterfaceBoth
	}
	return out
}

// ResolveRecipe returns a fully defaulted copy of a recipe configuration.
func ResolveRecipe(c *ir.RecipeConfig) ir.RecipeConfig {
	var out ir.RecipeConfig
	if c != nil {
		out.RecipeKey = c.RecipeKey
	}
	clock := ir.ClockSpeedFull
	if c != nil && c.ClockSpeedThou != nil {
		clock = *c.ClockSpeedThou
	}
	out.ClockSpeedThou = &clock
	return out
}

// ResolveLogistic returns a fully defaulted deep copy of a logistic
// configuration. Missing rules default to {right: [any]}; a missing
// junction assignment defaults to an empty map.
func ResolveLogistic(c *ir.LogisticConfig) ir.LogisticConfig {
	var out ir.LogisticConfig
	if c != nil {
		out.Type = c.Type
	}

	if c == nil || len(c.SmartProRules) == 0 {
		out.SmartProRules = map[ir.Direction][]ir.Rule{ir.DirRight: {ir.RuleAny}}
	} else {
		out.SmartProRules = make(map[ir.Direction][]ir.Rule, len(c.SmartProRules))
		for dir, rules := range c.SmartProRules {
			out.SmartProRules[dir] = append([]ir.Rule(nil), rules...)
		}
	}

	out.PipeJuncInt = make(map[ir.Direction]ir.PortType)
	if c != nil {
		for dir, port := range c.PipeJuncInt {
			out.PipeJuncInt[dir] = port
		}
	}
	return out
}
