// Package testutil provides fixtures shared by the package tests.
package testutil

import (
	"github.com/roach88/beltline/internal/refdata"
)

// Item keys of the fixture catalog.
const (
	IronOre   = "Desc_OreIron_C"
	IronIngot = "Desc_IronIngot_C"
	IronRod   = "Desc_IronRod_C"
	Screw     = "Desc_IronScrew_C"
	Water     = "Desc_Water_C"
	Nitrogen  = "Desc_NitrogenGas_C"
	Phantom   = "Desc_Phantom_C" // referenced by recipes, absent from the item table
)

// Recipe keys of the fixture catalog.
const (
	RecipeIngot      = "Recipe_IngotIron_C"     // 1 ore -> 1 ingot / 2s, smelter
	RecipeRod        = "Recipe_IronRod_C"       // 1 ingot -> 1 rod / 4s, constructor
	RecipeScrew      = "Recipe_Screw_C"         // 1 rod -> 4 screw / 6s, constructor
	RecipeWetOre     = "Recipe_WetOre_C"        // 2 water + 1 ore -> 1 nitrogen / 6s, refinery
	RecipePhantom    = "Recipe_Phantom_C"       // ingot + phantom -> rod / 4s
	RecipeNoMachine  = "Recipe_NoMachine_C"     // ingot -> rod, produced in an unknown machine
	RecipeTooManyIns = "Recipe_TooManyInputs_C" // two solid inputs in a one-input constructor
)

// Machine keys of the fixture catalog.
const (
	Smelter     = "Build_SmelterMk1_C"
	Constructor = "Build_ConstructorMk1_C"
	Refinery    = "Build_OilRefinery_C"
)

// Catalog returns a small reference data set covering solids, liquids,
// gases, missing items and missing machines.
func Catalog() *refdata.Catalog {
	items := []refdata.Item{
		{Key: IronOre, DisplayName: "Iron Ore", Form: refdata.ItemSolid},
		{Key: IronIngot, DisplayName: "Iron Ingot", Form: refdata.ItemSolid},
		{Key: IronRod, DisplayName: "Iron Rod", Form: refdata.ItemSolid},
		{Key: Screw, DisplayName: "Screw", Form: refdata.ItemSolid},
		{Key: Water, DisplayName: "Water", Form: refdata.ItemLiquid},
		{Key: Nitrogen, DisplayName: "Nitrogen Gas", Form: refdata.ItemGas},
	}

	recipes := []refdata.Recipe{
		{
			Key:            RecipeIngot,
			DisplayName:    "Iron Ingot",
			Ingredients:    []refdata.Amount{{ItemKey: IronOre, Amount: 1}},
			Products:       []refdata.Amount{{ItemKey: IronIngot, Amount: 1}},
			DurationMillis: 2000,
			ProducedIn:     Smelter,
		},
		{
			Key:            RecipeRod,
			DisplayName:    "Iron Rod",
			Ingredients:    []refdata.Amount{{ItemKey: IronIngot, Amount: 1}},
			Products:       []refdata.Amount{{ItemKey: IronRod, Amount: 1}},
			DurationMillis: 4000,
			ProducedIn:     Constructor,
		},
		{
			Key:            RecipeScrew,
			DisplayName:    "Screw",
			Ingredients:    []refdata.Amount{{ItemKey: IronRod, Amount: 1}},
			Products:       []refdata.Amount{{ItemKey: Screw, Amount: 4}},
			DurationMillis: 6000,
			ProducedIn:     Constructor,
		},
		{
			Key:            RecipeWetOre,
			DisplayName:    "Wet Ore",
			Ingredients:    []refdata.Amount{{ItemKey: Water, Amount: 2000}, {ItemKey: IronOre, Amount: 1}},
			Products:       []refdata.Amount{{ItemKey: Nitrogen, Amount: 1000}},
			DurationMillis: 6000,
			ProducedIn:     Refinery,
		},
		{
			Key:            RecipePhantom,
			DisplayName:    "Phantom Rod",
			Ingredients:    []refdata.Amount{{ItemKey: IronIngot, Amount: 1}, {ItemKey: Phantom, Amount: 1}, {ItemKey: IronOre, Amount: 1}},
			Products:       []refdata.Amount{{ItemKey: IronRod, Amount: 1}},
			DurationMillis: 4000,
		},
		{
			Key:            RecipeNoMachine,
			DisplayName:    "Orphan Rod",
			Ingredients:    []refdata.Amount{{ItemKey: IronIngot, Amount: 1}},
			Products:       []refdata.Amount{{ItemKey: IronRod, Amount: 1}},
			DurationMillis: 4000,
			ProducedIn:     "Build_Nowhere_C",
		},
		{
			Key:            RecipeTooManyIns,
			DisplayName:    "Greedy Rod",
			Ingredients:    []refdata.Amount{{ItemKey: IronIngot, Amount: 1}, {ItemKey: IronOre, Amount: 1}},
			Products:       []refdata.Amount{{ItemKey: IronRod, Amount: 1}},
			DurationMillis: 4000,
			ProducedIn:     Constructor,
		},
	}

	machines := []refdata.Machine{
		{Key: Smelter, DisplayName: "Smelter", SolidIn: 1, SolidOut: 1, Length: 9, Width: 6},
		{Key: Constructor, DisplayName: "Constructor", SolidIn: 1, SolidOut: 1, Length: 10, Width: 8},
		{Key: Refinery, DisplayName: "Refinery", SolidIn: 1, SolidOut: 1, FluidIn: 1, FluidOut: 1, Length: 20, Width: 10},
	}

	return refdata.New(items, recipes, machines)
}
