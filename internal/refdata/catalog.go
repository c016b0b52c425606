// Package refdata holds the static reference data (items, recipes and
// machines) that node configurations point into.
//
// A Catalog is loaded once per session and is read-only afterwards; the
// engine only ever performs lookups on it.
package refdata

import (
	"sort"

	"github.com/roach88/beltline/internal/ir"
)

// ItemForm is the physical form of an item in the reference data.
type ItemForm string

const (
	ItemSolid  ItemForm = "solid"
	ItemLiquid ItemForm = "liquid"
	ItemGas    ItemForm = "gas"
)

// Item is one entry of the item table.
type Item struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Form        ItemForm `json:"form"`
}

// HandleForm maps the item form to the conveyance it travels on:
// solids ride belts, everything else goes through pipes.
func (i Item) HandleForm() ir.Form {
	if i.Form == ItemSolid {
		return ir.FormSolid
	}
	return ir.FormFluid
}

// Amount is an item quantity per production cycle. Fluid amounts are
// stored in thousandths of a unit.
type Amount struct {
	ItemKey string `json:"itemKey"`
	Amount  int64  `json:"amount"`
}

// Recipe is one entry of the recipe table.
type Recipe struct {
	Key            string   `json:"key"`
	DisplayName    string   `json:"displayName"`
	Ingredients    []Amount `json:"ingredients"`
	Products       []Amount `json:"products"`
	DurationMillis int64    `json:"durationMillis"`
	ProducedIn     string   `json:"producedIn,omitempty"`
}

// Machine is one entry of the machine table.
type Machine struct {
	Key         string  `json:"key"`
	DisplayName string  `json:"displayName"`
	SolidIn     int     `json:"solidIn"`
	SolidOut    int     `json:"solidOut"`
	FluidIn     int     `json:"fluidIn"`
	FluidOut    int     `json:"fluidOut"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
}

// Catalog is the in-memory reference data set.
type Catalog struct {
	items    map[string]Item
	recipes  map[string]Recipe
	machines map[string]Machine
}

// New builds a catalog from the given tables. Later entries win on
// duplicate keys.
func New(items []Item, recipes []Recipe, machines []Machine) *Catalog {
	c := &Catalog{
		items:    make(map[string]Item, len(items)),
		recipes:  make(map[string]Recipe, len(recipes)),
		machines: make(map[string]Machine, len(machines)),
	}
	for _, it := range items {
		c.items[it.Key] = it
	}
	for _, r := range recipes {
		c.recipes[r.Key] = r
	}
	for _, m := range machines {
		c.machines[m.Key] = m
	}
	return c
}

// Item looks up an item by key.
func (c *Catalog) Item(key string) (Item, bool) {
	it, ok := c.items[key]
	return it, ok
}

// Recipe looks up a recipe by key.
func (c *Catalog) Recipe(key string) (Recipe, bool) {
	r, ok := c.recipes[key]
	return r, ok
}

// Machine looks up a machine by key.
func (c *Catalog) Machine(key string) (Machine, bool) {
	m, ok := c.machines[key]
	return m, ok
}

// DisplayName returns the display name of an item, falling back to its key.
func (c *Catalog) DisplayName(itemKey string) string {
	if it, ok := c.items[itemKey]; ok && it.DisplayName != "" {
		return it.DisplayName
	}
	return itemKey
}

// Stats summarizes the size of each table.
type Stats struct {
	Items    int `json:"items"`
	Recipes  int `json:"recipes"`
	Machines int `json:"machines"`
}

// Stats returns the number of entries per table.
func (c *Catalog) Stats() Stats {
	return Stats{Items: len(c.items), Recipes: len(c.recipes), Machines: len(c.machines)}
}

// ItemKeys returns all item keys in sorted order.
func (c *Catalog) ItemKeys() []string {
	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
