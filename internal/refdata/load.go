package refdata

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// LoadError describes a reference document that failed to compile,
// validate or decode.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// rawDocument mirrors the reference document after schema unification.
// Durations are decoded as numbers and converted to integer milliseconds.
type rawDocument struct {
	Items    map[string]rawItem    `json:"items"`
	Recipes  map[string]rawRecipe  `json:"recipes"`
	Machines map[string]rawMachine `json:"machines"`
}

type rawItem struct {
	DisplayName string `json:"displayName"`
	Form        string `json:"form"`
}

type rawRecipe struct {
	DisplayName           string   `json:"displayName"`
	Ingredients           []Amount `json:"ingredients"`
	Products              []Amount `json:"products"`
	ManufactoringDuration float64  `json:"manufactoringDuration"`
	ProducedIn            string   `json:"producedIn"`
}

type rawMachine struct {
	DisplayName string  `json:"displayName"`
	SolidIn     int     `json:"solidIn"`
	SolidOut    int     `json:"solidOut"`
	FluidIn     int     `json:"fluidIn"`
	FluidOut    int     `json:"fluidOut"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
}

// Load reads a reference document from path. The document may be JSON or
// CUE; JSON is accepted as-is since every JSON document is valid CUE.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference data: %w", err)
	}
	return LoadBytes(filepath.Base(path), data)
}

// LoadBytes compiles a reference document, unifies it with the embedded
// schema, checks it is concrete and decodes it into a Catalog.
func LoadBytes(filename string, data []byte) (*Catalog, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile reference schema: %w", err)
	}

	doc := ctx.CompileBytes(data, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Reference")).Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var raw rawDocument
	if err := unified.Decode(&raw); err != nil {
		return nil, formatCUEError(err)
	}

	return fromRaw(raw), nil
}

func fromRaw(raw rawDocument) *Catalog {
	items := make([]Item, 0, len(raw.Items))
	for key, it := range raw.Items {
		items = append(items, Item{Key: key, DisplayName: it.DisplayName, Form: ItemForm(it.Form)})
	}

	recipes := make([]Recipe, 0, len(raw.Recipes))
	for key, r := range raw.Recipes {
		recipes = append(recipes, Recipe{
			Key:            key,
			DisplayName:    r.DisplayName,
			Ingredients:    r.Ingredients,
			Products:       r.Products,
			DurationMillis: int64(math.Round(r.ManufactoringDuration * 1000)),
			ProducedIn:     r.ProducedIn,
		})
	}

	machines := make([]Machine, 0, len(raw.Machines))
	for key, m := range raw.Machines {
		machines = append(machines, Machine{
			Key:         key,
			DisplayName: m.DisplayName,
			SolidIn:     m.SolidIn,
			SolidOut:    m.SolidOut,
			FluidIn:     m.FluidIn,
			FluidOut:    m.FluidOut,
			Length:      m.Length,
			Width:       m.Width,
		})
	}

	return New(items, recipes, machines)
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
