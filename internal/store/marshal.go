package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/beltline/internal/ir"
)

// nodeConfig is the JSON document stored in nodes.config.
type nodeConfig struct {
	Item     *ir.ItemConfig     `json:"item,omitempty"`
	Recipe   *ir.RecipeConfig   `json:"recipe,omitempty"`
	Logistic *ir.LogisticConfig `json:"logistic,omitempty"`
}

// marshalJSON encodes v with HTML escaping disabled so item keys and
// labels are stored verbatim. Map keys are sorted by encoding/json.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

func marshalNodeConfig(n ir.Node) (string, error) {
	data, err := marshalJSON(nodeConfig{Item: n.Item, Recipe: n.Recipe, Logistic: n.Logistic})
	if err != nil {
		return "", fmt.Errorf("marshal node %s: %w", n.ID, err)
	}
	return data, nil
}

func unmarshalNodeConfig(id, data string, n *ir.Node) error {
	if data == "" || data == "{}" {
		return nil
	}
	var cfg nodeConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return fmt.Errorf("unmarshal node %s: %w", id, err)
	}
	n.Item, n.Recipe, n.Logistic = cfg.Item, cfg.Recipe, cfg.Logistic
	return nil
}
