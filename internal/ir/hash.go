package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Domain prefixes for snapshot hashing.
// Version suffix enables future algorithm migration.
const (
	DomainItemConfig     = "beltline/item/v1"
	DomainRecipeConfig   = "beltline/recipe/v1"
	DomainLogisticConfig = "beltline/logistic/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func snapshot(domain string, obj Object) (string, error) {
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("snapshot %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}

// Object returns the canonical form of an item configuration.
func (c ItemConfig) Object() Object {
	return Object{
		"itemKey":       Str(c.ItemKey),
		"speedThou":     Int(c.SpeedThou),
		"interfaceKind": Str(c.InterfaceKind),
	}
}

// Object returns the canonical form of a recipe configuration.
// An unset clock speed is encoded as -1 so it never collides with a value.
func (c RecipeConfig) Object() Object {
	clock := int64(-1)
	if c.ClockSpeedThou != nil {
		clock = *c.ClockSpeedThou
	}
	return Object{
		"recipeKey":      Str(c.RecipeKey),
		"clockSpeedThou": Int(clock),
	}
}

// Object returns the canonical form of a logistic configuration.
func (c LogisticConfig) Object() Object {
	rules := make(Object, len(c.SmartProRules))
	for dir, list := range c.SmartProRules {
		rules[string(dir)] = StrList(list)
	}
	junc := make(Object, len(c.PipeJuncInt))
	for dir, port := range c.PipeJuncInt {
		junc[string(dir)] = Str(port)
	}
	return Object{
		"type":          Str(c.Type),
		"smartProRules": rules,
		"pipeJuncInt":   junc,
	}
}

// ItemSnapshot hashes a resolved item configuration.
func ItemSnapshot(c ItemConfig) (string, error) {
	return snapshot(DomainItemConfig, c.Object())
}

// RecipeSnapshot hashes a resolved recipe configuration.
func RecipeSnapshot(c RecipeConfig) (string, error) {
	return snapshot(DomainRecipeConfig, c.Object())
}

// LogisticSnapshot hashes a resolved logistic configuration together with
// the node's handle adjacency, since re-wiring changes what it relays.
func LogisticSnapshot(c LogisticConfig, adjacency map[HandleID]string) (string, error) {
	obj := c.Object()
	handles := make([]string, 0, len(adjacency))
	for h := range adjacency {
		handles = append(handles, string(h))
	}
	sort.Strings(handles)
	wired := make(List, len(handles))
	for i, h := range handles {
		wired[i] = List{Str(h), Str(adjacency[HandleID(h)])}
	}
	obj["adjacency"] = wired
	return snapshot(DomainLogisticConfig, obj)
}
