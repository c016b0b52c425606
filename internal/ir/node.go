package ir

import "strings"

// NodeKind selects which calculator computes a node.
type NodeKind string

const (
	KindItem      NodeKind = "item"
	KindRecipe    NodeKind = "recipe"
	KindLogistic  NodeKind = "logistic"
	KindGenerator NodeKind = "generator" // declared, never computed
)

// Position is the editor position of a node. It never affects computation.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a graph vertex. Exactly one config payload matching Kind is
// expected; a missing payload is treated as an empty (unconfigured) one.
type Node struct {
	ID       string          `json:"id" yaml:"id"`
	Kind     NodeKind        `json:"kind" yaml:"kind"`
	Position Position        `json:"position" yaml:"position,omitempty"`
	Item     *ItemConfig     `json:"item,omitempty" yaml:"item,omitempty"`
	Recipe   *RecipeConfig   `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	Logistic *LogisticConfig `json:"logistic,omitempty" yaml:"logistic,omitempty"`
}

// InterfaceKind selects which handles an item node exposes.
type InterfaceKind string

const (
	InterfaceBoth InterfaceKind = "both"
	InterfaceIn   InterfaceKind = "in"
	InterfaceOut  InterfaceKind = "out"
)

// ItemConfig configures an item source/sink node.
type ItemConfig struct {
	ItemKey       string        `json:"itemKey,omitempty" yaml:"itemKey,omitempty"`
	SpeedThou     int64         `json:"speedThou,omitempty" yaml:"speedThou,omitempty"`
	InterfaceKind InterfaceKind `json:"interfaceKind,omitempty" yaml:"interfaceKind,omitempty"`
}

// ClockSpeedFull is 100% clock speed in the percent*100,000 scale.
const ClockSpeedFull int64 = 100_00_000

// RecipeConfig configures a production node.
type RecipeConfig struct {
	RecipeKey      string `json:"recipeKey,omitempty" yaml:"recipeKey,omitempty"`
	ClockSpeedThou *int64 `json:"clockSpeedThou,omitempty" yaml:"clockSpeedThou,omitempty"`
}

// LogisticType selects the relay behaviour of a logistic node.
type LogisticType string

const (
	LogisticSplitter      LogisticType = "splitter"
	LogisticMerger        LogisticType = "merger"
	LogisticSplitterSmart LogisticType = "splitterSmart"
	LogisticSplitterPro   LogisticType = "splitterPro"
	LogisticPipeJunction  LogisticType = "pipeJunc"
)

// Rule is a distribution rule token of a smart or programmable splitter.
type Rule string

const (
	RuleAny          Rule = "any"
	RuleNone         Rule = "none"
	RuleAnyUndefined Rule = "anyUndefined"
	RuleOverflow     Rule = "overflow"

	// RuleItemPrefix precedes an item key, e.g. "item-Desc_IronRod_C".
	RuleItemPrefix = "item-"
)

// ItemRule builds the rule token routing itemKey.
func ItemRule(itemKey string) Rule {
	return Rule(RuleItemPrefix + itemKey)
}

// ItemKey returns the item a rule routes and whether it is an item rule.
func (r Rule) ItemKey() (string, bool) {
	if !strings.HasPrefix(string(r), RuleItemPrefix) {
		return "", false
	}
	return strings.TrimPrefix(string(r), RuleItemPrefix), true
}

// LogisticConfig configures a splitter, merger or pipe junction.
type LogisticConfig struct {
	Type          LogisticType           `json:"type,omitempty" yaml:"type,omitempty"`
	SmartProRules map[Direction][]Rule   `json:"smartProRules,omitempty" yaml:"smartProRules,omitempty"`
	PipeJuncInt   map[Direction]PortType `json:"pipeJuncInt,omitempty" yaml:"pipeJuncInt,omitempty"`
}
