package ir

import "sort"

// AnyKey is the sentinel key persisted for unconstrained flows.
// It only appears at serialization boundaries; in memory an unconstrained
// flow is represented by Flow.Unconstrained.
const AnyKey = "any"

// Rates maps item keys to signed rates in thou (items per minute * 1000).
// Negative rates are consumed by the node, positive rates are produced.
type Rates map[string]int64

// Add accumulates delta into the rate of itemKey.
func (r Rates) Add(itemKey string, delta int64) {
	r[itemKey] += delta
}

// Keys returns the item keys of r in sorted order.
func (r Rates) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of r.
func (r Rates) Clone() Rates {
	if r == nil {
		return nil
	}
	out := make(Rates, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Flow is the flow at a single handle: either a per-item rate map or an
// unconstrained placeholder (a relay that declares no fixed expectation).
type Flow struct {
	Unconstrained bool
	Rates         Rates
}

// PerItem returns a flow carrying the given rates.
func PerItem(r Rates) Flow {
	return Flow{Rates: r}
}

// Unconstrained returns the placeholder flow of a relay handle.
func Unconstrained() Flow {
	return Flow{Unconstrained: true}
}

// Rate returns the rate of itemKey; unconstrained flows report 0.
func (f Flow) Rate(itemKey string) int64 {
	if f.Unconstrained {
		return 0
	}
	return f.Rates[itemKey]
}

// Items returns the item keys carried by f in sorted order.
func (f Flow) Items() []string {
	if f.Unconstrained {
		return nil
	}
	return f.Rates.Keys()
}

// MarshalRates renders f in its persisted form, using AnyKey for
// unconstrained flows.
func (f Flow) MarshalRates() map[string]int64 {
	if f.Unconstrained {
		return map[string]int64{AnyKey: 0}
	}
	out := f.Rates.Clone()
	if out == nil {
		out = Rates{}
	}
	return out
}

// FlowFromRates parses the persisted form produced by MarshalRates.
func FlowFromRates(m map[string]int64) Flow {
	if _, ok := m[AnyKey]; ok && len(m) == 1 {
		return Unconstrained()
	}
	r := make(Rates, len(m))
	for k, v := range m {
		if k == AnyKey {
			continue
		}
		r[k] = v
	}
	return PerItem(r)
}

// HandleFlows maps handles to their flow.
type HandleFlows map[HandleID]Flow

// Handles returns the handle ids of hf in sorted order.
func (hf HandleFlows) Handles() []HandleID {
	ids := make([]HandleID, 0, len(hf))
	for h := range hf {
		ids = append(ids, h)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PersistedFlows is the serialized form of HandleFlows: handle -> item -> rate.
type PersistedFlows map[HandleID]map[string]int64

// Persisted renders every flow of hf through MarshalRates. A nil hf
// yields nil.
func (hf HandleFlows) Persisted() PersistedFlows {
	if hf == nil {
		return nil
	}
	out := make(PersistedFlows, len(hf))
	for h, f := range hf {
		out[h] = f.MarshalRates()
	}
	return out
}

// Flows parses p back with FlowFromRates.
func (p PersistedFlows) Flows() HandleFlows {
	if p == nil {
		return nil
	}
	out := make(HandleFlows, len(p))
	for h, m := range p {
		out[h] = FlowFromRates(m)
	}
	return out
}
