package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction is the side of a node a handle sits on.
type Direction string

const (
	DirLeft   Direction = "left"
	DirTop    Direction = "top"
	DirRight  Direction = "right"
	DirBottom Direction = "bottom"
)

// Directions lists every direction in evaluation order.
var Directions = []Direction{DirLeft, DirTop, DirRight, DirBottom}

// Form is the kind of conveyance a handle accepts.
type Form string

const (
	FormSolid Form = "solid"
	FormFluid Form = "fluid"
)

// PortType is the flow direction of a handle relative to its node.
type PortType string

const (
	PortIn  PortType = "in"
	PortOut PortType = "out"
)

// MaxSlots is the number of handles a node may expose per direction.
const MaxSlots = 4

// HandleID is the canonical wire identifier of a handle.
// It doubles as the key used to join edges to node ports.
type HandleID string

// Handle is the decoded form of a HandleID.
type Handle struct {
	Direction Direction
	Form      Form
	PortType  PortType
	Slot      int
}

// EncodeHandle builds the canonical "{direction}-{form}-{portType}-{slot}" identifier.
func EncodeHandle(dir Direction, form Form, port PortType, slot int) HandleID {
	return HandleID(fmt.Sprintf("%s-%s-%s-%d", dir, form, port, slot))
}

// ID returns the canonical identifier of h.
func (h Handle) ID() HandleID {
	return EncodeHandle(h.Direction, h.Form, h.PortType, h.Slot)
}

// DecodeHandle splits a handle identifier into its parts.
//
// With validate=false the parse is best-effort: missing parts are left
// empty and an unparsable slot decodes as 0. This is the hot path used on
// identifiers the engine produced itself.
//
// With validate=true any deviation from the canonical form returns a
// FlowError with ErrCodeMalformedHandle.
func DecodeHandle(id HandleID, validate bool) (Handle, error) {
	parts := strings.Split(string(id), "-")

	if validate {
		if len(parts) != 4 {
			return Handle{}, NewMalformedHandleError(id, fmt.Sprintf("expected 4 parts, got %d", len(parts)))
		}
		if !validDirection(Direction(parts[0])) {
			return Handle{}, NewMalformedHandleError(id, fmt.Sprintf("unknown direction %q", parts[0]))
		}
		if !validForm(Form(parts[1])) {
			return Handle{}, NewMalformedHandleError(id, fmt.Sprintf("unknown form %q", parts[1]))
		}
		if !validPortType(PortType(parts[2])) {
			return Handle{}, NewMalformedHandleError(id, fmt.Sprintf("unknown port type %q", parts[2]))
		}
		slot, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			return Handle{}, NewMalformedHandleError(id, fmt.Sprintf("slot %q is not a base-10 integer", parts[3]))
		}
		if slot < 0 || slot >= MaxSlots {
			return Handle{}, NewMalformedHandleError(id, fmt.Sprintf("slot %d out of range", slot))
		}
		if strconv.FormatInt(slot, 10) != parts[3] {
			return Handle{}, NewMalformedHandleError(id, fmt.Sprintf("slot %q is not in canonical form", parts[3]))
		}
		return Handle{
			Direction: Direction(parts[0]),
			Form:      Form(parts[1]),
			PortType:  PortType(parts[2]),
			Slot:      int(slot),
		}, nil
	}

	var h Handle
	if len(parts) > 0 {
		h.Direction = Direction(parts[0])
	}
	if len(parts) > 1 {
		h.Form = Form(parts[1])
	}
	if len(parts) > 2 {
		h.PortType = PortType(parts[2])
	}
	if len(parts) > 3 {
		h.Slot, _ = strconv.Atoi(parts[3])
	}
	return h, nil
}

// MustDecodeHandle is like DecodeHandle with validation but panics on error.
// Use only in tests or when the identifier is known to be valid.
func MustDecodeHandle(id HandleID) Handle {
	h, err := DecodeHandle(id, true)
	if err != nil {
		panic(err)
	}
	return h
}

func validDirection(d Direction) bool {
	switch d {
	case DirLeft, DirTop, DirRight, DirBottom:
		return true
	}
	return false
}

func validForm(f Form) bool {
	return f == FormSolid || f == FormFluid
}

func validPortType(p PortType) bool {
	return p == PortIn || p == PortOut
}
