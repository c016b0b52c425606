package ir

import (
	"errors"
	"fmt"
)

// FlowError represents an error detected while computing flows.
//
// Flow errors are recovered locally by the engine: the affected node,
// handle or item is skipped and a Diagnostic carrying the same Code is
// emitted. Only handle validation and the cycle guard surface a FlowError
// as a returned error.
type FlowError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// NodeID identifies the node being computed, when known.
	NodeID string

	// HandleID identifies the affected handle, when known.
	HandleID HandleID

	// Key is the referenced item, recipe or machine key, when relevant.
	Key string
}

// ErrorCode categorizes flow errors.
type ErrorCode string

const (
	// ErrCodeReferencedItemNotFound indicates an item key missing from reference data.
	ErrCodeReferencedItemNotFound ErrorCode = "REFERENCED_ITEM_NOT_FOUND"

	// ErrCodeReferencedRecipeNotFound indicates a recipe key missing from reference data.
	ErrCodeReferencedRecipeNotFound ErrorCode = "REFERENCED_RECIPE_NOT_FOUND"

	// ErrCodeReferencedMachineNotFound indicates a machine key missing from reference data.
	ErrCodeReferencedMachineNotFound ErrorCode = "REFERENCED_MACHINE_NOT_FOUND"

	// ErrCodeInvalidDistributionRule indicates an unknown splitter rule token.
	ErrCodeInvalidDistributionRule ErrorCode = "INVALID_DISTRIBUTION_RULE"

	// ErrCodeMalformedHandle indicates a handle id that failed validation.
	ErrCodeMalformedHandle ErrorCode = "MALFORMED_HANDLE"

	// ErrCodeCircularDependency indicates a node was revisited on one computation path.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"

	// ErrCodeMissingNeighborResult indicates a neighbour across an edge could not be resolved.
	ErrCodeMissingNeighborResult ErrorCode = "MISSING_NEIGHBOR_RESULT"
)

// Error implements the error interface.
func (e *FlowError) Error() string {
	switch {
	case e.NodeID != "" && e.HandleID != "":
		return fmt.Sprintf("%s: %s (node=%s, handle=%s)", e.Code, e.Message, e.NodeID, e.HandleID)
	case e.NodeID != "":
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.NodeID)
	case e.HandleID != "":
		return fmt.Sprintf("%s: %s (handle=%s)", e.Code, e.Message, e.HandleID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is a FlowError with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code ErrorCode) bool {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// IsCycleError returns true if the error is a circular dependency error.
func IsCycleError(err error) bool {
	return HasCode(err, ErrCodeCircularDependency)
}

// IsMalformedHandle returns true if the error is a handle validation error.
func IsMalformedHandle(err error) bool {
	return HasCode(err, ErrCodeMalformedHandle)
}

// NewMalformedHandleError creates a FlowError for a handle that failed validation.
func NewMalformedHandleError(id HandleID, reason string) *FlowError {
	return &FlowError{
		Code:     ErrCodeMalformedHandle,
		Message:  reason,
		HandleID: id,
	}
}

// NewCycleError creates a FlowError for a node revisited on the current path.
func NewCycleError(nodeID string, path []string) *FlowError {
	return &FlowError{
		Code:    ErrCodeCircularDependency,
		Message: fmt.Sprintf("node revisited along path %v", path),
		NodeID:  nodeID,
	}
}

// NewNotFoundError creates a FlowError for a missing reference-data key.
func NewNotFoundError(code ErrorCode, nodeID, key string) *FlowError {
	var what string
	switch code {
	case ErrCodeReferencedItemNotFound:
		what = "item"
	case ErrCodeReferencedRecipeNotFound:
		what = "recipe"
	case ErrCodeReferencedMachineNotFound:
		what = "machine"
	default:
		what = "reference"
	}
	return &FlowError{
		Code:    code,
		Message: fmt.Sprintf("%s %q not found in reference data", what, key),
		NodeID:  nodeID,
		Key:     key,
	}
}
