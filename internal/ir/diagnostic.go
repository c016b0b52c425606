package ir

// Severity grades a diagnostic message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is one message emitted during a compute pass.
// Diagnostics are append-only; the engine never retracts one.
type Diagnostic struct {
	Severity Severity  `json:"severity"`
	Code     ErrorCode `json:"code,omitempty"`
	NodeID   string    `json:"nodeId,omitempty"`
	EdgeID   string    `json:"edgeId,omitempty"`
	Message  string    `json:"message"`
}

// DiagnosticFromError converts a FlowError into a diagnostic at the given severity.
func DiagnosticFromError(sev Severity, err *FlowError) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     err.Code,
		NodeID:   err.NodeID,
		Message:  err.Error(),
	}
}
