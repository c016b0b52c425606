package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/beltline/internal/calc"
	"github.com/roach88/beltline/internal/ir"
)

// Diagnostics is a collecting sink. The zero value is ready to use.
type Diagnostics struct {
	list []ir.Diagnostic
}

// Emit appends d.
func (d *Diagnostics) Emit(diag ir.Diagnostic) {
	d.list = append(d.list, diag)
}

// All returns the collected diagnostics in emission order.
func (d *Diagnostics) All() []ir.Diagnostic {
	return d.list
}

// Codes returns the code of every collected diagnostic in emission order.
func (d *Diagnostics) Codes() []ir.ErrorCode {
	out := make([]ir.ErrorCode, len(d.list))
	for i, diag := range d.list {
		out[i] = diag.Code
	}
	return out
}

// Count returns how many diagnostics of severity sev were collected.
func (d *Diagnostics) Count(sev ir.Severity) int {
	n := 0
	for _, diag := range d.list {
		if diag.Severity == sev {
			n++
		}
	}
	return n
}

// LogSink writes every diagnostic to a slog logger and then forwards it
// to Next, when set.
type LogSink struct {
	logger *slog.Logger
	next   calc.Sink
}

// NewLogSink creates a LogSink. A nil logger means slog.Default().
func NewLogSink(logger *slog.Logger, next calc.Sink) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger, next: next}
}

// Emit logs d at the level matching its severity.
func (s *LogSink) Emit(d ir.Diagnostic) {
	level := slog.LevelInfo
	switch d.Severity {
	case ir.SeverityWarning:
		level = slog.LevelWarn
	case ir.SeverityError:
		level = slog.LevelError
	}

	attrs := []any{"code", d.Code}
	if d.NodeID != "" {
		attrs = append(attrs, "node_id", d.NodeID)
	}
	if d.EdgeID != "" {
		attrs = append(attrs, "edge_id", d.EdgeID)
	}
	s.logger.Log(context.Background(), level, d.Message, attrs...)

	if s.next != nil {
		s.next.Emit(d)
	}
}

// nodeSink forwards diagnostics raised while computing one node, dropping
// any the node already emitted for its current configuration.
type nodeSink struct {
	memo   *Memo
	nodeID string
	out    calc.Sink
}

func (s nodeSink) Emit(d ir.Diagnostic) {
	if s.memo.markEmitted(s.nodeID, d) {
		s.out.Emit(d)
	}
}
