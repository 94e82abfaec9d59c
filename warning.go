package codebook

import (
	"fmt"
	"sync"
)

// WarningKind classifies a recoverable condition.
type WarningKind uint8

const (
	// ResourceExceeded marks a file skipped for being larger than a limit.
	ResourceExceeded WarningKind = iota + 1
	// ReadFailure marks a file skipped after an I/O error or timeout.
	ReadFailure
	// UnsupportedGlyph marks a character drawn as a placeholder.
	UnsupportedGlyph
	// LayoutOverflow marks a token hard-broken because it is wider than a line.
	LayoutOverflow
)

func (k WarningKind) String() string {
	switch k {
	case ResourceExceeded:
		return "resource exceeded"
	case ReadFailure:
		return "read failure"
	case UnsupportedGlyph:
		return "unsupported glyph"
	case LayoutOverflow:
		return "layout overflow"
	default:
		return fmt.Sprintf("warning(%d)", uint8(k))
	}
}

// Warning is a non-fatal condition tied to a file and, optionally, a detail
// such as the offending token or character.
type Warning struct {
	Kind   WarningKind
	Path   string
	Detail string
}

func (w Warning) String() string {
	if w.Detail == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Path)
	}
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Path, w.Detail)
}

// WarningFunc receives warnings as they are raised.
type WarningFunc func(Warning)

// Warnings collects warnings from concurrent producers and optionally
// forwards each one as it arrives. A nil *Warnings discards.
type Warnings struct {
	mu      sync.Mutex
	list    []Warning
	forward WarningFunc
}

// NewWarnings returns a collector that also calls forward, when non-nil.
func NewWarnings(forward WarningFunc) *Warnings {
	return &Warnings{forward: forward}
}

// Add records w.
func (ws *Warnings) Add(w Warning) {
	if ws == nil {
		return
	}
	ws.mu.Lock()
	ws.list = append(ws.list, w)
	fwd := ws.forward
	ws.mu.Unlock()
	if fwd != nil {
		fwd(w)
	}
}

// List returns a copy of the recorded warnings in arrival order.
func (ws *Warnings) List() []Warning {
	if ws == nil {
		return nil
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	out := make([]Warning, len(ws.list))
	copy(out, ws.list)
	return out
}

// Count returns how many warnings of kind were recorded.
func (ws *Warnings) Count(kind WarningKind) int {
	if ws == nil {
		return 0
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	n := 0
	for _, w := range ws.list {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
