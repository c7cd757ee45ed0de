package docx

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tsawler/wordml/xmlnode"
)

// ErrFatalInput is matched by every FatalInputError.
var ErrFatalInput = errors.New("fatal input error")

// FatalInputError reports that a required part is absent or is not
// well-formed. It is the only error that aborts a conversion.
type FatalInputError struct {
	Part string
	Err  error
}

func (e *FatalInputError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrFatalInput, e.Part)
	}
	return fmt.Sprintf("%s: %s: %v", ErrFatalInput, e.Part, e.Err)
}

func (e *FatalInputError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFatalInput) true for any FatalInputError.
func (e *FatalInputError) Is(target error) bool { return target == ErrFatalInput }

func fatal(part string, err error) error {
	return &FatalInputError{Part: part, Err: err}
}

// WarningKind classifies a non-fatal problem.
type WarningKind int

const (
	// WarnRecoverable means a single element or attribute failed to parse and
	// was skipped or downgraded.
	WarnRecoverable WarningKind = iota
	// WarnUnresolvedReference means a referenced style or list is missing.
	WarnUnresolvedReference
	// WarnStructuralFallback means a nonstandard shape was reinterpreted.
	WarnStructuralFallback
)

func (k WarningKind) String() string {
	switch k {
	case WarnUnresolvedReference:
		return "unresolved reference"
	case WarnStructuralFallback:
		return "structural fallback"
	default:
		return "recoverable element"
	}
}

// Warning is a non-fatal problem found while parsing or assembling.
type Warning struct {
	Kind    WarningKind
	Element string // path of the offending element, if known
	Message string
}

func (w Warning) String() string {
	if w.Element == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Element, w.Message)
}

// Collector accumulates warnings for one conversion. A nil *Collector
// discards everything.
type Collector struct {
	warnings []Warning
	logger   *zap.Logger
}

// NewCollector returns a collector that also logs each warning. A nil logger
// disables logging.
func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

// Add records a warning about n.
func (c *Collector) Add(kind WarningKind, n *xmlnode.Node, format string, args ...any) {
	if c == nil {
		return
	}
	w := Warning{
		Kind:    kind,
		Element: n.Path(),
		Message: fmt.Sprintf(format, args...),
	}
	c.warnings = append(c.warnings, w)
	c.logger.Warn(w.Message,
		zap.String("kind", kind.String()),
		zap.String("element", w.Element))
}

// Warnings returns the warnings recorded so far.
func (c *Collector) Warnings() []Warning {
	if c == nil {
		return nil
	}
	return c.warnings
}

// Strings renders warnings as plain strings.
func Strings(ws []Warning) []string {
	if len(ws) == 0 {
		return nil
	}
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}
