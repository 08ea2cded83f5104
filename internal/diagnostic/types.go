package diagnostic

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"reflect-cloner/internal/common"
)

// Diagnostic codes.
const (
	CodeInaccessibleField = "inaccessible-field"
	CodeDefaultOverridden = "default-overridden"
	CodeCustomCopier      = "custom-copier"
	CodePolicyConflict    = "policy-conflict"
)

// Diagnostics holds diagnostic information collected so far.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Type identifies which type this relates to (if any).
	Type string
	// Field identifies which field this relates to (if any).
	Field string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

func (d *Diagnostics) add(dg Diagnostic) {
	switch dg.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, dg)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, dg)
	default:
		d.Infos = append(d.Infos, dg)
	}
}

// Len returns the total number of diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Error returns the error diagnostics as one error, or nil if there are none.
func (d *Diagnostics) Error() error {
	errs := &multierror.Error{ErrorFormat: joinErrors}
	for _, e := range d.Errors {
		errs = multierror.Append(errs, errors.New(e.String()))
	}

	return errs.ErrorOrNil()
}

func joinErrors(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}

	return strings.Join(parts, "; ")
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	target := d.Type
	if d.Field != "" {
		target += "." + d.Field
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if target != "" {
		return target + ": " + msg
	}

	return msg
}

// Collector accumulates diagnostics from concurrent descriptor builds.
// Diagnostics with the same severity, code, type and field are recorded once.
type Collector struct {
	mu   sync.Mutex
	seen map[Diagnostic]struct{}
	all  Diagnostics
}

// Add records a diagnostic and reports whether it was new.
func (c *Collector) Add(severity DiagnosticSeverity, code, message, typ, field string) bool {
	dg := Diagnostic{Severity: severity, Code: code, Message: message, Type: typ, Field: field}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seen == nil {
		c.seen = make(map[Diagnostic]struct{})
	}

	if _, ok := c.seen[dg]; ok {
		return false
	}

	c.seen[dg] = struct{}{}
	c.all.add(dg)

	return true
}

// Snapshot returns a copy of everything collected so far.
func (c *Collector) Snapshot() Diagnostics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Diagnostics{
		Errors:   append([]Diagnostic(nil), c.all.Errors...),
		Warnings: append([]Diagnostic(nil), c.all.Warnings...),
		Infos:    append([]Diagnostic(nil), c.all.Infos...),
	}
}
