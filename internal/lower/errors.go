package lower

import (
	"fmt"
	"strings"

	"tessel/internal/diag"
)

// InternalInvariantViolation reports that the tensor group handed to the
// lowering pass broke a contract the pass depends on. It is a compiler bug in
// whatever built the group, never a recoverable input error.
type InternalInvariantViolation struct {
	Code diag.Code
	// Func is the name of the function being lowered.
	Func string
	// Subject is the offending tensor, buffer or scalar.
	Subject string
	Msg     string
	// Declared lists every declared tensor argument, when relevant.
	Declared []string
	Err      error
}

func (e *InternalInvariantViolation) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "internal invariant violated while lowering %q: %s", e.Func, e.Msg)
	if e.Subject != "" {
		fmt.Fprintf(&sb, " [%s]", e.Subject)
	}
	if len(e.Declared) > 0 {
		sb.WriteString("; declared tensor args: ")
		sb.WriteString(strings.Join(e.Declared, ", "))
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *InternalInvariantViolation) Unwrap() error { return e.Err }

// Diagnostic converts the violation for reporting through a diag.Reporter.
func (e *InternalInvariantViolation) Diagnostic() diag.Diagnostic {
	d := diag.NewError(e.Code, e.Func, e.Msg)
	if e.Subject != "" {
		d = d.WithNote(e.Subject, "offending entity")
	}
	for _, name := range e.Declared {
		d = d.WithNote(name, "declared tensor argument")
	}
	return d
}

func violation(code diag.Code, fn, subject, format string, args ...any) *InternalInvariantViolation {
	return &InternalInvariantViolation{
		Code:    code,
		Func:    fn,
		Subject: subject,
		Msg:     fmt.Sprintf(format, args...),
	}
}
