// Package diagfmt renders diagnostic bags for terminals and tools.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tessel/internal/diag"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	subjectColor = color.New(color.FgBlue)
)

func severityLabel(sev diag.Severity) string {
	label := strings.ToLower(sev.String())
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(label)
	case diag.SevWarning:
		return warningColor.Sprint(label)
	default:
		return infoColor.Sprint(label)
	}
}

// FormatDiagnostic renders one diagnostic:
//
//	error[LOW5001]: Argument tensor has no buffer after allocation
//	  --> scale
//	  = note: B: offending entity
func FormatDiagnostic(d diag.Diagnostic, showNotes bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s[%s]: %s\n", severityLabel(d.Severity), d.Code.ID(), d.Message)
	if d.Subject != "" {
		fmt.Fprintf(&sb, "  --> %s\n", subjectColor.Sprint(d.Subject))
	}
	if !showNotes {
		return sb.String()
	}
	for _, n := range d.Notes {
		if n.Subject != "" {
			fmt.Fprintf(&sb, "  = note: %s: %s\n", n.Subject, n.Msg)
		} else {
			fmt.Fprintf(&sb, "  = note: %s\n", n.Msg)
		}
	}
	return sb.String()
}

// Pretty writes bag.Items() in order (call bag.Sort() first for stable
// output) followed by a summary line. Colour follows color.NoColor.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
		if opts.Quiet && d.Severity < diag.SevError {
			continue
		}
		if _, err := io.WriteString(w, FormatDiagnostic(d, opts.ShowNotes)); err != nil {
			return err
		}
	}
	if errs > 0 || (warns > 0 && !opts.Quiet) {
		if _, err := fmt.Fprintf(w, "%d error(s), %d warning(s)\n", errs, warns); err != nil {
			return err
		}
	}
	return nil
}
