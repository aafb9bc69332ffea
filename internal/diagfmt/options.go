package diagfmt

import "fmt"

// Format selects the diagnostic renderer.
type Format uint8

const (
	FormatPretty Format = iota
	FormatJSON
)

func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "pretty":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatPretty, fmt.Errorf("unknown diagnostic format %q (expected: pretty|json)", s)
	}
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	// Quiet hides diagnostics below error severity.
	Quiet     bool
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // truncates output, not the Bag
	IncludeNotes bool
}
