package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"tessel/internal/diag"
	"tessel/internal/diagfmt"
)

var okColor = color.New(color.FgGreen, color.Bold)

func okLabel() string {
	return okColor.Sprint("ok")
}

func renderDiagnostics(out io.Writer, bag *diag.Bag, format diagfmt.Format, quiet bool, maxDiagnostics int) error {
	switch format {
	case diagfmt.FormatJSON:
		return diagfmt.JSON(out, bag, diagfmt.JSONOpts{Max: maxDiagnostics, IncludeNotes: true})
	case diagfmt.FormatPretty:
		return diagfmt.Pretty(out, bag, diagfmt.PrettyOpts{Quiet: quiet, ShowNotes: true})
	default:
		return fmt.Errorf("unsupported diagnostic format %d", format)
	}
}
