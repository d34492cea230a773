package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/manwithacat/dazzle-sub010/spec"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow, color.Bold)
	infoLabel    = color.New(color.FgCyan)
	positionText = color.New(color.Bold)
	hintText     = color.New(color.Faint)
)

// renderDiagnostics prints diagnostics to stderr in compiler style:
//
//	error[unresolved-reference] shop.orders:12:9: unresolved reference "User"
//	    hint: declare User in shop.orders or one of its dependencies
func renderDiagnostics(cmd *cobra.Command, diags []spec.Diagnostic) {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}
	out := cmd.ErrOrStderr()
	for _, d := range diags {
		renderDiagnostic(out, d)
	}
}

func renderDiagnostic(out io.Writer, d spec.Diagnostic) {
	label := infoLabel
	switch d.Severity {
	case spec.SeverityError:
		label = errorLabel
	case spec.SeverityWarning:
		label = warningLabel
	}

	label.Fprintf(out, "%s[%s]", d.Severity, d.Code)
	if d.Module != "" {
		fmt.Fprint(out, " ")
		if d.Line > 0 {
			positionText.Fprintf(out, "%s:%d:%d:", d.Module, d.Line, d.Column)
		} else {
			positionText.Fprintf(out, "%s:", d.Module)
		}
	}
	fmt.Fprintf(out, " %s\n", d.Message)
	if d.Hint != "" {
		hintText.Fprintf(out, "    hint: %s\n", d.Hint)
	}
}
