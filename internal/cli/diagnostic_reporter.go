package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	bgerrors "github.com/toyz/bindgen/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     color.Error,
	}
}

// SetOutput redirects the reporter, mostly for tests
func (r *DiagnosticReporter) SetOutput(w io.Writer) {
	r.out = w
}

// ReportWarning provides user-friendly warning reporting
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
	r.printSuggestions(suggestions)
}

// ReportError prints one diagnostic per failure carried by err
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	var multi *bgerrors.MultipleErrors
	if bgerrors.As(err, &multi) {
		fmt.Fprintf(r.out, "\nERROR: %d units failed\n\n", len(multi.Errors))
		for _, unitErr := range multi.Errors {
			r.reportOne(unitErr)
		}
		return
	}

	fmt.Fprintf(r.out, "\nERROR: Code Generation Failed\n\n")
	r.reportOne(err)
}

func (r *DiagnosticReporter) reportOne(err error) {
	genErr, ok := bgerrors.AsGenerationError(err)
	if !ok {
		r.reportBasicError(err)
		return
	}
	r.reportGenerationError(err, genErr)
}

// reportGenerationError reports a GenerationError with its location and suggestions
func (r *DiagnosticReporter) reportGenerationError(err error, genErr *bgerrors.GenerationError) {
	red := color.New(color.FgRed, color.Bold)

	loc := genErr.Location()
	if !loc.IsEmpty() {
		color.New(color.Bold).Fprintf(r.out, "%s: ", loc.String())
	}
	red.Fprintf(r.out, "%s", genErr.Code)
	fmt.Fprintf(r.out, ": %s\n", genErr.Message)

	if genErr.Construct != "" {
		fmt.Fprintf(r.out, "    %s\n", genErr.Construct)
	}

	// In verbose mode, show the underlying cause and any wrapping context
	if r.verbose {
		if genErr.Cause != nil {
			fmt.Fprintf(r.out, "  cause: %v\n", genErr.Cause)
		}
		if err != error(genErr) {
			fmt.Fprintf(r.out, "  context: %v\n", err)
		}
	}

	r.printSuggestions(bgerrors.GetAllHints(err))
	fmt.Fprintln(r.out)
}

// reportBasicError reports an error without a generation error in its chain
func (r *DiagnosticReporter) reportBasicError(err error) {
	fmt.Fprintf(r.out, "%s\n", err.Error())
	r.printSuggestions(bgerrors.GetAllHints(err))

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "go.mod"):
		fmt.Fprintf(r.out, "  hint: run bindgen inside a Go module\n")
	case strings.Contains(msg, "bindgen.yaml") || strings.Contains(msg, "validation error"):
		fmt.Fprintf(r.out, "  hint: check the keys of %s\n", ConfigFileName)
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	seen := make(map[string]bool, len(suggestions))
	for _, s := range suggestions {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		color.New(color.FgCyan).Fprint(r.out, "  hint: ")
		fmt.Fprintf(r.out, "%s\n", s)
	}
}

// Debug prints debug information when verbose mode is enabled
func (r *DiagnosticReporter) Debug(format string, args ...interface{}) {
	if r.verbose {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}
