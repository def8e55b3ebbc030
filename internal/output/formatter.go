// Package output renders scan and analysis results for people and for
// machines. The human formatter writes aligned, glyph-decorated text; the
// JSON formatter emits the same data with stable field names.
package output

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Format selects the output rendering.
type Format int

const (
	FormatHuman Format = iota
	FormatJSON
)

// Formatter renders the three report shapes the CLI produces.
type Formatter interface {
	Files(w io.Writer, report *FilesReport) error
	Commits(w io.Writer, report *CommitsReport) error
	Backups(w io.Writer, report *BackupsReport) error
}

// NewFormatter creates the formatter for a format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	default:
		return &HumanFormatter{Glyphs: stdoutIsTerminal()}
	}
}

// DetectFormat picks the output format: JSON when requested, human otherwise.
func DetectFormat(jsonMode bool) Format {
	if jsonMode {
		return FormatJSON
	}
	return FormatHuman
}

// stdoutIsTerminal reports whether stdout is an interactive terminal.
// Pipes and CI logs get plain ASCII.
func stdoutIsTerminal() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") == "true" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
