// Package diag renders compiler diagnostics: coloured, line-annotated
// error reports with a source excerpt and a caret/underline under the
// offending token, per the format
//
//	filename:line:col: error: <message>
//	<line contents>
//	<caret and underline>
//
// Diagnostics are data, not Go errors: the compiler keeps going after
// reporting one so that a single run can surface every problem in a
// source file, the way the teacher's own tokenize() pass collects a
// single error but callers are expected to call it as just one stage
// among several that can each fail independently.
package diag

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/skx/cc/source"
)

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Filename string
	Line     int
	Col      int
	// Length is how many characters the underline should span after
	// the caret; 0 means "just the caret".
	Length  int
	Message string
}

// String renders the diagnostic per the format in spec §6. Colour is
// applied to "error" and the caret/underline unless NoColor is set.
func (d Diagnostic) String(fi *source.FileInfo, noColor bool) string {
	var b strings.Builder

	errLabel := "error"
	caretColor, reset := ansiRed, ansiReset
	if noColor {
		caretColor, reset = "", ""
	}
	if !noColor {
		errLabel = ansiBold + ansiRed + "error" + ansiReset
	}

	fmt.Fprintf(&b, "%s:%d:%d: %s: %s\n", d.Filename, d.Line, d.Col, errLabel, d.Message)

	line := ""
	if fi != nil {
		line = fi.GetLine(d.Line)
	}
	b.WriteString(line)
	b.WriteByte('\n')

	col := d.Col
	if col < 1 {
		col = 1
	}
	length := d.Length
	if length < 1 {
		length = 1
	}
	b.WriteString(strings.Repeat(" ", col-1))
	b.WriteString(caretColor)
	b.WriteByte('^')
	if length > 1 {
		b.WriteString(strings.Repeat("~", length-1))
	}
	b.WriteString(reset)
	b.WriteByte('\n')

	return b.String()
}

// Bag accumulates diagnostics across lexing, parsing and code
// generation. A non-empty Bag means the driver must exit non-zero once
// the whole pipeline has run, per spec §7/§8.
type Bag struct {
	FileInfo *source.FileInfo
	NoColor  bool

	diagnostics []Diagnostic
	hadError    bool
}

// NewBag creates an empty diagnostic bag bound to fi.
func NewBag(fi *source.FileInfo) *Bag {
	return &Bag{FileInfo: fi}
}

// Errorf records a diagnostic at (line, col) spanning length characters.
func (b *Bag) Errorf(line, col, length int, format string, args ...any) {
	b.hadError = true
	filename := ""
	if b.FileInfo != nil {
		filename = b.FileInfo.Filename
	}
	b.diagnostics = append(b.diagnostics, Diagnostic{
		Filename: filename,
		Line:     line,
		Col:      col,
		Length:   length,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HadError reports whether any diagnostic has been recorded.
func (b *Bag) HadError() bool {
	return b.hadError
}

// Diagnostics returns the recorded diagnostics with exact duplicates
// (same location and message) collapsed, so that cascading parse
// errors at the same token don't get reported twice.
func (b *Bag) Diagnostics() []Diagnostic {
	return lo.UniqBy(b.diagnostics, func(d Diagnostic) string {
		return fmt.Sprintf("%s:%d:%d:%s", d.Filename, d.Line, d.Col, d.Message)
	})
}

// Render writes every recorded diagnostic, in report order, to a
// single string ready to be printed to stderr.
func (b *Bag) Render() string {
	var out strings.Builder
	for _, d := range b.Diagnostics() {
		out.WriteString(d.String(b.FileInfo, b.NoColor))
	}
	return out.String()
}
