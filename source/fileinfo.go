// Package source holds the compiler's view of the input file: the raw
// bytes plus a line-start-offset index so diagnostics can map a byte
// offset back to "line N, column M" and quote the offending line in
// O(1).
//
// Grounded on the original implementation's FileInfo (filename, source
// text, ordered line-start offsets); the index is populated
// incrementally by the lexer as it scans, exactly as the original
// appends an offset to the array on every newline.
package source

import (
	"os"

	"github.com/pkg/errors"
)

// FileInfo is the lifetime-of-one-compilation source buffer.
type FileInfo struct {
	Filename string
	Text     string

	// LineStarts[i] is the byte offset at which line i (0-based)
	// begins. LineStarts[0] is always 0.
	LineStarts []int
}

// Load reads filename into memory and returns a FileInfo ready for
// lexing. Read failure is the one FileInfo-related fatal condition:
// there is no recovering from a source file that can't be opened.
func Load(filename string) (*FileInfo, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading source file %q", filename)
	}
	return &FileInfo{
		Filename:   filename,
		Text:       string(data),
		LineStarts: []int{0},
	}, nil
}

// NewLine records that a new source line starts at offset. Called by
// the lexer every time it consumes a '\n'.
func (f *FileInfo) NewLine(offset int) {
	f.LineStarts = append(f.LineStarts, offset)
}

// Position converts a byte offset into a 1-based (line, column) pair.
func (f *FileInfo) Position(offset int) (line, col int) {
	// Binary search would be overkill for the file sizes this compiler
	// targets; a linear scan from the end is simple and correct.
	for i := len(f.LineStarts) - 1; i >= 0; i-- {
		if f.LineStarts[i] <= offset {
			return i + 1, offset - f.LineStarts[i] + 1
		}
	}
	return 1, offset + 1
}

// GetLine returns the text of the given 1-based line number, without
// its trailing newline.
func (f *FileInfo) GetLine(line int) string {
	idx := line - 1
	if idx < 0 || idx >= len(f.LineStarts) {
		return ""
	}
	start := f.LineStarts[idx]
	end := len(f.Text)
	if idx+1 < len(f.LineStarts) {
		end = f.LineStarts[idx+1]
	}
	if start > len(f.Text) {
		return ""
	}
	if end > len(f.Text) {
		end = len(f.Text)
	}
	text := f.Text[start:end]
	for len(text) > 0 && (text[len(text)-1] == '\n' || text[len(text)-1] == '\r') {
		text = text[:len(text)-1]
	}
	return text
}
