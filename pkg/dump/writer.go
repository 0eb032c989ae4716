// File: pkg/dump/writer.go
package dump

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// HeaderLine delimits block headers in the output.
var HeaderLine = strings.Repeat("=", 80)

// BlockWriter writes file blocks to an output stream. Writes are buffered;
// call Flush when done.
type BlockWriter struct {
	w           *bufio.Writer
	lineNumbers bool
}

// NewBlockWriter returns a BlockWriter writing to w.
func NewBlockWriter(w io.Writer, lineNumbers bool) *BlockWriter {
	return &BlockWriter{w: bufio.NewWriter(w), lineNumbers: lineNumbers}
}

// WriteFile writes one file block: header with path and byte size, the
// content, and two blank lines.
func (bw *BlockWriter) WriteFile(path string, size int64, text string) error {
	if _, err := fmt.Fprintf(bw.w, "%s\nFILE: %s\nSIZE: %d bytes\n%s\n", HeaderLine, path, size, HeaderLine); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", path, err)
	}
	if err := bw.writeBody(text); err != nil {
		return fmt.Errorf("failed to write content for %s: %w", path, err)
	}
	return nil
}

// WriteTree writes the tree block that precedes the file blocks.
func (bw *BlockWriter) WriteTree(root, tree string) error {
	if _, err := fmt.Fprintf(bw.w, "%s\nTREE: %s\n%s\n%s\n\n\n", HeaderLine, root, HeaderLine, tree); err != nil {
		return fmt.Errorf("failed to write tree: %w", err)
	}
	return nil
}

func (bw *BlockWriter) writeBody(text string) error {
	if bw.lineNumbers {
		for i, line := range splitLines(text) {
			if _, err := fmt.Fprintf(bw.w, "%6d: %s\n", i+1, line); err != nil {
				return err
			}
		}
	} else {
		if _, err := bw.w.WriteString(strings.TrimRight(text, "\n") + "\n"); err != nil {
			return err
		}
	}
	_, err := bw.w.WriteString("\n\n")
	return err
}

// Flush writes any buffered data to the underlying writer.
func (bw *BlockWriter) Flush() error {
	return bw.w.Flush()
}

// splitLines splits text at line boundaries: "\n", "\r", "\r\n", "\v", "\f",
// the file, group and record separators, NEL, and the Unicode line and
// paragraph separators. A trailing boundary does not start an extra line and
// empty text has no lines.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBoundary(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// decodeText converts raw file bytes to output text. Each maximal invalid
// UTF-8 subsequence becomes one U+FFFD, and "\r\n" and lone "\r" become "\n".
func decodeText(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))

	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		switch {
		case r == utf8.RuneError && size == 1:
			b.WriteRune(utf8.RuneError)
			size = invalidPrefixLen(raw)
		case r == '\r':
			b.WriteByte('\n')
			if len(raw) > 1 && raw[1] == '\n' {
				size = 2
			}
		default:
			b.Write(raw[:size])
		}
		raw = raw[size:]
	}
	return b.String()
}

// invalidPrefixLen returns the length of the maximal subpart of an ill-formed
// sequence at the start of b: the longest prefix that could begin a well-formed
// sequence, or 1 when even the first byte cannot.
func invalidPrefixLen(b []byte) int {
	var need int
	lo, hi := byte(0x80), byte(0xBF)
	switch c := b[0]; {
	case c >= 0xC2 && c <= 0xDF:
		need = 2
	case c == 0xE0:
		need, lo = 3, 0xA0
	case c == 0xED:
		need, hi = 3, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		need = 3
	case c == 0xF0:
		need, lo = 4, 0x90
	case c == 0xF4:
		need, hi = 4, 0x8F
	case c >= 0xF1 && c <= 0xF3:
		need = 4
	default:
		return 1
	}

	n := 1
	for n < need && n < len(b) {
		if b[n] < lo || b[n] > hi {
			break
		}
		lo, hi = 0x80, 0xBF
		n++
	}
	return n
}
