// File: pkg/dump/binary.go
package dump

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-git/go-billy/v5"
)

// SniffSize is the number of leading bytes inspected by LooksBinary.
const SniffSize = 2048

// LooksBinary reports whether a file should be treated as binary: its first
// SniffSize bytes contain a NUL byte or are not valid UTF-8. Files that cannot
// be opened or read are reported as binary.
func LooksBinary(fsys billy.Basic, path string) bool {
	sample, err := readSample(fsys, path)
	if err != nil {
		return true
	}
	return isBinarySample(sample)
}

// readSample reads up to SniffSize bytes from the start of the file.
func readSample(fsys billy.Basic, path string) ([]byte, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buffer := make([]byte, SniffSize)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buffer[:n], nil
}

// isBinarySample applies the NUL and UTF-8 checks. A multi-byte sequence cut
// by the sample boundary fails the UTF-8 check.
func isBinarySample(sample []byte) bool {
	return bytes.IndexByte(sample, 0) >= 0 || !utf8.Valid(sample)
}

// detectMIME labels a binary sample for skip diagnostics.
func detectMIME(sample []byte) string {
	return mimetype.Detect(sample).String()
}
