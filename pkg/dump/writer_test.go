package dump

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderLine(t *testing.T) {
	assert.Len(t, HeaderLine, 80)
	assert.Equal(t, "", strings.Trim(HeaderLine, "="))
}

func TestWriteFileVerbatim(t *testing.T) {
	var buf bytes.Buffer
	bw := NewBlockWriter(&buf, false)

	require.NoError(t, bw.WriteFile("/p/a.js", 14, "line1\nline2\n\n\n"))
	require.NoError(t, bw.Flush())

	want := HeaderLine + "\n" +
		"FILE: /p/a.js\n" +
		"SIZE: 14 bytes\n" +
		HeaderLine + "\n" +
		"line1\nline2\n" +
		"\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteFileVerbatimNoTrailingNewline(t *testing.T) {
	var buf bytes.Buffer
	bw := NewBlockWriter(&buf, false)

	require.NoError(t, bw.WriteFile("/p/a.js", 3, "abc"))
	require.NoError(t, bw.Flush())

	assert.True(t, strings.HasSuffix(buf.String(), HeaderLine+"\nabc\n\n\n"))
}

func TestWriteFileEmpty(t *testing.T) {
	var buf bytes.Buffer
	bw := NewBlockWriter(&buf, false)

	require.NoError(t, bw.WriteFile("/p/empty.js", 0, ""))
	require.NoError(t, bw.Flush())

	assert.True(t, strings.HasSuffix(buf.String(), "SIZE: 0 bytes\n"+HeaderLine+"\n\n\n\n"))
}

func TestWriteFileLineNumbers(t *testing.T) {
	var buf bytes.Buffer
	bw := NewBlockWriter(&buf, true)

	require.NoError(t, bw.WriteFile("/p/a.js", 14, "one\ntwo\nthree\n"))
	require.NoError(t, bw.Flush())

	body := strings.SplitN(buf.String(), HeaderLine+"\n", 3)[2]
	assert.Equal(t, "     1: one\n     2: two\n     3: three\n\n\n", body)
}

func TestWriteFileLineNumbersSeparators(t *testing.T) {
	var buf bytes.Buffer
	bw := NewBlockWriter(&buf, true)

	require.NoError(t, bw.WriteFile("/p/a.js", 24, "one\ftwo\u2028three\x1dfour\n"))
	require.NoError(t, bw.Flush())

	body := strings.SplitN(buf.String(), HeaderLine+"\n", 3)[2]
	assert.Equal(t, "     1: one\n     2: two\n     3: three\n     4: four\n\n\n", body)
}

func TestWriteFileLineNumbersWide(t *testing.T) {
	var buf bytes.Buffer
	bw := NewBlockWriter(&buf, true)

	text := strings.Repeat("x\n", 1000000)
	require.NoError(t, bw.WriteFile("/p/big.js", int64(len(text)), text))
	require.NoError(t, bw.Flush())

	assert.Contains(t, buf.String(), "\n     9: x\n    10: x\n")
	assert.Contains(t, buf.String(), "\n999999: x\n1000000: x\n\n\n")
}

func TestWriteTree(t *testing.T) {
	var buf bytes.Buffer
	bw := NewBlockWriter(&buf, false)

	require.NoError(t, bw.WriteTree("/p", "/p/\n└── a.js"))
	require.NoError(t, bw.Flush())

	assert.Equal(t, HeaderLine+"\nTREE: /p\n"+HeaderLine+"\n/p/\n└── a.js\n\n\n", buf.String())
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"single no newline", "a", []string{"a"}},
		{"single newline", "a\n", []string{"a"}},
		{"blank lines kept", "a\n\nb\n\n", []string{"a", "", "b", ""}},
		{"only newline", "\n", []string{""}},
		{"crlf is one boundary", "a\r\nb\rc", []string{"a", "b", "c"}},
		{"control separators", "one\ftwo\vthree\x1cfour\x1dfive\x1esix", []string{"one", "two", "three", "four", "five", "six"}},
		{"unicode separators", "one\u2028two\u2029three\u0085four\n", []string{"one", "two", "three", "four"}},
		{"trailing form feed", "a\f", []string{"a"}},
		{"tab is not a boundary", "a\tb", []string{"a\tb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitLines(tt.text))
		})
	}
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"plain", []byte("abc\n"), "abc\n"},
		{"crlf", []byte("a\r\nb\r\n"), "a\nb\n"},
		{"lone cr", []byte("a\rb"), "a\nb"},
		{"cr cr lf", []byte("a\r\r\nb"), "a\n\nb"},
		{"invalid byte", []byte("a\xffb"), "a�b"},
		{"invalid run", []byte("a\xff\xfeb"), "a��b"},
		{"truncated sequence", []byte("a\xe2\x82b"), "a�b"},
		{"truncated at end", []byte("a\xf0\x9f\x98"), "a�"},
		{"bad second byte", []byte("\xe0\x80a"), "��a"},
		{"surrogate", []byte("\xed\xa0\x80"), "���"},
		{"stray continuation", []byte("\x80\x80"), "��"},
		{"utf8 kept", []byte("ünï ✓"), "ünï ✓"},
		{"replacement char kept", []byte("�"), "�"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeText(tt.raw))
		})
	}
}
