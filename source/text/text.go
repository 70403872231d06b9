// Package text implements the line-source driver: it turns readers, byte
// slices, files, and LZ4-compressed inputs into an ordered sequence of
// numbered raw lines, honoring a schema-declared line separator.
package text

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// Line is one raw input line together with its 1-based source line number.
type Line struct {
	Number int
	Text   string
}

// Option configures a Scanner before the first read.
type Option func(*Scanner)

// WithSeparator sets the line separator. The spec may contain backslash
// escapes as written in schema documents ("\\r\\n"); they are decoded here.
// The default separator "\n" also tolerates "\r\n" endings.
func WithSeparator(spec string) Option {
	return func(s *Scanner) {
		if sep := DecodeSeparator(spec); sep != "" {
			s.sep = []byte(sep)
		}
	}
}

// maxLineBytes caps a single line. Flat files with longer lines are almost
// certainly using the wrong separator.
const maxLineBytes = 1 << 20

// Scanner reads numbered lines from an input. It is a single-pass,
// forward-only reader; Close releases the underlying file when there is one.
type Scanner struct {
	sep    []byte
	sc     *bufio.Scanner
	closer io.Closer
	n      int
}

// NewReader scans lines from r.
func NewReader(r io.Reader, opts ...Option) *Scanner {
	return newScanner(r, nil, opts...)
}

// NewBytes scans lines from an in-memory buffer.
func NewBytes(b []byte, opts ...Option) *Scanner {
	return newScanner(bytes.NewReader(b), nil, opts...)
}

// NewFile scans lines from a file; Close releases it.
func NewFile(path string, opts ...Option) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return newScanner(f, f, opts...), nil
}

// NewLZ4Reader scans lines from an LZ4-compressed stream.
func NewLZ4Reader(r io.Reader, opts ...Option) *Scanner {
	return newScanner(lz4.NewReader(r), nil, opts...)
}

// NewLZ4File scans lines from an LZ4-compressed file; Close releases it.
func NewLZ4File(path string, opts ...Option) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return newScanner(lz4.NewReader(f), f, opts...), nil
}

func newScanner(r io.Reader, closer io.Closer, opts ...Option) *Scanner {
	s := &Scanner{sep: []byte("\n"), closer: closer}
	for _, o := range opts {
		o(s)
	}
	s.sc = bufio.NewScanner(r)
	s.sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	if string(s.sep) == "\n" {
		s.sc.Split(bufio.ScanLines)
	} else {
		s.sc.Split(splitOn(s.sep))
	}
	return s
}

// Next returns the next line or io.EOF after the last one. A trailing
// separator at end of input does not produce an empty final line.
func (s *Scanner) Next() (Line, error) {
	if s.sc.Scan() {
		s.n++
		return Line{Number: s.n, Text: s.sc.Text()}, nil
	}
	if err := s.sc.Err(); err != nil {
		return Line{}, err
	}
	return Line{}, io.EOF
}

// Close releases the underlying file, when the Scanner owns one.
func (s *Scanner) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// splitOn returns a bufio.SplitFunc that splits on an arbitrary byte
// sequence, yielding the final unterminated token at EOF.
func splitOn(sep []byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.Index(data, sep); i >= 0 {
			return i + len(sep), data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}

// DecodeSeparator decodes backslash escapes in a separator spec as written in
// schema documents: \n, \r, \t, \f and \0.
func DecodeSeparator(spec string) string {
	if !strings.ContainsRune(spec, '\\') {
		return spec
	}
	b := &strings.Builder{}
	escaped := false
	for _, c := range spec {
		if !escaped {
			if c == '\\' {
				escaped = true
				continue
			}
			b.WriteRune(c)
			continue
		}
		escaped = false
		switch c {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'f':
			b.WriteByte('\f')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
