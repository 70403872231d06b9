package flatskema

import (
	"io"

	"github.com/reoring/flatskema/source/text"
)

// Line is one raw input line with its 1-based source line number.
type Line = text.Line

// SourceOption configures the constructors below (separator, etc.).
type SourceOption = text.Option

// WithSeparator sets the line separator for a source constructor. Escapes as
// written in schema documents ("\\r\\n") are decoded.
func WithSeparator(spec string) SourceOption { return text.WithSeparator(spec) }

// Source abstracts over polymorphic line inputs. A Source is consumed once;
// Next returns io.EOF after the last line. The parse entry points close the
// Source when the run ends or is abandoned.
//
// Line numbers must be contiguous starting at 1: streaming dispatch
// reassembles worker output by line number, so a gap stalls everything
// numbered after it.
type Source interface {
	Next() (Line, error)
	Close() error
}

// LineReader wraps an io.Reader as a line Source.
func LineReader(r io.Reader, opts ...SourceOption) Source { return text.NewReader(r, opts...) }

// LineBytes wraps a byte slice as a line Source.
func LineBytes(b []byte, opts ...SourceOption) Source { return text.NewBytes(b, opts...) }

// LineFile opens a file as a line Source.
func LineFile(path string, opts ...SourceOption) (Source, error) { return text.NewFile(path, opts...) }

// LZ4Reader wraps an LZ4-compressed stream as a line Source.
func LZ4Reader(r io.Reader, opts ...SourceOption) Source { return text.NewLZ4Reader(r, opts...) }

// LZ4File opens an LZ4-compressed file as a line Source.
func LZ4File(path string, opts ...SourceOption) (Source, error) { return text.NewLZ4File(path, opts...) }

// LinesFor wraps r applying the schema's declared line separator.
func LinesFor(s *Schema, r io.Reader) Source {
	if s != nil && s.Separator != "" {
		return text.NewReader(r, text.WithSeparator(s.Separator))
	}
	return text.NewReader(r)
}
