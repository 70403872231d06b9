package flatskema

import (
	"regexp"
	"strings"
	"sync"

	"github.com/reoring/flatskema/internal/decimalformat"
)

// CellType enumerates the semantic data types a cell can declare.
type CellType int

const (
	TypeText CellType = iota
	TypeInteger
	TypeDecimal
	TypeBool
	TypeDate
)

func (t CellType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeInteger:
		return "integer"
	case TypeDecimal:
		return "decimal"
	case TypeBool:
		return "boolean"
	case TypeDate:
		return "date"
	default:
		return "unknown"
	}
}

// LineKind selects the extraction strategy for a line type.
type LineKind int

const (
	FixedWidth LineKind = iota
	Delimited
)

// Occurs is the cardinality of a line type's cell group. OccursRepeat tiles
// the group across the remainder of a fixed-width line; repeated cells are
// named "name.2", "name.3", and so on.
type Occurs int

const (
	OccursOnce Occurs = iota
	OccursRepeat
)

// Alignment records which side of a fixed-width cell carries padding. The pad
// character is trimmed from the padded side before type conversion; AlignNone
// trims both sides.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignRight
)

// ComputeFunc derives a cell value from the already-validated cells of the
// current line. A returned error is folded into the line's issue set as a
// compute_error.
type ComputeFunc func(rec *ParsedLine) (any, error)

// LineRule checks cross-cell constraints on an otherwise valid line. Returned
// issues need not carry a line number; the pipeline fills it in.
type LineRule func(rec *ParsedLine) []Issue

// Match is a line type discriminator. Exactly one of Prefix, Length, or
// Cell+Pattern must be set. It is evaluated against the raw line content
// alone, before any extraction.
type Match struct {
	Prefix  string // Line must start with this literal.
	Length  int    // Raw line must have exactly this length.
	Cell    string // Name of the cell whose raw slice must match Pattern.
	Pattern string

	re      *regexp.Regexp
	cellIdx int
}

// Cell declares one field within a line type: name, semantic type, position,
// and validation rules. Rules are evaluated exhaustively in the order
// required -> length bounds -> pattern -> enum -> type conversion -> range.
type Cell struct {
	Name   string
	Type   CellType
	Offset int // Fixed-width start position; auto-assigned when all offsets are zero.
	Width  int // Fixed-width consumed width.

	Required bool
	NoTrim   bool      // Keep the raw slice as-is; trimming is on by default.
	Pad      rune      // Pad character trimmed before conversion; default ' '.
	Align    Alignment // Which side carries the padding.

	MinLen, MaxLen int // 0 means no bound.
	Pattern        string
	Enum           []string
	Min, Max       *float64 // Numeric range bounds for integer/decimal cells.

	// Format is a Go time layout for date cells, or a DecimalFormat pattern
	// (for example "#,##0.00;(#)") for decimal cells.
	Format string

	// Compute marks a derived cell. It consumes no input; the function runs
	// after the line's declared cells have been extracted and validated.
	Compute ComputeFunc

	re *regexp.Regexp
	df *decimalformat.Format
}

// LineType is a schema-declared shape plus recognition rule for one category
// of input line. A nil Match marks the fallback line type used when no
// discriminator applies; at most one fallback may be declared.
type LineType struct {
	Name   string
	Kind   LineKind
	Match  *Match
	Occurs Occurs
	Cells  []Cell

	Separator rune // Delimited field separator; default ','.
	Quoted    bool // Honor CSV-style quoting when splitting.

	// Rules run after per-cell validation when the line produced no issues.
	Rules []LineRule

	width int // Total width consumed by one occurrence of the cell group.
}

// Schema is an ordered collection of line types. Declaration order is the
// classification priority. A Schema is immutable once compiled and safe to
// share read-only across workers and runs.
type Schema struct {
	Lines []LineType

	// Separator is the line separator as written in the schema document
	// ("\n" when empty). Escapes such as \r\n are decoded by source/text.
	Separator string

	fallback    int
	compileOnce sync.Once
	compileErr  error
}

// Compile verifies the schema and precompiles patterns. It is idempotent and
// called implicitly by the parse entry points; malformed schemas fail here,
// before any line is read.
func (s *Schema) Compile() error {
	s.compileOnce.Do(func() { s.compileErr = s.compile() })
	return s.compileErr
}

func (s *Schema) compile() error {
	if len(s.Lines) == 0 {
		return schemaErrf("", "", "at least one line type is required")
	}
	s.fallback = -1
	seen := make(map[string]struct{}, len(s.Lines))
	for i := range s.Lines {
		lt := &s.Lines[i]
		if lt.Name == "" {
			return schemaErrf("", "", "line type %d has no name", i)
		}
		if _, dup := seen[lt.Name]; dup {
			return schemaErrf(lt.Name, "", "duplicate line type")
		}
		seen[lt.Name] = struct{}{}
		if err := s.compileLine(lt); err != nil {
			return err
		}
		if lt.Match == nil {
			if s.fallback >= 0 {
				return schemaErrf(lt.Name, "", "more than one line type without a discriminator (previous: %q)", s.Lines[s.fallback].Name)
			}
			s.fallback = i
		}
	}
	return s.checkExclusive()
}

func (s *Schema) compileLine(lt *LineType) error {
	if len(lt.Cells) == 0 {
		return schemaErrf(lt.Name, "", "line type has no cells")
	}
	if lt.Occurs == OccursRepeat && lt.Kind != FixedWidth {
		return schemaErrf(lt.Name, "", "occurs=repeat is only supported for fixed-width line types")
	}
	if lt.Kind == Delimited && lt.Separator == 0 {
		lt.Separator = ','
	}

	names := make(map[string]struct{}, len(lt.Cells))
	autoOffsets := true
	for i := range lt.Cells {
		if lt.Cells[i].Compute == nil && lt.Cells[i].Offset != 0 {
			autoOffsets = false
			break
		}
	}
	next := 0
	for i := range lt.Cells {
		c := &lt.Cells[i]
		if c.Name == "" {
			return schemaErrf(lt.Name, "", "cell %d has no name", i)
		}
		if _, dup := names[c.Name]; dup {
			return schemaErrf(lt.Name, c.Name, "duplicate cell name")
		}
		names[c.Name] = struct{}{}
		if err := compileCell(lt, c); err != nil {
			return err
		}
		if lt.Kind == FixedWidth && c.Compute == nil {
			if c.Width <= 0 {
				return schemaErrf(lt.Name, c.Name, "fixed-width cell must declare a positive width (got %d)", c.Width)
			}
			if autoOffsets {
				c.Offset = next
			} else if c.Offset < next {
				return schemaErrf(lt.Name, c.Name, "cell offset %d overlaps the previous cell (expected >= %d)", c.Offset, next)
			}
			next = c.Offset + c.Width
		}
	}
	lt.width = next

	if m := lt.Match; m != nil {
		if err := compileMatch(lt, m); err != nil {
			return err
		}
	}
	return nil
}

func compileCell(lt *LineType, c *Cell) error {
	if c.Pad == 0 {
		c.Pad = ' '
	}
	if c.MaxLen > 0 && c.MinLen > c.MaxLen {
		return schemaErrf(lt.Name, c.Name, "minlength %d exceeds maxlength %d", c.MinLen, c.MaxLen)
	}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		return schemaErrf(lt.Name, c.Name, "min %v exceeds max %v", *c.Min, *c.Max)
	}
	if c.Pattern != "" {
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return schemaErrf(lt.Name, c.Name, "invalid pattern: %v", err)
		}
		c.re = re
	}
	switch c.Type {
	case TypeDate:
		if c.Format == "" {
			return schemaErrf(lt.Name, c.Name, "date cell requires a format layout")
		}
	case TypeDecimal:
		if c.Format != "" {
			df, err := decimalformat.Compile(c.Format)
			if err != nil {
				return schemaErrf(lt.Name, c.Name, "invalid decimal format: %v", err)
			}
			c.df = df
		}
	default:
		if c.Format != "" {
			return schemaErrf(lt.Name, c.Name, "format is only supported on date and decimal cells")
		}
	}
	return nil
}

func compileMatch(lt *LineType, m *Match) error {
	set := 0
	if m.Prefix != "" {
		set++
	}
	if m.Length > 0 {
		set++
	}
	if m.Cell != "" {
		set++
	}
	if set != 1 {
		return schemaErrf(lt.Name, "", "discriminator must set exactly one of prefix, length, or cell")
	}
	if m.Cell != "" {
		if m.Pattern == "" {
			return schemaErrf(lt.Name, m.Cell, "cell discriminator requires a pattern")
		}
		m.cellIdx = -1
		for i := range lt.Cells {
			if lt.Cells[i].Name == m.Cell {
				m.cellIdx = i
				break
			}
		}
		if m.cellIdx < 0 {
			return schemaErrf(lt.Name, m.Cell, "discriminator references an unknown cell")
		}
		if lt.Cells[m.cellIdx].Compute != nil {
			return schemaErrf(lt.Name, m.Cell, "discriminator cannot reference a computed cell")
		}
		re, err := regexp.Compile(m.Pattern)
		if err != nil {
			return schemaErrf(lt.Name, m.Cell, "invalid discriminator pattern: %v", err)
		}
		m.re = re
	}
	return nil
}

// checkExclusive rejects statically detectable discriminator overlaps:
// duplicate fixed lengths, and leading literals where one is a prefix of the
// other. Cell-pattern discriminators cannot be checked statically; overlaps
// there resolve by declaration order at parse time.
func (s *Schema) checkExclusive() error {
	lengths := make(map[int]string)
	var prefixes []struct {
		p    string
		name string
	}
	for i := range s.Lines {
		m := s.Lines[i].Match
		if m == nil {
			continue
		}
		if m.Length > 0 {
			if prev, ok := lengths[m.Length]; ok {
				return schemaErrf(s.Lines[i].Name, "", "length discriminator %d collides with line type %q", m.Length, prev)
			}
			lengths[m.Length] = s.Lines[i].Name
		}
		if m.Prefix != "" {
			for _, pp := range prefixes {
				if strings.HasPrefix(m.Prefix, pp.p) || strings.HasPrefix(pp.p, m.Prefix) {
					return schemaErrf(s.Lines[i].Name, "", "prefix discriminator %q overlaps line type %q (%q)", m.Prefix, pp.name, pp.p)
				}
			}
			prefixes = append(prefixes, struct {
				p    string
				name string
			}{m.Prefix, s.Lines[i].Name})
		}
	}
	return nil
}
