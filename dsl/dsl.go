// Package dsl provides a fluent builder for flatskema schemas.
//
// Fixed-width cell offsets are assigned cumulatively in declaration order,
// the way flat-file layouts are usually written down:
//
//	s := dsl.Schema(
//		dsl.Fixed("Person").Cells(
//			dsl.Integer("id").Width(3).Required(),
//			dsl.Text("name").Width(10).Required(),
//		),
//	)
package dsl

import (
	flatskema "github.com/reoring/flatskema"
)

// Schema assembles line types into a Schema ready for Compile. Declaration
// order is the classification priority.
func Schema(lines ...*LineBuilder) *flatskema.Schema {
	return SchemaWithSeparator("", lines...)
}

// SchemaWithSeparator is Schema with an explicit line separator spec
// (escapes such as "\\r\\n" are decoded by the source layer).
func SchemaWithSeparator(sep string, lines ...*LineBuilder) *flatskema.Schema {
	s := &flatskema.Schema{Separator: sep, Lines: make([]flatskema.LineType, 0, len(lines))}
	for _, lb := range lines {
		s.Lines = append(s.Lines, lb.lt)
	}
	return s
}

// LineBuilder accumulates one LineType definition.
type LineBuilder struct {
	lt flatskema.LineType
}

// Fixed starts a fixed-width line type.
func Fixed(name string) *LineBuilder {
	return &LineBuilder{lt: flatskema.LineType{Name: name, Kind: flatskema.FixedWidth}}
}

// Delimited starts a delimited line type with the given field separator.
func Delimited(name string, sep rune) *LineBuilder {
	return &LineBuilder{lt: flatskema.LineType{Name: name, Kind: flatskema.Delimited, Separator: sep}}
}

// Prefix declares a leading-literal discriminator.
func (b *LineBuilder) Prefix(p string) *LineBuilder {
	b.lt.Match = &flatskema.Match{Prefix: p}
	return b
}

// Length declares an exact-line-length discriminator.
func (b *LineBuilder) Length(n int) *LineBuilder {
	b.lt.Match = &flatskema.Match{Length: n}
	return b
}

// MatchCell declares a discriminator that matches a pattern against the raw
// slice of the named cell.
func (b *LineBuilder) MatchCell(cell, pattern string) *LineBuilder {
	b.lt.Match = &flatskema.Match{Cell: cell, Pattern: pattern}
	return b
}

// Repeat marks the cell group as repeatable: it tiles across the remainder of
// a fixed-width line.
func (b *LineBuilder) Repeat() *LineBuilder {
	b.lt.Occurs = flatskema.OccursRepeat
	return b
}

// Quoted makes a delimited line honor CSV-style quoting when splitting.
func (b *LineBuilder) Quoted() *LineBuilder {
	b.lt.Quoted = true
	return b
}

// Rule attaches a cross-cell rule evaluated on otherwise valid lines.
func (b *LineBuilder) Rule(r flatskema.LineRule) *LineBuilder {
	b.lt.Rules = append(b.lt.Rules, r)
	return b
}

// Cells appends cell definitions in declaration order.
func (b *LineBuilder) Cells(cells ...*CellBuilder) *LineBuilder {
	for _, cb := range cells {
		b.lt.Cells = append(b.lt.Cells, cb.c)
	}
	return b
}

// CellBuilder accumulates one cell definition.
type CellBuilder struct {
	c flatskema.Cell
}

// Text starts a text cell.
func Text(name string) *CellBuilder {
	return &CellBuilder{c: flatskema.Cell{Name: name, Type: flatskema.TypeText}}
}

// Integer starts an integer cell.
func Integer(name string) *CellBuilder {
	return &CellBuilder{c: flatskema.Cell{Name: name, Type: flatskema.TypeInteger}}
}

// Decimal starts a decimal cell.
func Decimal(name string) *CellBuilder {
	return &CellBuilder{c: flatskema.Cell{Name: name, Type: flatskema.TypeDecimal}}
}

// Bool starts a boolean cell.
func Bool(name string) *CellBuilder {
	return &CellBuilder{c: flatskema.Cell{Name: name, Type: flatskema.TypeBool}}
}

// Date starts a date cell with a Go time layout.
func Date(name, layout string) *CellBuilder {
	return &CellBuilder{c: flatskema.Cell{Name: name, Type: flatskema.TypeDate, Format: layout}}
}

// Computed starts a derived cell evaluated from the validated cells of the
// line. It consumes no input.
func Computed(name string, fn flatskema.ComputeFunc) *CellBuilder {
	return &CellBuilder{c: flatskema.Cell{Name: name, Type: flatskema.TypeText, Compute: fn}}
}

// Width sets the fixed-width consumed width.
func (b *CellBuilder) Width(n int) *CellBuilder { b.c.Width = n; return b }

// At overrides the auto-assigned fixed-width offset.
func (b *CellBuilder) At(offset int) *CellBuilder { b.c.Offset = offset; return b }

// Required marks the cell mandatory.
func (b *CellBuilder) Required() *CellBuilder { b.c.Required = true; return b }

// MinLen sets the minimum text length.
func (b *CellBuilder) MinLen(n int) *CellBuilder { b.c.MinLen = n; return b }

// MaxLen sets the maximum text length.
func (b *CellBuilder) MaxLen(n int) *CellBuilder { b.c.MaxLen = n; return b }

// Pattern sets a regular-expression rule.
func (b *CellBuilder) Pattern(p string) *CellBuilder { b.c.Pattern = p; return b }

// Enum restricts the cell to an allowed value set.
func (b *CellBuilder) Enum(values ...string) *CellBuilder { b.c.Enum = values; return b }

// Min sets the numeric lower bound.
func (b *CellBuilder) Min(v float64) *CellBuilder { b.c.Min = &v; return b }

// Max sets the numeric upper bound.
func (b *CellBuilder) Max(v float64) *CellBuilder { b.c.Max = &v; return b }

// Format sets a DecimalFormat pattern on a decimal cell.
func (b *CellBuilder) Format(pattern string) *CellBuilder { b.c.Format = pattern; return b }

// Pad sets the pad character trimmed before conversion.
func (b *CellBuilder) Pad(r rune) *CellBuilder { b.c.Pad = r; return b }

// Align records which side of the cell carries padding.
func (b *CellBuilder) Align(a flatskema.Alignment) *CellBuilder { b.c.Align = a; return b }

// NoTrim keeps the raw slice untouched (presence is still pad-aware).
func (b *CellBuilder) NoTrim() *CellBuilder { b.c.NoTrim = true; return b }
