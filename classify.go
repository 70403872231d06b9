package flatskema

import "strings"

// classify resolves the line type for a raw line. Line types are evaluated in
// declaration order; the first whose discriminator applies wins, so
// declaration order is the priority for overlapping discriminators. When no
// discriminator applies the fallback line type is used, if declared.
//
// The returned index is -1 when the line matches nothing, which the pipeline
// reports as a line_unmatched issue.
func (s *Schema) classify(raw string) int {
	for i := range s.Lines {
		lt := &s.Lines[i]
		if lt.Match == nil {
			continue
		}
		if lt.applies(raw) {
			return i
		}
	}
	if s.fallback >= 0 && s.Lines[s.fallback].fits(raw) {
		return s.fallback
	}
	return -1
}

// applies evaluates the discriminator against the raw line content. A
// fixed-width line shorter than the type's consumed width fails this
// candidate and falls through to the next one.
func (lt *LineType) applies(raw string) bool {
	if !lt.fits(raw) {
		return false
	}
	m := lt.Match
	switch {
	case m.Prefix != "":
		return strings.HasPrefix(raw, m.Prefix)
	case m.Length > 0:
		return len(raw) == m.Length
	case m.Cell != "":
		slice, ok := lt.rawCell(raw, m.cellIdx)
		if !ok {
			return false
		}
		return m.re.MatchString(slice)
	}
	return false
}

// fits checks the structural minimum for a candidate: fixed-width once needs
// the full consumed width, fixed-width repeat needs at least one block.
func (lt *LineType) fits(raw string) bool {
	if lt.Kind != FixedWidth {
		return true
	}
	return len(raw) >= lt.width
}

// rawCell returns the unprocessed slice or field for a cell, straight from
// the raw line, for discriminator evaluation. Delimited lines split the same
// way extraction does, so a quoted field holding the separator yields the
// same slice in both phases.
func (lt *LineType) rawCell(raw string, idx int) (string, bool) {
	c := &lt.Cells[idx]
	if lt.Kind == FixedWidth {
		if c.Offset+c.Width > len(raw) {
			return "", false
		}
		return raw[c.Offset : c.Offset+c.Width], true
	}
	fields, err := lt.splitFields(raw)
	if err != nil {
		return "", false
	}
	pos := lt.fieldPos(idx)
	if pos >= len(fields) {
		return "", false
	}
	return fields[pos], true
}

// fieldPos maps a cell index to its delimited field position, skipping
// computed cells, which consume no input.
func (lt *LineType) fieldPos(idx int) int {
	pos := 0
	for i := 0; i < idx; i++ {
		if lt.Cells[i].Compute == nil {
			pos++
		}
	}
	return pos
}
