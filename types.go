package flatskema

// CellValue is one named, typed value extracted from a line. Values are
// string, int64, float64, bool, or time.Time depending on the declared
// CellType.
type CellValue struct {
	Name  string
	Value any
}

// ParsedLine is the structured record for one successfully classified and
// validated input line. Cell order is the schema declaration order. Each
// ParsedLine is produced fresh and owned by the caller; nothing is shared
// across lines.
type ParsedLine struct {
	Line  int    // 1-based source line number.
	Type  string // Matched line type name.
	Cells []CellValue

	index map[string]int
}

func newParsedLine(line int, typ string, n int) *ParsedLine {
	return &ParsedLine{Line: line, Type: typ, Cells: make([]CellValue, 0, n), index: make(map[string]int, n)}
}

func (p *ParsedLine) put(name string, v any) {
	p.index[name] = len(p.Cells)
	p.Cells = append(p.Cells, CellValue{Name: name, Value: v})
}

// Get returns the value for a cell name. Optional cells that were absent from
// the input report ok=false.
func (p *ParsedLine) Get(name string) (any, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.Cells[i].Value, true
}

// Map copies the cells into a name-keyed map. Declaration order is lost; use
// Cells when order matters.
func (p *ParsedLine) Map() map[string]any {
	m := make(map[string]any, len(p.Cells))
	for _, cv := range p.Cells {
		m[cv.Name] = cv.Value
	}
	return m
}

// LineResult is the per-line outcome yielded in streaming mode: either a
// Record or a non-empty issue batch for exactly one line number.
type LineResult struct {
	Line   int
	Record *ParsedLine // nil when the line is invalid
	Issues Issues      // nil when the line is valid
}

// Valid reports whether the line produced a record with no issues.
func (r LineResult) Valid() bool { return len(r.Issues) == 0 }
