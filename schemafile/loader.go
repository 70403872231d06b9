// Package schemafile loads flatskema schemas from YAML or JSON documents.
// The document model is the logical schema of spec'd flat files: line types
// with a discriminator, ordered cells, and per-cell validation rules. The
// loader fails at load time, before any data line is processed, with a
// descriptive error for malformed or self-contradictory documents.
package schemafile

import (
	"fmt"
	"io"
	"io/fs"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	flatskema "github.com/reoring/flatskema"
)

// Document is the on-disk schema model.
type Document struct {
	Separator string    `json:"separator,omitempty" yaml:"separator,omitempty"`
	Lines     []LineDoc `json:"lines" yaml:"lines"`
}

// LineDoc declares one line type.
type LineDoc struct {
	Name      string    `json:"name" yaml:"name"`
	Kind      string    `json:"kind,omitempty" yaml:"kind,omitempty"`           // "fixed" (default) or "delimited"
	Separator string    `json:"separator,omitempty" yaml:"separator,omitempty"` // delimited field separator, default ","
	Quoted    bool      `json:"quoted,omitempty" yaml:"quoted,omitempty"`
	Occurs    string    `json:"occurs,omitempty" yaml:"occurs,omitempty"` // "once" (default) or "repeat"
	Match     *MatchDoc `json:"match,omitempty" yaml:"match,omitempty"`
	Cells     []CellDoc `json:"cells" yaml:"cells"`
}

// MatchDoc declares a discriminator; exactly one of prefix, length, or
// cell+pattern.
type MatchDoc struct {
	Prefix  string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Length  int    `json:"length,omitempty" yaml:"length,omitempty"`
	Cell    string `json:"cell,omitempty" yaml:"cell,omitempty"`
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// CellDoc declares one cell and its rule set.
type CellDoc struct {
	Name      string   `json:"name" yaml:"name"`
	Type      string   `json:"type,omitempty" yaml:"type,omitempty"` // text (default), integer, decimal, boolean, date
	Width     int      `json:"width,omitempty" yaml:"width,omitempty"`
	Offset    *int     `json:"offset,omitempty" yaml:"offset,omitempty"` // explicit override; cumulative otherwise
	Required  bool     `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength int      `json:"minlength,omitempty" yaml:"minlength,omitempty"`
	MaxLength int      `json:"maxlength,omitempty" yaml:"maxlength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum      []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Format    string   `json:"format,omitempty" yaml:"format,omitempty"`
	Pad       string   `json:"padcharacter,omitempty" yaml:"padcharacter,omitempty"`
	Align     string   `json:"alignment,omitempty" yaml:"alignment,omitempty"` // left or right
	Trim      *bool    `json:"trim,omitempty" yaml:"trim,omitempty"`           // default true
}

// Loader loads schema documents from a filesystem.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a Loader that reads from the given filesystem.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// LoadFile loads, converts, and compiles a schema file. The format is
// determined from the file extension (.yaml/.yml or .json).
func (l *Loader) LoadFile(path string) (*flatskema.Schema, error) {
	f, err := l.fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"):
		return ParseYAML(data)
	case strings.HasSuffix(path, ".json"):
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("schemafile: format not supported: %s", path)
	}
}

// ParseYAML converts a YAML schema document.
func ParseYAML(data []byte) (*flatskema.Schema, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return doc.Schema()
}

// ParseJSON converts a JSON schema document.
func ParseJSON(data []byte) (*flatskema.Schema, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return doc.Schema()
}

// Schema converts the document into a compiled flatskema.Schema. All
// schema-load-time verification happens here, so a returned Schema is ready
// to parse with.
func (d *Document) Schema() (*flatskema.Schema, error) {
	s := &flatskema.Schema{Separator: d.Separator, Lines: make([]flatskema.LineType, 0, len(d.Lines))}
	for i := range d.Lines {
		lt, err := d.Lines[i].lineType()
		if err != nil {
			return nil, err
		}
		s.Lines = append(s.Lines, lt)
	}
	if err := s.Compile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (ld *LineDoc) lineType() (flatskema.LineType, error) {
	lt := flatskema.LineType{Name: ld.Name, Quoted: ld.Quoted}

	switch ld.Kind {
	case "", "fixed", "fixedwidth":
		lt.Kind = flatskema.FixedWidth
	case "delimited", "csv":
		lt.Kind = flatskema.Delimited
	default:
		return lt, fmt.Errorf("schemafile: line %q: unknown kind %q", ld.Name, ld.Kind)
	}
	if ld.Separator != "" {
		if n := len([]rune(ld.Separator)); n != 1 {
			return lt, fmt.Errorf("schemafile: line %q: field separator must be one character, got %q", ld.Name, ld.Separator)
		}
		lt.Separator = []rune(ld.Separator)[0]
	}
	switch ld.Occurs {
	case "", "once":
		lt.Occurs = flatskema.OccursOnce
	case "repeat":
		lt.Occurs = flatskema.OccursRepeat
	default:
		return lt, fmt.Errorf("schemafile: line %q: unknown occurs %q", ld.Name, ld.Occurs)
	}
	if m := ld.Match; m != nil {
		lt.Match = &flatskema.Match{Prefix: m.Prefix, Length: m.Length, Cell: m.Cell, Pattern: m.Pattern}
	}

	lt.Cells = make([]flatskema.Cell, 0, len(ld.Cells))
	for i := range ld.Cells {
		c, err := ld.Cells[i].cell(ld.Name)
		if err != nil {
			return lt, err
		}
		lt.Cells = append(lt.Cells, c)
	}
	return lt, nil
}

func (cd *CellDoc) cell(line string) (flatskema.Cell, error) {
	c := flatskema.Cell{
		Name:     cd.Name,
		Width:    cd.Width,
		Required: cd.Required,
		MinLen:   cd.MinLength,
		MaxLen:   cd.MaxLength,
		Pattern:  cd.Pattern,
		Enum:     cd.Enum,
		Min:      cd.Min,
		Max:      cd.Max,
		Format:   cd.Format,
	}
	switch cd.Type {
	case "", "text", "string":
		c.Type = flatskema.TypeText
	case "integer", "int":
		c.Type = flatskema.TypeInteger
	case "decimal", "number":
		c.Type = flatskema.TypeDecimal
	case "boolean", "bool":
		c.Type = flatskema.TypeBool
	case "date", "datetime":
		c.Type = flatskema.TypeDate
	default:
		return c, fmt.Errorf("schemafile: line %q: cell %q: unknown type %q", line, cd.Name, cd.Type)
	}
	if cd.Offset != nil {
		c.Offset = *cd.Offset
	}
	if cd.Pad != "" {
		if n := len([]rune(cd.Pad)); n != 1 {
			return c, fmt.Errorf("schemafile: line %q: cell %q: pad character must be one character, got %q", line, cd.Name, cd.Pad)
		}
		c.Pad = []rune(cd.Pad)[0]
	}
	switch cd.Align {
	case "":
		c.Align = flatskema.AlignNone
	case "left":
		c.Align = flatskema.AlignLeft
	case "right":
		c.Align = flatskema.AlignRight
	default:
		return c, fmt.Errorf("schemafile: line %q: cell %q: unknown alignment %q", line, cd.Name, cd.Align)
	}
	if cd.Trim != nil && !*cd.Trim {
		c.NoTrim = true
	}
	return c, nil
}
