package flatskema

import (
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/reoring/flatskema/i18n"
)

// process takes one raw line through the full per-line state machine:
// classify, extract, convert, validate. It never fails the run; every problem
// becomes an issue batch for this line number. Lines are independent of each
// other, which is what makes concurrent dispatch safe.
func (s *Schema) process(num int, raw string) LineResult {
	idx := s.classify(raw)
	if idx < 0 {
		return LineResult{Line: num, Issues: Issues{{
			Line: num, Code: CodeLineUnmatched, Message: i18n.T(CodeLineUnmatched, nil),
		}}}
	}
	lt := &s.Lines[idx]

	rec, iss := lt.extract(num, raw)
	if len(iss) == 0 {
		iss = append(iss, lt.computeCells(num, rec)...)
	}
	if len(iss) == 0 {
		iss = append(iss, lt.applyRules(num, rec)...)
	}
	if len(iss) > 0 {
		return LineResult{Line: num, Issues: iss}
	}
	return LineResult{Line: num, Record: rec}
}

// extract splits the raw line into cell texts and validates each one.
// Validation is exhaustive: a failing cell does not stop extraction of the
// remaining cells, and one cell may accumulate several issues.
func (lt *LineType) extract(num int, raw string) (*ParsedLine, Issues) {
	if lt.Kind == FixedWidth {
		return lt.extractFixed(num, raw)
	}
	return lt.extractDelimited(num, raw)
}

func (lt *LineType) extractFixed(num int, raw string) (*ParsedLine, Issues) {
	rec := newParsedLine(num, lt.Name, len(lt.Cells))
	var iss Issues

	reps := 1
	if lt.Occurs == OccursRepeat && lt.width > 0 {
		reps = len(raw) / lt.width
		if rem := len(raw) % lt.width; rem != 0 {
			iss = append(iss, Issue{
				Line: num, Code: CodeTruncated,
				Message: i18n.T(CodeTruncated, nil),
				Params:  map[string]any{"blockWidth": lt.width, "remainder": rem},
			})
		}
	}
	for rep := 0; rep < reps; rep++ {
		base := rep * lt.width
		for i := range lt.Cells {
			c := &lt.Cells[i]
			if c.Compute != nil {
				continue
			}
			name := c.Name
			if rep > 0 {
				name = fmt.Sprintf("%s.%d", c.Name, rep+1)
			}
			slice := ""
			if base+c.Offset+c.Width <= len(raw) {
				slice = raw[base+c.Offset : base+c.Offset+c.Width]
			}
			iss = append(iss, c.validate(num, name, slice, rec)...)
		}
	}
	return rec, iss
}

func (lt *LineType) extractDelimited(num int, raw string) (*ParsedLine, Issues) {
	rec := newParsedLine(num, lt.Name, len(lt.Cells))
	var iss Issues

	fields, err := lt.splitFields(raw)
	if err != nil {
		return rec, Issues{{
			Line: num, Code: CodeFieldCount,
			Message: i18n.T(CodeFieldCount, nil), Cause: err,
		}}
	}
	want := 0
	for i := range lt.Cells {
		if lt.Cells[i].Compute == nil {
			want++
		}
	}
	if len(fields) != want {
		iss = append(iss, Issue{
			Line: num, Code: CodeFieldCount,
			Message: i18n.T(CodeFieldCount, nil),
			Params:  map[string]any{"expected": want, "got": len(fields)},
		})
	}
	pos := 0
	for i := range lt.Cells {
		c := &lt.Cells[i]
		if c.Compute != nil {
			continue
		}
		text := ""
		if pos < len(fields) {
			text = fields[pos]
		}
		pos++
		iss = append(iss, c.validate(num, c.Name, text, rec)...)
	}
	return rec, iss
}

// splitFields splits a delimited line, respecting quoting when declared.
func (lt *LineType) splitFields(raw string) ([]string, error) {
	if !lt.Quoted {
		return strings.Split(raw, string(lt.Separator)), nil
	}
	r := csv.NewReader(strings.NewReader(raw))
	r.Comma = lt.Separator
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// validate applies the cell's rule set to the extracted text and, when the
// value survives conversion, stores it in the record. Rule order: required ->
// length bounds -> pattern -> enum -> type conversion -> numeric range. All
// failures are collected.
func (c *Cell) validate(num int, name, text string, rec *ParsedLine) Issues {
	value := c.trimmed(text)
	if value == "" {
		if c.Required {
			return Issues{{Line: num, Cell: name, Code: CodeRequired, Message: i18n.T(CodeRequired, nil)}}
		}
		// Optional and absent: no value, no issue.
		return nil
	}
	if c.NoTrim {
		value = text
	}

	var iss Issues
	if c.MinLen > 0 && len(value) < c.MinLen {
		iss = append(iss, Issue{
			Line: num, Cell: name, Code: CodeTooShort, Message: i18n.T(CodeTooShort, nil),
			Params: map[string]any{"minLength": c.MinLen, "got": len(value)},
		})
	}
	if c.MaxLen > 0 && len(value) > c.MaxLen {
		iss = append(iss, Issue{
			Line: num, Cell: name, Code: CodeTooLong, Message: i18n.T(CodeTooLong, nil),
			Params: map[string]any{"maxLength": c.MaxLen, "got": len(value)},
		})
	}
	if c.re != nil && !c.re.MatchString(value) {
		iss = append(iss, Issue{
			Line: num, Cell: name, Code: CodePattern, Message: i18n.T(CodePattern, nil),
			Params: map[string]any{"pattern": c.Pattern},
		})
	}
	if len(c.Enum) > 0 && !slices.Contains(c.Enum, value) {
		iss = append(iss, Issue{
			Line: num, Cell: name, Code: CodeInvalidEnum, Message: i18n.T(CodeInvalidEnum, nil),
			Params: map[string]any{"allowed": c.Enum},
		})
	}

	typed, convIss := c.convert(num, name, value)
	iss = append(iss, convIss...)
	if len(iss) == 0 {
		rec.put(name, typed)
	}
	return iss
}

// trimmed strips the pad character from the padded side. It is also the
// presence check: a cell whose slice is nothing but padding has no value.
func (c *Cell) trimmed(s string) string {
	cut := string(c.Pad)
	switch c.Align {
	case AlignLeft:
		return strings.TrimRight(s, cut)
	case AlignRight:
		return strings.TrimLeft(s, cut)
	default:
		return strings.Trim(s, cut)
	}
}

// convert applies the semantic type conversion and the numeric range bounds.
func (c *Cell) convert(num int, name, text string) (any, Issues) {
	switch c.Type {
	case TypeText:
		return text, nil
	case TypeInteger:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, Issues{{
				Line: num, Cell: name, Code: CodeInvalidType,
				Message: i18n.T(CodeInvalidType, map[string]string{"expected": "integer"}),
				Cause:   err, Params: map[string]any{"expected": "integer", "got": text},
			}}
		}
		return v, c.checkRange(num, name, float64(v))
	case TypeDecimal:
		var iss Issues
		numText := normalizeDecimal(text)
		if c.df != nil {
			if !c.df.Match(text) {
				iss = append(iss, Issue{
					Line: num, Cell: name, Code: CodeInvalidFormat,
					Message: i18n.T(CodeInvalidFormat, map[string]string{"format": c.Format}),
					Params:  map[string]any{"format": c.Format, "got": text},
				})
			}
			// A pattern may admit the parenthesized-negative style ("-(5)"
			// for "0;(0)"); reduce it to a plain leading minus.
			numText = strings.ReplaceAll(strings.ReplaceAll(numText, "(", ""), ")", "")
		}
		v, err := strconv.ParseFloat(numText, 64)
		if err != nil {
			iss = append(iss, Issue{
				Line: num, Cell: name, Code: CodeInvalidType,
				Message: i18n.T(CodeInvalidType, map[string]string{"expected": "decimal"}),
				Cause:   err, Params: map[string]any{"expected": "decimal", "got": text},
			})
			return nil, iss
		}
		return v, append(iss, c.checkRange(num, name, v)...)
	case TypeBool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return nil, Issues{{
				Line: num, Cell: name, Code: CodeInvalidType,
				Message: i18n.T(CodeInvalidType, map[string]string{"expected": "boolean"}),
				Cause:   err, Params: map[string]any{"expected": "boolean", "got": text},
			}}
		}
		return v, nil
	case TypeDate:
		v, err := time.Parse(c.Format, text)
		if err != nil {
			return nil, Issues{{
				Line: num, Cell: name, Code: CodeInvalidFormat,
				Message: i18n.T(CodeInvalidFormat, map[string]string{"format": c.Format}),
				Cause:   err, Params: map[string]any{"format": c.Format, "got": text},
			}}
		}
		return v, nil
	default:
		return text, nil
	}
}

func (c *Cell) checkRange(num int, name string, v float64) Issues {
	var iss Issues
	if c.Min != nil && v < *c.Min {
		iss = append(iss, Issue{
			Line: num, Cell: name, Code: CodeTooSmall, Message: i18n.T(CodeTooSmall, nil),
			Params: map[string]any{"min": *c.Min, "got": v},
		})
	}
	if c.Max != nil && v > *c.Max {
		iss = append(iss, Issue{
			Line: num, Cell: name, Code: CodeTooBig, Message: i18n.T(CodeTooBig, nil),
			Params: map[string]any{"max": *c.Max, "got": v},
		})
	}
	return iss
}

// normalizeDecimal drops formatting characters a DecimalFormat pattern may
// admit so the numeric value can still be parsed and range-checked.
func normalizeDecimal(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '$', '%', ' ':
			return -1
		}
		return r
	}, s)
}

// computeCells runs derived cells once the declared cells validated cleanly.
// A failing evaluator degrades to a compute_error issue for this line only.
func (lt *LineType) computeCells(num int, rec *ParsedLine) Issues {
	var iss Issues
	for i := range lt.Cells {
		c := &lt.Cells[i]
		if c.Compute == nil {
			continue
		}
		v, err := c.Compute(rec)
		if err != nil {
			iss = append(iss, Issue{
				Line: num, Cell: c.Name, Code: CodeComputeError,
				Message: i18n.T(CodeComputeError, nil), Cause: err,
			})
			continue
		}
		rec.put(c.Name, v)
	}
	return iss
}

// applyRules evaluates cross-cell line rules on a valid record.
func (lt *LineType) applyRules(num int, rec *ParsedLine) Issues {
	var iss Issues
	for _, rule := range lt.Rules {
		for _, it := range rule(rec) {
			it.Line = num
			if it.Code == "" {
				it.Code = CodeLineRule
			}
			if it.Message == "" {
				it.Message = i18n.T(it.Code, nil)
			}
			iss = append(iss, it)
		}
	}
	return iss
}
