package flatskema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodePattern       = "pattern"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidFormat = "invalid_format"
	// Line-level shapes
	CodeLineUnmatched = "line_unmatched"
	CodeFieldCount    = "field_count"
	CodeTruncated     = "truncated"
	// Extension points and degraded workers
	CodeComputeError = "compute_error"
	CodeLineRule     = "line_rule"
	CodePanic        = "panic"
	// Source failures (fatal to the run in all-lines mode)
	CodeSourceError = "source_error"
)

// Issue represents a single validation entry tied to one input line.
type Issue struct {
	Line    int    // 1-based line number in the source.
	Cell    string // Cell name; empty for line-level issues such as line_unmatched.
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1, "max":10, "got":42})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
// Within ParseAll results it is ordered by ascending line number and, within a
// line, by rule evaluation order.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Cell != "" {
			fmt.Fprintf(b, "%s at line %d cell %s", it.Code, it.Line, it.Cell)
		} else {
			fmt.Fprintf(b, "%s at line %d", it.Code, it.Line)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// sortByLine orders issues by ascending line number. The sort is stable so the
// per-line rule order produced by the extractor is preserved.
func sortByLine(iss Issues) {
	sort.SliceStable(iss, func(i, j int) bool { return iss[i].Line < iss[j].Line })
}

// SchemaError reports a malformed or self-contradictory schema. It is returned
// by Compile (and by the parse entry points before any line is read).
type SchemaError struct {
	LineType string // Offending line type, when known.
	Cell     string // Offending cell, when known.
	Reason   string
}

func (e *SchemaError) Error() string {
	b := &strings.Builder{}
	b.WriteString("flatskema: schema")
	if e.LineType != "" {
		fmt.Fprintf(b, ": line %q", e.LineType)
	}
	if e.Cell != "" {
		fmt.Fprintf(b, ": cell %q", e.Cell)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func schemaErrf(lineType, cell, format string, args ...any) *SchemaError {
	return &SchemaError{LineType: lineType, Cell: cell, Reason: fmt.Sprintf(format, args...)}
}
