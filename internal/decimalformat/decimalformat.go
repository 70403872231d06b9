// Package decimalformat compiles java.text.DecimalFormat-style patterns
// (for example "#,##0.00;(#)") into regular expressions used to validate
// decimal cell text.
package decimalformat

import (
	"fmt"
	"regexp"
	"strings"
)

// Format is a compiled DecimalFormat pattern. The positive subpattern matches
// unsigned input; the negative subpattern matches input with a leading minus
// sign (the explicit negative subpattern after ';' when declared).
type Format struct {
	pattern  string
	positive *regexp.Regexp
	negative *regexp.Regexp
}

var specialChars = map[rune]struct{}{
	'\'': {}, '(': {}, ')': {}, '0': {}, '.': {}, ',': {}, '#': {}, ';': {}, '¤': {}, '%': {},
}

// Compile parses and compiles a DecimalFormat pattern. The pattern may carry
// an optional negative subpattern separated by an unquoted ';'.
func Compile(pattern string) (*Format, error) {
	subs, err := splitSubpatterns(pattern)
	if err != nil {
		return nil, err
	}
	pos := subs[0]
	neg := "-" + pos
	if len(subs) == 2 {
		neg = "-" + subs[1]
	}

	posRe, err := toRegexp(pos)
	if err != nil {
		return nil, err
	}
	negRe, err := toRegexp(neg)
	if err != nil {
		return nil, err
	}
	return &Format{pattern: pattern, positive: posRe, negative: negRe}, nil
}

// Pattern returns the source pattern.
func (f *Format) Pattern() string { return f.pattern }

// Match reports whether input conforms to either the positive or the negative
// subpattern.
func (f *Format) Match(input string) bool {
	return f.positive.MatchString(input) || f.negative.MatchString(input)
}

func splitSubpatterns(pattern string) ([]string, error) {
	inQuotes := false
	subs := []string{""}
	for _, c := range pattern {
		if c == '\'' {
			inQuotes = !inQuotes
			subs[len(subs)-1] += string(c)
			continue
		}
		if !inQuotes {
			if _, ok := specialChars[c]; !ok && c != '-' {
				return nil, fmt.Errorf("decimalformat: invalid character %q in %q", c, pattern)
			}
		}
		if c == ';' && !inQuotes {
			subs = append(subs, "")
		} else {
			subs[len(subs)-1] += string(c)
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("decimalformat: unterminated quote in %q", pattern)
	}
	if len(subs) > 2 {
		return nil, fmt.Errorf("decimalformat: more than two subpatterns in %q", pattern)
	}
	if subs[0] == "" {
		return nil, fmt.Errorf("decimalformat: missing positive subpattern in %q", pattern)
	}
	return subs, nil
}

func toRegexp(sub string) (*regexp.Regexp, error) {
	b := &strings.Builder{}
	b.WriteByte('^')
	inQuotes := false
	for _, c := range sub {
		if c == '\'' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			b.WriteString(regexp.QuoteMeta(string(c)))
			continue
		}
		switch c {
		case '0':
			b.WriteString(`\d`)
		case '#':
			b.WriteString(`\d?`)
		case ',':
			b.WriteString(`,?`)
		case '.':
			b.WriteString(`\.`)
		case '¤':
			b.WriteString(`\$`)
		case '(', ')', '-', '%':
			b.WriteString(regexp.QuoteMeta(string(c)))
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}
