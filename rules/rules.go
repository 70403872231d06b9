// Package rules provides composable cross-cell line rules and computed-cell
// evaluators for flatskema line types. Rules run on otherwise valid lines;
// their findings fold into that line's issue batch.
package rules

import (
	"fmt"
	"strings"

	flatskema "github.com/reoring/flatskema"
)

// RequiredWith requires other to carry a value whenever cell does.
func RequiredWith(cell, other string) flatskema.LineRule {
	return func(rec *flatskema.ParsedLine) []flatskema.Issue {
		if _, ok := rec.Get(cell); !ok {
			return nil
		}
		if _, ok := rec.Get(other); ok {
			return nil
		}
		return []flatskema.Issue{{
			Cell:    other,
			Code:    flatskema.CodeLineRule,
			Message: fmt.Sprintf("%s is required when %s is present", other, cell),
		}}
	}
}

// MutuallyExclusive rejects lines where more than one of the named cells
// carries a value.
func MutuallyExclusive(cells ...string) flatskema.LineRule {
	return func(rec *flatskema.ParsedLine) []flatskema.Issue {
		var present []string
		for _, name := range cells {
			if _, ok := rec.Get(name); ok {
				present = append(present, name)
			}
		}
		if len(present) <= 1 {
			return nil
		}
		return []flatskema.Issue{{
			Code:    flatskema.CodeLineRule,
			Message: fmt.Sprintf("cells %s are mutually exclusive", strings.Join(present, ", ")),
		}}
	}
}

// Sum returns a computed-cell evaluator that adds the named numeric cells.
// Integer and decimal values are accepted; anything else fails the
// evaluation.
func Sum(cells ...string) flatskema.ComputeFunc {
	return func(rec *flatskema.ParsedLine) (any, error) {
		total := 0.0
		for _, name := range cells {
			v, ok := rec.Get(name)
			if !ok {
				return nil, fmt.Errorf("cell %q has no value", name)
			}
			switch n := v.(type) {
			case int64:
				total += float64(n)
			case float64:
				total += n
			default:
				return nil, fmt.Errorf("cell %q is not numeric (%T)", name, v)
			}
		}
		return total, nil
	}
}

// Concat returns a computed-cell evaluator that joins the named cells' string
// forms with sep.
func Concat(sep string, cells ...string) flatskema.ComputeFunc {
	return func(rec *flatskema.ParsedLine) (any, error) {
		parts := make([]string, 0, len(cells))
		for _, name := range cells {
			v, ok := rec.Get(name)
			if !ok {
				return nil, fmt.Errorf("cell %q has no value", name)
			}
			parts = append(parts, fmt.Sprint(v))
		}
		return strings.Join(parts, sep), nil
	}
}
