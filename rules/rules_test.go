package rules_test

import (
	"context"
	"testing"

	flatskema "github.com/reoring/flatskema"
	"github.com/reoring/flatskema/dsl"
	"github.com/reoring/flatskema/rules"
)

func run(t *testing.T, s *flatskema.Schema, input string) ([]flatskema.ParsedLine, error) {
	t.Helper()
	return flatskema.ParseAll(context.Background(), flatskema.ParserConfig{
		Schema: s,
		Source: flatskema.LineBytes([]byte(input)),
	})
}

func TestRequiredWith(t *testing.T) {
	s := dsl.Schema(
		dsl.Delimited("row", ',').Rule(rules.RequiredWith("discount", "reason")).Cells(
			dsl.Decimal("discount"),
			dsl.Text("reason"),
		),
	)

	if _, err := run(t, s, "5.0,loyalty"); err != nil {
		t.Fatalf("both present: %v", err)
	}
	if _, err := run(t, s, ","); err != nil {
		t.Fatalf("both absent: %v", err)
	}

	_, err := run(t, s, "5.0,")
	iss, ok := flatskema.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected 1 issue, got %v", err)
	}
	if iss[0].Cell != "reason" || iss[0].Code != flatskema.CodeLineRule || iss[0].Line != 1 {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
}

func TestMutuallyExclusive(t *testing.T) {
	s := dsl.Schema(
		dsl.Delimited("row", ',').Rule(rules.MutuallyExclusive("cash", "card")).Cells(
			dsl.Decimal("cash"),
			dsl.Decimal("card"),
		),
	)

	if _, err := run(t, s, "5.0,"); err != nil {
		t.Fatalf("one present: %v", err)
	}

	_, err := run(t, s, "5.0,3.0")
	iss, ok := flatskema.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected 1 issue, got %v", err)
	}
	if iss[0].Code != flatskema.CodeLineRule {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
}

func TestSum(t *testing.T) {
	s := dsl.Schema(
		dsl.Delimited("row", ',').Cells(
			dsl.Integer("a").Required(),
			dsl.Decimal("b").Required(),
			dsl.Computed("total", rules.Sum("a", "b")),
		),
	)
	recs, err := run(t, s, "2,0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := recs[0].Get("total"); v != 2.5 {
		t.Fatalf("total = %v, want 2.5", v)
	}
}

func TestSum_MissingCellFails(t *testing.T) {
	s := dsl.Schema(
		dsl.Delimited("row", ',').Cells(
			dsl.Integer("a"),
			dsl.Computed("total", rules.Sum("a", "b")),
		),
	)
	_, err := run(t, s, "2")
	iss, ok := flatskema.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected 1 issue, got %v", err)
	}
	if iss[0].Cell != "total" || iss[0].Code != flatskema.CodeComputeError {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
}

func TestSum_NonNumericCellFails(t *testing.T) {
	s := dsl.Schema(
		dsl.Delimited("row", ',').Cells(
			dsl.Text("a").Required(),
			dsl.Computed("total", rules.Sum("a")),
		),
	)
	_, err := run(t, s, "abc")
	iss, ok := flatskema.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Code != flatskema.CodeComputeError {
		t.Fatalf("expected compute_error, got %v", err)
	}
}

func TestConcat(t *testing.T) {
	s := dsl.Schema(
		dsl.Delimited("row", ',').Cells(
			dsl.Text("first").Required(),
			dsl.Text("last").Required(),
			dsl.Computed("full", rules.Concat(" ", "first", "last")),
		),
	)
	recs, err := run(t, s, "Jane,Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := recs[0].Get("full"); v != "Jane Doe" {
		t.Fatalf("full = %v", v)
	}
}
