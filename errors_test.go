package flatskema_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	flatskema "github.com/reoring/flatskema"
)

func TestIssues_ErrorSummarizesFirstFew(t *testing.T) {
	iss := flatskema.Issues{
		{Line: 1, Cell: "a", Code: flatskema.CodeRequired},
		{Line: 2, Code: flatskema.CodeLineUnmatched},
		{Line: 3, Cell: "b", Code: flatskema.CodePattern},
		{Line: 4, Cell: "c", Code: flatskema.CodeTooBig},
	}
	msg := iss.Error()
	if !strings.Contains(msg, "required at line 1 cell a") {
		t.Fatalf("missing first issue: %q", msg)
	}
	if !strings.Contains(msg, "line_unmatched at line 2") {
		t.Fatalf("missing cell-less issue: %q", msg)
	}
	if !strings.Contains(msg, "(total 4)") {
		t.Fatalf("missing total: %q", msg)
	}
	if strings.Contains(msg, "too_big") {
		t.Fatalf("fourth issue should be elided: %q", msg)
	}
}

func TestIssues_EmptyError(t *testing.T) {
	if got := (flatskema.Issues{}).Error(); got != "" {
		t.Fatalf("empty Issues Error() = %q", got)
	}
}

func TestAsIssues(t *testing.T) {
	iss := flatskema.Issues{{Line: 1, Code: flatskema.CodeRequired}}
	wrapped := fmt.Errorf("run failed: %w", iss)
	got, ok := flatskema.AsIssues(wrapped)
	if !ok || len(got) != 1 {
		t.Fatalf("AsIssues(wrapped) = %v, %v", got, ok)
	}
	if _, ok := flatskema.AsIssues(errors.New("plain")); ok {
		t.Fatal("plain error must not unwrap to Issues")
	}
	if _, ok := flatskema.AsIssues(nil); ok {
		t.Fatal("nil error must not unwrap to Issues")
	}
}

func TestAppendIssues(t *testing.T) {
	got := flatskema.AppendIssues(nil, flatskema.Issue{Line: 1, Code: flatskema.CodeRequired})
	if len(got) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(got))
	}
	got = flatskema.AppendIssues(got, flatskema.Issue{Line: 2, Code: flatskema.CodePattern})
	if len(got) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(got))
	}
}

func TestSchemaError_Message(t *testing.T) {
	s := &flatskema.Schema{Lines: []flatskema.LineType{{Name: "A"}}}
	err := s.Compile()
	var se *flatskema.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if se.LineType != "A" {
		t.Fatalf("LineType = %q", se.LineType)
	}
	if !strings.Contains(se.Error(), `line "A"`) {
		t.Fatalf("Error() = %q", se.Error())
	}
}
