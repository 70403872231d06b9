package text_test

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4/v4"

	"github.com/reoring/flatskema/source/text"
)

func readAll(t *testing.T, s *text.Scanner) []text.Line {
	t.Helper()
	var lines []text.Line
	for {
		ln, err := s.Next()
		if errors.Is(err, io.EOF) {
			return lines
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		lines = append(lines, ln)
	}
}

func TestScanner_NumbersLinesFromOne(t *testing.T) {
	lines := readAll(t, text.NewBytes([]byte("a\nb\nc")))
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if ln.Number != i+1 {
			t.Fatalf("line %d numbered %d", i, ln.Number)
		}
	}
	if lines[2].Text != "c" {
		t.Fatalf("last line = %q", lines[2].Text)
	}
}

func TestScanner_DefaultSeparatorToleratesCRLF(t *testing.T) {
	lines := readAll(t, text.NewBytes([]byte("a\r\nb\r\nc")))
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Text != "a" || lines[1].Text != "b" {
		t.Fatalf("CR not stripped: %q, %q", lines[0].Text, lines[1].Text)
	}
}

func TestScanner_TrailingSeparatorYieldsNoEmptyLine(t *testing.T) {
	lines := readAll(t, text.NewBytes([]byte("a\nb\n")))
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

func TestScanner_EmptyInput(t *testing.T) {
	if lines := readAll(t, text.NewBytes(nil)); len(lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(lines))
	}
}

func TestScanner_CustomMultiByteSeparator(t *testing.T) {
	lines := readAll(t, text.NewBytes([]byte("a||b||c"), text.WithSeparator("||")))
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[1].Text != "b" {
		t.Fatalf("middle line = %q", lines[1].Text)
	}
}

func TestScanner_EscapedSeparatorSpec(t *testing.T) {
	lines := readAll(t, text.NewBytes([]byte("a\r\nb\r\nc"), text.WithSeparator(`\r\n`)))
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0].Text != "a" {
		t.Fatalf("first line = %q", lines[0].Text)
	}
}

func TestScanner_EmptyLinesBetweenSeparatorsAreKept(t *testing.T) {
	lines := readAll(t, text.NewBytes([]byte("a\n\nb")))
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[1].Text != "" {
		t.Fatalf("middle line = %q", lines[1].Text)
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("x\ny"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := text.NewFile(path)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	defer s.Close()
	if lines := readAll(t, s); len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

func TestNewFile_Missing(t *testing.T) {
	if _, err := text.NewFile(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewLZ4Reader(t *testing.T) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write([]byte("a\nb\nc")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	lines := readAll(t, text.NewLZ4Reader(&buf))
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[2].Text != "c" {
		t.Fatalf("last line = %q", lines[2].Text)
	}
}

func TestNewLZ4File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt.lz4")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := lz4.NewWriter(f)
	if _, err := w.Write([]byte("x\ny")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	s, err := text.NewLZ4File(path)
	if err != nil {
		t.Fatalf("NewLZ4File: %v", err)
	}
	defer s.Close()
	if lines := readAll(t, s); len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

func TestDecodeSeparator(t *testing.T) {
	cases := []struct {
		spec, want string
	}{
		{`\n`, "\n"},
		{`\r\n`, "\r\n"},
		{`\t`, "\t"},
		{`\f`, "\f"},
		{`\0`, "\x00"},
		{"||", "||"},
		{`\x`, "x"},
	}
	for _, c := range cases {
		if got := text.DecodeSeparator(c.spec); got != c.want {
			t.Errorf("DecodeSeparator(%q) = %q, want %q", c.spec, got, c.want)
		}
	}
}
