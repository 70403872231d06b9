package i18n_test

import (
	"testing"

	"github.com/reoring/flatskema/i18n"
)

func TestT_English(t *testing.T) {
	i18n.SetLanguage("en")
	if got := i18n.T("required", nil); got != "missing mandatory value" {
		t.Fatalf("T(required) = %q", got)
	}
	if got := i18n.T("invalid_type", map[string]string{"expected": "integer"}); got != "invalid value: expected integer" {
		t.Fatalf("T(invalid_type) = %q", got)
	}
}

func TestT_Japanese(t *testing.T) {
	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	if got := i18n.T("required", nil); got != "必須セルに値がありません" {
		t.Fatalf("T(required) = %q", got)
	}
}

func TestT_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	i18n.SetLanguage("fr")
	defer i18n.SetLanguage("en")
	if got := i18n.T("too_big", nil); got != "above maximum" {
		t.Fatalf("T(too_big) = %q", got)
	}
}

func TestT_UnknownCodePassesThrough(t *testing.T) {
	if got := i18n.T("mystery", nil); got != "mystery" {
		t.Fatalf("T(mystery) = %q", got)
	}
}

type upperTranslator struct{}

func (upperTranslator) Message(code string, _ map[string]string) string { return "CODE:" + code }

func TestSetTranslator(t *testing.T) {
	i18n.SetTranslator(upperTranslator{})
	defer i18n.SetTranslator(nil)
	if got := i18n.T("required", nil); got != "CODE:required" {
		t.Fatalf("T with custom translator = %q", got)
	}
}
