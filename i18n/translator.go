package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "cell").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "required":
			return "必須セルに値がありません"
		case "invalid_type":
			return withData("型が不正です", data, "expected")
		case "too_short":
			return "短すぎます"
		case "too_long":
			return "長すぎます"
		case "too_small":
			return "小さすぎます"
		case "too_big":
			return "大きすぎます"
		case "pattern":
			return "パターンに一致しません"
		case "invalid_enum":
			return "許可された値ではありません"
		case "invalid_format":
			return withData("書式が不正です", data, "format")
		case "line_unmatched":
			return "一致する行タイプがありません"
		case "field_count":
			return "フィールド数が一致しません"
		case "truncated":
			return "行が途中で終わっています"
		case "compute_error":
			return "導出セルの評価に失敗しました"
		case "line_rule":
			return "行ルールに違反しています"
		case "panic":
			return "行の処理が異常終了しました"
		case "source_error":
			return "入力の読み取りに失敗しました"
		}
	default: // "en"
		switch code {
		case "required":
			return "missing mandatory value"
		case "invalid_type":
			return withData("invalid value", data, "expected")
		case "too_short":
			return "too short"
		case "too_long":
			return "too long"
		case "too_small":
			return "below minimum"
		case "too_big":
			return "above maximum"
		case "pattern":
			return "does not match pattern"
		case "invalid_enum":
			return "not an allowed value"
		case "invalid_format":
			return withData("invalid format", data, "format")
		case "line_unmatched":
			return "no matching line type"
		case "field_count":
			return "field count mismatch"
		case "truncated":
			return "line ends mid-cell"
		case "compute_error":
			return "computed cell failed"
		case "line_rule":
			return "line rule violated"
		case "panic":
			return "line processing aborted"
		case "source_error":
			return "source unreadable"
		}
	}
	return code
}

// withData appends one well-known data entry to the base message, e.g.
// "invalid value: expected integer".
func withData(base string, data map[string]string, key string) string {
	if data == nil || data[key] == "" {
		return base
	}
	return base + ": expected " + data[key]
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
