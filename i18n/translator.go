package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "type_mismatch":
			if e := data["expected"]; e != "" {
				return "型が不正です (期待: " + e + ")"
			}
			return "型が不正です"
		case "unknown_variant":
			return "未知の列挙値です"
		case "invalid_bytes":
			return "base64 として不正です"
		case "duplicate_field":
			return "フィールドが重複しています"
		case "unknown_field":
			return "未知のフィールドです"
		case "missing_field":
			return "必須フィールドが不足しています"
		case "invalid_enum_value":
			return "列挙型に対応する名前がありません"
		case "invalid_value":
			return "値を JSON で表現できません"
		case "parse_error":
			return "解析エラー"
		case "too_deep":
			return "ネストが深すぎます"
		case "truncated":
			return "打ち切られました"
		}
	default: // "en"
		switch code {
		case "type_mismatch":
			if e := data["expected"]; e != "" {
				return "invalid type, expected " + e
			}
			return "invalid type"
		case "unknown_variant":
			return "unknown enum variant"
		case "invalid_bytes":
			return "invalid base64 bytes"
		case "duplicate_field":
			return "duplicate field"
		case "unknown_field":
			return "unknown field"
		case "missing_field":
			return "missing field"
		case "invalid_enum_value":
			return "enum value has no name"
		case "invalid_value":
			return "value cannot be represented in JSON"
		case "parse_error":
			return "parse error"
		case "too_deep":
			return "nesting too deep"
		case "truncated":
			return "truncated"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
