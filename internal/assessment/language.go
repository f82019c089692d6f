package assessment

import (
	"strings"
	"unicode"
)

// Spanish-specific words that distinguish Spanish from English input.
var spanishIndicators = []string{
	"dolor", "cabeza", "estómago", "fiebre", "náuseas", "mareo", "sangre",
	"herida", "corte", "quemadura", "fractura", "emergencia",
	"médico", "ayuda", "duele", "siento", "tengo", "estoy",
	"qué", "cómo", "cuándo", "dónde", "por qué",
}

// Romanized Korean medical terms for input typed without Hangul.
var koreanRomanized = []string{
	"apa", "apun", "meori", "bae", "yeol", "gichim", "gamgi",
}

// DetectLanguage classifies text as "ko", "ja", "es" or "en". Script ranges
// win over word lists; the default is English.
func DetectLanguage(text string) string {
	for _, r := range text {
		if unicode.Is(unicode.Hangul, r) {
			return "ko"
		}
	}
	for _, r := range text {
		if unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Han, r) {
			return "ja"
		}
	}

	clean := strings.ToLower(text)
	for _, word := range spanishIndicators {
		if strings.Contains(clean, word) {
			return "es"
		}
	}
	for _, word := range koreanRomanized {
		if containsWord(clean, word) {
			return "ko"
		}
	}
	return "en"
}

// containsWord matches whole words only, so "apa" does not fire inside
// "apart".
func containsWord(text, word string) bool {
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		if field == word {
			return true
		}
	}
	return false
}
