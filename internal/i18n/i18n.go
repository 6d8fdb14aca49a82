// Package i18n holds the localized UI strings and language handling for the
// supported interface languages (English, Somali, Arabic).
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultLanguage is used whenever a requested language is unknown.
const DefaultLanguage = "en"

var supported = []language.Tag{
	language.English,
	language.MustParse("so"),
	language.Arabic,
}

var matcher = language.NewMatcher(supported)

// Message keys.
const (
	MsgGenerationError     = "generation_error"
	MsgExplanationFallback = "explanation_fallback"
	MsgExplanationLoading  = "explanation_loading"
	MsgCorrect             = "correct"
	MsgIncorrect           = "incorrect"
)

var messages = map[string]map[string]string{
	"en": {
		MsgGenerationError:     "Something went wrong while creating your course. Please try again.",
		MsgExplanationFallback: "Sorry, an explanation could not be loaded right now.",
		MsgExplanationLoading:  "Loading explanation...",
		MsgCorrect:             "Correct!",
		MsgIncorrect:           "Not quite.",
	},
	"so": {
		MsgGenerationError:     "Khalad ayaa dhacay markii koorsadaada la diyaarinayay. Fadlan mar kale isku day.",
		MsgExplanationFallback: "Waan ka xunnahay, sharraxaad hadda lama heli karo.",
		MsgExplanationLoading:  "Sharraxaad ayaa soo dhacaysa...",
		MsgCorrect:             "Sax!",
		MsgIncorrect:           "Khalad.",
	},
	"ar": {
		MsgGenerationError:     "حدث خطأ أثناء إنشاء الدورة. يرجى المحاولة مرة أخرى.",
		MsgExplanationFallback: "عذراً، تعذر تحميل الشرح الآن.",
		MsgExplanationLoading:  "جارٍ تحميل الشرح...",
		MsgCorrect:             "صحيح!",
		MsgIncorrect:           "غير صحيح.",
	},
}

// Normalize maps an arbitrary language code ("en-US", "so", "ar-EG") onto one
// of the supported codes, falling back to English.
func Normalize(code string) string {
	if code == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// T returns the localized string for key in the given language, falling back
// to English for unknown languages or keys.
func T(lang, key string) string {
	table, ok := messages[Normalize(lang)]
	if !ok {
		table = messages[DefaultLanguage]
	}
	if msg, ok := table[key]; ok {
		return msg
	}
	return messages[DefaultLanguage][key]
}

// LanguageName returns the English display name of a language code, e.g.
// "en" -> "English", "so" -> "Somali". Generation prompts use this to ask for
// content "in the <name> language".
func LanguageName(code string) string {
	tag, err := language.Parse(Normalize(code))
	if err != nil {
		tag = language.English
	}
	return display.English.Languages().Name(tag)
}

// Supported returns the supported language codes in display order.
func Supported() []string {
	codes := make([]string, 0, len(supported))
	for _, tag := range supported {
		base, _ := tag.Base()
		codes = append(codes, base.String())
	}
	return codes
}
