package translation

import (
	"github.com/leonelquinteros/gotext"
)

func GetLanguage() string {
	lang := gotext.GetLanguage()

	if lang == "und" || lang == "" {
		return "en"
	}

	return lang
}

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}

// TranslateN picks the singular or plural form for n.
func TranslateN(msgID, pluralID string, n int, vars ...interface{}) string {
	return gotext.GetN(msgID, pluralID, n, vars...)
}
