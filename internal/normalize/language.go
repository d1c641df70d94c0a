package normalize

import "strings"

// languageCodes maps the language names Douban prints (and the codes hosts
// may already hold) to ISO 639-1. Codes map to themselves so an already
// normalized value stays put.
var languageCodes = map[string]string{
	"中文":    "zh",
	"汉语":    "zh",
	"简体中文":  "zh",
	"繁体中文":  "zh",
	"繁體中文":  "zh",
	"chinese": "zh",
	"zh":      "zh",
	"zh-cn":   "zh",
	"zh-tw":   "zh",
	"英文":    "en",
	"英语":    "en",
	"english": "en",
	"en":      "en",
	"日文":    "ja",
	"日语":    "ja",
	"japanese": "ja",
	"ja":       "ja",
	"韩文":    "ko",
	"韓文":    "ko",
	"korean":  "ko",
	"ko":      "ko",
	"法文":    "fr",
	"法语":    "fr",
	"french":  "fr",
	"fr":      "fr",
	"德文":    "de",
	"德语":    "de",
	"german":  "de",
	"de":      "de",
	"俄文":    "ru",
	"俄语":    "ru",
	"russian": "ru",
	"ru":      "ru",
	"西班牙文": "es",
	"西班牙语": "es",
	"spanish":  "es",
	"es":       "es",
	"意大利文": "it",
	"意大利语": "it",
	"italian":  "it",
	"it":       "it",
	"葡萄牙文": "pt",
	"葡萄牙语": "pt",
	"portuguese": "pt",
	"pt":         "pt",
}

// mapLanguage resolves a catalog language to an ISO 639-1 code. Unknown
// values pass through unchanged with ok=false so callers can flag them
// instead of dropping them.
func mapLanguage(lang string) (code string, ok bool) {
	trimmed := strings.TrimSpace(lang)
	if trimmed == "" {
		return "", true
	}
	if code, found := languageCodes[strings.ToLower(trimmed)]; found {
		return code, true
	}
	return trimmed, false
}
