package owm

import "strings"

// Unit systems accepted by the current weather endpoint.
const (
	UnitsStandard = "standard"
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

var units = []string{UnitsStandard, UnitsMetric, UnitsImperial}

type language struct {
	code string
	name string
}

// languages is kept as a slice so that names shared by two codes
// (spanish, swedish) always resolve to the first entry.
var languages = []language{
	{"af", "afrikaans"},
	{"al", "albanian"},
	{"ar", "arabic"},
	{"az", "azerbaijani"},
	{"bg", "bulgarian"},
	{"ca", "catalan"},
	{"cz", "czech"},
	{"da", "danish"},
	{"de", "german"},
	{"el", "greek"},
	{"en", "english"},
	{"es", "spanish"},
	{"eu", "basque"},
	{"fa", "persian"},
	{"fi", "finnish"},
	{"fr", "french"},
	{"gl", "galician"},
	{"he", "hebrew"},
	{"hi", "hindi"},
	{"hr", "croatian"},
	{"hu", "hungarian"},
	{"id", "indonesian"},
	{"it", "italian"},
	{"ja", "japanese"},
	{"kr", "korean"},
	{"la", "latvian"},
	{"lt", "lithuanian"},
	{"mk", "macedonian"},
	{"no", "norwegian"},
	{"nl", "dutch"},
	{"pl", "polish"},
	{"pt", "portuguese"},
	{"ro", "romanian"},
	{"ru", "russian"},
	{"se", "swedish"},
	{"sv", "swedish"},
	{"sk", "slovak"},
	{"sl", "slovenian"},
	{"sp", "spanish"},
	{"sr", "serbian"},
	{"th", "thai"},
	{"tr", "turkish"},
	{"ua", "ukrainian"},
	{"uk", "ukranian"},
	{"vi", "vietnamese"},
	{"zu", "zulu"},
}

// ResolveUnits returns the lowercased unit system and true when s names
// one of the supported systems.
func ResolveUnits(s string) (string, bool) {
	u := strings.ToLower(strings.TrimSpace(s))
	for _, known := range units {
		if u == known {
			return u, true
		}
	}
	return "", false
}

// ResolveLanguage maps a language code or English language name to the
// code the API expects. Codes win over names.
func ResolveLanguage(s string) (string, bool) {
	l := strings.ToLower(strings.TrimSpace(s))
	if l == "" {
		return "", false
	}
	for _, lang := range languages {
		if lang.code == l {
			return lang.code, true
		}
	}
	for _, lang := range languages {
		if lang.name == l {
			return lang.code, true
		}
	}
	return "", false
}
