package taxonomy

import "golang.org/x/text/language"

// Locale selects the label language.
type Locale uint8

const (
	English Locale = iota
	French
)

var supported = []language.Tag{language.English, language.French}

var matcher = language.NewMatcher(supported)

// ParseLocale resolves a BCP 47 string ("fr-CA", "en") or an Accept-Language
// header value to a supported locale. Anything unsupported falls back to English.
func ParseLocale(s string) Locale {
	if s == "" {
		return English
	}
	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return English
	}
	return Locale(idx)
}

// String returns the BCP 47 base tag.
func (l Locale) String() string {
	if l == French {
		return "fr"
	}
	return "en"
}

var labels = map[Type][2]string{
	Group:       {"Group", "Bloc"},
	Process:     {"Process", "Phase"},
	Standard:    {"Standard", "Norme"},
	Risk:        {"Risk", "Risque"},
	Deliverable: {"Deliverable", "Livrable"},
	Tool:        {"Tool", "Outil"},
	Skill:       {"Skill", "Compétence"},
}

// LabelOf returns the human label of t. Unknown types are labelled "Other".
func LabelOf(t Type, l Locale) string {
	if pair, ok := labels[t]; ok {
		return pair[l.index()]
	}
	if l == French {
		return "Autre"
	}
	return "Other"
}

// Text picks the English or French variant of a UI string.
func (l Locale) Text(en, fr string) string {
	if l == French {
		return fr
	}
	return en
}

func (l Locale) index() int {
	if l == French {
		return 1
	}
	return 0
}
