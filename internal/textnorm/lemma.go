package textnorm

import "strings"

var irregularNouns = map[string]string{
	"children": "child",
	"feet":     "foot",
	"geese":    "goose",
	"men":      "man",
	"women":    "woman",
	"mice":     "mouse",
	"people":   "person",
	"teeth":    "tooth",
	"data":     "datum",
}

// Words that end like plurals but are not.
var invariantNouns = map[string]struct{}{
	"news": {}, "series": {}, "species": {}, "bus": {}, "gas": {},
	"plus": {}, "bonus": {}, "status": {}, "virus": {}, "campus": {},
	"this": {}, "us": {}, "yes": {}, "pass": {}, "less": {}, "always": {},
}

// Lemmatize folds an English noun to its singular form. Words it does not
// recognise as plurals are returned unchanged.
func Lemmatize(word string) string {
	if len(word) <= 3 {
		return word
	}
	if base, ok := irregularNouns[word]; ok {
		return base
	}
	if _, ok := invariantNouns[word]; ok {
		return word
	}

	switch {
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"), strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "sses"),
		strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "ches"),
		strings.HasSuffix(word, "xes"),
		strings.HasSuffix(word, "zes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}
