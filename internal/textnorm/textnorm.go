// Package textnorm turns raw message text into the token stream the spam
// model was trained on: lowercase ASCII letters, no stopwords, nouns folded
// to their singular form.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer is safe for concurrent use.
type Normalizer struct {
	stopwords map[string]struct{}
}

// New returns a Normalizer using the English stopword list.
func New() *Normalizer {
	sw := make(map[string]struct{}, len(englishStopwords))
	for _, w := range englishStopwords {
		sw[w] = struct{}{}
	}
	return &Normalizer{stopwords: sw}
}

// Normalize returns the space separated tokens of text.
func (n *Normalizer) Normalize(text string) string {
	return strings.Join(n.Tokens(text), " ")
}

// Tokens lowercases text, strips accents and everything that is not an ASCII
// letter or whitespace, drops stopwords and lemmatizes what is left.
func (n *Normalizer) Tokens(text string) []string {
	folded := fold(strings.ToLower(text))

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, folded)

	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := n.stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, Lemmatize(f))
	}
	return tokens
}

func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
