package spammodel

import (
	"math"
	"sort"
	"strings"
)

// Term is one non-zero entry of a sparse document vector.
type Term struct {
	Index int
	Value float64
}

// Vector is a sparse, index-ordered document vector.
type Vector []Term

// Vectorizer maps normalized text onto l2-normalized TF-IDF vectors using
// smoothed inverse document frequencies.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

// analyze keeps tokens of two or more characters.
func analyze(text string) []string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

// FitVectorizer learns the vocabulary and IDF weights of docs.
func FitVectorizer(docs []string) *Vectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range analyze(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		Vocabulary: make(map[string]int, len(terms)),
		IDF:        make([]float64, len(terms)),
	}
	n := float64(len(docs))
	for i, t := range terms {
		v.Vocabulary[t] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return v
}

// Features returns the number of vocabulary terms.
func (v *Vectorizer) Features() int {
	return len(v.IDF)
}

// Transform vectorizes one normalized document. Unknown terms are ignored.
func (v *Vectorizer) Transform(text string) Vector {
	counts := make(map[int]float64)
	for _, tok := range analyze(text) {
		if idx, ok := v.Vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	vec := make(Vector, 0, len(counts))
	var norm float64
	for idx, tf := range counts {
		w := tf * v.IDF[idx]
		vec = append(vec, Term{Index: idx, Value: w})
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i].Value /= norm
		}
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].Index < vec[j].Index })
	return vec
}
