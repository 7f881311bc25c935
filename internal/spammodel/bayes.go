package spammodel

import (
	"errors"
	"math"
)

const (
	ham  = 0
	spam = 1
)

// NaiveBayes is a two-class multinomial naive Bayes model over TF-IDF
// features with additive smoothing.
type NaiveBayes struct {
	Alpha          float64      `json:"alpha"`
	ClassLogPrior  [2]float64   `json:"class_log_prior"`
	FeatureLogProb [2][]float64 `json:"feature_log_prob"`
}

var errOneClass = errors.New("training data needs both ham and spam samples")

// FitNaiveBayes trains on vectors X with labels y (true = spam).
func FitNaiveBayes(X []Vector, y []bool, features int, alpha float64) (*NaiveBayes, error) {
	var classCount [2]float64
	var featureCount [2][]float64
	featureCount[ham] = make([]float64, features)
	featureCount[spam] = make([]float64, features)

	for i, vec := range X {
		c := ham
		if y[i] {
			c = spam
		}
		classCount[c]++
		for _, t := range vec {
			featureCount[c][t.Index] += t.Value
		}
	}
	if classCount[ham] == 0 || classCount[spam] == 0 {
		return nil, errOneClass
	}

	nb := &NaiveBayes{Alpha: alpha}
	total := classCount[ham] + classCount[spam]
	for c := range classCount {
		nb.ClassLogPrior[c] = math.Log(classCount[c] / total)

		var sum float64
		for _, fc := range featureCount[c] {
			sum += fc + alpha
		}
		logSum := math.Log(sum)

		nb.FeatureLogProb[c] = make([]float64, features)
		for j, fc := range featureCount[c] {
			nb.FeatureLogProb[c][j] = math.Log(fc+alpha) - logSum
		}
	}
	return nb, nil
}

// SpamProbability returns P(spam | x) in [0,1].
func (nb *NaiveBayes) SpamProbability(x Vector) float64 {
	var jll [2]float64
	for c := range jll {
		jll[c] = nb.ClassLogPrior[c]
		for _, t := range x {
			if t.Index < len(nb.FeatureLogProb[c]) {
				jll[c] += t.Value * nb.FeatureLogProb[c][t.Index]
			}
		}
	}

	// log-sum-exp keeps this stable for long documents
	hi := math.Max(jll[ham], jll[spam])
	logZ := hi + math.Log(math.Exp(jll[ham]-hi)+math.Exp(jll[spam]-hi))
	return math.Exp(jll[spam] - logZ)
}
