package spammodel

import (
	"fmt"
	"strings"
)

// Evaluation is a binary confusion matrix with spam as the positive class.
type Evaluation struct {
	TruePositive  int
	FalsePositive int
	TrueNegative  int
	FalseNegative int
}

// Add records one prediction.
func (e *Evaluation) Add(actualSpam, predictedSpam bool) {
	switch {
	case actualSpam && predictedSpam:
		e.TruePositive++
	case actualSpam:
		e.FalseNegative++
	case predictedSpam:
		e.FalsePositive++
	default:
		e.TrueNegative++
	}
}

func (e *Evaluation) Total() int {
	return e.TruePositive + e.FalsePositive + e.TrueNegative + e.FalseNegative
}

func (e *Evaluation) Accuracy() float64 {
	return ratio(e.TruePositive+e.TrueNegative, e.Total())
}

type classMetrics struct {
	precision, recall, f1 float64
	support               int
}

func metrics(tp, fp, fn int) classMetrics {
	p := ratio(tp, tp+fp)
	r := ratio(tp, tp+fn)
	var f1 float64
	if p+r > 0 {
		f1 = 2 * p * r / (p + r)
	}
	return classMetrics{precision: p, recall: r, f1: f1, support: tp + fn}
}

// String renders a per-class precision/recall/F1 table.
func (e *Evaluation) String() string {
	hamM := metrics(e.TrueNegative, e.FalseNegative, e.FalsePositive)
	spamM := metrics(e.TruePositive, e.FalsePositive, e.FalseNegative)

	var b strings.Builder
	fmt.Fprintf(&b, "%10s %10s %10s %10s %10s\n", "", "precision", "recall", "f1-score", "support")
	for _, row := range []struct {
		name string
		m    classMetrics
	}{{"ham", hamM}, {"spam", spamM}} {
		fmt.Fprintf(&b, "%10s %10.2f %10.2f %10.2f %10d\n", row.name, row.m.precision, row.m.recall, row.m.f1, row.m.support)
	}
	fmt.Fprintf(&b, "\n%10s %32.2f %10d\n", "accuracy", e.Accuracy(), e.Total())
	return b.String()
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
