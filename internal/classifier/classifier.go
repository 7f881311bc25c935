// Package classifier decides whether a message is unwanted. Two strategies
// implement Classifier: deterministic keyword/pattern Rules and a
// Probabilistic model score. Chain combines them with OR semantics.
package classifier

import (
	"fmt"

	"github.com/meko-christian/mail-sweeper/internal/message"
)

// Result is the verdict for one message.
type Result struct {
	Unwanted bool
	// Rule is the keyword or pattern that fired, empty otherwise.
	Rule string
	// Probability is set when the model was consulted.
	Probability *float64
}

// Reason describes why a message was classified unwanted.
func (r Result) Reason() string {
	switch {
	case r.Rule != "":
		return "rule: " + r.Rule
	case r.Probability != nil:
		return fmt.Sprintf("model: p=%.3f", *r.Probability)
	default:
		return ""
	}
}

type Classifier interface {
	Classify(c message.Content) Result
}

// Chain evaluates classifiers in order and returns the first unwanted
// verdict. When none fires the last evaluated result is returned so a model
// probability is still reported.
type Chain []Classifier

func (ch Chain) Classify(c message.Content) Result {
	var last Result
	for _, cl := range ch {
		last = cl.Classify(c)
		if last.Unwanted {
			return last
		}
	}
	return last
}
