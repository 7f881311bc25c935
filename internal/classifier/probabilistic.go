package classifier

import "github.com/meko-christian/mail-sweeper/internal/message"

// DefaultThreshold is the spam probability at or above which a message is
// unwanted.
const DefaultThreshold = 0.8

// Normalizer prepares body text for the model.
type Normalizer interface {
	Normalize(text string) string
}

// Scorer returns a spam probability in [0,1] for normalized text.
type Scorer interface {
	Probability(normalized string) float64
}

// Probabilistic is the trained-model stage. It only reads the body.
type Probabilistic struct {
	Normalizer Normalizer
	Scorer     Scorer
	Threshold  float64
}

func (p *Probabilistic) Classify(c message.Content) Result {
	prob := p.Scorer.Probability(p.Normalizer.Normalize(c.BodyText))
	return Result{Unwanted: prob >= p.Threshold, Probability: &prob}
}
