// Package classifier maps entry text to a coarse sentiment score.
//
// The store depends only on the Classifier contract, so the keyword
// heuristic can be swapped for a higher-fidelity model without touching the
// orchestrator.
package classifier

import "github.com/anchorapp/journal/internal/models"

// Classifier scores journal text.
//
// Implementations must be side-effect free, complete in bounded time, stay
// within the Sentiment range and never fail on well-formed UTF-8 input; an
// empty string scores neutral. The error return exists for pluggable models
// with external dependencies; the store treats a failure as "sentiment
// unknown" and proceeds with the save.
type Classifier interface {
	Classify(text string) (models.Sentiment, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(text string) (models.Sentiment, error)

func (f Func) Classify(text string) (models.Sentiment, error) {
	return f(text)
}
