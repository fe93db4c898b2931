package classifier

import (
	"strings"

	"github.com/anchorapp/journal/internal/models"
)

// Word lists tuned to the vocabulary of personal journal entries.
var (
	positiveWords = []string{
		"grateful", "gratitude", "calm", "happy", "hopeful", "optimistic",
		"proud", "progress", "peaceful", "joy", "love", "strong",
		"celebrat", "victor", "growth", "better", "relaxed", "mindful",
	}
	negativeWords = []string{
		"hopeless", "anxious", "anxiety", "sad", "angry", "afraid",
		"overwhelmed", "stressed", "craving", "relapse", "lonely",
		"depressed", "tired", "worthless", "panic", "fear", "setback",
	}
)

// Keyword is the default deterministic classifier: it lowercases the input,
// counts substring occurrences from a fixed positive and negative word
// list, and returns the sign of the difference. A tie (including empty
// input) is neutral.
type Keyword struct {
	positive []string
	negative []string
}

// NewKeyword returns a Keyword classifier with the default word lists.
func NewKeyword() *Keyword {
	return &Keyword{positive: positiveWords, negative: negativeWords}
}

func (k *Keyword) Classify(text string) (models.Sentiment, error) {
	if text == "" {
		return models.SentimentNeutral, nil
	}

	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range k.positive {
		pos += strings.Count(lower, w)
	}
	for _, w := range k.negative {
		neg += strings.Count(lower, w)
	}

	switch {
	case pos > neg:
		return models.SentimentPositive, nil
	case neg > pos:
		return models.SentimentNegative, nil
	default:
		return models.SentimentNeutral, nil
	}
}
