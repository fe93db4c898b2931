// Package models defines the journal data model shared by the repositories
// and the store orchestrator.
package models

import (
	"sort"
	"strings"
	"time"
)

// BodyFormatPlain is the only body encoding currently written. The column
// exists so future rich formats can coexist with plain-text entries.
const BodyFormatPlain = "plain"

// Sentiment is a coarse score produced by a classifier. The default keyword
// heuristic emits {-1, 0, +1}; pluggable models may use the same scale.
type Sentiment int

const (
	SentimentNegative Sentiment = -1
	SentimentNeutral  Sentiment = 0
	SentimentPositive Sentiment = 1
)

func (s Sentiment) String() string {
	switch {
	case s < 0:
		return "negative"
	case s > 0:
		return "positive"
	default:
		return "neutral"
	}
}

// Entry is a single journal record.
//
// Invariants maintained by the store:
//   - ID is assigned once at creation and never reused.
//   - CreatedAt <= UpdatedAt.
//   - Tags are lowercase, trimmed, deduplicated and contain no empties.
//   - Sentiment is nil until first classified; once set it always reflects
//     the most recently classified Body.
type Entry struct {
	// ID is a globally unique identifier, immutable after creation.
	ID string

	// CreatedAt is set once at creation, in UTC.
	CreatedAt time.Time
	// UpdatedAt is stamped on every mutation, in UTC.
	UpdatedAt time.Time

	// Title is optional short text.
	Title string
	// Body is the entry text. Stored encrypted at rest when the cipher
	// provider is enabled.
	Body string
	// BodyFormat tags the body encoding (currently always "plain").
	BodyFormat string

	// Sentiment is the most recent classification of Body, nil if the
	// entry was never classified.
	Sentiment *Sentiment

	// Tags is a normalized set of lowercase strings.
	Tags []string

	// IsLocked marks the entry read-only for presentation layers. The
	// store does not enforce it; it is advisory metadata.
	IsLocked bool

	// Version increases by one on every successful update. Used for
	// optimistic-concurrency diagnostics, not enforced as a precondition.
	Version int64
}

// Clone returns a deep copy of the entry, safe to hand to callers that
// must not alias the store's visible list.
func (e Entry) Clone() Entry {
	c := e
	if e.Sentiment != nil {
		s := *e.Sentiment
		c.Sentiment = &s
	}
	if e.Tags != nil {
		c.Tags = append([]string(nil), e.Tags...)
	}
	return c
}

// NormalizeTags trims, lowercases, drops empties and deduplicates the given
// tags, returning a sorted set. A nil or all-empty input yields an empty,
// non-nil slice.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// HasAnyTag reports whether the entry carries at least one of the given
// normalized tags.
func (e Entry) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range e.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
