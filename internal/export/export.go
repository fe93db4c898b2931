// Package export writes plaintext snapshots of journal entries for
// backup or hand-off to other tools.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/anchorapp/journal/internal/models"
)

// Record is the external shape of one exported entry. Sentiment is a
// label rather than a numeric score so the file is self-describing.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	Sentiment string    `json:"sentiment,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Locked    bool      `json:"locked,omitempty"`
}

// WriteJSON writes the entries to w as an indented JSON array, preserving
// the order given.
func WriteJSON(w io.Writer, list []models.Entry) error {
	records := make([]Record, len(list))
	for i, e := range list {
		rec := Record{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
			Title:     e.Title,
			Body:      e.Body,
			Tags:      e.Tags,
			Locked:    e.IsLocked,
		}
		if e.Sentiment != nil {
			rec.Sentiment = e.Sentiment.String()
		}
		records[i] = rec
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}
