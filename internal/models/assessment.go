package models

import "time"

// RiskLevel buckets an assessment score for presentation.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// RiskAssessment is a self-reported check-in recorded alongside journal
// entries. It lives in the same database but is not part of the journal
// store's transactional surface.
type RiskAssessment struct {
	ID        string
	Score     int // 1..10
	Reason    string
	CreatedAt time.Time
}

// Level derives the presentation bucket from the score: 1-3 low, 4-6
// moderate, 7-10 high.
func (a RiskAssessment) Level() RiskLevel {
	switch {
	case a.Score <= 3:
		return RiskLow
	case a.Score <= 6:
		return RiskModerate
	default:
		return RiskHigh
	}
}
