package journal

import (
	"context"
	"fmt"
)

// Demo content mirrors the kind of entries the app is used for; handy for
// previews and manual testing.
var (
	seedTitles = []string{
		"Morning Reflections",
		"Feeling Grateful Today",
		"Challenging Day at Work",
		"Meditation Session",
		"Celebrating Small Wins",
		"Self-Care Sunday",
	}
	seedBodies = []string{
		"Today I woke up feeling more optimistic than usual. The breathing exercises really help with my morning anxiety.",
		"Spent quality time with my family today. Feeling grateful for my support system.",
		"Had a really challenging day at work and felt overwhelmed, but I took a walk instead of spiralling.",
		"Practiced mindfulness meditation for fifteen minutes this morning. Staying centered is getting easier.",
		"Celebrated thirty days of progress today. Each day is still a choice.",
		"Feeling anxious about an upcoming presentation, focusing on what I can control.",
	}
	seedTags = [][]string{
		{"grateful", "positive"},
		{"family", "support"},
		{"work", "anxiety"},
		{"mindfulness", "meditation"},
		{"milestone", "celebration"},
		{"work", "coping"},
	}
)

// Seed adds n demo entries through the normal Add path, so they are
// classified and persisted like user entries.
func Seed(ctx context.Context, s *Store, n int) error {
	for i := 0; i < n; i++ {
		k := i % len(seedTitles)
		title := seedTitles[k]
		if i >= len(seedTitles) {
			title = fmt.Sprintf("%s #%d", title, i/len(seedTitles)+1)
		}
		if _, err := s.Add(ctx, title, seedBodies[k], seedTags[k]); err != nil {
			return fmt.Errorf("failed to seed entry %d: %w", i, err)
		}
	}
	return nil
}
