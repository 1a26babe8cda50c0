// Package badges awards achievement badges from an athlete's analysis
// history. Rules are evaluated over persisted assessments only, so a
// badge never depends on in-flight jobs.
package badges

// Rule thresholds.
const (
	grinderAnalyses   = 10
	takedownStreak    = 3
	dominantOverall   = 90
	escapeArtistCount = 3
)

type Badge struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AssessmentFacts is the slice of an assessment that badge rules read.
type AssessmentFacts struct {
	OverallScore    int
	TakedownsScored int
	Escapes         int
	FirstHalfScore  int
	SecondHalfScore int
}

// Evaluate returns every badge the history earns, in a fixed order so
// repeated calls render identically.
func Evaluate(history []AssessmentFacts) []Badge {
	earned := make([]Badge, 0, 6)
	if len(history) == 0 {
		return earned
	}

	earned = append(earned, Badge{
		Code:        "first_analysis",
		Name:        "First Analysis",
		Description: "Completed a first match analysis.",
	})

	if len(history) >= grinderAnalyses {
		earned = append(earned, Badge{
			Code:        "grinder",
			Name:        "Grinder",
			Description: "Ten or more matches analyzed.",
		})
	}

	var bestTakedowns, bestOverall, bestEscapes int
	ironLungs := false
	for _, h := range history {
		if h.TakedownsScored > bestTakedowns {
			bestTakedowns = h.TakedownsScored
		}
		if h.OverallScore > bestOverall {
			bestOverall = h.OverallScore
		}
		if h.Escapes > bestEscapes {
			bestEscapes = h.Escapes
		}
		if h.FirstHalfScore > 0 && h.SecondHalfScore >= h.FirstHalfScore {
			ironLungs = true
		}
	}

	if bestTakedowns >= takedownStreak {
		earned = append(earned, Badge{
			Code:        "takedown_machine",
			Name:        "Takedown Machine",
			Description: "Scored three or more takedowns in a single match.",
		})
	}
	if bestOverall >= dominantOverall {
		earned = append(earned, Badge{
			Code:        "dominant",
			Name:        "Dominant",
			Description: "Reached an overall score of ninety or better.",
		})
	}
	if ironLungs {
		earned = append(earned, Badge{
			Code:        "iron_lungs",
			Name:        "Iron Lungs",
			Description: "Held or raised the pace in the second half of a match.",
		})
	}
	if bestEscapes >= escapeArtistCount {
		earned = append(earned, Badge{
			Code:        "escape_artist",
			Name:        "Escape Artist",
			Description: "Escaped three or more times in a single match.",
		})
	}
	return earned
}
