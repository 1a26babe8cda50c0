package validation

import (
	"fmt"
	"strings"

	"matvision-be/internal/constant"
	"matvision-be/pkg/analysis/reasoning"
)

// checkInvariants is the second gate pass: structural guarantees every
// persisted assessment must hold, regardless of how the model got there.
func checkInvariants(a *reasoning.ScoredAssessment, ctx Context) []Flag {
	var flags []Flag

	if ctx.CoverageRatio < coverageFloor {
		flags = append(flags, Flag{
			Check:    CheckLowCoverage,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("observation coverage %.0f%% is below the %.0f%% floor", ctx.CoverageRatio*100, coverageFloor*100),
		})
	}

	if len(a.FrameEvidence) == 0 {
		flags = append(flags, Flag{
			Check:    CheckMissingEvidence,
			Severity: SeverityError,
			Detail:   "assessment cites no frame evidence at all",
		})
	}

	// The evidence floor only means anything once there is enough footage
	// to expect citations from.
	if ctx.SubmittedFrames >= evidenceFloorFrameCount {
		counts := evidenceByPosition(a.FrameEvidence)
		for _, ref := range []struct {
			name  string
			score int
		}{
			{"standing", a.PositionScores.Standing},
			{"top", a.PositionScores.Top},
			{"bottom", a.PositionScores.Bottom},
		} {
			if ref.score > 0 && counts[ref.name] < minPositionEvidence {
				flags = append(flags, Flag{
					Check:    CheckSparseEvidence,
					Severity: SeverityWarning,
					Detail:   fmt.Sprintf("%s scored %d but only %d evidence citation(s) support it", ref.name, ref.score, counts[ref.name]),
				})
			}
		}

		keyMoments := 0
		for _, ev := range a.FrameEvidence {
			if ev.IsKeyMoment {
				keyMoments++
			}
		}
		if keyMoments < minKeyMoments {
			flags = append(flags, Flag{
				Check:    CheckFewKeyMoments,
				Severity: SeverityWarning,
				Detail:   fmt.Sprintf("only %d key moment(s) marked, %d expected for this much footage", keyMoments, minKeyMoments),
			})
		}
	}

	var shallow []string
	for _, r := range []struct {
		name string
		text string
	}{
		{"standing", a.PositionReasoning.Standing},
		{"top", a.PositionReasoning.Top},
		{"bottom", a.PositionReasoning.Bottom},
	} {
		if len(r.text) < minReasoningChars {
			shallow = append(shallow, fmt.Sprintf("%s (%d chars)", r.name, len(r.text)))
		}
	}
	if len(shallow) > 0 {
		flags = append(flags, Flag{
			Check:    CheckReasoningDepth,
			Severity: SeverityWarning,
			Detail:   "position reasoning under 100 characters: " + strings.Join(shallow, ", "),
		})
	}

	if expected := recomputeOverall(a); abs(expected-a.OverallScore) > arithmeticTolerance {
		flags = append(flags, Flag{
			Check:    CheckArithmeticMismatch,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("overall score %d corrected to %d from weighted position scores", a.OverallScore, expected),
		})
		a.OverallScore = expected
	}

	return flags
}

// evidenceByPosition attributes each citation to a rubric position, first by
// rubric item name, then by a bare position word in the impact text.
func evidenceByPosition(evidence []reasoning.FrameEvidence) map[string]int {
	counts := make(map[string]int, 3)
	for _, ev := range evidence {
		if pos := evidencePosition(ev); pos != "" {
			counts[pos]++
		}
	}
	return counts
}

func evidencePosition(ev reasoning.FrameEvidence) string {
	norm := strings.ReplaceAll(strings.ToLower(ev.RubricImpact), " ", "_")
	for _, group := range []struct {
		pos   string
		items []string
	}{
		{"standing", constant.StandingRubricItems},
		{"top", constant.TopRubricItems},
		{"bottom", constant.BottomRubricItems},
	} {
		for _, item := range group.items {
			if strings.Contains(norm, item) {
				return group.pos
			}
		}
	}
	for _, pos := range []string{"standing", "top", "bottom"} {
		if strings.Contains(norm, pos) {
			return pos
		}
	}
	if strings.Contains(norm, "neutral") {
		return "standing"
	}
	return ""
}
