package validation

import (
	"fmt"
	"sort"
	"strings"

	"matvision-be/internal/constant"
	"matvision-be/pkg/analysis/reasoning"
)

// detectHallucinations is the first gate pass. It corrects what it can
// (sub-score clamps, sum-wins position scores, evidence index clamps) and
// flags the score patterns a model invents when it is guessing.
func detectHallucinations(a *reasoning.ScoredAssessment, ctx Context) []Flag {
	var flags []Flag
	corrected := false

	if clamped := clampSubScores(a); len(clamped) > 0 {
		corrected = true
		flags = append(flags, Flag{
			Check:    CheckSubScoreOutOfRange,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("clamped %d sub-score(s): %s", len(clamped), strings.Join(clamped, ", ")),
		})
	}

	for _, fix := range []struct {
		name  string
		items map[string]int
		score *int
	}{
		{"standing", a.SubScores.Standing, &a.PositionScores.Standing},
		{"top", a.SubScores.Top, &a.PositionScores.Top},
		{"bottom", a.SubScores.Bottom, &a.PositionScores.Bottom},
	} {
		if len(fix.items) == 0 {
			continue
		}
		sum := 0
		for _, v := range fix.items {
			sum += v
		}
		if abs(sum-*fix.score) > positionSumTolerance {
			flags = append(flags, Flag{
				Check:    CheckPositionSumMismatch,
				Severity: SeverityWarning,
				Detail:   fmt.Sprintf("%s score %d disagrees with sub-score sum %d, sum wins", fix.name, *fix.score, sum),
			})
			*fix.score = sum
			corrected = true
		}
	}

	if corrected {
		a.OverallScore = recomputeOverall(a)
	}

	if len(ctx.ObservedIndices) > 0 {
		clamped := 0
		for i := range a.FrameEvidence {
			idx := a.FrameEvidence[i].FrameIndex
			if idx < ctx.MinFrameIndex {
				a.FrameEvidence[i].FrameIndex = ctx.MinFrameIndex
				clamped++
			} else if idx > ctx.MaxFrameIndex {
				a.FrameEvidence[i].FrameIndex = ctx.MaxFrameIndex
				clamped++
			}
		}
		if clamped > 0 {
			flags = append(flags, Flag{
				Check:    CheckEvidenceOutOfRange,
				Severity: SeverityWarning,
				Detail: fmt.Sprintf("%d evidence citation(s) referenced frames outside %d-%d and were clamped",
					clamped, ctx.MinFrameIndex, ctx.MaxFrameIndex),
			})
		}
	}

	ps := a.PositionScores
	if ps.Standing == ps.Top && ps.Top == ps.Bottom {
		flags = append(flags, Flag{
			Check:    CheckIdenticalPositions,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("all three position scores are %d", ps.Standing),
		})
	}

	if allMultiplesOfFive(a.SubScores) {
		flags = append(flags, Flag{
			Check:    CheckRoundSubScores,
			Severity: SeverityWarning,
			Detail:   "every sub-score is a multiple of 5, suggesting rounded guesses rather than observed detail",
		})
	}

	if a.Confidence >= highConfidenceFloor && len(a.FrameEvidence) < minEvidenceCitations {
		flags = append(flags, Flag{
			Check:    CheckUnsupportedConfidence,
			Severity: SeverityWarning,
			Detail: fmt.Sprintf("confidence %.2f with only %d evidence citation(s), %d expected",
				a.Confidence, len(a.FrameEvidence), minEvidenceCitations),
		})
	}

	if ratio, drifted := vocabularyDrift(ctx.Actions); drifted {
		flags = append(flags, Flag{
			Check:    CheckVocabularyDrift,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("%.0f%% of observed actions use no recognized wrestling term", ratio*100),
		})
	}

	return flags
}

func clampSubScores(a *reasoning.ScoredAssessment) []string {
	var clamped []string
	for _, group := range []struct {
		name  string
		items map[string]int
		max   int
	}{
		{"standing", a.SubScores.Standing, constant.StandingItemMax},
		{"top", a.SubScores.Top, constant.TopItemMax},
		{"bottom", a.SubScores.Bottom, constant.BottomItemMax},
	} {
		var names []string
		for item := range group.items {
			names = append(names, item)
		}
		sort.Strings(names)
		for _, item := range names {
			v := group.items[item]
			fixed := v
			if fixed < 0 {
				fixed = 0
			}
			if fixed > group.max {
				fixed = group.max
			}
			if fixed != v {
				group.items[item] = fixed
				clamped = append(clamped, fmt.Sprintf("%s.%s %d->%d", group.name, item, v, fixed))
			}
		}
	}
	return clamped
}

func allMultiplesOfFive(s reasoning.SubScores) bool {
	total, nonZero := 0, 0
	for _, items := range []map[string]int{s.Standing, s.Top, s.Bottom} {
		for _, v := range items {
			total++
			if v != 0 {
				nonZero++
			}
			if v%5 != 0 {
				return false
			}
		}
	}
	// An all-zero grid means positions were never wrestled, not rounding.
	return total > 0 && nonZero > 0
}

func vocabularyDrift(actions []string) (float64, bool) {
	if len(actions) == 0 {
		return 0, false
	}
	unrecognized := 0
	for _, action := range actions {
		lower := strings.ToLower(action)
		found := false
		for _, term := range constant.TechniqueVocabulary {
			if strings.Contains(lower, term) {
				found = true
				break
			}
		}
		if !found {
			unrecognized++
		}
	}
	ratio := float64(unrecognized) / float64(len(actions))
	return ratio, ratio > vocabularyDriftRatio
}
