package validation

import (
	"strings"
	"testing"

	"matvision-be/pkg/analysis/perception"
	"matvision-be/pkg/analysis/reasoning"
)

func makePerceptionResult() *perception.Result {
	positions := []perception.Position{
		perception.PositionStanding, perception.PositionStanding, perception.PositionStanding,
		perception.PositionStanding, perception.PositionStanding,
		perception.PositionTop, perception.PositionTop, perception.PositionTop, perception.PositionTop,
		perception.PositionBottom, perception.PositionBottom, perception.PositionBottom,
	}
	res := &perception.Result{CoverageRatio: 1.0}
	for i, pos := range positions {
		obs := perception.Observation{
			FrameIndex:   i,
			Position:     pos,
			Significance: perception.SignificanceContext,
			Action:       "ATHLETE: hand fight for inside control",
		}
		if i == 4 || i == 5 {
			obs.Significance = perception.SignificanceCritical
			obs.Action = "ATHLETE: double leg takedown finished"
		}
		res.Observations = append(res.Observations, obs)
	}
	return res
}

func makeContext() Context {
	return NewContext(makePerceptionResult(), 12)
}

func longReasoning(position string) string {
	return "In the " + position + " position the athlete showed consistent control across frames, winning ties, finishing attacks, and never conceding easy points to the opponent."
}

func baseAssessment() *reasoning.ScoredAssessment {
	return &reasoning.ScoredAssessment{
		OverallScore:   58,
		PositionScores: reasoning.PositionScores{Standing: 55, Top: 60, Bottom: 60},
		SubScores: reasoning.SubScores{
			Standing: map[string]int{"stance_and_motion": 12, "level_change": 11, "shot_entries": 11, "shot_finishes": 10, "hand_fighting": 11},
			Top:      map[string]int{"ride_control": 15, "turn_attempts": 16, "mat_returns": 15, "pinning_pressure": 14},
			Bottom:   map[string]int{"base_recovery": 15, "stand_ups": 15, "escapes": 16, "reversal_threats": 14},
		},
		PositionReasoning: reasoning.PositionReasoning{
			Standing: longReasoning("standing"),
			Top:      longReasoning("top"),
			Bottom:   longReasoning("bottom"),
		},
		FrameEvidence: []reasoning.FrameEvidence{
			{FrameIndex: 4, Description: "deep double leg", RubricImpact: "shot_finishes", IsKeyMoment: true},
			{FrameIndex: 2, Description: "level change on the open shot", RubricImpact: "level_change", IsKeyMoment: false},
			{FrameIndex: 6, Description: "tight waist ride", RubricImpact: "ride_control", IsKeyMoment: true},
			{FrameIndex: 8, Description: "half nelson turn attempt", RubricImpact: "turn_attempts", IsKeyMoment: true},
			{FrameIndex: 9, Description: "base rebuilt instantly", RubricImpact: "base_recovery", IsKeyMoment: false},
			{FrameIndex: 11, Description: "stand up to escape", RubricImpact: "escapes", IsKeyMoment: false},
		},
		FatigueAnalysis: reasoning.FatigueAnalysis{FirstHalfScore: 70, SecondHalfScore: 65, Indicators: []string{}, Conditioning: "good"},
		MatchStats:      reasoning.MatchStats{TakedownsScored: 1, Escapes: 1},
		Confidence:      0.75,
	}
}

func hasFlag(flags []Flag, check string) bool {
	for _, f := range flags {
		if f.Check == check {
			return true
		}
	}
	return false
}

func findFlag(t *testing.T, flags []Flag, check string) Flag {
	t.Helper()
	for _, f := range flags {
		if f.Check == check {
			return f
		}
	}
	t.Fatalf("expected flag %q, got %+v", check, flags)
	return Flag{}
}

func TestCleanAssessmentPassesUnflagged(t *testing.T) {
	a := baseAssessment()
	flags := Validate(a, makeContext())
	if len(flags) != 0 {
		t.Errorf("clean assessment raised flags: %+v", flags)
	}
	if a.OverallScore != 58 {
		t.Errorf("OverallScore mutated to %d on a clean pass", a.OverallScore)
	}
}

func TestSubScoreClampAndRecompute(t *testing.T) {
	a := baseAssessment()
	a.SubScores.Standing["shot_finishes"] = 31 // max is 20
	flags := Validate(a, makeContext())

	if a.SubScores.Standing["shot_finishes"] != 20 {
		t.Errorf("shot_finishes = %d, want clamped to 20", a.SubScores.Standing["shot_finishes"])
	}
	f := findFlag(t, flags, CheckSubScoreOutOfRange)
	if !strings.Contains(f.Detail, "standing.shot_finishes") {
		t.Errorf("clamp detail = %q", f.Detail)
	}
	// 12+11+11+20+11=65 drifts >5 from the claimed 55, so the sum wins and
	// overall is recomputed: round(65*0.4 + 60*0.3 + 60*0.3) = 62.
	if !hasFlag(flags, CheckPositionSumMismatch) {
		t.Error("expected position_sum_mismatch after clamp changed the sum")
	}
	if a.PositionScores.Standing != 65 {
		t.Errorf("standing = %d, want 65 (sub-score sum)", a.PositionScores.Standing)
	}
	if a.OverallScore != 62 {
		t.Errorf("OverallScore = %d, want 62 after recompute", a.OverallScore)
	}
}

func TestIdenticalPositionScoresFlagged(t *testing.T) {
	a := baseAssessment()
	a.PositionScores = reasoning.PositionScores{Standing: 60, Top: 60, Bottom: 60}
	a.SubScores.Standing = map[string]int{"stance_and_motion": 12, "level_change": 12, "shot_entries": 12, "shot_finishes": 12, "hand_fighting": 12}
	a.OverallScore = 60

	flags := Validate(a, makeContext())
	if !hasFlag(flags, CheckIdenticalPositions) {
		t.Errorf("want identical_position_scores, got %+v", flags)
	}
}

func TestRoundSubScores(t *testing.T) {
	a := baseAssessment()
	a.SubScores = reasoning.SubScores{
		Standing: map[string]int{"stance_and_motion": 10, "level_change": 10, "shot_entries": 15, "shot_finishes": 10, "hand_fighting": 10},
		Top:      map[string]int{"ride_control": 15, "turn_attempts": 15, "mat_returns": 15, "pinning_pressure": 15},
		Bottom:   map[string]int{"base_recovery": 15, "stand_ups": 15, "escapes": 15, "reversal_threats": 15},
	}
	a.PositionScores = reasoning.PositionScores{Standing: 55, Top: 60, Bottom: 60}

	if !hasFlag(Validate(a, makeContext()), CheckRoundSubScores) {
		t.Error("all multiple-of-5 sub-scores should flag")
	}

	zeroed := baseAssessment()
	zeroed.SubScores = reasoning.SubScores{Standing: map[string]int{}, Top: map[string]int{}, Bottom: map[string]int{}}
	if hasFlag(Validate(zeroed, makeContext()), CheckRoundSubScores) {
		t.Error("empty sub-score grid must not flag as round")
	}
}

func TestHighConfidenceNeedsEvidence(t *testing.T) {
	a := baseAssessment()
	a.Confidence = 0.9
	a.FrameEvidence = a.FrameEvidence[:3]

	if !hasFlag(Validate(a, makeContext()), CheckUnsupportedConfidence) {
		t.Error("confidence 0.9 with 3 citations should flag")
	}
}

func TestEvidenceIndexClamped(t *testing.T) {
	a := baseAssessment()
	a.FrameEvidence[0].FrameIndex = 99

	flags := Validate(a, makeContext())
	if a.FrameEvidence[0].FrameIndex != 11 {
		t.Errorf("evidence index = %d, want clamped to 11", a.FrameEvidence[0].FrameIndex)
	}
	if !hasFlag(flags, CheckEvidenceOutOfRange) {
		t.Error("want evidence_out_of_range flag")
	}
	// Clamping lands on an observed frame, so the cross-pass check stays quiet.
	if hasFlag(flags, CheckUnobservedEvidence) {
		t.Error("clamped index is observed, unobserved_evidence_frame should not fire")
	}
}

func TestVocabularyDrift(t *testing.T) {
	ctx := makeContext()
	ctx.Actions = []string{
		"moving around the mat",
		"standing near the edge",
		"circling without contact",
		"ATHLETE: double leg takedown finished",
	}

	f := findFlag(t, Validate(baseAssessment(), ctx), CheckVocabularyDrift)
	if !strings.Contains(f.Detail, "75%") {
		t.Errorf("drift detail = %q, want 75%%", f.Detail)
	}
}

func TestShortMatchScenario(t *testing.T) {
	// One-sided short clip: standing-only scores, thin reasoning, under the
	// ten frame evidence floor.
	a := &reasoning.ScoredAssessment{
		OverallScore:   16,
		PositionScores: reasoning.PositionScores{Standing: 40, Top: 0, Bottom: 0},
		SubScores: reasoning.SubScores{
			Standing: map[string]int{"stance_and_motion": 8, "level_change": 8, "shot_entries": 8, "shot_finishes": 8, "hand_fighting": 8},
			Top:      map[string]int{},
			Bottom:   map[string]int{},
		},
		PositionReasoning: reasoning.PositionReasoning{Standing: "Solid stance.", Top: "Not wrestled.", Bottom: "Not wrestled."},
		FrameEvidence: []reasoning.FrameEvidence{
			{FrameIndex: 2, Description: "good motion", RubricImpact: "stance_and_motion"},
		},
		Confidence: 0.5,
	}

	res := makePerceptionResult()
	res.Observations = res.Observations[:8]
	ctx := NewContext(res, 8)

	flags := Validate(a, ctx)
	if hasFlag(flags, CheckSparseEvidence) {
		t.Error("sparse_evidence must not fire under 10 submitted frames")
	}
	if hasFlag(flags, CheckFewKeyMoments) {
		t.Error("few_key_moments must not fire under 10 submitted frames")
	}
	if !hasFlag(flags, CheckReasoningDepth) {
		t.Error("reasoning_depth should fire on sub-100-char reasoning")
	}
}

func TestSparseEvidenceAtTenFrames(t *testing.T) {
	a := baseAssessment()
	// Strip every top citation while top still scores 60.
	var kept []reasoning.FrameEvidence
	for _, ev := range a.FrameEvidence {
		if ev.RubricImpact != "ride_control" && ev.RubricImpact != "turn_attempts" {
			kept = append(kept, ev)
		}
	}
	a.FrameEvidence = kept

	f := findFlag(t, Validate(a, makeContext()), CheckSparseEvidence)
	if !strings.Contains(f.Detail, "top") {
		t.Errorf("sparse detail = %q, want it to name top", f.Detail)
	}
}

func TestArithmeticMismatchCorrected(t *testing.T) {
	a := baseAssessment()
	a.OverallScore = 90 // positions say 58

	flags := Validate(a, makeContext())
	if !hasFlag(flags, CheckArithmeticMismatch) {
		t.Error("want arithmetic_mismatch flag")
	}
	if a.OverallScore != 58 {
		t.Errorf("OverallScore = %d, want corrected to 58", a.OverallScore)
	}
}

func TestArithmeticWithinToleranceUntouched(t *testing.T) {
	a := baseAssessment()
	a.OverallScore = 59 // off by one, inside rounding tolerance

	if hasFlag(Validate(a, makeContext()), CheckArithmeticMismatch) {
		t.Error("one point of drift is rounding, not a mismatch")
	}
	if a.OverallScore != 59 {
		t.Errorf("OverallScore = %d, tolerance should leave it alone", a.OverallScore)
	}
}

func TestMissingEvidenceIsError(t *testing.T) {
	a := baseAssessment()
	a.FrameEvidence = nil
	a.Confidence = 0.5

	f := findFlag(t, Validate(a, makeContext()), CheckMissingEvidence)
	if f.Severity != SeverityError {
		t.Errorf("missing evidence severity = %q, want error", f.Severity)
	}
}

func TestFewKeyMoments(t *testing.T) {
	a := baseAssessment()
	for i := range a.FrameEvidence {
		a.FrameEvidence[i].IsKeyMoment = false
	}
	a.FrameEvidence[0].IsKeyMoment = true

	if !hasFlag(Validate(a, makeContext()), CheckFewKeyMoments) {
		t.Error("one key moment across 12 frames should flag")
	}
}

func TestScoringInflation(t *testing.T) {
	ctx := makeContext()
	ctx.CriticalCount = 1

	a := baseAssessment()
	a.MatchStats = reasoning.MatchStats{TakedownsScored: 2, TakedownsConceded: 1, Escapes: 2, NearFallPoints: 1}

	f := findFlag(t, Validate(a, ctx), CheckScoringInflation)
	if !strings.Contains(f.Detail, "6 scoring events") {
		t.Errorf("inflation detail = %q", f.Detail)
	}

	a = baseAssessment()
	a.MatchStats = reasoning.MatchStats{TakedownsScored: 1, Escapes: 1}
	if hasFlag(Validate(a, ctx), CheckScoringInflation) {
		t.Error("2 claimed events over 1 CRITICAL is exactly 2x, not inflation")
	}
}

func TestObservedPositionWithoutReasoning(t *testing.T) {
	a := baseAssessment()
	a.PositionReasoning.Top = "Rode well." // top has 4 observed frames

	flags := Validate(a, makeContext())
	if !hasFlag(flags, CheckShallowReasoning) {
		t.Error("observed position with thin reasoning should raise shallow_reasoning")
	}
	if !hasFlag(flags, CheckReasoningDepth) {
		t.Error("reasoning_depth should fire alongside")
	}
}

func TestUnobservedEvidenceFrame(t *testing.T) {
	res := makePerceptionResult()
	// Drop the observation behind frame 8; the citation index stays in range.
	res.Observations = append(res.Observations[:8:8], res.Observations[9:]...)
	ctx := NewContext(res, 12)

	f := findFlag(t, Validate(baseAssessment(), ctx), CheckUnobservedEvidence)
	if !strings.Contains(f.Detail, "[8]") {
		t.Errorf("unobserved detail = %q, want it to list frame 8", f.Detail)
	}
}

func TestValidateScouting(t *testing.T) {
	r := &reasoning.ScoutingReport{Confidence: 0.6}
	f := findFlag(t, ValidateScouting(r, makeContext()), CheckMissingEvidence)
	if f.Severity != SeverityError {
		t.Errorf("severity = %q, want error", f.Severity)
	}

	r.FrameEvidence = []reasoning.FrameEvidence{{FrameIndex: 4, Description: "right single entry"}}
	if flags := ValidateScouting(r, makeContext()); len(flags) != 0 {
		t.Errorf("grounded scouting report raised flags: %+v", flags)
	}
}

func TestNewContext(t *testing.T) {
	ctx := makeContext()
	if ctx.CriticalCount != 2 {
		t.Errorf("CriticalCount = %d, want 2", ctx.CriticalCount)
	}
	if ctx.MinFrameIndex != 0 || ctx.MaxFrameIndex != 11 {
		t.Errorf("frame range = %d-%d, want 0-11", ctx.MinFrameIndex, ctx.MaxFrameIndex)
	}
	if ctx.PositionFrames[perception.PositionTop] != 4 {
		t.Errorf("top frames = %d, want 4", ctx.PositionFrames[perception.PositionTop])
	}
	if len(ctx.Actions) != 12 {
		t.Errorf("actions = %d, want 12", len(ctx.Actions))
	}
}
