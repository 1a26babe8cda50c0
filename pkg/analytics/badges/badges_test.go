package badges

import "testing"

func codes(bs []Badge) map[string]bool {
	out := make(map[string]bool, len(bs))
	for _, b := range bs {
		out[b.Code] = true
	}
	return out
}

func TestEvaluateEmptyHistory(t *testing.T) {
	if got := Evaluate(nil); len(got) != 0 {
		t.Fatalf("empty history earned %d badges", len(got))
	}
}

func TestEvaluateFirstAnalysisOnly(t *testing.T) {
	history := []AssessmentFacts{
		{OverallScore: 55, TakedownsScored: 1, FirstHalfScore: 60, SecondHalfScore: 50},
	}

	got := Evaluate(history)

	if len(got) != 1 || got[0].Code != "first_analysis" {
		t.Fatalf("badges = %+v, want only first_analysis", got)
	}
}

func TestEvaluateSingleMatchRules(t *testing.T) {
	history := []AssessmentFacts{
		{OverallScore: 92, TakedownsScored: 4, Escapes: 3, FirstHalfScore: 55, SecondHalfScore: 60},
	}

	earned := codes(Evaluate(history))

	for _, want := range []string{"first_analysis", "takedown_machine", "dominant", "iron_lungs", "escape_artist"} {
		if !earned[want] {
			t.Fatalf("missing badge %q in %v", want, earned)
		}
	}
	if earned["grinder"] {
		t.Fatal("grinder awarded for a single analysis")
	}
}

func TestEvaluateGrinderAtTen(t *testing.T) {
	history := make([]AssessmentFacts, 10)
	for i := range history {
		history[i] = AssessmentFacts{OverallScore: 50 + i}
	}

	earned := codes(Evaluate(history))

	if !earned["grinder"] {
		t.Fatal("grinder not awarded at ten analyses")
	}
	if earned["dominant"] || earned["takedown_machine"] {
		t.Fatalf("unexpected badges: %v", earned)
	}
}

func TestEvaluateIronLungsNeedsWrestledHalves(t *testing.T) {
	// A zero first half means fatigue signals never arrived; equal halves of
	// zero must not earn the badge.
	history := []AssessmentFacts{
		{OverallScore: 60, FirstHalfScore: 0, SecondHalfScore: 0},
	}

	if earned := codes(Evaluate(history)); earned["iron_lungs"] {
		t.Fatal("iron_lungs awarded without fatigue scores")
	}

	history[0].FirstHalfScore = 58
	history[0].SecondHalfScore = 58
	if earned := codes(Evaluate(history)); !earned["iron_lungs"] {
		t.Fatal("iron_lungs not awarded for a held pace")
	}
}

func TestEvaluateBestAcrossHistory(t *testing.T) {
	// Thresholds are met across different matches, not in one outing.
	history := []AssessmentFacts{
		{OverallScore: 62, TakedownsScored: 3},
		{OverallScore: 91, TakedownsScored: 0},
	}

	earned := codes(Evaluate(history))

	if !earned["takedown_machine"] || !earned["dominant"] {
		t.Fatalf("badges = %v, want takedown_machine and dominant", earned)
	}
}

func TestEvaluateStableOrder(t *testing.T) {
	history := []AssessmentFacts{
		{OverallScore: 95, TakedownsScored: 5, Escapes: 4, FirstHalfScore: 50, SecondHalfScore: 55},
	}

	first := Evaluate(history)
	second := Evaluate(history)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Code != second[i].Code {
			t.Fatalf("order differs at %d: %s vs %s", i, first[i].Code, second[i].Code)
		}
	}
}
