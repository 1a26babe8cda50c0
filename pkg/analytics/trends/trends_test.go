package trends

import (
	"math"
	"testing"
)

func TestComputeDirections(t *testing.T) {
	cases := []struct {
		name   string
		series []float64
		want   Direction
	}{
		{"monotonic rise", []float64{50, 55, 60, 65}, DirectionImproving},
		{"steep three point rise", []float64{40, 50, 60}, DirectionImproving},
		{"monotonic fall", []float64{70, 64, 58, 52}, DirectionDeclining},
		{"flat", []float64{60, 61, 60, 59, 60}, DirectionStable},
		{"shallow rise stays stable", []float64{60, 61, 62, 63}, DirectionStable},
		{"two points only", []float64{40, 80}, DirectionInsufficient},
		{"empty", nil, DirectionInsufficient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute("overall", tc.series)
			if got.Direction != tc.want {
				t.Errorf("direction = %q (slope %.2f), want %q", got.Direction, got.Slope, tc.want)
			}
		})
	}
}

func TestComputeSlopeExact(t *testing.T) {
	// Perfectly linear series: slope equals the step.
	tr := Compute("overall", []float64{50, 55, 60, 65})
	if math.Abs(tr.Slope-5.0) > 1e-9 {
		t.Errorf("slope = %v, want 5.0", tr.Slope)
	}
	if tr.First != 50 || tr.Latest != 65 || tr.Points != 4 {
		t.Errorf("bookkeeping = %+v", tr)
	}
	if math.Abs(tr.Mean-57.5) > 1e-9 {
		t.Errorf("mean = %v, want 57.5", tr.Mean)
	}
}

func TestConsistencyTiers(t *testing.T) {
	steady := Compute("overall", []float64{60, 61, 62, 61, 60})
	if steady.Consistency != "steady" {
		t.Errorf("steady series = %q", steady.Consistency)
	}
	volatile := Compute("overall", []float64{30, 80, 35, 85, 40})
	if volatile.Consistency != "volatile" {
		t.Errorf("volatile series = %q", volatile.Consistency)
	}
}

func TestBuildReport(t *testing.T) {
	history := []Scores{
		{Overall: 50, Standing: 40, Top: 60, Bottom: 55},
		{Overall: 55, Standing: 48, Top: 60, Bottom: 56},
		{Overall: 62, Standing: 55, Top: 61, Bottom: 58},
		{Overall: 66, Standing: 62, Top: 60, Bottom: 57},
	}
	rep := BuildReport("Jordan Reyes", history)

	if rep.Analyses != 4 {
		t.Errorf("Analyses = %d, want 4", rep.Analyses)
	}
	if rep.Overall.Direction != DirectionImproving {
		t.Errorf("overall direction = %q, want improving (slope %.2f)", rep.Overall.Direction, rep.Overall.Slope)
	}
	if rep.Standing.Direction != DirectionImproving {
		t.Errorf("standing direction = %q, want improving", rep.Standing.Direction)
	}
	if rep.Top.Direction != DirectionStable {
		t.Errorf("top direction = %q, want stable", rep.Top.Direction)
	}
}
