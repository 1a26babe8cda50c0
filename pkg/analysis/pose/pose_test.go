package pose

import (
	"math"
	"strings"
	"testing"

	"matvision-be/pkg/analysis/perception"
)

func observationWithStance(idx int, stance, bend, weight, tangle string) perception.Observation {
	return perception.Observation{
		FrameIndex:     idx,
		Position:       perception.PositionStanding,
		AthleteVisible: true,
		Significance:   perception.SignificanceContext,
		Pose: &perception.PoseDescriptors{
			StanceHeight:       stance,
			KneeBend:           bend,
			WeightDistribution: weight,
			Entanglement:       tangle,
		},
	}
}

func TestDescriptorLookup(t *testing.T) {
	tests := []struct {
		name      string
		stance    string
		hipHeight float64
	}{
		{"low stance", "low", 0.35},
		{"medium stance", "medium", 0.5},
		{"high stance", "high", 0.65},
		{"unknown falls back to medium", "crouched", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := sampleFromDescriptors(observationWithStance(0, tt.stance, "slight", "balanced", "light"))
			if sample.HipHeight != tt.hipHeight {
				t.Errorf("hip height = %v, want %v", sample.HipHeight, tt.hipHeight)
			}
		})
	}
}

func TestDeriveSkipsInvisibleAndPoselessFrames(t *testing.T) {
	observations := []perception.Observation{
		observationWithStance(0, "low", "deep", "balanced", "light"),
		{FrameIndex: 1, AthleteVisible: false, Pose: &perception.PoseDescriptors{StanceHeight: "low"}},
		{FrameIndex: 2, AthleteVisible: true}, // no pose block
		observationWithStance(3, "low", "deep", "balanced", "light"),
	}

	report := Derive(observations, nil)
	if len(report.Samples) != 2 {
		t.Errorf("samples = %d, want 2", len(report.Samples))
	}
}

func TestDeriveThinSeriesProducesNoTrends(t *testing.T) {
	observations := []perception.Observation{
		observationWithStance(0, "low", "deep", "balanced", "light"),
		observationWithStance(1, "high", "straight", "backward", "none"),
		observationWithStance(2, "high", "straight", "backward", "none"),
	}

	report := Derive(observations, nil)
	if len(report.Trends) != 0 || len(report.Indicators) != 0 {
		t.Errorf("3 samples must not produce trends, got %d trends %d indicators", len(report.Trends), len(report.Indicators))
	}
}

func TestDeriveRisingHipHeight(t *testing.T) {
	// First half deep stance, second half upright: the classic gassing-out shape.
	var observations []perception.Observation
	for i := 0; i < 4; i++ {
		observations = append(observations, observationWithStance(i, "low", "deep", "forward", "heavy"))
	}
	for i := 4; i < 8; i++ {
		observations = append(observations, observationWithStance(i, "high", "straight", "backward", "none"))
	}

	report := Derive(observations, nil)

	var hip MetricTrend
	for _, tr := range report.Trends {
		if tr.Metric == "hip_height" {
			hip = tr
		}
	}
	if hip.Direction != DirectionRising {
		t.Errorf("hip_height direction = %s, want rising (delta %v)", hip.Direction, hip.Delta)
	}
	if hip.FirstHalfMean != 0.35 || hip.SecondHalfMean != 0.65 {
		t.Errorf("half means = %v / %v, want 0.35 / 0.65", hip.FirstHalfMean, hip.SecondHalfMean)
	}

	found := false
	for _, ind := range report.Indicators {
		if strings.Contains(ind, "Hip height rose") {
			found = true
		}
	}
	if !found {
		t.Errorf("rising hip height must produce an indicator, got %v", report.Indicators)
	}
}

func TestDeriveDeltaWithinThresholdIsStable(t *testing.T) {
	// All samples identical: every delta is zero.
	var observations []perception.Observation
	for i := 0; i < 8; i++ {
		observations = append(observations, observationWithStance(i, "medium", "slight", "balanced", "light"))
	}

	report := Derive(observations, nil)
	for _, tr := range report.Trends {
		if tr.Direction != DirectionStable {
			t.Errorf("metric %s direction = %s, want stable", tr.Metric, tr.Direction)
		}
	}
	if len(report.Indicators) != 0 {
		t.Errorf("stable match produced indicators: %v", report.Indicators)
	}
}

type fixedSkeletons struct {
	athlete  *Skeleton
	opponent *Skeleton
}

func (f *fixedSkeletons) Skeletons(frameIndex int) (*Skeleton, *Skeleton, bool) {
	if frameIndex%2 != 0 {
		return nil, nil, false
	}
	return f.athlete, f.opponent, true
}

func TestKeypointProviderOverridesLookup(t *testing.T) {
	athlete := &Skeleton{
		LeftAnkle: Keypoint{0.3, 0.95}, RightAnkle: Keypoint{0.7, 0.95},
		LeftKnee: Keypoint{0.35, 0.75}, RightKnee: Keypoint{0.65, 0.75},
		LeftHip: Keypoint{0.45, 0.6}, RightHip: Keypoint{0.55, 0.6},
		LeftShoulder: Keypoint{0.42, 0.35}, RightShoulder: Keypoint{0.58, 0.35},
	}
	opponent := &Skeleton{
		LeftHip: Keypoint{0.75, 0.6}, RightHip: Keypoint{0.85, 0.6},
	}
	provider := &fixedSkeletons{athlete: athlete, opponent: opponent}

	observations := []perception.Observation{
		observationWithStance(0, "high", "straight", "balanced", "light"),
		observationWithStance(1, "high", "straight", "balanced", "light"),
	}

	report := Derive(observations, provider)
	if len(report.Samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(report.Samples))
	}

	keypointSample := report.Samples[0]
	if math.Abs(keypointSample.StanceWidth-0.4) > 1e-9 {
		t.Errorf("keypoint stance width = %v, want 0.4", keypointSample.StanceWidth)
	}
	if math.Abs(keypointSample.HipHeight-0.4) > 1e-9 {
		t.Errorf("keypoint hip height = %v, want 0.4", keypointSample.HipHeight)
	}
	if keypointSample.OpponentProximity <= 0 {
		t.Errorf("opponent proximity not computed: %v", keypointSample.OpponentProximity)
	}

	// The odd frame has no skeleton and must fall back to the lookup.
	lookupSample := report.Samples[1]
	if lookupSample.StanceWidth != 0.38 {
		t.Errorf("fallback stance width = %v, want lookup value 0.38", lookupSample.StanceWidth)
	}
}

func TestKneeAngle(t *testing.T) {
	// Straight leg: hip above knee above ankle.
	straight := kneeAngle(Keypoint{0.5, 0.4}, Keypoint{0.5, 0.6}, Keypoint{0.5, 0.8})
	if math.Abs(straight-180) > 1e-9 {
		t.Errorf("straight leg angle = %v, want 180", straight)
	}

	// Right angle bend.
	bent := kneeAngle(Keypoint{0.5, 0.4}, Keypoint{0.5, 0.6}, Keypoint{0.7, 0.6})
	if math.Abs(bent-90) > 1e-9 {
		t.Errorf("bent leg angle = %v, want 90", bent)
	}
}
