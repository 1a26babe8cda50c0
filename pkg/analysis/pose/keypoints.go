package pose

import (
	"math"

	"matvision-be/pkg/analysis/perception"
)

type Keypoint struct {
	X float64
	Y float64
}

// Skeleton is the minimal joint set needed for the proxy metrics, in
// normalized image coordinates (y grows downward).
type Skeleton struct {
	LeftAnkle     Keypoint
	RightAnkle    Keypoint
	LeftKnee      Keypoint
	RightKnee     Keypoint
	LeftHip       Keypoint
	RightHip      Keypoint
	LeftShoulder  Keypoint
	RightShoulder Keypoint
}

// KeypointProvider is an optional pose-estimation collaborator. When it knows
// a frame, true keypoints replace the descriptor lookup for that frame.
type KeypointProvider interface {
	Skeletons(frameIndex int) (athlete, opponent *Skeleton, ok bool)
}

func sampleFromKeypoints(obs perception.Observation, provider KeypointProvider) (MetricSample, bool) {
	if provider == nil {
		return MetricSample{}, false
	}
	athlete, opponent, ok := provider.Skeletons(obs.FrameIndex)
	if !ok || athlete == nil {
		return MetricSample{}, false
	}

	sample := MetricSample{
		FrameIndex:   obs.FrameIndex,
		StanceWidth:  math.Abs(athlete.LeftAnkle.X - athlete.RightAnkle.X),
		KneeAngle:    (kneeAngle(athlete.LeftHip, athlete.LeftKnee, athlete.LeftAnkle) + kneeAngle(athlete.RightHip, athlete.RightKnee, athlete.RightAnkle)) / 2,
		HipHeight:    1 - midpoint(athlete.LeftHip, athlete.RightHip).Y,
		ShoulderTilt: shoulderTilt(athlete.LeftShoulder, athlete.RightShoulder),
	}

	if opponent != nil {
		sample.OpponentProximity = distance(midpoint(athlete.LeftHip, athlete.RightHip), midpoint(opponent.LeftHip, opponent.RightHip))
	} else {
		sample.OpponentProximity = 1.0
	}

	// Entanglement has no clean geometric analogue; the descriptor lookup
	// stays authoritative for it even on keypoint frames.
	if obs.Pose != nil {
		sample.Entanglement = lookupOr(entanglementScore, obs.Pose.Entanglement, 0.5)
	} else {
		sample.Entanglement = 0.5
	}

	return sample, true
}

func midpoint(a, b Keypoint) Keypoint {
	return Keypoint{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func distance(a, b Keypoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// kneeAngle is the hip-knee-ankle joint angle in degrees.
func kneeAngle(hip, knee, ankle Keypoint) float64 {
	v1x, v1y := hip.X-knee.X, hip.Y-knee.Y
	v2x, v2y := ankle.X-knee.X, ankle.Y-knee.Y

	dot := v1x*v2x + v1y*v2y
	mag := math.Hypot(v1x, v1y) * math.Hypot(v2x, v2y)
	if mag == 0 {
		return 0
	}
	cos := dot / mag
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}

func shoulderTilt(left, right Keypoint) float64 {
	dx := right.X - left.X
	if dx == 0 {
		return 90
	}
	return math.Abs(math.Atan2(right.Y-left.Y, dx) * 180 / math.Pi)
}
