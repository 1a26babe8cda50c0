// Package pose turns qualitative stance descriptors into numeric proxy
// metrics and derives fatigue trends from them. The proxies are model input
// context only, never a source of truth for scoring.
package pose

import (
	"fmt"

	"matvision-be/pkg/analysis/perception"
)

type MetricSample struct {
	FrameIndex        int     `json:"frame_index"`
	StanceWidth       float64 `json:"stance_width"`
	KneeAngle         float64 `json:"knee_angle"`
	HipHeight         float64 `json:"hip_height"`
	ShoulderTilt      float64 `json:"shoulder_tilt"`
	OpponentProximity float64 `json:"opponent_proximity"`
	Entanglement      float64 `json:"entanglement"`
}

type Direction string

const (
	DirectionRising  Direction = "rising"
	DirectionFalling Direction = "falling"
	DirectionStable  Direction = "stable"
)

type MetricTrend struct {
	Metric         string    `json:"metric"`
	FirstHalfMean  float64   `json:"first_half_mean"`
	SecondHalfMean float64   `json:"second_half_mean"`
	Delta          float64   `json:"delta"`
	Direction      Direction `json:"direction"`
}

type FatigueReport struct {
	Samples    []MetricSample `json:"samples"`
	Trends     []MetricTrend  `json:"trends"`
	Indicators []string       `json:"indicators"`
}

// Fixed qualitative-to-numeric lookups. Hip height is normalized mat-to-head,
// knee angle is degrees, tilt is degrees off horizontal, proximity is a
// normalized separation where 0 means chest to chest.
var (
	hipHeightByStance   = map[string]float64{"low": 0.35, "medium": 0.5, "high": 0.65}
	stanceWidthByStance = map[string]float64{"low": 0.62, "medium": 0.5, "high": 0.38}
	kneeAngleByBend     = map[string]float64{"deep": 95, "slight": 125, "straight": 165}
	shoulderTiltByLoad  = map[string]float64{"forward": 15, "balanced": 5, "backward": -10}
	proximityByTangle   = map[string]float64{"none": 1.0, "light": 0.5, "heavy": 0.15}
	entanglementScore   = map[string]float64{"none": 0, "light": 0.5, "heavy": 1.0}
)

// Per-metric deltas below these magnitudes are noise, not a trend.
var trendThresholds = map[string]float64{
	"hip_height":         0.03,
	"stance_width":       0.04,
	"knee_angle":         8,
	"shoulder_tilt":      5,
	"opponent_proximity": 0.15,
	"entanglement":       0.2,
}

// Derive computes proxy samples and first-half/second-half trends. A nil
// KeypointProvider (the common case) means every sample comes from the
// descriptor lookup.
func Derive(observations []perception.Observation, provider KeypointProvider) FatigueReport {
	report := FatigueReport{}

	for _, obs := range observations {
		if !obs.AthleteVisible {
			continue
		}
		if sample, ok := sampleFromKeypoints(obs, provider); ok {
			report.Samples = append(report.Samples, sample)
			continue
		}
		if obs.Pose == nil {
			continue
		}
		report.Samples = append(report.Samples, sampleFromDescriptors(obs))
	}

	// Halves of one or two samples produce meaningless means.
	if len(report.Samples) < 4 {
		return report
	}

	report.Trends = deriveTrends(report.Samples)
	report.Indicators = indicators(report.Trends)
	return report
}

func sampleFromDescriptors(obs perception.Observation) MetricSample {
	p := obs.Pose
	return MetricSample{
		FrameIndex:        obs.FrameIndex,
		StanceWidth:       lookupOr(stanceWidthByStance, p.StanceHeight, 0.5),
		KneeAngle:         lookupOr(kneeAngleByBend, p.KneeBend, 125),
		HipHeight:         lookupOr(hipHeightByStance, p.StanceHeight, 0.5),
		ShoulderTilt:      lookupOr(shoulderTiltByLoad, p.WeightDistribution, 5),
		OpponentProximity: lookupOr(proximityByTangle, p.Entanglement, 0.5),
		Entanglement:      lookupOr(entanglementScore, p.Entanglement, 0.5),
	}
}

func lookupOr(table map[string]float64, key string, fallback float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return fallback
}

func deriveTrends(samples []MetricSample) []MetricTrend {
	mid := len(samples) / 2
	first, second := samples[:mid], samples[mid:]

	metrics := []struct {
		name string
		get  func(MetricSample) float64
	}{
		{"stance_width", func(s MetricSample) float64 { return s.StanceWidth }},
		{"knee_angle", func(s MetricSample) float64 { return s.KneeAngle }},
		{"hip_height", func(s MetricSample) float64 { return s.HipHeight }},
		{"shoulder_tilt", func(s MetricSample) float64 { return s.ShoulderTilt }},
		{"opponent_proximity", func(s MetricSample) float64 { return s.OpponentProximity }},
		{"entanglement", func(s MetricSample) float64 { return s.Entanglement }},
	}

	var trends []MetricTrend
	for _, m := range metrics {
		firstMean := mean(first, m.get)
		secondMean := mean(second, m.get)
		delta := secondMean - firstMean

		direction := DirectionStable
		if threshold := trendThresholds[m.name]; delta > threshold {
			direction = DirectionRising
		} else if delta < -threshold {
			direction = DirectionFalling
		}

		trends = append(trends, MetricTrend{
			Metric:         m.name,
			FirstHalfMean:  firstMean,
			SecondHalfMean: secondMean,
			Delta:          delta,
			Direction:      direction,
		})
	}
	return trends
}

func mean(samples []MetricSample, get func(MetricSample) float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += get(s)
	}
	return sum / float64(len(samples))
}

// indicators renders the fatigue-relevant trend combinations as short
// sentences injected into the reasoning prompt.
func indicators(trends []MetricTrend) []string {
	byMetric := map[string]MetricTrend{}
	for _, t := range trends {
		byMetric[t.Metric] = t
	}

	var out []string
	if t := byMetric["hip_height"]; t.Direction == DirectionRising {
		out = append(out, fmt.Sprintf("Hip height rose from %.2f to %.2f across halves, stance breaking down late", t.FirstHalfMean, t.SecondHalfMean))
	}
	if t := byMetric["knee_angle"]; t.Direction == DirectionRising {
		out = append(out, "Knees straightening in the second half, losing the loaded position")
	}
	if t := byMetric["stance_width"]; t.Direction == DirectionFalling {
		out = append(out, "Stance narrowing as the match progresses")
	}
	if t := byMetric["shoulder_tilt"]; t.Direction == DirectionFalling {
		out = append(out, "Posture straightening upright late in the match")
	}
	if t := byMetric["opponent_proximity"]; t.Direction == DirectionRising {
		out = append(out, "Disengaging more often in the second half")
	}
	if t := byMetric["entanglement"]; t.Direction == DirectionFalling {
		out = append(out, "Fewer sustained exchanges in the second half")
	}
	return out
}
