// Package trends computes longitudinal score trends across a wrestler's
// analysis history. Input series are chronological; regression runs over the
// analysis index, not calendar time, so irregular gaps between matches do
// not distort the slope.
package trends

import "math"

type Direction string

const (
	DirectionImproving    Direction = "improving"
	DirectionDeclining    Direction = "declining"
	DirectionStable       Direction = "stable"
	DirectionInsufficient Direction = "insufficient_data"
)

// Slope thresholds in score points per analysis.
const (
	improvingSlope = 1.5
	decliningSlope = -1.5
	minSeriesLen   = 3
)

// Consistency tiers by score standard deviation.
const (
	steadyStdDev   = 5.0
	variableStdDev = 12.0
)

type Trend struct {
	Metric      string    `json:"metric"`
	Direction   Direction `json:"direction"`
	Slope       float64   `json:"slope"`
	Mean        float64   `json:"mean"`
	StdDev      float64   `json:"std_dev"`
	Consistency string    `json:"consistency"`
	First       float64   `json:"first"`
	Latest      float64   `json:"latest"`
	Points      int       `json:"points"`
}

// Scores is one persisted assessment's score row, chronological order assumed.
type Scores struct {
	Overall  float64
	Standing float64
	Top      float64
	Bottom   float64
}

type Report struct {
	Athlete  string `json:"athlete"`
	Analyses int    `json:"analyses"`
	Overall  Trend  `json:"overall"`
	Standing Trend  `json:"standing"`
	Top      Trend  `json:"top"`
	Bottom   Trend  `json:"bottom"`
}

// Compute fits a least-squares line through the series and classifies the
// slope. Series shorter than three points carry no direction.
func Compute(metric string, series []float64) Trend {
	tr := Trend{Metric: metric, Direction: DirectionInsufficient, Points: len(series)}
	if len(series) == 0 {
		return tr
	}

	tr.First = series[0]
	tr.Latest = series[len(series)-1]
	tr.Mean = mean(series)
	tr.StdDev = stdDev(series, tr.Mean)
	tr.Consistency = consistency(tr.StdDev)

	if len(series) < minSeriesLen {
		return tr
	}

	tr.Slope = slope(series)
	switch {
	case tr.Slope > improvingSlope:
		tr.Direction = DirectionImproving
	case tr.Slope < decliningSlope:
		tr.Direction = DirectionDeclining
	default:
		tr.Direction = DirectionStable
	}
	return tr
}

func BuildReport(athlete string, history []Scores) Report {
	pick := func(get func(Scores) float64) []float64 {
		out := make([]float64, len(history))
		for i, h := range history {
			out[i] = get(h)
		}
		return out
	}
	return Report{
		Athlete:  athlete,
		Analyses: len(history),
		Overall:  Compute("overall", pick(func(s Scores) float64 { return s.Overall })),
		Standing: Compute("standing", pick(func(s Scores) float64 { return s.Standing })),
		Top:      Compute("top", pick(func(s Scores) float64 { return s.Top })),
		Bottom:   Compute("bottom", pick(func(s Scores) float64 { return s.Bottom })),
	}
}

// slope is the least-squares regression coefficient with x as the series
// index 0..n-1.
func slope(series []float64) float64 {
	n := float64(len(series))
	xMean := (n - 1) / 2
	yMean := mean(series)

	var num, den float64
	for i, y := range series {
		dx := float64(i) - xMean
		num += dx * (y - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func mean(series []float64) float64 {
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

func stdDev(series []float64, m float64) float64 {
	if len(series) < 2 {
		return 0
	}
	var sq float64
	for _, v := range series {
		sq += (v - m) * (v - m)
	}
	return math.Sqrt(sq / float64(len(series)))
}

func consistency(sd float64) string {
	switch {
	case sd < steadyStdDev:
		return "steady"
	case sd < variableStdDev:
		return "variable"
	default:
		return "volatile"
	}
}
