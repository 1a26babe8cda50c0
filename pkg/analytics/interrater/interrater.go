// Package interrater measures how closely model scoring tracks expert
// reviewers. All statistics are computed over paired scores for the same
// assessment.
package interrater

import "math"

// Agreement thresholds.
const (
	withinPoints = 5.0
	minPairsForR = 2
)

type Pair struct {
	Model  float64 `json:"model"`
	Expert float64 `json:"expert"`
}

type Agreement struct {
	Samples int `json:"samples"`
	// PearsonR is 0 when there are too few pairs or either side has zero
	// variance.
	PearsonR float64 `json:"pearson_r"`
	MAE      float64 `json:"mae"`
	// MeanBias is model minus expert: positive means the model scores high.
	MeanBias   float64 `json:"mean_bias"`
	WithinFive float64 `json:"within_five_rate"`
}

// ReviewPair carries one expert review matched to its model assessment.
type ReviewPair struct {
	Overall  Pair
	Standing Pair
	Top      Pair
	Bottom   Pair
}

type Report struct {
	Reviews  int       `json:"reviews"`
	Overall  Agreement `json:"overall"`
	Standing Agreement `json:"standing"`
	Top      Agreement `json:"top"`
	Bottom   Agreement `json:"bottom"`
}

func Compute(pairs []Pair) Agreement {
	ag := Agreement{Samples: len(pairs)}
	if len(pairs) == 0 {
		return ag
	}

	var sumAbs, sumBias, within float64
	for _, p := range pairs {
		diff := p.Model - p.Expert
		sumBias += diff
		sumAbs += math.Abs(diff)
		if math.Abs(diff) <= withinPoints {
			within++
		}
	}
	n := float64(len(pairs))
	ag.MAE = sumAbs / n
	ag.MeanBias = sumBias / n
	ag.WithinFive = within / n

	if len(pairs) >= minPairsForR {
		ag.PearsonR = pearson(pairs)
	}
	return ag
}

func BuildReport(rows []ReviewPair) Report {
	pick := func(get func(ReviewPair) Pair) []Pair {
		out := make([]Pair, len(rows))
		for i, r := range rows {
			out[i] = get(r)
		}
		return out
	}
	return Report{
		Reviews:  len(rows),
		Overall:  Compute(pick(func(r ReviewPair) Pair { return r.Overall })),
		Standing: Compute(pick(func(r ReviewPair) Pair { return r.Standing })),
		Top:      Compute(pick(func(r ReviewPair) Pair { return r.Top })),
		Bottom:   Compute(pick(func(r ReviewPair) Pair { return r.Bottom })),
	}
}

func pearson(pairs []Pair) float64 {
	n := float64(len(pairs))
	var mx, my float64
	for _, p := range pairs {
		mx += p.Model
		my += p.Expert
	}
	mx /= n
	my /= n

	var cov, vx, vy float64
	for _, p := range pairs {
		dx := p.Model - mx
		dy := p.Expert - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}
