// Package reasoning runs the second model pass: one schema-constrained call
// that turns the augmented observation corpus into either a scored assessment
// (athlete mode) or a scouting report (opponent mode).
package reasoning

type Mode string

const (
	ModeAthlete  Mode = "athlete"
	ModeOpponent Mode = "opponent"
)

type PositionScores struct {
	Standing int `json:"standing"`
	Top      int `json:"top"`
	Bottom   int `json:"bottom"`
}

// SubScores are keyed by rubric item name. Standing items score 0-20, top and
// bottom items 0-25, so each position sums to 0-100.
type SubScores struct {
	Standing map[string]int `json:"standing"`
	Top      map[string]int `json:"top"`
	Bottom   map[string]int `json:"bottom"`
}

type PositionReasoning struct {
	Standing string `json:"standing"`
	Top      string `json:"top"`
	Bottom   string `json:"bottom"`
}

type FrameEvidence struct {
	FrameIndex   int    `json:"frame_index"`
	Description  string `json:"description"`
	RubricImpact string `json:"rubric_impact"`
	IsKeyMoment  bool   `json:"is_key_moment"`
}

type FatigueAnalysis struct {
	FirstHalfScore  int      `json:"first_half_score"`
	SecondHalfScore int      `json:"second_half_score"`
	Indicators      []string `json:"indicators"`
	Conditioning    string   `json:"conditioning"` // excellent | good | adequate | poor
}

type MatchResult struct {
	EstimatedWinner string  `json:"estimated_winner"` // athlete | opponent | unclear
	Confidence      float64 `json:"confidence"`
	ScoreEstimate   string  `json:"score_estimate"`
}

type MatchStats struct {
	TakedownsScored   int `json:"takedowns_scored"`
	TakedownsConceded int `json:"takedowns_conceded"`
	Escapes           int `json:"escapes"`
	Reversals         int `json:"reversals"`
	NearFallPoints    int `json:"near_fall_points"`
	Penalties         int `json:"penalties"`
}

// ScoredAssessment is the athlete-mode result. The validation stage mutates
// it exactly once (clamps and arithmetic corrections) before it is final.
type ScoredAssessment struct {
	OverallScore      int               `json:"overall_score"`
	PositionScores    PositionScores    `json:"position_scores"`
	SubScores         SubScores         `json:"sub_scores"`
	PositionReasoning PositionReasoning `json:"position_reasoning"`
	FrameEvidence     []FrameEvidence   `json:"frame_evidence"`
	Strengths         []string          `json:"strengths"`
	Weaknesses        []string          `json:"weaknesses"`
	RecommendedDrills []string          `json:"recommended_drills"`
	FatigueAnalysis   FatigueAnalysis   `json:"fatigue_analysis"`
	MatchResult       MatchResult       `json:"match_result"`
	MatchStats        MatchStats        `json:"match_stats"`
	Confidence        float64           `json:"confidence"`
}

// TotalClaimedScoringEvents is what cross-pass validation compares against
// the perception stage's CRITICAL count.
func (a *ScoredAssessment) TotalClaimedScoringEvents() int {
	return a.MatchStats.TakedownsScored +
		a.MatchStats.TakedownsConceded +
		a.MatchStats.Escapes +
		a.MatchStats.Reversals +
		a.MatchStats.NearFallPoints
}

type PositionTendencies struct {
	Standing string `json:"standing"`
	Top      string `json:"top"`
	Bottom   string `json:"bottom"`
}

type Gameplan struct {
	FirstPeriod     string `json:"first_period"`
	SecondPeriod    string `json:"second_period"`
	ThirdPeriod     string `json:"third_period"`
	OverallStrategy string `json:"overall_strategy"`
}

// ScoutingReport is the opponent-mode result. No scores, no arithmetic
// invariants; patterns and a gameplan instead.
type ScoutingReport struct {
	Profile            string             `json:"profile"`
	AttackPatterns     []string           `json:"attack_patterns"`
	DefensePatterns    []string           `json:"defense_patterns"`
	PositionTendencies PositionTendencies `json:"position_tendencies"`
	Gameplan           Gameplan           `json:"gameplan"`
	FrameEvidence      []FrameEvidence    `json:"frame_evidence"`
	Confidence         float64            `json:"confidence"`
}

// MatchContext is optional competition framing passed through to the prompt.
type MatchContext struct {
	WeightClass     string `json:"weight_class,omitempty"`
	Competition     string `json:"competition,omitempty"`
	Round           string `json:"round,omitempty"`
	DaysFromWeighIn *int   `json:"days_from_weigh_in,omitempty"`
}
