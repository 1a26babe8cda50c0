package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"matvision-be/internal/constant"
	"matvision-be/pkg/analysis/pose"
	"matvision-be/pkg/analysis/summary"
	"matvision-be/pkg/analysis/temporal"
	"matvision-be/pkg/vision"
)

// Input carries everything the second pass reads. The frames themselves are
// gone by now; the model only sees the compressed text corpus and the
// derived signals.
type Input struct {
	Mode        Mode
	Style       string // folkstyle | freestyle | greco
	AthleteName string

	Summary  *summary.Summary
	Temporal *temporal.Profile
	Fatigue  *pose.FatigueReport

	MatchContext       *MatchContext
	CoverageRatio      float64
	IdentityConfidence float64
}

type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

func DefaultOptions() Options {
	return Options{
		Temperature:     0.3,
		MaxOutputTokens: 8192,
	}
}

// Assess runs athlete-mode reasoning. One call, no retry: the caller owns
// the budget and a failure here fails the pipeline.
func Assess(ctx context.Context, provider vision.Provider, in Input, opts Options) (*ScoredAssessment, error) {
	prompt := buildAthletePrompt(in)

	resp, err := provider.GenerateContent(ctx,
		[]*vision.Content{vision.UserContent(vision.TextPart(prompt))},
		vision.WithModel(opts.Model),
		vision.WithTemperature(opts.Temperature),
		vision.WithMaxOutputTokens(opts.MaxOutputTokens),
		vision.WithJSONSchema(assessmentSchema()),
	)
	if err != nil {
		return nil, fmt.Errorf("assessment call failed: %w", err)
	}

	var assessment ScoredAssessment
	if err := parseInto(resp.Text(), &assessment); err != nil {
		return nil, fmt.Errorf("assessment response unparsable: %w", err)
	}

	normalizeAssessment(&assessment)
	return &assessment, nil
}

// Scout runs opponent-mode reasoning and produces a scouting report.
func Scout(ctx context.Context, provider vision.Provider, in Input, opts Options) (*ScoutingReport, error) {
	prompt := buildScoutingPrompt(in)

	resp, err := provider.GenerateContent(ctx,
		[]*vision.Content{vision.UserContent(vision.TextPart(prompt))},
		vision.WithModel(opts.Model),
		vision.WithTemperature(opts.Temperature),
		vision.WithMaxOutputTokens(opts.MaxOutputTokens),
		vision.WithJSONSchema(scoutingSchema()),
	)
	if err != nil {
		return nil, fmt.Errorf("scouting call failed: %w", err)
	}

	var report ScoutingReport
	if err := parseInto(resp.Text(), &report); err != nil {
		return nil, fmt.Errorf("scouting response unparsable: %w", err)
	}

	normalizeScouting(&report)
	return &report, nil
}

func parseInto(raw string, out interface{}) error {
	cleaned := vision.StripFences([]byte(raw))
	if err := json.Unmarshal(cleaned, out); err == nil {
		return nil
	}
	extracted := vision.ExtractJSON(string(cleaned))
	if extracted == "" {
		return fmt.Errorf("no JSON object found in response")
	}
	return json.Unmarshal([]byte(extracted), out)
}

func normalizeAssessment(a *ScoredAssessment) {
	if a.SubScores.Standing == nil {
		a.SubScores.Standing = map[string]int{}
	}
	if a.SubScores.Top == nil {
		a.SubScores.Top = map[string]int{}
	}
	if a.SubScores.Bottom == nil {
		a.SubScores.Bottom = map[string]int{}
	}
	if a.FrameEvidence == nil {
		a.FrameEvidence = []FrameEvidence{}
	}
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.Weaknesses == nil {
		a.Weaknesses = []string{}
	}
	if a.RecommendedDrills == nil {
		a.RecommendedDrills = []string{}
	}
	if a.FatigueAnalysis.Indicators == nil {
		a.FatigueAnalysis.Indicators = []string{}
	}
}

func normalizeScouting(r *ScoutingReport) {
	if r.AttackPatterns == nil {
		r.AttackPatterns = []string{}
	}
	if r.DefensePatterns == nil {
		r.DefensePatterns = []string{}
	}
	if r.FrameEvidence == nil {
		r.FrameEvidence = []FrameEvidence{}
	}
}

func buildAthletePrompt(in Input) string {
	var sb strings.Builder

	sb.WriteString("<role>\n")
	sb.WriteString(constant.ReasoningRolePromptBlock)
	sb.WriteString("\n</role>\n\n")

	sb.WriteString("<rubric>\n")
	sb.WriteString(constant.RubricPromptBlock)
	sb.WriteString("\n</rubric>\n\n")

	writeMatchSection(&sb, in)
	writeSignalSections(&sb, in)
	writeObservationSection(&sb, in)

	sb.WriteString("<output_requirements>\n")
	fmt.Fprintf(&sb, "Score %q on every rubric item using ONLY the observations above.\n", in.AthleteName)
	sb.WriteString("Cite at least 5 frame_evidence entries, each with the frame index it came from.\n")
	sb.WriteString("Mark at least 3 frame_evidence entries with is_key_moment=true when the footage shows that many distinct moments.\n")
	sb.WriteString("Each position_reasoning entry must reference concrete frames and run at least 100 characters.\n")
	sb.WriteString("Count match_stats from ATHLETE: and OPPONENT: prefixed actions only. takedowns_scored counts ATHLETE takedowns, takedowns_conceded counts OPPONENT takedowns.\n")
	sb.WriteString("fatigue_analysis compares first-half output to second-half output on a 0-100 scale.\n")
	sb.WriteString("Do not invent events that the observations do not show. Respond with the JSON object only.\n")
	sb.WriteString("</output_requirements>\n")

	return sb.String()
}

func buildScoutingPrompt(in Input) string {
	var sb strings.Builder

	sb.WriteString("<role>\n")
	sb.WriteString(constant.ScoutingRolePromptBlock)
	sb.WriteString("\n</role>\n\n")

	writeMatchSection(&sb, in)
	writeSignalSections(&sb, in)
	writeObservationSection(&sb, in)

	sb.WriteString("<output_requirements>\n")
	fmt.Fprintf(&sb, "Build a scouting report on %q: their habits, setups, and the holes in their game.\n", in.AthleteName)
	sb.WriteString("attack_patterns and defense_patterns must each cite the recurring behavior, not one-off events.\n")
	sb.WriteString("The gameplan must be period-by-period and actionable for a wrestler preparing to face them.\n")
	sb.WriteString("Cite frame_evidence for every pattern you claim. Respond with the JSON object only.\n")
	sb.WriteString("</output_requirements>\n")

	return sb.String()
}

func writeMatchSection(sb *strings.Builder, in Input) {
	sb.WriteString("<match_context>\n")
	fmt.Fprintf(sb, "Subject: %s\n", in.AthleteName)
	fmt.Fprintf(sb, "Style: %s\n", in.Style)
	if mc := in.MatchContext; mc != nil {
		if mc.WeightClass != "" {
			fmt.Fprintf(sb, "Weight class: %s\n", mc.WeightClass)
		}
		if mc.Competition != "" {
			fmt.Fprintf(sb, "Competition: %s\n", mc.Competition)
		}
		if mc.Round != "" {
			fmt.Fprintf(sb, "Round: %s\n", mc.Round)
		}
		if mc.DaysFromWeighIn != nil {
			fmt.Fprintf(sb, "Days from weigh-in: %d\n", *mc.DaysFromWeighIn)
		}
	}
	fmt.Fprintf(sb, "Frame coverage: %.0f%% of submitted footage produced observations.\n", in.CoverageRatio*100)
	fmt.Fprintf(sb, "Identity confidence: %.2f\n", in.IdentityConfidence)
	sb.WriteString("</match_context>\n\n")
}

func writeSignalSections(sb *strings.Builder, in Input) {
	if f := in.Fatigue; f != nil && (len(f.Indicators) > 0 || len(f.Trends) > 0) {
		sb.WriteString("<fatigue_signals>\n")
		for _, ind := range f.Indicators {
			fmt.Fprintf(sb, "- %s\n", ind)
		}
		for _, tr := range f.Trends {
			fmt.Fprintf(sb, "- %s %s: first half %.2f, second half %.2f\n",
				tr.Metric, tr.Direction, tr.FirstHalfMean, tr.SecondHalfMean)
		}
		sb.WriteString("</fatigue_signals>\n\n")
	}

	if p := in.Temporal; p != nil {
		sb.WriteString("<temporal_profile>\n")
		for _, ph := range p.Phases {
			if ph.WindowCount == 0 {
				continue
			}
			fmt.Fprintf(sb, "Phase %d (frames %d-%d): dominant %s, intensity %s, %d scoring events\n",
				ph.Index+1, ph.StartFrame, ph.EndFrame, ph.DominantPosition, ph.Intensity, ph.ScoringEvents)
		}
		fmt.Fprintf(sb, "Tempo: %s (%.0f%% of action windows involve scoring)\n",
			p.Tempo.Tier, p.Tempo.ScoringRatio*100)
		for _, w := range p.Windows {
			if !w.ScoringEvent {
				continue
			}
			fmt.Fprintf(sb, "Scoring window: %s at frames %d-%d (peak frame %d, %s)\n",
				w.ActionType, w.StartFrame, w.EndFrame, w.PeakFrame, w.Position)
		}
		sb.WriteString("</temporal_profile>\n\n")
	}
}

func writeObservationSection(sb *strings.Builder, in Input) {
	sb.WriteString("<observations>\n")
	if in.Summary != nil {
		sb.WriteString(in.Summary.Rendered())
	}
	sb.WriteString("\n</observations>\n\n")
}

func subScoreSchema(items []string, max int) *vision.Schema {
	props := make(map[string]*vision.Schema, len(items))
	for _, item := range items {
		props[item] = &vision.Schema{
			Type:        "INTEGER",
			Description: fmt.Sprintf("0 to %d", max),
		}
	}
	return &vision.Schema{
		Type:       "OBJECT",
		Properties: props,
		Required:   append([]string(nil), items...),
	}
}

func frameEvidenceSchema() *vision.Schema {
	return &vision.Schema{
		Type: "ARRAY",
		Items: &vision.Schema{
			Type: "OBJECT",
			Properties: map[string]*vision.Schema{
				"frame_index":   {Type: "INTEGER"},
				"description":   {Type: "STRING"},
				"rubric_impact": {Type: "STRING"},
				"is_key_moment": {Type: "BOOLEAN"},
			},
			Required: []string{"frame_index", "description", "rubric_impact", "is_key_moment"},
		},
	}
}

func assessmentSchema() *vision.Schema {
	return &vision.Schema{
		Type: "OBJECT",
		Properties: map[string]*vision.Schema{
			"overall_score": {Type: "INTEGER", Description: "0 to 100"},
			"position_scores": {
				Type: "OBJECT",
				Properties: map[string]*vision.Schema{
					"standing": {Type: "INTEGER"},
					"top":      {Type: "INTEGER"},
					"bottom":   {Type: "INTEGER"},
				},
				Required: []string{"standing", "top", "bottom"},
			},
			"sub_scores": {
				Type: "OBJECT",
				Properties: map[string]*vision.Schema{
					"standing": subScoreSchema(constant.StandingRubricItems, constant.StandingItemMax),
					"top":      subScoreSchema(constant.TopRubricItems, constant.TopItemMax),
					"bottom":   subScoreSchema(constant.BottomRubricItems, constant.BottomItemMax),
				},
				Required: []string{"standing", "top", "bottom"},
			},
			"position_reasoning": {
				Type: "OBJECT",
				Properties: map[string]*vision.Schema{
					"standing": {Type: "STRING"},
					"top":      {Type: "STRING"},
					"bottom":   {Type: "STRING"},
				},
				Required: []string{"standing", "top", "bottom"},
			},
			"frame_evidence":     frameEvidenceSchema(),
			"strengths":          {Type: "ARRAY", Items: &vision.Schema{Type: "STRING"}},
			"weaknesses":         {Type: "ARRAY", Items: &vision.Schema{Type: "STRING"}},
			"recommended_drills": {Type: "ARRAY", Items: &vision.Schema{Type: "STRING"}},
			"fatigue_analysis": {
				Type: "OBJECT",
				Properties: map[string]*vision.Schema{
					"first_half_score":  {Type: "INTEGER"},
					"second_half_score": {Type: "INTEGER"},
					"indicators":        {Type: "ARRAY", Items: &vision.Schema{Type: "STRING"}},
					"conditioning":      {Type: "STRING", Enum: []string{"excellent", "good", "adequate", "poor"}},
				},
				Required: []string{"first_half_score", "second_half_score", "indicators", "conditioning"},
			},
			"match_result": {
				Type: "OBJECT",
				Properties: map[string]*vision.Schema{
					"estimated_winner": {Type: "STRING", Enum: []string{"athlete", "opponent", "unclear"}},
					"confidence":       {Type: "NUMBER"},
					"score_estimate":   {Type: "STRING"},
				},
				Required: []string{"estimated_winner", "confidence", "score_estimate"},
			},
			"match_stats": {
				Type: "OBJECT",
				Properties: map[string]*vision.Schema{
					"takedowns_scored":   {Type: "INTEGER"},
					"takedowns_conceded": {Type: "INTEGER"},
					"escapes":            {Type: "INTEGER"},
					"reversals":          {Type: "INTEGER"},
					"near_fall_points":   {Type: "INTEGER"},
					"penalties":          {Type: "INTEGER"},
				},
				Required: []string{"takedowns_scored", "takedowns_conceded", "escapes", "reversals", "near_fall_points", "penalties"},
			},
			"confidence": {Type: "NUMBER", Description: "0 to 1"},
		},
		Required: []string{
			"overall_score", "position_scores", "sub_scores", "position_reasoning",
			"frame_evidence", "strengths", "weaknesses", "recommended_drills",
			"fatigue_analysis", "match_result", "match_stats", "confidence",
		},
	}
}

func scoutingSchema() *vision.Schema {
	return &vision.Schema{
		Type: "OBJECT",
		Properties: map[string]*vision.Schema{
			"profile":          {Type: "STRING"},
			"attack_patterns":  {Type: "ARRAY", Items: &vision.Schema{Type: "STRING"}},
			"defense_patterns": {Type: "ARRAY", Items: &vision.Schema{Type: "STRING"}},
			"position_tendencies": {
				Type: "OBJECT",
				Properties: map[string]*vision.Schema{
					"standing": {Type: "STRING"},
					"top":      {Type: "STRING"},
					"bottom":   {Type: "STRING"},
				},
				Required: []string{"standing", "top", "bottom"},
			},
			"gameplan": {
				Type: "OBJECT",
				Properties: map[string]*vision.Schema{
					"first_period":     {Type: "STRING"},
					"second_period":    {Type: "STRING"},
					"third_period":     {Type: "STRING"},
					"overall_strategy": {Type: "STRING"},
				},
				Required: []string{"first_period", "second_period", "third_period", "overall_strategy"},
			},
			"frame_evidence": frameEvidenceSchema(),
			"confidence":     {Type: "NUMBER", Description: "0 to 1"},
		},
		Required: []string{
			"profile", "attack_patterns", "defense_patterns",
			"position_tendencies", "gameplan", "frame_evidence", "confidence",
		},
	}
}
