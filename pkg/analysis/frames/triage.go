package frames

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"matvision-be/pkg/vision"
)

type ActionClass string

const (
	ClassWrestlingAction ActionClass = "wrestling_action"
	ClassTransition      ActionClass = "transition"
	ClassNeutralStance   ActionClass = "neutral_stance"
	ClassNoAction        ActionClass = "no_action"
	ClassUnclear         ActionClass = "unclear"
)

type Intensity string

const (
	IntensityNone   Intensity = "none"
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

func intensityRank(i Intensity) int {
	switch i {
	case IntensityHigh:
		return 3
	case IntensityMedium:
		return 2
	case IntensityLow:
		return 1
	default:
		return 0
	}
}

type TriageOptions struct {
	MinIntensity            Intensity
	AlwaysIncludeEdgeFrames int
	MaxOutputFrames         int
	BatchSize               int
	Model                   string
	MimeType                string
}

func DefaultTriageOptions() TriageOptions {
	return TriageOptions{
		MinIntensity:            IntensityLow,
		AlwaysIncludeEdgeFrames: 2,
		MaxOutputFrames:         60,
		BatchSize:               10,
		MimeType:                "image/jpeg",
	}
}

type Verdict struct {
	FrameIndex int         `json:"frame_index"`
	Class      ActionClass `json:"class"`
	Position   string      `json:"position"`
	Intensity  Intensity   `json:"intensity"`
	FailedOpen bool        `json:"-"`
}

type TriageResult struct {
	Verdicts      []Verdict
	Included      []Frame
	FailedBatches int
	Elapsed       time.Duration
}

// SurvivalRatio is how much of the input the triage kept. Callers reject the
// result below 0.6 and analyze everything instead.
func (r *TriageResult) SurvivalRatio(inputLen int) float64 {
	if inputLen == 0 {
		return 1.0
	}
	return float64(len(r.Included)) / float64(inputLen)
}

// Triage classifies frames in concurrent batches and keeps the ones showing
// action. A failed batch fails open: its frames come back included at medium
// intensity, trading cost for coverage. Triage itself never errors.
func Triage(ctx context.Context, provider vision.Provider, input []Frame, opts TriageOptions) TriageResult {
	start := time.Now()
	if len(input) == 0 {
		return TriageResult{Elapsed: time.Since(start)}
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.MimeType == "" {
		opts.MimeType = "image/jpeg"
	}

	batches := chunkFrames(input, opts.BatchSize)
	verdictsPerBatch := make([][]Verdict, len(batches))
	failed := make([]bool, len(batches))

	var wg sync.WaitGroup
	for bi, batch := range batches {
		wg.Add(1)
		go func(bi int, batch []Frame) {
			defer wg.Done()
			verdicts, err := classifyBatch(ctx, provider, batch, opts)
			if err != nil {
				failed[bi] = true
				verdictsPerBatch[bi] = failOpenVerdicts(batch)
				return
			}
			verdictsPerBatch[bi] = verdicts
		}(bi, batch)
	}
	wg.Wait()

	result := TriageResult{}
	verdictByIndex := make(map[int]Verdict, len(input))
	for bi := range batches {
		if failed[bi] {
			result.FailedBatches++
		}
		for _, v := range verdictsPerBatch[bi] {
			verdictByIndex[v.FrameIndex] = v
		}
	}

	// Frames the model skipped in an otherwise parsable response also fail open.
	for _, f := range input {
		if _, ok := verdictByIndex[f.Index]; !ok {
			verdictByIndex[f.Index] = failOpenVerdict(f.Index)
		}
	}

	type ranked struct {
		frame Frame
		pos   int
		edge  bool
		rank  int
	}
	var included []ranked
	for pos, f := range input {
		v := verdictByIndex[f.Index]
		result.Verdicts = append(result.Verdicts, v)

		edge := pos < opts.AlwaysIncludeEdgeFrames || pos >= len(input)-opts.AlwaysIncludeEdgeFrames
		actionClass := v.Class != ClassNoAction && v.Class != ClassUnclear
		if edge || (actionClass && intensityRank(v.Intensity) >= intensityRank(opts.MinIntensity)) {
			included = append(included, ranked{frame: f, pos: pos, edge: edge, rank: intensityRank(v.Intensity)})
		}
	}

	if opts.MaxOutputFrames > 0 && len(included) > opts.MaxOutputFrames {
		sort.SliceStable(included, func(a, b int) bool {
			if included[a].edge != included[b].edge {
				return included[a].edge
			}
			return included[a].rank > included[b].rank
		})
		included = included[:opts.MaxOutputFrames]
		sort.Slice(included, func(a, b int) bool { return included[a].pos < included[b].pos })
	}

	for _, r := range included {
		result.Included = append(result.Included, r.frame)
	}
	result.Elapsed = time.Since(start)
	return result
}

func chunkFrames(input []Frame, size int) [][]Frame {
	var out [][]Frame
	for start := 0; start < len(input); start += size {
		end := start + size
		if end > len(input) {
			end = len(input)
		}
		out = append(out, input[start:end])
	}
	return out
}

func failOpenVerdict(frameIndex int) Verdict {
	return Verdict{
		FrameIndex: frameIndex,
		Class:      ClassWrestlingAction,
		Position:   "unknown",
		Intensity:  IntensityMedium,
		FailedOpen: true,
	}
}

func failOpenVerdicts(batch []Frame) []Verdict {
	out := make([]Verdict, 0, len(batch))
	for _, f := range batch {
		out = append(out, failOpenVerdict(f.Index))
	}
	return out
}

func classifyBatch(ctx context.Context, provider vision.Provider, batch []Frame, opts TriageOptions) ([]Verdict, error) {
	parts := []*vision.Part{vision.TextPart(buildTriagePrompt(batch))}
	for _, f := range batch {
		parts = append(parts, vision.TextPart(fmt.Sprintf("Frame %d:", f.Index)))
		parts = append(parts, vision.ImagePart(opts.MimeType, f.Data))
	}

	callOpts := []vision.Option{
		vision.WithTemperature(0.1),
		vision.WithJSONSchema(triageSchema()),
	}
	if opts.Model != "" {
		callOpts = append(callOpts, vision.WithModel(opts.Model))
	}

	res, err := provider.GenerateContent(ctx, []*vision.Content{vision.UserContent(parts...)}, callOpts...)
	if err != nil {
		return nil, err
	}

	raw := vision.StripFences([]byte(res.Text()))
	var verdicts []Verdict
	if err := json.Unmarshal(raw, &verdicts); err != nil {
		if extracted := vision.ExtractJSONArray(string(raw)); extracted != "" {
			if err2 := json.Unmarshal([]byte(extracted), &verdicts); err2 != nil {
				return nil, err2
			}
		} else {
			return nil, err
		}
	}

	valid := make(map[int]bool, len(batch))
	for _, f := range batch {
		valid[f.Index] = true
	}
	out := make([]Verdict, 0, len(verdicts))
	for _, v := range verdicts {
		if !valid[v.FrameIndex] {
			continue
		}
		out = append(out, normalizeVerdict(v))
	}
	return out, nil
}

func normalizeVerdict(v Verdict) Verdict {
	switch v.Class {
	case ClassWrestlingAction, ClassTransition, ClassNeutralStance, ClassNoAction, ClassUnclear:
	default:
		v.Class = ClassUnclear
	}
	switch v.Intensity {
	case IntensityNone, IntensityLow, IntensityMedium, IntensityHigh:
	default:
		v.Intensity = IntensityMedium
	}
	return v
}

func buildTriagePrompt(batch []Frame) string {
	var sb strings.Builder
	sb.WriteString("You are screening wrestling match footage. Classify every frame below.\n\n")
	sb.WriteString("For each frame return:\n")
	sb.WriteString("- frame_index: the number given before the image\n")
	sb.WriteString("- class: wrestling_action | transition | neutral_stance | no_action | unclear\n")
	sb.WriteString("- position: standing | top | bottom | transition | not_visible\n")
	sb.WriteString("- intensity: none | low | medium | high\n\n")
	sb.WriteString("no_action means referees, breaks, crowd shots, or an empty mat. ")
	sb.WriteString("unclear means the image cannot be judged. Do not skip any frame.\n\n")
	sb.WriteString(fmt.Sprintf("Respond with a JSON array of exactly %d objects.", len(batch)))
	return sb.String()
}

func triageSchema() *vision.Schema {
	return &vision.Schema{
		Type: "ARRAY",
		Items: &vision.Schema{
			Type: "OBJECT",
			Properties: map[string]*vision.Schema{
				"frame_index": {Type: "INTEGER"},
				"class": {
					Type: "STRING",
					Enum: []string{"wrestling_action", "transition", "neutral_stance", "no_action", "unclear"},
				},
				"position": {
					Type: "STRING",
					Enum: []string{"standing", "top", "bottom", "transition", "not_visible"},
				},
				"intensity": {
					Type: "STRING",
					Enum: []string{"none", "low", "medium", "high"},
				},
			},
			Required: []string{"frame_index", "class", "position", "intensity"},
		},
	}
}
