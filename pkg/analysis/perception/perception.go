package perception

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"matvision-be/internal/constant"
	"matvision-be/pkg/analysis/frames"
	"matvision-be/pkg/vision"
)

const (
	batchSize     = 5
	maxBatches    = 15
	coverageFloor = 0.70
)

// Identification describes the two participants so the model can keep them
// apart across frames. All fields optional.
type Identification struct {
	AthleteUniform  string
	OpponentUniform string
	AthleteSide     string // left | right at match start
	ReferenceFrame  []byte // single static frame showing the athlete
}

type Options struct {
	Model          string
	MimeType       string
	Identification *Identification
	// RetryAttempts is how many extra tries a failed batch gets before it
	// degrades to an empty observation set.
	RetryAttempts int
}

func DefaultOptions() Options {
	return Options{
		MimeType:      "image/jpeg",
		RetryAttempts: 1,
	}
}

type Result struct {
	Observations       []Observation
	IdentityConfidence float64
	PositionConfidence map[Position]float64
	CoverageRatio      float64
	CoverageWarning    bool
	Batches            int
	FailedBatches      int
	// LastError is the most recent batch failure, kept so a systematic
	// upstream problem (bad credentials, rate limits) stays diagnosable
	// after every batch has degraded to nothing.
	LastError error
	Elapsed   time.Duration
}

// CriticalCount is the number of CRITICAL observations, used by cross-pass
// validation as the ceiling for claimed scoring events.
func (r *Result) CriticalCount() int {
	n := 0
	for _, obs := range r.Observations {
		if obs.Significance == SignificanceCritical {
			n++
		}
	}
	return n
}

// Run submits frames in parallel fixed-size batches and merges observations
// by frame index. A batch that cannot be parsed contributes nothing instead
// of failing the stage.
func Run(ctx context.Context, provider vision.Provider, input []frames.Frame, opts Options) Result {
	start := time.Now()
	if len(input) == 0 {
		return Result{PositionConfidence: map[Position]float64{}, Elapsed: time.Since(start)}
	}
	if opts.MimeType == "" {
		opts.MimeType = "image/jpeg"
	}

	batches := capBatches(chunk(input, batchSize))
	observationsPerBatch := make([][]Observation, len(batches))
	batchErrs := make([]error, len(batches))

	var wg sync.WaitGroup
	for bi, batch := range batches {
		wg.Add(1)
		go func(bi int, batch []frames.Frame) {
			defer wg.Done()
			obs, err := observeBatch(ctx, provider, batch, opts)
			for attempt := 0; err != nil && attempt < opts.RetryAttempts; attempt++ {
				if !sleepJitter(ctx) {
					break
				}
				obs, err = observeBatch(ctx, provider, batch, opts)
			}
			if err != nil {
				batchErrs[bi] = err
				return
			}
			observationsPerBatch[bi] = obs
		}(bi, batch)
	}
	wg.Wait()

	result := Result{Batches: len(batches)}
	for bi := range batches {
		if batchErrs[bi] != nil {
			result.FailedBatches++
			result.LastError = batchErrs[bi]
		}
		result.Observations = append(result.Observations, observationsPerBatch[bi]...)
	}
	sort.Slice(result.Observations, func(a, b int) bool {
		return result.Observations[a].FrameIndex < result.Observations[b].FrameIndex
	})

	// Submitted frame count, not original capture count: the cap may have
	// dropped whole batches and those frames should not dent coverage.
	submitted := 0
	for _, b := range batches {
		submitted += len(b)
	}
	result.CoverageRatio = float64(len(result.Observations)) / float64(submitted)
	result.CoverageWarning = result.CoverageRatio < coverageFloor
	result.IdentityConfidence = identityConfidence(result.Observations)
	result.PositionConfidence = positionConfidence(result.Observations)
	result.Elapsed = time.Since(start)
	return result
}

func chunk(input []frames.Frame, size int) [][]frames.Frame {
	var out [][]frames.Frame
	for start := 0; start < len(input); start += size {
		end := start + size
		if end > len(input) {
			end = len(input)
		}
		out = append(out, input[start:end])
	}
	return out
}

// capBatches bounds worst-case cost: first and last batch always run, the
// middle is evenly re-sampled down to the cap.
func capBatches(batches [][]frames.Frame) [][]frames.Frame {
	if len(batches) <= maxBatches {
		return batches
	}
	middle := batches[1 : len(batches)-1]
	need := maxBatches - 2

	out := make([][]frames.Frame, 0, maxBatches)
	out = append(out, batches[0])
	for i := 0; i < need; i++ {
		out = append(out, middle[i*len(middle)/need])
	}
	out = append(out, batches[len(batches)-1])
	return out
}

func sleepJitter(ctx context.Context) bool {
	delay := time.Duration(300+rand.Intn(500)) * time.Millisecond
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

func identityConfidence(observations []Observation) float64 {
	visible, consistent := 0, 0
	for _, obs := range observations {
		if obs.AthleteVisible {
			visible++
			if obs.IdentityConsistent {
				consistent++
			}
		}
	}
	if visible == 0 {
		return 0
	}
	return float64(consistent) / float64(visible)
}

func positionConfidence(observations []Observation) map[Position]float64 {
	out := map[Position]float64{}
	if len(observations) == 0 {
		return out
	}
	for _, obs := range observations {
		out[obs.Position]++
	}
	for pos := range out {
		out[pos] /= float64(len(observations))
	}
	return out
}

func observeBatch(ctx context.Context, provider vision.Provider, batch []frames.Frame, opts Options) ([]Observation, error) {
	parts := []*vision.Part{vision.TextPart(buildPrompt(batch, opts.Identification))}
	if opts.Identification != nil && len(opts.Identification.ReferenceFrame) > 0 {
		parts = append(parts, vision.TextPart("Reference image of the ATHLETE:"))
		parts = append(parts, vision.ImagePart(opts.MimeType, opts.Identification.ReferenceFrame))
	}
	for _, f := range batch {
		parts = append(parts, vision.TextPart(fmt.Sprintf("Frame %d:", f.Index)))
		parts = append(parts, vision.ImagePart(opts.MimeType, f.Data))
	}

	callOpts := []vision.Option{
		vision.WithTemperature(0.2),
		vision.WithJSONSchema(observationSchema()),
	}
	if opts.Model != "" {
		callOpts = append(callOpts, vision.WithModel(opts.Model))
	}

	res, err := provider.GenerateContent(ctx, []*vision.Content{vision.UserContent(parts...)}, callOpts...)
	if err != nil {
		return nil, err
	}

	raw := vision.StripFences([]byte(res.Text()))
	var observations []Observation
	if err := json.Unmarshal(raw, &observations); err != nil {
		extracted := vision.ExtractJSONArray(string(raw))
		if extracted == "" {
			return nil, err
		}
		if err2 := json.Unmarshal([]byte(extracted), &observations); err2 != nil {
			return nil, err2
		}
	}

	valid := make(map[int]bool, len(batch))
	for _, f := range batch {
		valid[f.Index] = true
	}
	out := make([]Observation, 0, len(observations))
	for _, obs := range observations {
		if !valid[obs.FrameIndex] {
			continue
		}
		out = append(out, normalize(obs))
	}
	return out, nil
}

func normalize(obs Observation) Observation {
	switch obs.Position {
	case PositionStanding, PositionTop, PositionBottom, PositionTransition, PositionNotVisible:
	default:
		obs.Position = PositionTransition
	}
	switch obs.Significance {
	case SignificanceCritical, SignificanceImportant, SignificanceContext, SignificanceSkip:
	default:
		obs.Significance = SignificanceContext
	}
	return obs
}

func buildPrompt(batch []frames.Frame, ident *Identification) string {
	var sb strings.Builder
	sb.WriteString("You are analyzing wrestling match footage frame by frame.\n\n")

	if ident != nil {
		sb.WriteString("PARTICIPANTS:\n")
		if ident.AthleteUniform != "" {
			sb.WriteString(fmt.Sprintf("- ATHLETE wears: %s\n", ident.AthleteUniform))
		}
		if ident.OpponentUniform != "" {
			sb.WriteString(fmt.Sprintf("- OPPONENT wears: %s\n", ident.OpponentUniform))
		}
		if ident.AthleteSide != "" {
			sb.WriteString(fmt.Sprintf("- At match start the ATHLETE is on the %s side\n", ident.AthleteSide))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(constant.ObservationRulesPromptBlock)
	sb.WriteString("\n\n")
	sb.WriteString(constant.SignificancePromptBlock)
	sb.WriteString("\n\n")

	sb.WriteString("Frames in this batch: ")
	for i, f := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%d", f.Index))
	}
	sb.WriteString(fmt.Sprintf("\n\nRespond with a JSON array of exactly %d observations, one per frame, in frame order.", len(batch)))
	return sb.String()
}

func observationSchema() *vision.Schema {
	poseSchema := &vision.Schema{
		Type: "OBJECT",
		Properties: map[string]*vision.Schema{
			"stance_height":       {Type: "STRING", Enum: []string{"low", "medium", "high"}},
			"knee_bend":           {Type: "STRING", Enum: []string{"deep", "slight", "straight"}},
			"weight_distribution": {Type: "STRING", Enum: []string{"forward", "balanced", "backward"}},
			"entanglement":        {Type: "STRING", Enum: []string{"none", "light", "heavy"}},
		},
		Required: []string{"stance_height", "knee_bend", "weight_distribution", "entanglement"},
		Nullable: true,
	}

	return &vision.Schema{
		Type: "ARRAY",
		Items: &vision.Schema{
			Type: "OBJECT",
			Properties: map[string]*vision.Schema{
				"frame_index": {Type: "INTEGER"},
				"position": {
					Type: "STRING",
					Enum: []string{"standing", "top", "bottom", "transition", "not_visible"},
				},
				"body_position":       {Type: "STRING"},
				"contact":             {Type: "STRING"},
				"action":              {Type: "STRING", Description: "prefix with ATHLETE: or OPPONENT:"},
				"significance":        {Type: "STRING", Enum: []string{"CRITICAL", "IMPORTANT", "CONTEXT", "SKIP"}},
				"athlete_visible":     {Type: "BOOLEAN"},
				"identity_consistent": {Type: "BOOLEAN"},
				"pose":                poseSchema,
			},
			Required: []string{"frame_index", "position", "body_position", "contact", "action", "significance", "athlete_visible", "identity_consistent"},
		},
	}
}
