package frames

import (
	"sort"
	"time"
)

// Header-region similarity below this fraction means the frames differ.
const headerSimilarityFloor = 0.90

type DedupeOptions struct {
	// LengthThresholdPct is the max relative payload-size difference for two
	// frames to count as similar (0.02 = 2%).
	LengthThresholdPct float64
	// HeaderCompareLength is how many leading payload bytes are compared.
	HeaderCompareLength int
	// MinFrames is the floor restored by re-inserting removed frames.
	MinFrames int
	// MaxConsecutiveRemoval caps the original-index gap between kept frames.
	// A candidate further than this from the last kept frame is always kept,
	// which keeps the pass idempotent: forced keeps depend only on immutable
	// frame indices, so a second run re-derives the same decisions.
	MaxConsecutiveRemoval int
}

func DefaultDedupeOptions() DedupeOptions {
	return DedupeOptions{
		LengthThresholdPct:    0.02,
		HeaderCompareLength:   512,
		MinFrames:             8,
		MaxConsecutiveRemoval: 4,
	}
}

type DedupeResult struct {
	Kept            []Frame
	KeptIndices     []int
	RemovedCount    int
	DuplicateGroups int
	Elapsed         time.Duration
}

// Dedupe drops frames that are near-identical to the last kept frame. First
// and last frames always survive. Never returns fewer than MinFrames frames
// when the input has at least that many.
func Dedupe(input []Frame, opts DedupeOptions) DedupeResult {
	start := time.Now()

	if len(input) <= opts.MinFrames || len(input) < 3 {
		return DedupeResult{
			Kept:        append([]Frame(nil), input...),
			KeptIndices: indicesOf(input),
			Elapsed:     time.Since(start),
		}
	}

	kept := []Frame{input[0]}
	var removed []Frame
	duplicateGroups := 0
	inGroup := false

	for i := 1; i < len(input)-1; i++ {
		candidate := input[i]
		lastKept := kept[len(kept)-1]

		gapExceeded := candidate.Index-lastKept.Index > opts.MaxConsecutiveRemoval
		if !gapExceeded && similar(candidate.Data, lastKept.Data, opts) {
			removed = append(removed, candidate)
			if !inGroup {
				duplicateGroups++
				inGroup = true
			}
			continue
		}
		kept = append(kept, candidate)
		inGroup = false
	}
	kept = append(kept, input[len(input)-1])

	// Restore the floor with evenly spaced removed frames.
	if need := opts.MinFrames - len(kept); need > 0 && len(removed) > 0 {
		if need >= len(removed) {
			kept = append(kept, removed...)
		} else {
			for i := 0; i < need; i++ {
				kept = append(kept, removed[i*len(removed)/need])
			}
		}
		sort.Slice(kept, func(a, b int) bool { return kept[a].Index < kept[b].Index })
	}

	return DedupeResult{
		Kept:            kept,
		KeptIndices:     indicesOf(kept),
		RemovedCount:    len(input) - len(kept),
		DuplicateGroups: duplicateGroups,
		Elapsed:         time.Since(start),
	}
}

func similar(a, b []byte, opts DedupeOptions) bool {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return true
	}

	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	if float64(diff)/float64(maxLen) > opts.LengthThresholdPct {
		return false
	}

	return headerSimilarity(a, b, opts.HeaderCompareLength) >= headerSimilarityFloor
}

// headerSimilarity is the fraction of equal bytes across the leading n-byte
// region. Length differences inside the region count as mismatches.
func headerSimilarity(a, b []byte, n int) float64 {
	region := len(a)
	if len(b) > region {
		region = len(b)
	}
	if region > n {
		region = n
	}
	if region == 0 {
		return 1.0
	}

	shared := len(a)
	if len(b) < shared {
		shared = len(b)
	}
	if shared > n {
		shared = n
	}

	matches := 0
	for i := 0; i < shared; i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(region)
}
