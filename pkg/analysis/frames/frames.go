// Package frames reduces a raw capture sequence to the frames worth paying
// inference for: near-duplicate removal first, then an intensity triage pass
// against a lightweight classifier model.
package frames

// Frame is an encoded image and its position in the originally submitted
// sequence. Frames are never mutated; Index survives every filtering step so
// downstream results can cite the original capture position.
type Frame struct {
	Index int
	Data  []byte
}

func indicesOf(frames []Frame) []int {
	out := make([]int, len(frames))
	for i, f := range frames {
		out[i] = f.Index
	}
	return out
}
