package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInputIsSingleChunk(t *testing.T) {
	chunks := SplitText("short assessment", 1500, 200)
	if len(chunks) != 1 || chunks[0] != "short assessment" {
		t.Fatalf("chunks = %v, want the input untouched", chunks)
	}
}

func TestSplitTextOverlapPreservesBoundaryContext(t *testing.T) {
	text := strings.Repeat("a", 100) + strings.Repeat("b", 100)
	chunks := SplitText(text, 120, 40)

	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want at least 2", len(chunks))
	}
	tail := chunks[0][len(chunks[0])-40:]
	if !strings.HasPrefix(chunks[1], tail) {
		t.Errorf("second chunk does not repeat the 40-char tail of the first")
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Errorf("final chunk %q does not end the input", last)
	}
}

func TestSplitTextOverlapAtLeastChunkSizeStillAdvances(t *testing.T) {
	text := strings.Repeat("x", 50)
	chunks := SplitText(text, 10, 10)

	if len(chunks) != 5 {
		t.Fatalf("chunks = %d, want 5 non-overlapping windows", len(chunks))
	}
	if strings.Join(chunks, "") != text {
		t.Errorf("joined chunks do not reproduce the input")
	}
}
