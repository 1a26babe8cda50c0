package utils

// SplitText splits a long string into chunks of approximately 'chunkSize' characters,
// with 'overlap' characters repeated across boundaries so context survives the cut.
// The embedding consumer feeds it rendered assessment documents (narrative plus
// scoring rationale) at 1500/200; those are prose, so a character-based split is
// fine and a tokenizer-aware one would be overkill.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
