package vision

import (
	"bytes"
	"strings"
)

// StripFences removes markdown code fences some models wrap JSON output in,
// even when a JSON mime type was requested.
func StripFences(raw []byte) []byte {
	out := bytes.TrimSpace(raw)
	out = bytes.TrimPrefix(out, []byte("```json"))
	out = bytes.TrimPrefix(out, []byte("```"))
	out = bytes.TrimSuffix(out, []byte("```"))
	return bytes.TrimSpace(out)
}

// ExtractJSON returns the outermost JSON object embedded in free text, or ""
// when there is none.
func ExtractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

// ExtractJSONArray is ExtractJSON for a top-level array payload.
func ExtractJSONArray(response string) string {
	startIdx := strings.Index(response, "[")
	endIdx := strings.LastIndex(response, "]")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}
