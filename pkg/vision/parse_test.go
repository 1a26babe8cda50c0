package vision

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json untouched",
			input:    `{"a":1}`,
			expected: `{"a":1}`,
		},
		{
			name:     "json fence",
			input:    "```json\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "bare fence",
			input:    "```\n{\"a\":1}\n```",
			expected: `{"a":1}`,
		},
		{
			name:     "surrounding whitespace",
			input:    "  \n```json\n{\"a\":1}\n```  \n",
			expected: `{"a":1}`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(StripFences([]byte(tt.input)))
			if got != tt.expected {
				t.Errorf("StripFences(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "object with prose around it",
			input:    "Here is the result: {\"score\": 72} hope it helps",
			expected: `{"score": 72}`,
		},
		{
			name:     "nested object keeps outermost braces",
			input:    `{"a":{"b":1}}`,
			expected: `{"a":{"b":1}}`,
		},
		{
			name:     "no object",
			input:    "no json here",
			expected: "",
		},
		{
			name:     "reversed braces",
			input:    "} {",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			if got != tt.expected {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "array with fences",
			input:    "```json\n[{\"frame\":0}]\n```",
			expected: `[{"frame":0}]`,
		},
		{
			name:     "no array",
			input:    `{"frame":0}`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSONArray(tt.input)
			if got != tt.expected {
				t.Errorf("ExtractJSONArray(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
