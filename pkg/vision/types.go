package vision

import "encoding/base64"

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type Content struct {
	Parts []*Part `json:"parts"`
	Role  string  `json:"role,omitempty"`
}

type GenerationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema  `json:"responseSchema,omitempty"`
}

// Schema is the subset of the generateContent response-schema language the
// pipeline uses. Types follow the wire vocabulary (STRING, NUMBER, INTEGER,
// BOOLEAN, ARRAY, OBJECT).
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Nullable    bool               `json:"nullable,omitempty"`
}

type GenerateRequest struct {
	Contents         []*Content        `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type Candidate struct {
	Content      *Content `json:"content"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type GenerateResponse struct {
	Candidates     []*Candidate    `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
}

// Text returns the first candidate's concatenated text parts.
func (r *GenerateResponse) Text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	out := ""
	for _, part := range r.Candidates[0].Content.Parts {
		out += part.Text
	}
	return out
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

func TextPart(text string) *Part {
	return &Part{Text: text}
}

func ImagePart(mimeType string, data []byte) *Part {
	return &Part{
		InlineData: &InlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(data),
		},
	}
}

func UserContent(parts ...*Part) *Content {
	return &Content{Parts: parts, Role: RoleUser}
}
