package domain

import "time"

const DefaultExecutionTimeout = 30 * time.Second

type ExecutionRequest struct {
	Code    string
	Timeout time.Duration
}

type ExecutionResult struct {
	Stdout  string  `json:"stdout"`
	Stderr  string  `json:"stderr"`
	Result  *string `json:"result"`
	Success bool    `json:"success"`
}

type DisplayKind string

const (
	DisplayImage DisplayKind = "image"
	DisplayHTML  DisplayKind = "html"
)

// DisplayPayload is a rich output item such as a plot or an HTML fragment.
type DisplayPayload struct {
	Type   DisplayKind `json:"type"`
	Format string      `json:"format,omitempty"`
	Data   string      `json:"data"`
}

type RichExecutionResult struct {
	ExecutionResult
	Displays []DisplayPayload `json:"plots"`
	Results  []MimeBundle     `json:"results"`
}

// MimeBundle maps a mime type to its payload.
type MimeBundle map[string]any

func (b MimeBundle) Text() (string, bool) {
	raw, ok := b["text/plain"]
	if !ok {
		return "", false
	}
	text, ok := raw.(string)
	return text, ok
}

// DisplayFromBundle picks the richest renderable payload from a display_data
// bundle: png, then jpeg, then html.
func DisplayFromBundle(b MimeBundle) (DisplayPayload, bool) {
	if data, ok := b["image/png"].(string); ok {
		return DisplayPayload{Type: DisplayImage, Format: "png", Data: data}, true
	}
	if data, ok := b["image/jpeg"].(string); ok {
		return DisplayPayload{Type: DisplayImage, Format: "jpeg", Data: data}, true
	}
	if data, ok := b["text/html"].(string); ok {
		return DisplayPayload{Type: DisplayHTML, Data: data}, true
	}
	return DisplayPayload{}, false
}
