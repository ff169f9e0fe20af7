package models

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// ChatResponse carries the rendered answer plus a TTS-friendly variant.
type ChatResponse struct {
	Response string `json:"response"`
	Speech   string `json:"speech,omitempty"`
}

// ErrorResponse is returned on validation failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ContextChunk is one candidate piece of grounding text produced by the
// retrieval layer for a single query. It lives for the duration of one
// request only.
type ContextChunk struct {
	Content        string  `json:"content"`
	Source         string  `json:"source"`
	RelevanceScore float64 `json:"relevance_score"`
}
