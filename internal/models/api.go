package models

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Query           string   `json:"query" binding:"required"`
	DocumentIDs     []string `json:"documentIds"`
	DocumentContext string   `json:"documentContext"`
}

// ChatResponse is the payload returned to the UI for a single query.
type ChatResponse struct {
	LLMResponse   string              `json:"llmResponse"`
	Sources       []DocumentReference `json:"sources"`
	SearchResults []SearchResult      `json:"searchResults"`
	Images        []ImageResult       `json:"images"`
	Videos        []VideoResult       `json:"videos"`
	Error         bool                `json:"error,omitempty"`
	ResponseTime  int                 `json:"response_time_ms"`
}

// SearchResult is a normalized web search hit. Ephemeral, produced fresh per
// query and never persisted.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Favicon string `json:"favicon,omitempty"`
}

type ImageResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

type VideoResult struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// DocumentReference is a read-only projection of a stored document. The query
// path consumes it and never mutates the underlying row.
type DocumentReference struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// AnswerResult is the orchestrator's output for one query-answer cycle.
// Immutable once returned.
type AnswerResult struct {
	LLMResponse   string
	Sources       []DocumentReference
	SearchResults []SearchResult
	Images        []ImageResult
	Videos        []VideoResult
	Error         bool
	ModelUsed     string
	TokensUsed    int
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
