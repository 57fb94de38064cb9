package api

// ErrAllModelsFailed is the message carried by a failed RouteResult.
const ErrAllModelsFailed = "All models failed to respond"

// RouteResult is the outcome of one fallback routing call.
// ModelUsed is nil unless the call succeeded.
type RouteResult struct {
	Success       bool          `json:"success"`
	ModelUsed     *string       `json:"model_used"`
	AttemptNumber int           `json:"attempt_number"`
	Response      *ChatResponse `json:"response,omitempty"`
	Error         string        `json:"error,omitempty"`

	Attempts []Attempt `json:"attempts,omitempty"`
}

// Model returns the model that served the request, or "".
func (r *RouteResult) Model() string {
	if r == nil || r.ModelUsed == nil {
		return ""
	}
	return *r.ModelUsed
}

// Attempt records a single dispatcher call made while routing.
type Attempt struct {
	Number    int    `json:"number"`
	Model     string `json:"model"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}
