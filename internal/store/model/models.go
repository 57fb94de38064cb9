package model

import (
	"time"
)

// RouteLog captures one fallback routing call.
type RouteLog struct {
	ID             string    `db:"id" json:"id"`
	AppName        string    `db:"app_name" json:"app_name"`
	APIKeyID       string    `db:"api_key_id" json:"api_key_id"`
	RequestedModel string    `db:"requested_model" json:"requested_model"`
	ModelUsed      string    `db:"model_used" json:"model_used"`
	Success        bool      `db:"success" json:"success"`
	AttemptNumber  int       `db:"attempt_number" json:"attempt_number"`
	Candidates     int       `db:"candidates" json:"candidates"`
	Error          string    `db:"error" json:"error"`
	UpstreamID     string    `db:"upstream_id" json:"upstream_id"`
	FinishReason   string    `db:"finish_reason" json:"finish_reason"`
	InputTokens    int       `db:"input_tokens" json:"input_tokens"`
	OutputTokens   int       `db:"output_tokens" json:"output_tokens"`
	LatencyMS      int64     `db:"latency_ms" json:"latency_ms"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`

	Attempts []AttemptLog `db:"-" json:"attempts,omitempty"`
}

// AttemptLog is one dispatcher call inside a RouteLog.
type AttemptLog struct {
	RouteID   string    `db:"route_id" json:"-"`
	Number    int       `db:"number" json:"number"`
	Model     string    `db:"model" json:"model"`
	Success   bool      `db:"success" json:"success"`
	Error     string    `db:"error" json:"error,omitempty"`
	LatencyMS int64     `db:"latency_ms" json:"latency_ms"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DailyStats represents aggregated usage data for a specific day.
type DailyStats struct {
	Date            string  `db:"date" json:"date"`
	TotalRequests   int     `db:"total_requests" json:"total_requests"`
	Succeeded       int     `db:"succeeded" json:"succeeded"`
	TotalTokens     int     `db:"total_tokens" json:"total_tokens"`
	AverageAttempts float64 `db:"avg_attempts" json:"avg_attempts"`
	AverageLatency  float64 `db:"avg_latency" json:"avg_latency"`
}

// ModelStats summarizes how often a model answered when it was tried.
type ModelStats struct {
	Model          string  `db:"model" json:"model"`
	Attempts       int     `db:"attempts" json:"attempts"`
	Successes      int     `db:"successes" json:"successes"`
	AverageLatency float64 `db:"avg_latency" json:"avg_latency"`
}
