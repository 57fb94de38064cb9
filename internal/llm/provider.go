package llm

import (
	"context"

	"github.com/nulzo/openroute/pkg/api"
)

type ProviderName string

const (
	OpenAI     ProviderName = "openai"
	OpenRouter ProviderName = "openrouter"
	Groq       ProviderName = "groq"
)

// Provider is one OpenAI-compatible chat-completion endpoint.
type Provider interface {
	Name() string
	Type() string
	// Chat performs exactly one upstream call for req.Model.
	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
	// Models lists the models the endpoint currently offers.
	Models(ctx context.Context) ([]api.Model, error)
	Health(ctx context.Context) error
}
