package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nulzo/openroute/internal/config"
	"github.com/nulzo/openroute/internal/httpclient"
	"github.com/nulzo/openroute/internal/llm"
	"github.com/nulzo/openroute/internal/platform/logger"
	"github.com/nulzo/openroute/pkg/api"
	"go.uber.org/zap"
)

const DefaultTimeout = 60 * time.Second

// default endpoints of the OpenAI-compatible APIs this adapter speaks to
var defaultBaseURLs = map[llm.ProviderName]string{
	llm.OpenAI:     "https://api.openai.com/v1",
	llm.OpenRouter: "https://openrouter.ai/api/v1",
	llm.Groq:       "https://api.groq.com/openai/v1",
}

func init() {
	for name := range defaultBaseURLs {
		llm.Register(string(name), NewAdapter)
	}
}

// Adapter dispatches chat completions to one OpenAI-compatible endpoint.
type Adapter struct {
	config config.ProviderConfig
	client httpclient.HTTPClient
	log    *zap.Logger
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	a, err := NewAdapterWithClient(cfg, nil)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// NewAdapterWithClient is NewAdapter with an injectable transport.
func NewAdapterWithClient(cfg config.ProviderConfig, client httpclient.HTTPClient) (*Adapter, error) {
	if cfg.Type == "" {
		cfg.Type = string(llm.OpenAI)
	}
	if cfg.BaseURL == "" {
		base, ok := defaultBaseURLs[llm.ProviderName(cfg.Type)]
		if !ok {
			return nil, fmt.Errorf("no default base url for provider type %q", cfg.Type)
		}
		cfg.BaseURL = base
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Adapter{
		config: cfg,
		client: client,
		log:    logger.With(zap.String("provider", cfg.ID)),
	}, nil
}

// WithLogger swaps the adapter's logger, keeping the provider field.
func (a *Adapter) WithLogger(l *zap.Logger) *Adapter {
	a.log = l.With(zap.String("provider", a.config.ID))
	return a
}

func (a *Adapter) Name() string {
	return a.config.ID
}

func (a *Adapter) Type() string {
	return a.config.Type
}

func (a *Adapter) headers() map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + a.config.APIKey,
		"HTTP-Referer":  a.config.Config["app_url"],
		"X-Title":       a.config.Config["app_name"],
	}
	if org, ok := a.config.Config["organization"]; ok {
		headers["OpenAI-Organization"] = org
	}
	return headers
}

func (a *Adapter) url(path string) string {
	return strings.TrimRight(a.config.BaseURL, "/") + path
}

// upstreamErrorResponse mirrors the standard OpenAI error shape
type upstreamErrorResponse struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Param   interface{} `json:"param"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

func (a *Adapter) handleUpstreamError(err error) error {
	var upstreamErr *httpclient.UpstreamError
	if !errors.As(err, &upstreamErr) {
		return err
	}

	var apiErr upstreamErrorResponse
	if jsonErr := json.Unmarshal(upstreamErr.Body, &apiErr); jsonErr != nil || apiErr.Error.Message == "" {
		return api.NewError(
			upstreamErr.StatusCode,
			"Upstream Error",
			string(upstreamErr.Body),
			api.WithLog(err),
		)
	}

	return api.NewError(
		upstreamErr.StatusCode,
		"Upstream Provider Error",
		apiErr.Error.Message,
		api.WithExtension("upstream_code", apiErr.Error.Code),
		api.WithExtension("upstream_type", apiErr.Error.Type),
		api.WithExtension("upstream_param", apiErr.Error.Param),
		api.WithLog(err),
	)
}

// Chat performs a single chat completion for req.Model. Failures are logged
// here and returned to the caller unclassified.
func (a *Adapter) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	model := req.Model
	a.log.Info("Attempting request to model", zap.String("model", model))

	var resp api.ChatResponse
	err := httpclient.SendRequest(ctx, a.client, http.MethodPost, a.url("/chat/completions"), a.headers(), req.Clone(model), &resp)
	if err != nil {
		a.logFailure(model, err)
		return nil, a.handleUpstreamError(err)
	}

	a.log.Info("Success with model", zap.String("model", model))
	if resp.Provider == "" {
		resp.Provider = a.config.ID
	}
	return &resp, nil
}

func (a *Adapter) logFailure(model string, err error) {
	var upstreamErr *httpclient.UpstreamError
	switch {
	case httpclient.IsTimeout(err):
		a.log.Error("Timeout with model", zap.String("model", model))
	case errors.As(err, &upstreamErr):
		a.log.Warn("Failed with model",
			zap.String("model", model),
			zap.Int("status", upstreamErr.StatusCode),
			zap.ByteString("body", upstreamErr.Body),
		)
	default:
		a.log.Error("Request exception with model", zap.String("model", model), zap.Error(err))
	}
}

// Models fetches the live model listing.
func (a *Adapter) Models(ctx context.Context) ([]api.Model, error) {
	var list api.ModelList
	if err := httpclient.SendRequest(ctx, a.client, http.MethodGet, a.url("/models"), a.headers(), nil, &list); err != nil {
		return nil, a.handleUpstreamError(err)
	}
	for i := range list.Data {
		if list.Data[i].Provider == "" {
			list.Data[i].Provider = a.config.ID
		}
	}
	return list.Data, nil
}

func (a *Adapter) Health(ctx context.Context) error {
	if err := httpclient.SendRequest(ctx, a.client, http.MethodGet, a.url("/models"), a.headers(), nil, nil); err != nil {
		var upstreamErr *httpclient.UpstreamError
		if errors.As(err, &upstreamErr) {
			return fmt.Errorf("health check failed with status: %d", upstreamErr.StatusCode)
		}
		return err
	}
	return nil
}
