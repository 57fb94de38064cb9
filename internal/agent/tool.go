package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/nulzo/openroute/pkg/api"
)

// Tool is a function the model may call.
type Tool interface {
	Function() api.FunctionDescription
	Call(ctx context.Context, args map[string]interface{}) (string, error)
}

// Registry is a threadsafe set of tools keyed by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.Set(t)
	}
	return r
}

func (r *Registry) Set(t Tool) {
	r.mu.Lock()
	r.tools[t.Function().Name] = t
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns the tools in request form, sorted by name.
func (r *Registry) Definitions() []api.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]api.Tool, 0, len(names))
	for _, name := range names {
		out = append(out, api.Tool{Type: "function", Function: r.tools[name].Function()})
	}
	return out
}

// Invoke runs call and folds any failure into the returned text, so the
// model gets to see it.
func (r *Registry) Invoke(ctx context.Context, call api.ToolCall) string {
	t, ok := r.Get(call.Function.Name)
	if !ok {
		return "ERROR: unknown tool call: " + call.Function.Name
	}

	args := map[string]interface{}{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return fmt.Sprintf("ERROR: invalid arguments for %s: %v", call.Function.Name, err)
		}
	}

	out, err := t.Call(ctx, args)
	if err != nil {
		return fmt.Sprintf("ERROR: failed to run tool: %v, error: %v", call.Function.Name, err)
	}
	return out
}
