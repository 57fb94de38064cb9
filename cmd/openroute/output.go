package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nulzo/openroute/internal/agent"
	"github.com/nulzo/openroute/internal/cli"
	"github.com/nulzo/openroute/pkg/api"
)

// errRouteFailed is returned after the failure has already been printed.
var errRouteFailed = errors.New("routing failed")

func buildMessages(system, prompt string) []api.ChatMessage {
	var msgs []api.ChatMessage
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, api.TextMessage(api.System, system))
	}
	return append(msgs, api.TextMessage(api.User, prompt))
}

// splitModels parses a comma separated model list. Blank entries are dropped
// and an empty result means "use the default order".
func splitModels(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if m := strings.TrimSpace(part); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func printRoute(w io.Writer, r *api.RouteResult) {
	if r == nil {
		return
	}

	if !r.Success {
		fmt.Fprintf(w, "%s All models failed after %d attempts\n", cli.CrossMark(), r.AttemptNumber)
		fmt.Fprintf(w, "Error: %s\n", r.Error)
		for _, a := range r.Attempts {
			fmt.Fprintf(w, "  %d. %s: %s\n", a.Number, a.Model, a.Error)
		}
		return
	}

	fmt.Fprintf(w, "%s Success with %s (attempt #%d)\n", cli.CheckMark(), r.Model(), r.AttemptNumber)
	if msg := r.Response.FirstMessage(); msg != nil {
		fmt.Fprintf(w, "\nResponse:\n%s\n", msg.Content.String())
	}
	if r.Response != nil && r.Response.Usage != nil {
		fmt.Fprintf(w, "\nTokens used: %d\n", r.Response.Usage.TotalTokens)
	}
}

// printModels writes one `"name": "id",` line per model, ready to paste into
// a routing table.
func printModels(w io.Writer, models []api.Model) {
	for _, m := range models {
		name := m.Name
		if name == "" {
			name = "N/A"
		}
		fmt.Fprintf(w, "%q: %q,\n", name, m.ID)
	}
}

func printAgent(w io.Writer, res *agent.Result) {
	if res == nil {
		return
	}
	for _, route := range res.Routes {
		if route.Success {
			fmt.Fprintf(w, "%s step served by %s (attempt #%d)\n", cli.Arrow(), route.Model(), route.AttemptNumber)
		}
	}
	for _, m := range res.Messages {
		if m.Role == string(api.ToolRole) {
			fmt.Fprintf(w, "%s tool %s: %s\n", cli.Arrow(), m.Name, m.Content.String())
		}
	}
	if answer := res.Answer(); answer != "" {
		fmt.Fprintf(w, "\n%s\n", answer)
	}
}

// providerOf names the snapshot after the models' provider, or "mixed".
func providerOf(models []api.Model) string {
	if len(models) == 0 {
		return ""
	}
	p := models[0].Provider
	for _, m := range models[1:] {
		if m.Provider != p {
			return "mixed"
		}
	}
	return p
}
