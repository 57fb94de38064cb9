// Command openroute talks to the fallback router directly, without the HTTP
// server in between.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/nulzo/openroute/internal/agent"
	"github.com/nulzo/openroute/internal/app"
	"github.com/nulzo/openroute/internal/catalog"
	"github.com/nulzo/openroute/internal/cli"
	"github.com/nulzo/openroute/internal/config"
	"github.com/nulzo/openroute/internal/platform/logger"
	"github.com/nulzo/openroute/pkg/api"
	"go.uber.org/zap"
)

const usage = `usage: openroute <command> [flags]

commands:
  chat    send a prompt through the fallback router
  models  list provider models (use -popular for the curated top list)
  agent   run the weather agent
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if !errors.Is(err, errRouteFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, out io.Writer) error {
	switch command {
	case "chat":
		return chatCmd(ctx, args, out)
	case "models":
		return modelsCmd(ctx, args, out)
	case "agent":
		return agentCmd(ctx, args, out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func setup(ctx context.Context) (*app.App, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// keep the terminal for results, logs only when something is wrong
	level := cfg.Log.Level
	if level == "" || level == "info" {
		level = "warn"
	}
	logger.Initialize(logger.Config{
		Level:       level,
		Format:      cfg.Log.Format,
		EnableColor: logger.DefaultConfig().EnableColor,
	})
	log := logger.Get()

	a, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		return nil, nil, err
	}
	if a.Providers == 0 {
		a.Close()
		return nil, nil, errors.New("no providers available, check the providers section and API keys")
	}
	return a, log, nil
}

func chatCmd(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	models := fs.String("models", "", "comma separated fallback order (default: configured order)")
	temperature := fs.Float64("temperature", 0.7, "sampling temperature")
	maxTokens := fs.Int("max-tokens", 500, "maximum tokens to generate")
	system := fs.String("system", "You are a helpful AI assistant.", "system prompt")
	asJSON := fs.Bool("json", false, "print the full routing result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		return errors.New("chat needs a prompt")
	}

	a, _, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	req := &api.ChatRequest{
		Messages:    buildMessages(*system, prompt),
		Temperature: api.Ptr(*temperature),
		MaxTokens:   *maxTokens,
	}
	result := a.Service.Route(ctx, req, splitModels(*models))

	if *asJSON {
		cli.PrettyPrint(out, result)
	} else {
		printRoute(out, result)
	}
	if !result.Success {
		return errRouteFailed
	}
	return nil
}

func modelsCmd(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	popular := fs.Bool("popular", false, "only show the curated popular models")
	limit := fs.Int("limit", catalog.DefaultPopularLimit, "number of popular models to show")
	search := fs.String("search", "", "filter model IDs by substring")
	export := fs.String("export", "", "write a YAML snapshot of the catalog to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, _, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var list []api.Model
	if *popular {
		list, err = a.Service.PopularModels(ctx, *limit)
	} else {
		list, err = a.Service.ListModels(ctx, api.ModelFilter{ID: *search})
	}
	if err != nil {
		return err
	}

	if *export != "" {
		snap := catalog.NewSnapshot(providerOf(list), list, time.Now())
		if err := catalog.SaveSnapshot(*export, snap); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d models to %s\n", len(list), *export)
		return nil
	}

	if *popular {
		fmt.Fprintf(out, "Top %d Popular Models:\n", len(list))
	} else {
		fmt.Fprintf(out, "Available models (%d):\n", len(list))
	}
	printModels(out, list)
	return nil
}

func agentCmd(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("agent", flag.ContinueOnError)
	models := fs.String("models", "", "comma separated fallback order (default: configured order)")
	maxSteps := fs.Int("max-steps", agent.DefaultMaxSteps, "maximum model calls")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		prompt = "What is the weather in Yorkshire?"
	}

	a, log, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tools := agent.NewRegistry()
	tools.Set(agent.WeatherTool{})

	ag := agent.New(a.Service, tools,
		agent.WithOrder(splitModels(*models)),
		agent.WithMaxSteps(*maxSteps),
		agent.WithLogger(log),
	)

	res, err := ag.Run(ctx, []api.ChatMessage{api.TextMessage(api.User, prompt)})
	printAgent(out, res)
	return err
}
