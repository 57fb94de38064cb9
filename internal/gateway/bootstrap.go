package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nulzo/openroute/internal/cli"
	"github.com/nulzo/openroute/internal/config"
	"github.com/nulzo/openroute/internal/llm"
	"go.uber.org/zap"
)

const healthTimeout = 5 * time.Second

// BootstrapOptions tunes BootstrapProviders.
type BootstrapOptions struct {
	Router      config.RouterConfig
	SkipHealth  bool
	HealthLimit time.Duration
}

// withRouterDefaults copies router-wide settings into a provider config
// without overriding what the provider sets itself.
func withRouterDefaults(p config.ProviderConfig, r config.RouterConfig) config.ProviderConfig {
	if p.Timeout <= 0 {
		p.Timeout = r.Timeout
	}

	cfg := make(map[string]string, len(p.Config)+2)
	for k, v := range p.Config {
		cfg[k] = v
	}
	if _, ok := cfg["app_name"]; !ok && r.AppName != "" {
		cfg["app_name"] = r.AppName
	}
	if _, ok := cfg["app_url"]; !ok && r.AppURL != "" {
		cfg["app_url"] = r.AppURL
	}
	p.Config = cfg

	return p
}

// BootstrapProviders initializes and registers all enabled providers from configuration.
func BootstrapProviders(ctx context.Context, service Service, providers []config.ProviderConfig, opts BootstrapOptions, log *zap.Logger) int {
	registeredCount := 0
	validate := validator.New()

	limit := opts.HealthLimit
	if limit <= 0 {
		limit = healthTimeout
	}

	for _, pCfg := range providers {
		if !pCfg.Enabled {
			continue
		}

		if err := validate.Struct(&pCfg); err != nil {
			log.Warn(fmt.Sprintf("%s %s %s",
				cli.WarningSign(),
				cli.Stylize(fmt.Sprintf("%s\t", pCfg.ID), cli.Black),
				cli.Stylize("Skipping provider with invalid configuration", cli.Yellow),
			), zap.Error(err))
			continue
		}

		providerInstance, err := llm.New(withRouterDefaults(pCfg, opts.Router))
		if err != nil {
			log.Error("Failed to initialize provider",
				zap.String("id", pCfg.ID),
				zap.Error(err),
			)
			continue
		}

		if !opts.SkipHealth {
			healthCtx, cancel := context.WithTimeout(ctx, limit)
			err := providerInstance.Health(healthCtx)
			cancel()
			if err != nil {
				log.Error("Provider unhealthy, skipping registration",
					zap.String("id", pCfg.ID),
					zap.Error(err))
				continue
			}
		}

		if err := service.RegisterProvider(ctx, providerInstance); err != nil {
			log.Error("Failed to register provider", zap.String("id", pCfg.ID), zap.Error(err))
			continue
		}

		log.Info(fmt.Sprintf("%s %s", cli.CheckMark(), cli.Stylize(pCfg.ID, cli.Green)),
			zap.String("type", pCfg.Type))
		registeredCount++
	}

	if registeredCount == 0 {
		log.Warn("No providers were registered. API will not function correctly.")
	}

	return registeredCount
}
