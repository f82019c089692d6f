// Package app wires configuration into the service graph: redis, the triage
// assessor, the facility client and the per-connection voice orchestrator
// factory.
package app

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-redis/redis"

	"github.com/aidra-health/aidra/internal/config"
	"github.com/aidra-health/aidra/internal/facility"
	wshandler "github.com/aidra-health/aidra/internal/handlers/websocket"
	"github.com/aidra-health/aidra/internal/server"
	"github.com/aidra-health/aidra/internal/voice"
	"github.com/aidra-health/aidra/internal/voice/wsdialogue"
	"github.com/aidra-health/aidra/pkg/Logger"
	"github.com/aidra-health/aidra/pkg/assessor"
)

type App struct {
	Config   *config.Settings
	Logger   *Logger.Logger
	RC       *redis.Client
	Assessor assessor.Assessor
	Registry *wshandler.Registry
	Deps     server.Dependencies
}

func New(cfg *config.Settings, logger *Logger.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	a.RC = newRedisClient(cfg.Redis, logger)

	var err error
	a.Assessor, err = NewAssessor(cfg.Assessor, logger.Named("assessor"))
	if err != nil {
		return nil, fmt.Errorf("app: building assessor: %w", err)
	}

	facilityClient := facility.NewClient(
		cfg.Facility.BaseURL,
		cfg.Facility.APIKey,
		cfg.Facility.DefaultRadiusKM,
		a.RC,
		time.Duration(cfg.Facility.CacheTTLMins)*time.Minute,
		logger.Named("facility"),
	)

	a.Registry = wshandler.NewRegistry(logger.Named("registry"))
	ws := wshandler.NewHandler(a.orchestratorFactory(), a.Registry, logger.Named("ws"))

	a.Deps = server.NewServerDependencies(a.Assessor, facilityClient, ws, a.Registry, cfg, logger)
	return a, nil
}

// orchestratorFactory builds one voice orchestrator per client connection.
// Each client gets its own provider link, queue, session tracker and
// connection monitor.
func (a *App) orchestratorFactory() wshandler.OrchestratorFactory {
	cfg := a.Config.Voice
	return func() *voice.Orchestrator {
		logger := a.Logger.Named("voice")

		provider := wsdialogue.New(wsdialogue.Config{
			URL:     cfg.ProviderURL,
			APIKey:  cfg.ProviderAPIKey,
			AgentID: cfg.AgentID,
		}, logger)

		prober := voice.NewHTTPProber(probeURL(cfg.ProviderURL), cfg.ProbeTimeout())

		mcfg := voice.DefaultMonitorConfig()
		mcfg.CheckInterval = cfg.CheckInterval()
		mcfg.ProbeTimeout = cfg.ProbeTimeout()
		if cfg.MaxProbeRetries > 0 {
			mcfg.MaxRetries = cfg.MaxProbeRetries
		}
		if cfg.MaxReconnects > 0 {
			mcfg.MaxReconnects = cfg.MaxReconnects
		}
		if cfg.ReconnectBaseMS > 0 {
			mcfg.ReconnectBase = time.Duration(cfg.ReconnectBaseMS) * time.Millisecond
		}
		if cfg.ReconnectCapMS > 0 {
			mcfg.ReconnectCap = time.Duration(cfg.ReconnectCapMS) * time.Millisecond
		}
		monitor := voice.NewConnectionMonitor(prober, mcfg, nil, logger.Named("monitor"))

		ocfg := voice.DefaultOrchestratorConfig()
		ocfg.QueueCapacity = cfg.QueueCapacity
		if cfg.NotifyThrottleSecs > 0 {
			ocfg.NotifyThrottle = time.Duration(cfg.NotifyThrottleSecs) * time.Second
		}
		return voice.NewOrchestrator(provider, monitor, ocfg, logger)
	}
}

// Shutdown releases shared resources. Per-connection orchestrators shut
// down with their websocket handlers.
func (a *App) Shutdown() {
	a.Registry.Shutdown()
	if a.RC != nil {
		if err := a.RC.Close(); err != nil {
			a.Logger.Warnf("closing redis: %v", err)
		}
	}
}

func newRedisClient(cfg config.RedisConfig, logger *Logger.Logger) *redis.Client {
	if cfg.Addr == "" {
		logger.Info("redis not configured, facility cache disabled")
		return nil
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rc.Ping().Err(); err != nil {
		logger.Warnf("redis unreachable at %s, facility cache disabled: %v", cfg.Addr, err)
		_ = rc.Close()
		return nil
	}
	return rc
}

// probeURL derives the provider's HTTP health endpoint from its websocket
// URL.
func probeURL(providerURL string) string {
	u, err := url.Parse(providerURL)
	if err != nil || u.Host == "" {
		return providerURL
	}
	switch u.Scheme {
	case "wss":
		u.Scheme = "https"
	case "ws":
		u.Scheme = "http"
	}
	u.Path = "/health"
	u.RawQuery = ""
	return u.String()
}
