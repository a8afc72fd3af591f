package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/joho/godotenv/autoload"

	"leave-manager/internal/assist"
	"leave-manager/internal/auth"
	"leave-manager/internal/constants"
	"leave-manager/internal/infrastructure/repository"
	"leave-manager/internal/matcher"
	"leave-manager/internal/resolver"
	"leave-manager/internal/tools"
	"leave-manager/pkg/config"
	"leave-manager/pkg/database"
	"leave-manager/pkg/health"
	"leave-manager/pkg/logging"
	"leave-manager/pkg/metrics"
	"leave-manager/pkg/monitoring"
)

const serviceVersion = "1.0.0"

func main() {
	cfg := config.Load()
	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Info("starting leave manager",
		logging.String("env", cfg.Env),
		logging.String("port", cfg.Port),
		logging.String("version", serviceVersion))

	db, err := database.NewWithConfig(cfg.DatabaseURL, cfg)
	if err != nil {
		log.Error("database connection failed", logging.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	repo := repository.NewSQLRepository(db)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	if err := repo.EnsureAPIKeySchemaCtx(startupCtx); err != nil {
		log.Error("api key schema init failed", logging.Err(err))
		os.Exit(1)
	}

	keys := auth.NewKeyStore(cfg.StaticAPIKeys, cfg.APIKeysFile, repo, log)
	if cfg.RequireAPIKey {
		n, err := keys.ActiveCount(startupCtx)
		if err != nil {
			log.Warn("could not count active api keys", logging.Err(err))
		} else if n == 0 {
			k, err := keys.Generate(startupCtx, "bootstrap", constants.APIKeyDefaultExpiryDays)
			if err != nil {
				log.Error("bootstrap key generation failed", logging.Err(err))
				os.Exit(1)
			}
			// Full value is logged exactly once, at first startup.
			log.Warn("no api keys configured; generated bootstrap key",
				logging.String("key", k.Key))
		}
	}

	var edit matcher.EditSimilarity = matcher.Levenshtein{}
	if cfg.MatchStrategy == "ratio" {
		edit = matcher.RatioOnly{}
	}
	m := matcher.New(matcher.Config{
		EditWeight:    cfg.MatchEditWeight,
		SeqWeight:     cfg.MatchSeqWeight,
		Threshold:     cfg.MatchThreshold,
		TokenVariants: cfg.MatchTokenVariants,
	}, edit)
	res := resolver.New(repo, m, cfg.MaxFuzzyCandidates)

	var disambiguator *assist.Disambiguator
	if cfg.AssistEnabled() {
		disambiguator = assist.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAITimeout, log)
		log.Info("ai disambiguation enabled", logging.String("model", cfg.OpenAIModel))
	}

	var limiter *auth.RateLimiter
	if cfg.EnableRateLimit {
		limiter = auth.NewRateLimiter(cfg.RateLimitPerMin)
	}
	authMW := auth.NewMiddleware(keys, limiter, cfg.APIKeyHeader, cfg.RequireAPIKey, log)

	hm := health.NewManager("leave-manager", serviceVersion, 5*time.Second)
	hm.Register("database", health.DatabaseCheck(db))
	hm.Register("api_keys", func(ctx context.Context) health.ComponentHealth {
		n, err := keys.ActiveCount(ctx)
		if err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Error: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusHealthy, Metadata: map[string]any{"active_keys": n}}
	})

	registry := tools.New(repo, res, m, keys, disambiguator, log)

	router := mux.NewRouter()
	router.Use(monitoring.Middleware(metrics.Default))
	router.Use(authMW.Handler)

	router.HandleFunc("/", infoHandler(cfg, registry)).Methods(http.MethodGet)
	router.HandleFunc("/health", hm.Handler()).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	registry.RegisterRoutes(router)

	if cfg.Env != "production" {
		debugMux := http.NewServeMux()
		monitoring.RegisterPprof(debugMux)
		router.PathPrefix("/debug/pprof/").Handler(debugMux)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", logging.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", logging.Err(err))
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeoutDefault)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", logging.Err(err))
	}
	log.Info("shutdown complete")
}

// infoHandler describes the service and its auth policy for unauthenticated
// discovery; it deliberately leaks no data.
func infoHandler(cfg *config.Config, registry *tools.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service":       "leave-manager",
			"version":       serviceVersion,
			"auth_required": cfg.RequireAPIKey,
			"auth_header":   cfg.APIKeyHeader,
			"tools":         registry.ToolNames(),
		})
	}
}
