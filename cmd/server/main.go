package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"accredis/internal/access"
	clinichandler "accredis/internal/clinic/handler"
	clinicmetrics "accredis/internal/clinic/metrics"
	clinicservice "accredis/internal/clinic/service"
	clinicstore "accredis/internal/clinic/store/clinic"
	profilestore "accredis/internal/clinic/store/profile"
	"accredis/internal/document/generator"
	documenthandler "accredis/internal/document/handler"
	docmetrics "accredis/internal/document/metrics"
	documentservice "accredis/internal/document/service"
	auditstore "accredis/internal/document/store/audit"
	documentstore "accredis/internal/document/store/document"
	jwttoken "accredis/internal/jwt_token"
	"accredis/internal/platform/config"
	"accredis/internal/platform/httpserver"
	"accredis/internal/platform/logger"
	"accredis/internal/platform/metrics"
	platformmw "accredis/internal/platform/middleware"
	"accredis/internal/platform/postgres"
	"accredis/internal/platform/redis"
	riskhandler "accredis/internal/risk/handler"
	riskmetrics "accredis/internal/risk/metrics"
	riskservice "accredis/internal/risk/service"
	riskstore "accredis/internal/risk/store"
	httptransport "accredis/internal/transport/http"
	"accredis/pkg/platform/audit"
	"accredis/pkg/platform/audit/publishers/compliance"
	auditmemory "accredis/pkg/platform/audit/store/memory"
	auditpostgres "accredis/pkg/platform/audit/store/postgres"
	txcontext "accredis/pkg/platform/tx"
)

const shutdownTimeout = 10 * time.Second

// stores groups the persistence adapters selected at startup.
type stores struct {
	clinics   clinicservice.ClinicStore
	profiles  clinicservice.ProfileStore
	documents interface {
		documentservice.DocumentStore
		riskservice.DocumentFinder
	}
	audits documentservice.AuditStore
	risks  riskservice.RiskStore
	trail  audit.Store
	tx     txcontext.Runner
	health map[string]httptransport.HealthCheck
	close  func() error
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.Environment)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Warn("failed to close stores", "error", err)
		}
	}()

	accessMetrics := access.NewMetrics(reg)
	resolverOpts := []access.ResolverOption{
		access.WithLogger(log),
		access.WithMetrics(accessMetrics),
	}
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		resolverOpts = append(resolverOpts, access.WithCache(access.NewRedisCache(redisClient.Client, cfg.PrincipalCacheTTL)))
		st.health["redis"] = redisClient.Health
		log.Info("principal cache enabled", "ttl", cfg.PrincipalCacheTTL.String())
	}
	resolver := access.NewResolver(st.profiles, st.clinics, resolverOpts...)
	enforcer := access.NewEnforcer(log, accessMetrics)

	publisher := compliance.New(st.trail,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)

	clinicSvc := clinicservice.New(st.clinics, st.profiles,
		clinicservice.WithTx(st.tx),
		clinicservice.WithEnforcer(enforcer),
		clinicservice.WithLogger(log),
		clinicservice.WithAuditPublisher(publisher),
		clinicservice.WithPrincipalInvalidator(resolver),
		clinicservice.WithMetrics(clinicmetrics.New(reg)),
	)
	documentSvc := documentservice.New(st.documents, st.audits,
		documentservice.WithGenerator(newGenerator(cfg.Generator, log)),
		documentservice.WithTx(st.tx),
		documentservice.WithEnforcer(enforcer),
		documentservice.WithLogger(log),
		documentservice.WithAuditPublisher(publisher),
		documentservice.WithMetrics(docmetrics.New(reg)),
	)
	riskSvc := riskservice.New(st.risks, st.documents,
		riskservice.WithTx(st.tx),
		riskservice.WithEnforcer(enforcer),
		riskservice.WithLogger(log),
		riskservice.WithAuditPublisher(publisher),
		riskservice.WithMetrics(riskmetrics.New(reg)),
	)

	httpMetrics := metrics.New(reg)
	limiter := platformmw.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, httpMetrics)
	go limiter.Sweep(ctx)

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:      log,
		Metrics:     httpMetrics,
		Gatherer:    reg,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		RateLimiter: limiter,
		Validator:   jwttoken.NewJWTServiceAdapter(tokens),
		Principals:  resolver,
		Health:      st.health,
		Handlers: []httptransport.Registrar{
			clinichandler.New(clinicSvc, log),
			documenthandler.New(documentSvc, log),
			riskhandler.New(riskSvc, log),
		},
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting accredis",
			"addr", cfg.Addr,
			"postgres", cfg.UsesPostgres(),
			"generator", cfg.Generator.Kind,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openStores picks PostgreSQL when DATABASE_URL is set and in-memory stores
// otherwise. PostgreSQL schemas are migrated on startup.
func openStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*stores, error) {
	if !cfg.UsesPostgres() {
		if cfg.IsProduction() {
			return nil, errors.New("DATABASE_URL is required in production")
		}
		log.Warn("DATABASE_URL not set, using in-memory stores")
		return &stores{
			clinics:   clinicstore.NewInMemory(),
			profiles:  profilestore.NewInMemory(),
			documents: documentstore.NewInMemory(),
			audits:    auditstore.NewInMemory(),
			risks:     riskstore.NewInMemory(),
			trail:     auditmemory.NewInMemoryStore(),
			health:    map[string]httptransport.HealthCheck{},
			close:     func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &stores{
		clinics:   clinicstore.NewPostgres(db),
		profiles:  profilestore.NewPostgres(db),
		documents: documentstore.NewPostgres(db),
		audits:    auditstore.NewPostgres(db),
		risks:     riskstore.NewPostgres(db),
		trail:     auditpostgres.New(db),
		tx:        txcontext.NewSQLRunner(db),
		health:    map[string]httptransport.HealthCheck{"postgres": pinger(db)},
		close:     db.Close,
	}, nil
}

func pinger(db *sql.DB) httptransport.HealthCheck {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}

func newGenerator(cfg config.GeneratorConfig, log *slog.Logger) generator.Generator {
	if cfg.Kind == config.GeneratorOpenAI {
		return generator.NewOpenAI(generator.OpenAIConfig{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
		}, log)
	}
	return generator.NewTemplate()
}
