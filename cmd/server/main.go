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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	applicantStore "assistflow/internal/applicant/store"
	"assistflow/internal/documents/queue"
	documentStore "assistflow/internal/documents/store"
	"assistflow/internal/effects"
	jwttoken "assistflow/internal/jwt_token"
	"assistflow/internal/notify"
	"assistflow/internal/platform/config"
	"assistflow/internal/platform/httpserver"
	"assistflow/internal/platform/kvstore"
	"assistflow/internal/platform/logger"
	"assistflow/internal/platform/metrics"
	"assistflow/internal/platform/postgres"
	"assistflow/internal/platform/redis"
	"assistflow/internal/ratelimit"
	verificationService "assistflow/internal/verification/service"
	verificationStore "assistflow/internal/verification/store"
	"assistflow/internal/workflow/handler"
	"assistflow/internal/workflow/service"
	"assistflow/pkg/platform/audit/publisher"
	auditstore "assistflow/pkg/platform/audit/store/kv"
	"assistflow/pkg/platform/circuit"
	"assistflow/pkg/platform/httputil"
)

const (
	tokenIssuer   = "assistflow"
	tokenAudience = "assistflow-applicants"
	auditBuffer   = 256
)

// main wires the process: config, store backend, side effects, the workflow
// service, its HTTP surface and the reviewer poller. Business logic lives in
// the internal service packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if cfg.Server.AdminAPIToken == "" {
		log.Warn("ADMIN_API_TOKEN is empty; reviewer routes will reject every request")
	}

	kv, health, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	deliverer, trigger, closeEffects, err := openEffects(cfg.Messaging, log)
	if err != nil {
		return err
	}
	defer closeEffects()

	auditPublisher := publisher.NewPublisher(
		auditstore.New(kv, auditstore.WithRetention(cfg.Workflow.ActivityLogRetention)),
		publisher.WithAsyncBuffer(auditBuffer),
		publisher.WithLogger(log),
	)
	defer auditPublisher.Close()

	handshake := verificationService.New(verificationStore.New(kv), verificationService.WithLogger(log))
	svc, err := service.New(
		applicantStore.New(kv),
		documentStore.New(kv),
		queue.New(kv),
		handshake,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithAuditPublisher(auditPublisher),
		service.WithCodeDeliverer(deliverer),
		service.WithDisbursementTrigger(trigger),
		service.WithApprovalAmount(cfg.Workflow.ApprovalAmount),
	)
	if err != nil {
		return fmt.Errorf("build workflow service: %w", err)
	}

	tokens := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, tokenIssuer, tokenAudience, cfg.Server.ApplicantTokenTTL)

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := health(r.Context()); err != nil {
			log.WarnContext(r.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	windows := ratelimit.NewWindows(nil)
	limiter := ratelimit.New(windows, cfg.Server.RateLimitPerMinute, time.Minute, log)
	handler.New(svc, tokens, cfg.Server.AdminAPIToken, log, m, handler.WithRateLimiter(limiter)).Register(r)

	scheduler := notify.NewScheduler(log, m)
	if err := scheduler.Every(time.Minute, "ratelimit_sweep", func(context.Context) (bool, error) {
		windows.Sweep(time.Minute)
		return false, nil
	}); err != nil {
		return err
	}
	if cfg.Polling.ApprovalReconcile > 0 {
		if err := scheduler.Every(cfg.Polling.ApprovalReconcile, "approval_reconcile", func(ctx context.Context) (bool, error) {
			n, err := svc.ReconcileApprovals(ctx)
			return n > 0, err
		}); err != nil {
			return err
		}
	}
	if cfg.Polling.Reviewer > 0 {
		watcher := notify.NewReviewerWatcher(svc, notify.LogReviewerHandler{Logger: log}, log)
		if err := scheduler.Every(cfg.Polling.Reviewer, notify.WatcherReviewer, watcher.Tick); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, httpserver.New(cfg.Server.Addr, r), log)
	})
	g.Go(func() error { return scheduler.Run(gctx) })

	log.Info("assistflow started",
		"addr", cfg.Server.Addr,
		"store_backend", cfg.StoreBackend,
		"approval_amount", cfg.Workflow.ApprovalAmount.StringFixed(2),
	)
	return g.Wait()
}

type healthFunc func(ctx context.Context) error

// openStore builds the configured key-value backend.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (kvstore.Store, healthFunc, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info("using redis store")
		return kvstore.NewRedis(client.Client), client.Health, func() { _ = client.Close() }, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		store := kvstore.NewPostgres(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("ensure kv schema: %w", err)
		}
		log.Info("using postgres store")
		return store, pingDB(db), func() { _ = db.Close() }, nil

	default:
		log.Warn("using in-memory store; state is lost on restart")
		return kvstore.NewMemory(), func(context.Context) error { return nil }, func() {}, nil
	}
}

func pingDB(db *sql.DB) healthFunc {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

// openEffects connects the outward side effects. Without broker URLs both
// effects are logged only; with them, the log adapters become the fallback
// behind a circuit breaker.
func openEffects(cfg config.Messaging, log *slog.Logger) (effects.CodeDeliverer, effects.DisbursementTrigger, func(), error) {
	var (
		deliverer effects.CodeDeliverer       = effects.NewLogDeliverer(log)
		trigger   effects.DisbursementTrigger = effects.NewLogTrigger(log)
		closers   []func() error
	)
	closeAll := func() {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		if err := errors.Join(errs...); err != nil {
			log.Warn("closing effect connections", "error", err)
		}
	}

	if cfg.NATSURL != "" {
		d, err := effects.NewNATSDeliverer(cfg.NATSURL, log)
		if err != nil {
			return nil, nil, nil, err
		}
		deliverer = effects.NewGuardedDeliverer(d, deliverer, circuit.New("nats"), log)
		closers = append(closers, func() error { d.Close(); return nil })
	}
	if cfg.RabbitMQURL != "" {
		t, err := effects.NewAMQPTrigger(cfg.RabbitMQURL, log)
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		trigger = effects.NewGuardedTrigger(t, trigger, circuit.New("amqp"), log)
		closers = append(closers, t.Close)
	}
	return deliverer, trigger, closeAll, nil
}
