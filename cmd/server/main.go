package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hrcore/internal/alert"
	alertmetrics "hrcore/internal/alert/metrics"
	"hrcore/internal/audit"
	auditmetrics "hrcore/internal/audit/metrics"
	fileaudit "hrcore/internal/audit/store/file"
	"hrcore/internal/detection"
	detectionmetrics "hrcore/internal/detection/metrics"
	detectionmemory "hrcore/internal/detection/store/memory"
	"hrcore/internal/detection/tracer"
	"hrcore/internal/directory"
	"hrcore/internal/otp"
	"hrcore/internal/platform/config"
	"hrcore/internal/platform/httpserver"
	"hrcore/internal/platform/logger"
	ratelimitmetrics "hrcore/internal/ratelimit/metrics"
	ratelimitmw "hrcore/internal/ratelimit/middleware"
	ratelimitsvc "hrcore/internal/ratelimit/service"
	"hrcore/internal/ratelimit/store/bucket"
	"hrcore/internal/session"
	httptransport "hrcore/internal/transport/http"
	"hrcore/pkg/secrets"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := cfg.Validate(); err != nil {
		log.Error("unsafe configuration, refusing to start", "error", err)
		os.Exit(1)
	}

	log.Info("initializing hrcore",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"audit_write_mode", cfg.AuditWriteMode,
	)

	// Outside production an ephemeral signing secret keeps dev webhook
	// payloads signed; production requires an explicit one (Validate).
	if !cfg.IsProduction() && cfg.HasWebhookTargets() && cfg.WebhookSigningSecret == "" {
		secret, err := secrets.Generate()
		if err != nil {
			log.Error("could not generate webhook signing secret", "error", err)
			os.Exit(1)
		}
		cfg.WebhookSigningSecret = secret
		log.Warn("using ephemeral webhook signing secret, set HR_WEBHOOK_SIGNING_SECRET to pin it")
	}

	dir := directory.Default()

	// Audit trail: file fallback always present, optional async mode.
	fallback := fileaudit.New(cfg.AuditFilePath)
	recorderOpts := []audit.Option{audit.WithMetrics(auditmetrics.New())}
	if cfg.AuditWriteMode == config.AuditWriteAsync {
		recorderOpts = append(recorderOpts, audit.WithAsyncBuffer(1024))
	}
	recorder := audit.New(fallback, log, recorderOpts...)

	ctx := context.Background()
	if err := recorder.Seed(ctx); err != nil {
		log.Warn("audit seeding failed", "error", err)
	}
	reader := audit.NewReader(nil, fallback, log, cfg.AuditMaxList)

	dispatcher := alert.New(alert.Config{
		EmailProvider:        cfg.EmailProvider,
		EmailFrom:            cfg.EmailFrom,
		ResendAPIKey:         cfg.ResendAPIKey,
		SMSProvider:          cfg.SMSProvider,
		TwilioSID:            cfg.TwilioSID,
		TwilioToken:          cfg.TwilioToken,
		TwilioFrom:           cfg.TwilioFrom,
		WebhookURLs:          cfg.WebhookURLs,
		SIEMWebhookURL:       cfg.SIEMWebhookURL,
		EDRWebhookURL:        cfg.EDRWebhookURL,
		WebhookSigningSecret: cfg.WebhookSigningSecret,
		WebhookTimeout:       cfg.WebhookTimeout,
	}, dir, log, alert.WithMetrics(alertmetrics.New()))

	incidents := detectionmemory.New()
	engine := detection.New(incidents, dispatcher, recorder, log, cfg.DedupWindow,
		detection.WithMetrics(detectionmetrics.New()),
		detection.WithTracer(tracer.NewOTel()),
	)
	recorder.SetHook(engine.HandleEvent)

	sessions := session.NewService(cfg.JWTSigningKey, cfg.SessionTTL)
	otpService := otp.New(dispatcher, recorder, dir, log)

	limiterStore := bucket.NewInMemoryStore(bucket.WithCapacity(cfg.RateLimitBucketCap))
	limiter := ratelimitmw.New(
		ratelimitsvc.New(limiterStore, log, ratelimitsvc.WithMetrics(ratelimitmetrics.New())),
		log,
	)

	handler := httptransport.NewHandler(sessions, dir, otpService, recorder, reader, incidents, log)
	router := httptransport.NewRouter(handler, limiter, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Drain pending audit writes first: the recorder's worker feeds the
	// detection queue, so the engine must still be accepting events.
	recorder.Close()
	engine.Close()

	log.Info("server stopped")
}
