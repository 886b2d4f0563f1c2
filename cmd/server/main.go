package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"biokey/internal/authorize"
	authorizeHandler "biokey/internal/authorize/handler"
	"biokey/internal/challenge"
	challengeHandler "biokey/internal/challenge/handler"
	challengeStore "biokey/internal/challenge/store"
	"biokey/internal/enrollment"
	enrollmentHandler "biokey/internal/enrollment/handler"
	keyStore "biokey/internal/enrollment/store/keys"
	"biokey/internal/platform/config"
	"biokey/internal/platform/httpserver"
	"biokey/internal/platform/logger"
	"biokey/internal/platform/metrics"
	"biokey/internal/platform/redis"
	httptransport "biokey/internal/transport/http"
	"biokey/internal/validation"
	validationHandler "biokey/internal/validation/handler"
	codeStore "biokey/internal/validation/store/codes"
	id "biokey/pkg/domain"
	auditMemory "biokey/pkg/platform/audit/store/memory"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service
// packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	accountID := id.AccountID(cfg.AccountEmail)
	auditSink := auditMemory.NewInMemoryStore()

	var codes validation.Store = codeStore.NewInMemoryCodeStore()
	if cfg.RedisURL != "" {
		client, err := redis.New(cfg.RedisURL)
		if err != nil {
			log.Error("redis connection failed", "error", err.Error())
			os.Exit(1)
		}
		defer client.Close()
		codes = codeStore.NewRedisCodeStore(client)
		log.Info("validation codes backed by redis")
	}

	validationSvc, err := validation.New(codes,
		validation.WithLogger(log),
		validation.WithMetrics(m),
		validation.WithSender(validation.NewLogSender(log)),
		validation.WithAuditPublisher(auditSink),
	)
	if err != nil {
		log.Error("validation service init failed", "error", err.Error())
		os.Exit(1)
	}

	enrollmentSvc, err := enrollment.New(keyStore.NewInMemoryKeyStore(), validationSvc,
		enrollment.WithLogger(log),
		enrollment.WithMetrics(m),
		enrollment.WithAuditPublisher(auditSink),
	)
	if err != nil {
		log.Error("enrollment service init failed", "error", err.Error())
		os.Exit(1)
	}

	challengeSvc, err := challenge.New(challengeStore.NewInMemoryChallengeStore(), enrollmentSvc,
		challenge.WithLogger(log),
		challenge.WithMetrics(m),
		challenge.WithTTL(cfg.ChallengeTTL),
	)
	if err != nil {
		log.Error("challenge service init failed", "error", err.Error())
		os.Exit(1)
	}

	authorizeSvc, err := authorize.New(enrollmentSvc, challengeSvc, validationSvc,
		authorize.WithLogger(log),
		authorize.WithMetrics(m),
		authorize.WithAuditPublisher(auditSink),
	)
	if err != nil {
		log.Error("authorize service init failed", "error", err.Error())
		os.Exit(1)
	}

	router := httptransport.NewRouter(log,
		validationHandler.New(validationSvc, log),
		enrollmentHandler.New(accountID, enrollmentSvc, log),
		challengeHandler.New(accountID, challengeSvc, log),
		authorizeHandler.New(accountID, authorizeSvc, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting biokey", "addr", cfg.Addr, "account", cfg.AccountEmail)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
