package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/config"
	"github.com/orghub/backend/internal/db"
	"github.com/orghub/backend/internal/repositories"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, cfg.DBMaxConns, cfg.DBMinConns, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Repos
	auditRepo := repositories.NewAuditRepo(pool)
	invitationRepo := repositories.NewInvitationRepo(pool)
	refreshTokenRepo := repositories.NewRefreshTokenRepo(pool)

	auditSvc := audit.NewService(auditRepo, log)

	log.Info("worker started")

	// Run jobs on tickers
	retentionTicker := time.NewTicker(24 * time.Hour)
	expiryTicker := time.NewTicker(time.Hour)
	defer retentionTicker.Stop()
	defer expiryTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// One sweep right away so a restarted worker never waits a day.
	runRetentionSweep(ctx, auditSvc, cfg, log)
	runExpirySweeps(ctx, invitationRepo, refreshTokenRepo, log)

	for {
		select {
		case <-retentionTicker.C:
			runRetentionSweep(ctx, auditSvc, cfg, log)
		case <-expiryTicker.C:
			runExpirySweeps(ctx, invitationRepo, refreshTokenRepo, log)
		case <-sigCh:
			log.Info("shutting down worker")
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

func runRetentionSweep(ctx context.Context, auditSvc *audit.Service, cfg *config.Config, log *zap.Logger) {
	deleted, err := auditSvc.Cleanup(ctx, cfg.AuditRetentionDays)
	if err != nil {
		log.Error("audit retention sweep failed", zap.Error(err))
		return
	}
	log.Info("audit retention sweep complete",
		zap.Int64("deleted", deleted),
		zap.Int("retention_days", cfg.AuditRetentionDays),
	)
}

func runExpirySweeps(ctx context.Context, invitationRepo *repositories.InvitationRepo, refreshTokenRepo *repositories.RefreshTokenRepo, log *zap.Logger) {
	expired, err := invitationRepo.ExpirePending(ctx)
	if err != nil {
		log.Error("invitation expiry sweep failed", zap.Error(err))
	} else if expired > 0 {
		log.Info("expired pending invitations", zap.Int64("count", expired))
	}

	removed, err := refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Error("refresh token sweep failed", zap.Error(err))
	} else if removed > 0 {
		log.Info("deleted expired refresh tokens", zap.Int64("count", removed))
	}
}
