package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/orghub/backend/internal/audit"
	"github.com/orghub/backend/internal/auth"
	"github.com/orghub/backend/internal/config"
	"github.com/orghub/backend/internal/db"
	"github.com/orghub/backend/internal/events"
	apphttp "github.com/orghub/backend/internal/http"
	"github.com/orghub/backend/internal/http/handlers"
	"github.com/orghub/backend/internal/repositories"
	"github.com/orghub/backend/internal/security"
	"github.com/orghub/backend/internal/services"
	"github.com/orghub/backend/internal/webmeta"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, cfg.DBMaxConns, cfg.DBMinConns, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	orgRepo := repositories.NewOrganizationRepo(pool)
	memberRepo := repositories.NewMemberRepo(pool)
	invitationRepo := repositories.NewInvitationRepo(pool)
	refreshTokenRepo := repositories.NewRefreshTokenRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Brute-force counter backend
	var counterStore security.CounterStore
	if cfg.CounterBackend == "redis" {
		counterStore = security.NewRedisCounterStore(rdb, "sec")
	} else {
		memStore := security.NewMemoryCounterStore()
		counterStore = memStore
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					removed := memStore.Sweep(cfg.CounterIdleTTL)
					if removed > 0 {
						log.Info("swept idle login counters", zap.Int("removed", removed))
					}
				}
			}
		}()
	}
	protector := security.NewBruteForceProtector(counterStore,
		cfg.BruteForceThreshold, cfg.BruteForceLockout, cfg.CounterIdleTTL, log)

	// Services
	auditSvc := audit.NewService(auditRepo, log)
	metaFetcher := webmeta.NewFetcher(cfg.WebMetaTimeoutMS, cfg.WebMetaMaxRetries, log)
	googleClient := auth.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, log)
	orgService := services.NewOrganizationService(orgRepo, memberRepo, auditSvc, metaFetcher, log)
	memberService := services.NewMemberService(memberRepo, orgRepo, auditSvc, log)
	invitationService := services.NewInvitationService(invitationRepo, memberRepo, auditSvc, cfg.InvitationTTL, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, refreshTokenRepo, auditSvc, protector, googleClient, publisher, cfg, log)
	userHandler := handlers.NewUserHandler(userRepo, auditSvc, log)
	orgHandler := handlers.NewOrganizationHandler(orgService, log)
	memberHandler := handlers.NewMemberHandler(memberService, log)
	invitationHandler := handlers.NewInvitationHandler(invitationService, userRepo, log)
	auditHandler := handlers.NewAuditHandler(auditSvc, cfg.AuditRetentionDays, log)
	securityFeed := handlers.NewSecurityFeedHub(cfg, subscriber, log)

	// Start security alert feed
	securityFeed.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, auditSvc, orgService, memberRepo, protector, publisher,
		authHandler, userHandler, orgHandler, memberHandler, invitationHandler, auditHandler, securityFeed)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
