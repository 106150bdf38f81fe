package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/careconnect/careconnect-api/internal/config"
	activityHandler "github.com/careconnect/careconnect-api/internal/handler/activity"
	auditHandler "github.com/careconnect/careconnect-api/internal/handler/audit"
	authHandler "github.com/careconnect/careconnect-api/internal/handler/auth"
	bcmaHandler "github.com/careconnect/careconnect-api/internal/handler/bcma"
	careplanHandler "github.com/careconnect/careconnect-api/internal/handler/careplan"
	groupHandler "github.com/careconnect/careconnect-api/internal/handler/group"
	"github.com/careconnect/careconnect-api/internal/handler/health"
	incidentHandler "github.com/careconnect/careconnect-api/internal/handler/incident"
	historyHandler "github.com/careconnect/careconnect-api/internal/handler/medicalhistory"
	medicationHandler "github.com/careconnect/careconnect-api/internal/handler/medication"
	residentHandler "github.com/careconnect/careconnect-api/internal/handler/resident"
	taskHandler "github.com/careconnect/careconnect-api/internal/handler/task"
	userHandler "github.com/careconnect/careconnect-api/internal/handler/user"
	wellnessHandler "github.com/careconnect/careconnect-api/internal/handler/wellness"
	"github.com/careconnect/careconnect-api/internal/middleware"
	"github.com/careconnect/careconnect-api/internal/repository/postgres"
	"github.com/careconnect/careconnect-api/internal/router"
	"github.com/careconnect/careconnect-api/internal/service/activity"
	"github.com/careconnect/careconnect-api/internal/service/audit"
	authService "github.com/careconnect/careconnect-api/internal/service/auth"
	"github.com/careconnect/careconnect-api/internal/service/bcma"
	"github.com/careconnect/careconnect-api/internal/service/careplan"
	"github.com/careconnect/careconnect-api/internal/service/event"
	"github.com/careconnect/careconnect-api/internal/service/group"
	"github.com/careconnect/careconnect-api/internal/service/incident"
	"github.com/careconnect/careconnect-api/internal/service/medicalhistory"
	"github.com/careconnect/careconnect-api/internal/service/medication"
	"github.com/careconnect/careconnect-api/internal/service/resident"
	"github.com/careconnect/careconnect-api/internal/service/task"
	"github.com/careconnect/careconnect-api/internal/service/user"
	"github.com/careconnect/careconnect-api/internal/service/wellness"
	"github.com/careconnect/careconnect-api/pkg/auth"
	"github.com/careconnect/careconnect-api/pkg/logger"
	"github.com/careconnect/careconnect-api/pkg/metrics"
	"github.com/careconnect/careconnect-api/pkg/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.New(cfg.Log)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Server.AutoMigrate {
		if err := postgres.MigrateUp(db.DB); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
		log.Info().Msg("database migrations applied")
	}

	// Repositories
	base := postgres.NewBaseRepository(db)
	tx := postgres.NewTransactor(base)
	userRepo := postgres.NewUserRepository(base)
	tokenRepo := postgres.NewTokenRepository(base)
	groupRepo := postgres.NewGroupRepository(base)
	residentRepo := postgres.NewResidentRepository(base)
	medicationRepo := postgres.NewMedicationRepository(base)
	adminRepo := postgres.NewAdministrationRepository(base)
	historyRepo := postgres.NewMedicalHistoryRepository(base)
	carePlanRepo := postgres.NewCarePlanRepository(base)
	wellnessRepo := postgres.NewWellnessRepository(base)
	formRepo := postgres.NewFormRepository(base)
	reportRepo := postgres.NewIncidentReportRepository(base)
	taskRepo := postgres.NewTaskRepository(base)
	activityRepo := postgres.NewActivityRepository(base)
	auditRepo := postgres.NewAuditRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("careconnect", reg)

	// Services
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	events := event.NewService(outboxRepo)

	authSvc := authService.NewService(userRepo, tokenRepo, jwtSvc, hasher, tx, events, authService.Config{
		MaxLoginAttempts: cfg.Security.MaxLoginAttempts,
		LockoutDuration:  cfg.Security.LockoutDuration,
		ResetTokenTTL:    cfg.Security.ResetTokenTTL,
	})
	userSvc := user.NewService(userRepo, tokenRepo, tx, hasher)
	groupSvc := group.NewService(groupRepo, userRepo)
	residentSvc := resident.NewService(residentRepo, groupRepo, tx, events)
	medicationSvc := medication.NewService(medicationRepo, residentRepo, adminRepo)
	bcmaSvc := bcma.NewService(residentRepo, medicationRepo, historyRepo, adminRepo, tx, events, m.BCMAVerifications)
	historySvc := medicalhistory.NewService(historyRepo, residentRepo)
	carePlanSvc := careplan.NewService(carePlanRepo, residentRepo, tx, events)
	wellnessSvc := wellness.NewService(wellnessRepo, residentRepo)
	incidentSvc := incident.NewService(formRepo, reportRepo, residentRepo, tx, events)
	taskSvc := task.NewService(taskRepo, userRepo, tx, events)
	activitySvc := activity.NewService(activityRepo, groupRepo)
	auditSvc := audit.NewService(auditRepo)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, userRepo, cfg.Security.UserCacheTTL)
	deps := router.Deps{
		Auth:    authMiddleware,
		Health:  health.NewHandler(reg, map[string]health.Pinger{"database": db}),
		Metrics: m,
	}
	if cfg.Audit.Enabled {
		deps.Audit = middleware.NewAuditMiddleware(auditSvc)
	}

	r := router.NewRouter(cfg, deps,
		[]router.PublicHandler{authHandler.NewHandler(authSvc)},
		userHandler.NewHandler(userSvc, authMiddleware.Forget),
		groupHandler.NewHandler(groupSvc),
		residentHandler.NewHandler(residentSvc),
		medicationHandler.NewHandler(medicationSvc, residentSvc),
		bcmaHandler.NewHandler(bcmaSvc),
		historyHandler.NewHandler(historySvc),
		careplanHandler.NewHandler(carePlanSvc),
		wellnessHandler.NewHandler(wellnessSvc),
		incidentHandler.NewHandler(incidentSvc),
		taskHandler.NewHandler(taskSvc),
		activityHandler.NewHandler(activitySvc),
		auditHandler.NewHandler(auditSvc),
	)
	r.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go r.RunJanitor(ctx, time.Minute)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting api server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
