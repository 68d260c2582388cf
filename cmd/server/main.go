package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"suitability/internal/config"
	cronrunner "suitability/internal/cron"
	"suitability/internal/db"
	"suitability/internal/handler"
	"suitability/internal/logger"
	gormrepository "suitability/internal/repository/gorm"
	"suitability/internal/scoring"
	"suitability/internal/service"
)

func main() {
	cfgPath := os.Getenv("SUIT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("SUIT_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	policy, err := scoring.ParseEmitFailurePolicy(cfg.Calc.EmitFailurePolicy)
	if err != nil {
		logger.Fatal("bad calc config", zap.Error(err))
	}

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	runner := &scoring.Runner{
		Emitter: &service.EventRecorder{Repo: store},
		Policy:  policy,
		Logger:  logger,
	}
	calcService := &service.CalculationService{
		Repo:   store,
		Runner: runner,
		Logger: logger,
	}
	verifyService := &service.VerificationService{
		Repo:   store,
		Logger: logger,
	}
	maintenance := &service.MaintenanceService{
		Repo:          store,
		Logger:        logger,
		RetentionDays: cfg.Cron.RetentionDays,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	criteriaHandler := &handler.CriteriaHandler{Repo: store}
	criteriaHandler.Register(engine)
	assetHandler := &handler.AssetHandler{Repo: store}
	assetHandler.Register(engine)
	rateHandler := &handler.RateHandler{Repo: store}
	rateHandler.Register(engine)
	calcHandler := &handler.CalculationHandler{Service: calcService, Repo: store}
	calcHandler.Register(engine)
	verifyHandler := &handler.VerificationHandler{Service: verifyService}
	verifyHandler.Register(engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cr := cronrunner.New(logger, ctx)
		if _, err := cr.Add(cfg.Cron.EventRetention, maintenance.PruneEvents); err != nil {
			logger.Warn("retention job not scheduled", zap.Error(err))
		}
		if cfg.Cron.Recalc.Enabled {
			if _, err := cr.Add(cfg.Cron.Recalc.Schedule, func(jobCtx context.Context) {
				if _, err := calcService.Run(jobCtx, cfg.Cron.Recalc.UserID, ""); err != nil {
					logger.Warn("scheduled recalculation failed", zap.Error(err))
				}
			}); err != nil {
				logger.Warn("recalc job not scheduled", zap.Error(err))
			}
		}
		cr.Start()
		defer cr.Stop()
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
