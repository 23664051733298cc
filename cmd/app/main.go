package main

import (
	"context"
	"fmt"
	"log"

	"campus_circle/internal/api"
	"campus_circle/internal/repository"
	"campus_circle/internal/service"
	"campus_circle/pkg/auth"
	"campus_circle/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	loc, err := cfg.Checkin.Location()
	if err != nil {
		zapLogger.Fatal("Invalid checkin timezone", zap.String("timezone", cfg.Checkin.Timezone), zap.Error(err))
	}

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	if cfg.Database.AutoMigrate {
		if err := repo.Migrate(context.Background()); err != nil {
			zapLogger.Fatal("Failed to migrate database", zap.Error(err))
		}
		zapLogger.Info("Database schema is up to date")
	}

	pointsService := service.NewPointsService(repo, repo, loc)
	svc := service.NewService(
		pointsService,
		service.NewCheckinService(repo, repo, pointsService, loc),
		service.NewTaskService(repo, repo, pointsService),
		service.NewMemberService(repo),
	)

	router := api.NewRouter(api.RouterDeps{
		Points:  svc.PointsService,
		Checkin: svc.CheckinService,
		Tasks:   svc.TaskService,
		Members: svc.MemberService,
		Auth:    auth.NewJWTAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		DB:      repo,
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr), zap.String("timezone", loc.String()))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
