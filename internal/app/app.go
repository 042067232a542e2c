package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pathbound/pathbound/internal/config"
	"github.com/pathbound/pathbound/internal/db"
	"github.com/pathbound/pathbound/internal/repository"
	"github.com/pathbound/pathbound/internal/service"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	UserService    *service.UserService
	RoadmapService *service.RoadmapService
	ReviewService  *service.ReviewService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	goalRepository := repository.NewGoalRepository(database)
	milestoneRepository := repository.NewMilestoneRepository(database)

	// Services
	userService := service.NewUserService(userRepository)
	roadmapService := service.NewRoadmapService(goalRepository, milestoneRepository)
	reviewService := service.NewReviewService(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	return &App{
		Cfg:            cfg,
		DB:             database,
		UserService:    userService,
		RoadmapService: roadmapService,
		ReviewService:  reviewService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
