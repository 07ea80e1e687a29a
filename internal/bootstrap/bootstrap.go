package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/pointsboard/internal/app/controllers"
	appMigrations "github.com/yigit/pointsboard/internal/app/migrations"
	"github.com/yigit/pointsboard/internal/app/models/dto"
	appRepos "github.com/yigit/pointsboard/internal/app/repositories"
	"github.com/yigit/pointsboard/internal/app/repositories/memstore"
	appRoutes "github.com/yigit/pointsboard/internal/app/routes"
	appServices "github.com/yigit/pointsboard/internal/app/services"
	"github.com/yigit/pointsboard/internal/config"
	"github.com/yigit/pointsboard/internal/db"
	"github.com/yigit/pointsboard/internal/domain/assignment"
	appMiddleware "github.com/yigit/pointsboard/internal/middleware"
	pkgAuth "github.com/yigit/pointsboard/internal/pkg/auth"
	"github.com/yigit/pointsboard/internal/pkg/logger"
	"github.com/yigit/pointsboard/internal/pkg/websocket"
	"github.com/yigit/pointsboard/internal/seed"
)

// Storage is the record store selected by configuration
type Storage struct {
	Repos *appRepos.Repositories
	DB    *db.PostgresDB // nil for the in-memory driver
}

// Close releases the database pool, if any
func (s *Storage) Close() {
	if s.DB != nil {
		s.DB.Close()
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService    appServices.AuthService
	ClassService   appServices.ClassService
	StudentService appServices.StudentService
	GroupService   appServices.GroupService
	AdminService   appServices.AdminService

	AuthController    *appControllers.AuthController
	ClassController   *appControllers.ClassController
	StudentController *appControllers.StudentController
	GroupController   *appControllers.GroupController
	AdminController   *appControllers.AdminController

	AuthMiddleware    *appMiddleware.AuthMiddleware
	ScoreboardHub     *websocket.Hub
	ScoreboardHandler *websocket.Handler
	Drafts            *assignment.Registry
	Repos             *appRepos.Repositories
	JWTService        *pkgAuth.JWTService
	Logger            zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupStorage opens the configured record store. For PostgreSQL it connects,
// applies migrations and seeds the admin credentials.
func SetupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Storage, error) {
	storage := &Storage{}

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		lgr.Warn().Msg("Using in-memory storage, data is lost on restart")
		storage.Repos = memstore.New().Repositories()

	default:
		lgr.Info().Msg("Establishing database connection...")
		database, err := db.NewPostgresDB(ctx, cfg, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to connect to database")
			return nil, err
		}
		lgr.Info().Msg("Database connection successfully established.")

		lgr.Info().Msg("Running database migrations...")
		migrator := appMigrations.NewMigrator(database.Pool, lgr)
		if err := migrator.Migrate(ctx, migrationFiles(cfg.Database.MigrationsDir, lgr)); err != nil {
			database.Close()
			lgr.Error().Err(err).Msg("Database migration error")
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")

		storage.DB = database
		storage.Repos = appRepos.NewRepositories(database)
	}

	if err := seed.CreateDefaultAdmin(ctx, storage.Repos.AdminSettings, cfg.Admin.Username, cfg.Admin.Password, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	return storage, nil
}

// migrationFiles prefers an on-disk migrations directory and falls back to
// the schema embedded in the binary.
func migrationFiles(dir string, lgr zerolog.Logger) fs.FS {
	if dir != "" {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			lgr.Info().Str("path", dir).Msg("Using migrations directory")
			return os.DirFS(dir)
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			lgr.Warn().Err(err).Str("path", dir).Msg("Cannot read migrations directory")
		}
	}
	lgr.Info().Msg("Using embedded migrations")
	return appMigrations.Embedded()
}

// BuildDependencies initializes application services, controllers and the scoreboard hub.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.Drafts = assignment.NewRegistry(cfg.DraftTTL())
	deps.ScoreboardHub = websocket.NewHub(logger.Component("scoreboard"))

	deps.AuthService = appServices.NewAuthService(
		repos.Profiles,
		repos.ActivationCodes,
		repos.AdminSettings,
		deps.JWTService,
		nil,
		logger.Component("auth"),
	)
	deps.ClassService = appServices.NewClassService(repos.Classes, logger.Component("classes"))
	deps.StudentService = appServices.NewStudentService(repos, deps.ScoreboardHub, logger.Component("students"))
	deps.GroupService = appServices.NewGroupService(repos, deps.Drafts, deps.ScoreboardHub, logger.Component("groups"))
	deps.AdminService = appServices.NewAdminService(repos, cfg.Codes.Prefix, nil, logger.Component("admin"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.ClassController = appControllers.NewClassController(deps.ClassService)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.GroupController = appControllers.NewGroupController(deps.GroupService)
	deps.AdminController = appControllers.NewAdminController(deps.AdminService)

	deps.ScoreboardHandler = websocket.NewHandler(deps.ScoreboardHub, deps.leaderboardSnapshot, logger.Component("scoreboard"))

	return deps
}

// leaderboardSnapshot is the first message a scoreboard connection receives
func (d *Dependencies) leaderboardSnapshot(ctx context.Context, ownerID, classID uuid.UUID) (any, error) {
	res, err := d.GroupService.Leaderboard(ctx, ownerID, classID)
	if err != nil {
		return nil, err
	}
	return dto.FromRoster(classID, res), nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(appMiddleware.RequestLogger(lgr), gin.Recovery())

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.ClassController,
		deps.StudentController,
		deps.GroupController,
		deps.AdminController,
		deps.ScoreboardHandler,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}
