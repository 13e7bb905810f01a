package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vocab_quiz_backend/internal/config"
	"vocab_quiz_backend/internal/controller"
	"vocab_quiz_backend/internal/middleware"
	"vocab_quiz_backend/internal/repository"
	"vocab_quiz_backend/internal/service"
	"vocab_quiz_backend/internal/util"
	"vocab_quiz_backend/pkg/configwatcher"
	"vocab_quiz_backend/pkg/database"
	"vocab_quiz_backend/pkg/logger"
	"vocab_quiz_backend/pkg/monitoring"
	"vocab_quiz_backend/pkg/scheduler"
	"vocab_quiz_backend/pkg/security"
	"vocab_quiz_backend/pkg/tracing"
)

type App struct {
	Config    *config.Config
	ConfigDir string
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client
	SQL       *sql.DB

	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	questions *repository.QuestionRepository
	content   *repository.ContentRepository
	progress  repository.ProgressStore
	results   service.ResultRecorder
}

type services struct {
	storage *service.StorageService
	quiz    *service.QuizService
	content *service.ContentService
	hub     *service.QuizHub
}

type controllers struct {
	quiz    *controller.QuizController
	content *controller.ContentController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// initStores 按配置打开数据库与缓存。MySQL 同时承载成绩历史，只要配置了地址就会连接。
func (a *App) initStores(ctx context.Context, cfg *config.Config) error {
	debug := cfg.Server.Mode == gin.DebugMode

	if cfg.Persistence.Driver == config.DriverMySQL || cfg.Database.Host != "" {
		db, err := database.InitDB(&cfg.Database, debug)
		if err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}
		a.DB = db
	}

	switch cfg.Persistence.Driver {
	case config.DriverRedis:
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("initialize redis: %w", err)
		}
		a.Redis = rdb
	case config.DriverSQLite, config.DriverPostgres:
		db, err := database.OpenSQL(ctx, cfg.Persistence.Driver, cfg.Persistence.DSN)
		if err != nil {
			return fmt.Errorf("initialize %s: %w", cfg.Persistence.Driver, err)
		}
		a.SQL = db
	}
	return nil
}

func (a *App) progressStore(cfg *config.Config) (repository.ProgressStore, error) {
	switch cfg.Persistence.Driver {
	case config.DriverMemory:
		return repository.NewMemoryProgressStore(), nil
	case config.DriverRedis:
		return repository.NewRedisProgressStore(a.Redis, cfg.Persistence.KeyPrefix, cfg.Persistence.TTL), nil
	case config.DriverMySQL:
		return repository.NewGormProgressStore(a.DB), nil
	case config.DriverSQLite, config.DriverPostgres:
		return repository.NewSQLProgressStore(a.SQL, cfg.Persistence.Driver == config.DriverPostgres), nil
	}
	return nil, fmt.Errorf("%s: %w", cfg.Persistence.Driver, util.ErrUnknownProgressType)
}

func (a *App) initRepositories(cfg *config.Config, storage *service.StorageService) (*repositories, error) {
	progress, err := a.progressStore(cfg)
	if err != nil {
		return nil, err
	}
	repos := &repositories{
		questions: repository.NewQuestionRepository(storage, cfg.Data.QuestionsFile),
		content:   repository.NewContentRepository(storage, cfg.Data.ContentFile),
		progress:  progress,
	}
	// 未连接 MySQL 时成绩历史保持为 nil 接口
	if a.DB != nil {
		repos.results = repository.NewResultRepository(a.DB)
	}
	return repos, nil
}

func (a *App) initServices(repos *repositories, storage *service.StorageService, cfg *config.Config) *services {
	s := &services{storage: storage}
	s.quiz = service.NewQuizService(repos.questions, repos.progress, repos.results, scheduler.New(), service.PolicyFromConfig(&cfg.Quiz))
	s.content = service.NewContentService(repos.content, s.quiz)
	s.hub = service.NewQuizHub(s.quiz)
	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		quiz:    controller.NewQuizController(s.quiz, s.hub),
		content: controller.NewContentController(s.content, s.quiz),
		health:  controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	app := &App{Config: cfg}
	ctx := context.Background()

	if err := app.initStores(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}

	storage, err := service.NewStorageService(&cfg.Data)
	if err != nil {
		app.Close()
		return nil, err
	}
	repos, err := app.initRepositories(cfg, storage)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.services = app.initServices(repos, storage, cfg)
	controllers := app.initControllers(app.services)

	// 配置热更新只影响测验行为，数据源与存储需要重启
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.services.quiz.UpdatePolicy(service.PolicyFromConfig(&newCfg.Quiz))
	})

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		} else {
			app.tracer = tp
		}
	}

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	logger.Log.Info("Application initialized",
		zap.String("dataSource", cfg.Data.Source),
		zap.String("documents", storage.Location(cfg.Data.QuestionsFile)),
		zap.String("persistence", cfg.Persistence.Driver),
		zap.Bool("history", repos.results != nil))
	return app, nil
}

func (a *App) notifyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// Close 释放定时器、连接与追踪导出器
func (a *App) Close() {
	if a.services != nil {
		a.services.hub.Stop()
		a.services.quiz.Close()
	}
	if a.SQL != nil {
		a.SQL.Close()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if a.ConfigDir != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.ConfigDir, a.notifyConfig); err != nil {
				logger.Log.Warn("Config hot reload disabled", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()
	a.Close()

	logger.Log.Info("Server exiting")
}
