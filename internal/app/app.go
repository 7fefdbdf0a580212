package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizcraft_backend/internal/config"
	"quizcraft_backend/internal/controller"
	"quizcraft_backend/internal/repository"
	"quizcraft_backend/internal/service"
	"quizcraft_backend/internal/util"
	"quizcraft_backend/pkg/configwatcher"
	"quizcraft_backend/pkg/database"
	"quizcraft_backend/pkg/logger"
	"quizcraft_backend/pkg/monitoring"
	"quizcraft_backend/pkg/security"
	"quizcraft_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	policy          *security.Policy
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	question *repository.QuestionRepository
	quiz     *repository.QuizRepository
	result   *repository.ResultRepository
}

type services struct {
	auth      *service.AuthService
	user      *service.UserService
	storage   *service.StorageService
	question  *service.QuestionService
	quiz      *service.QuizService
	result    *service.ResultService
	analytics *service.AnalyticsService
	attempt   *service.AttemptService
}

type controllers struct {
	auth      *controller.AuthController
	question  *controller.QuestionController
	quiz      *controller.QuizController
	attempt   *controller.AttemptController
	result    *controller.ResultController
	analytics *controller.AnalyticsController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		question: repository.NewQuestionRepository(db),
		quiz:     repository.NewQuizRepository(db),
		result:   repository.NewResultRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.question = service.NewQuestionService(repos.question)
	s.quiz = service.NewQuizService(repos.quiz, repos.question, repos.result)
	s.result = service.NewResultService(repos.result, repos.quiz)
	s.analytics = service.NewAnalyticsService(repos.quiz, repos.question, repos.result, rdb)
	s.attempt = service.NewAttemptService(repos.quiz, repos.question, repos.result, repos.user, s.analytics)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth, s.user),
		question:  controller.NewQuestionController(s.question, s.storage),
		quiz:      controller.NewQuizController(s.quiz, s.user),
		attempt:   controller.NewAttemptController(s.attempt),
		result:    controller.NewResultController(s.result),
		analytics: controller.NewAnalyticsController(s.analytics),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	a.policy = security.NewPolicy(cfg)
	router.Use(a.policy.CORS())
	router.Use(security.Secure())
	router.Use(a.policy.RateLimiter())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式默认不自动迁移，--migrate / --migrate-only 可强制
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("Database migration completed")
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("quizcraft", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 配置热更新：CORS 白名单与限流参数随文件变更生效，数据库/Redis 连接不重建
	app.RegisterConfigCallback(app.policy.Apply)
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		for _, cb := range app.configCallbacks {
			cb(newCfg)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 停掉所有答题会话的到期定时器
	if a.services != nil && a.services.attempt != nil {
		a.services.attempt.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
