package app

import (
	"context"
	"errors"
	"lingua_backend/internal/config"
	"lingua_backend/internal/controller"
	"lingua_backend/internal/repository"
	"lingua_backend/internal/service"
	"lingua_backend/pkg/configwatcher"
	"lingua_backend/pkg/database"
	"lingua_backend/pkg/llm"
	"lingua_backend/pkg/logger"
	"lingua_backend/pkg/monitoring"
	"lingua_backend/pkg/scheduler"
	"lingua_backend/pkg/security"
	"lingua_backend/pkg/tracing"
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
)

type App struct {
	Config    *config.Config
	ConfigDir string
	Router    *gin.Engine
	DB        *gorm.DB
	Redis     *redis.Client

	services        *services
	scheduler       *scheduler.Scheduler
	tracer          *sdktrace.TracerProvider
	stopWatch       context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	content     *repository.ContentRepository
	attempt     *repository.AttemptRepository
	profile     *repository.ProfileRepository
	progress    *repository.ProgressRepository
	quest       *repository.QuestRepository
	achievement *repository.AchievementRepository
	session     repository.SessionStore
}

type services struct {
	storage     *service.StorageService
	ai          *service.AIService
	judge       *service.Judge
	tracker     *service.SessionTracker
	profile     *service.ProfileService
	quest       *service.QuestService
	achievement *service.AchievementService
	reward      *service.RewardService
	lesson      *service.LessonService
	chat        *service.ConversationService
}

type controllers struct {
	lesson      *controller.LessonController
	profile     *controller.ProfileController
	quest       *controller.QuestController
	achievement *controller.AchievementController
	health      *controller.HealthController
	chat        *controller.ConversationController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) reloadConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	repos := &repositories{
		content:     repository.NewContentRepository(db),
		attempt:     repository.NewAttemptRepository(db),
		profile:     repository.NewProfileRepository(db),
		progress:    repository.NewProgressRepository(db),
		quest:       repository.NewQuestRepository(db),
		achievement: repository.NewAchievementRepository(db),
	}

	// 没有 Redis 时会话只保存在本进程内
	if rdb != nil {
		repos.session = repository.NewRedisSessionStore(rdb, cfg.Gamification.SessionTTL())
	} else {
		logger.Log.Warn("Redis unavailable, using in-memory lesson sessions")
		repos.session = repository.NewMemorySessionStore(cfg.Gamification.SessionTTL())
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client, provider llm.Provider) *services {
	s := &services{}
	loc := cfg.Gamification.Location()

	s.storage = service.NewStorageService(cfg)
	s.ai = service.NewAIService(provider, rdb, cfg.AI.GenerateTimeout())
	s.judge = service.NewJudge(s.ai, cfg.AI.CheckTimeout())
	s.tracker = service.NewSessionTracker(repos.session)
	s.profile = service.NewProfileService(repos.profile, cfg.Gamification)
	s.quest = service.NewQuestService(db, repos.quest, repos.profile, loc)
	s.achievement = service.NewAchievementService(db, repos.achievement, repos.profile, repos.progress, repos.quest, rdb, loc)
	s.reward = service.NewRewardService(db, repos.profile, repos.progress, s.quest, s.achievement, loc)

	s.lesson = service.NewLessonService(
		db,
		repos.content,
		repos.attempt,
		repos.progress,
		repos.profile,
		s.profile,
		s.tracker,
		s.judge,
		s.reward,
		s.quest,
		s.achievement,
		s.ai,
		s.storage,
		cfg.Gamification,
	)

	s.chat = service.NewConversationService(s.profile, s.ai)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		lesson:      controller.NewLessonController(s.lesson),
		profile:     controller.NewProfileController(s.profile),
		quest:       controller.NewQuestController(s.quest),
		achievement: controller.NewAchievementController(s.achievement),
		health:      controller.NewHealthController(db, rdb),
		chat:        controller.NewConversationController(s.chat),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 启动连胜清理任务和配置热更新
func (a *App) startBackgroundTasks(s *services) {
	a.scheduler = scheduler.New(s.profile, a.Config.Gamification.Location())
	if err := a.scheduler.Start(); err != nil {
		logger.Log.Error("Failed to start scheduler", zap.Error(err))
	}

	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetMode(cfg.Server.Mode)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		s.judge.SetTimeout(cfg.AI.CheckTimeout())
	})

	if a.ConfigDir == "" {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.stopWatch = cancel
	go func() {
		if err := configwatcher.WatchConfig(ctx, a.ConfigDir, a.reloadConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

// build 组装仓储、服务和路由，不启动任何后台任务
func build(cfg *config.Config, db *gorm.DB, rdb *redis.Client, provider llm.Provider) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg, db, rdb, provider)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" && cfg.Storage.LocalPath != "" {
		router.Static("/media", cfg.Storage.LocalPath)
	}

	return app
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Failed to initialize redis", zap.Error(err))
	}

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(context.Background(), cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	provider, err := llm.NewProvider(context.Background(), cfg.AI)
	if err != nil {
		logger.Log.Warn("AI provider unavailable, falling back to static hints", zap.Error(err))
		provider = llm.DisabledProvider{}
	}

	app := build(cfg, db, rdb, provider)
	app.ConfigDir = configDir
	app.tracer = tp

	app.startBackgroundTasks(app.services)

	return app
}

// Migrate 建表并写入默认目录后返回，供 migrate 子命令使用
func Migrate(cfg *config.Config) error {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	cfg.ForceMigrate = true
	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (a *App) Run() error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}
	logger.Log.Info("Shutting down server...")

	if a.stopWatch != nil {
		a.stopWatch()
	}
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	return nil
}
