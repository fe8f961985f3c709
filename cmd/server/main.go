package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/nimo-pms/internal/config"
	"github.com/bitfantasy/nimo-pms/internal/middleware"
	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"github.com/bitfantasy/nimo-pms/internal/pms/handler"
	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"github.com/bitfantasy/nimo-pms/internal/pms/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// migrateModels 启动时迁移的全部表，声明顺序照顾外键依赖
var migrateModels = []any{
	&entity.User{},
	&entity.Building{},
	&entity.Level{},
	&entity.RoomType{},
	&entity.SpaceType{},
	&entity.HallType{},
	&entity.UtilityType{},
	&entity.Unit{},
	&entity.UnitUtility{},
	&entity.UnitImage{},
	&entity.Tenant{},
	&entity.Contract{},
	&entity.Invoice{},
	&entity.InvoiceItem{},
	&entity.MaintenanceRequest{},
}

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// .env 便于本地开发，生产环境直接用环境变量
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting nimo-pms service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// AutoMigrate：建表并落地唯一索引（同层编号、单元×计费项目）
	if err := db.AutoMigrate(migrateModels...); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services, cfg, zapLogger)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证 (无需登录)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的接口
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// 当前用户
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 类型目录
			authorized.GET("/room-types", h.Catalog.ListRoomTypes)
			authorized.GET("/space-types", h.Catalog.ListSpaceTypes)
			authorized.GET("/hall-types", h.Catalog.ListHallTypes)
			authorized.GET("/utility-types", h.Catalog.ListUtilityTypes)

			// 楼宇与楼层
			buildings := authorized.Group("/buildings")
			{
				buildings.GET("", h.Building.List)
				buildings.GET("/:id", h.Building.Get)
				buildings.GET("/:id/levels", h.Building.ListLevels)
			}
			authorized.GET("/levels/:id", h.Building.GetLevel)

			// 单元管理
			units := authorized.Group("/units")
			{
				units.GET("", h.Unit.List)
				units.GET("/check-number", h.Unit.CheckNumber)
				units.GET("/:id", h.Unit.Get)
				units.POST("", middleware.RequireRole(entity.RoleOperator), h.Unit.Create)
				units.PUT("/:id", middleware.RequireRole(entity.RoleOperator), h.Unit.Update)
				units.DELETE("/:id", middleware.RequireRole(entity.RoleAdmin), h.Unit.Delete)
			}

			// 租户管理
			tenants := authorized.Group("/tenants")
			{
				tenants.GET("", h.Tenant.List)
				tenants.GET("/:id", h.Tenant.Get)
				tenants.POST("", middleware.RequireRole(entity.RoleOperator), h.Tenant.Create)
				tenants.PUT("/:id", middleware.RequireRole(entity.RoleOperator), h.Tenant.Update)
			}

			// 合同管理
			contracts := authorized.Group("/contracts")
			{
				contracts.GET("", h.Contract.List)
				contracts.GET("/:id", h.Contract.Get)
				contracts.POST("", middleware.RequireRole(entity.RoleOperator), h.Contract.Create)
				contracts.POST("/:id/activate", middleware.RequireRole(entity.RoleOperator), h.Contract.Activate)
				contracts.POST("/:id/terminate", middleware.RequireRole(entity.RoleOperator), h.Contract.Terminate)
			}

			// 账单管理
			invoices := authorized.Group("/invoices")
			{
				invoices.GET("", h.Invoice.List)
				invoices.GET("/:id", h.Invoice.Get)
				invoices.POST("/generate", middleware.RequireRole(entity.RoleOperator), h.Invoice.Generate)
				invoices.POST("/:id/pay", middleware.RequireRole(entity.RoleOperator), h.Invoice.MarkPaid)
				invoices.POST("/mark-overdue", middleware.RequireRole(entity.RoleOperator), h.Invoice.MarkOverdue)
			}

			// 维修工单
			maintenance := authorized.Group("/maintenance-requests")
			{
				maintenance.GET("", h.Maintenance.List)
				maintenance.GET("/:id", h.Maintenance.Get)
				maintenance.POST("", h.Maintenance.Create)
				maintenance.PUT("/:id/status", middleware.RequireRole(entity.RoleOperator), h.Maintenance.UpdateStatus)
			}

			// 报表
			reports := authorized.Group("/reports")
			{
				reports.GET("/occupancy", h.Report.Occupancy)
				reports.GET("/billing", h.Report.Billing)
			}
		}
	}
}
