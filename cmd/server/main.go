package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/candat96/mini-cis/internal/config"
	"github.com/candat96/mini-cis/internal/handler"
	"github.com/candat96/mini-cis/internal/middleware"
	"github.com/candat96/mini-cis/internal/model/entity"
	"github.com/candat96/mini-cis/internal/repository"
	"github.com/candat96/mini-cis/internal/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// .env 存在时先加载，便于本地开发
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

	zapLogger.Info("Starting mini-cis service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services)

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
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
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
	if cfg.Host == "" {
		return nil
	}
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
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
		}

		// 需要认证的接口
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// 当前用户
			authorized.GET("/auth/me", h.Auth.Me)

			// 医生列表
			authorized.GET("/doctors", h.Auth.ListDoctors)

			// 患者管理
			patients := authorized.Group("/patients")
			{
				patients.GET("", h.Patient.List)
				patients.POST("", h.Patient.Create)
				patients.GET("/:id", h.Patient.Get)
				patients.PUT("/:id", h.Patient.Update)
				patients.DELETE("/:id", h.Patient.Delete)
			}

			// 诊疗服务
			services := authorized.Group("/services")
			{
				services.GET("", h.Catalog.List)
				services.POST("", h.Catalog.Create)
				services.GET("/:id", h.Catalog.Get)
				services.PUT("/:id", h.Catalog.Update)
				services.DELETE("/:id", h.Catalog.Delete)
			}

			// 服务类别
			serviceCategories := authorized.Group("/service-categories")
			{
				serviceCategories.GET("", h.Catalog.ListCategories)
				serviceCategories.POST("", h.Catalog.CreateCategory)
				serviceCategories.GET("/:id", h.Catalog.GetCategory)
				serviceCategories.PUT("/:id", h.Catalog.UpdateCategory)
				serviceCategories.DELETE("/:id", h.Catalog.DeleteCategory)
			}

			// 药品管理
			medicines := authorized.Group("/medicines")
			{
				medicines.GET("", h.Medicine.List)
				medicines.POST("", h.Medicine.Create)
				medicines.GET("/:id", h.Medicine.Get)
				medicines.PUT("/:id", h.Medicine.Update)
				medicines.DELETE("/:id", h.Medicine.Delete)
			}

			// 药品类别
			medicineCategories := authorized.Group("/medicine-categories")
			{
				medicineCategories.GET("", h.Medicine.ListCategories)
				medicineCategories.POST("", h.Medicine.CreateCategory)
				medicineCategories.GET("/:id", h.Medicine.GetCategory)
				medicineCategories.PUT("/:id", h.Medicine.UpdateCategory)
				medicineCategories.DELETE("/:id", h.Medicine.DeleteCategory)
			}

			// 预约管理
			appointments := authorized.Group("/appointments")
			{
				appointments.GET("", h.Appointment.List)
				appointments.POST("", h.Appointment.Create)
				appointments.GET("/:id", h.Appointment.Get)
				appointments.PUT("/:id", h.Appointment.Update)
			}

			// 批次库存
			authorized.GET("/inventory", h.Inventory.List)

			// 入库管理
			stockIns := authorized.Group("/stock-ins")
			{
				stockIns.GET("", h.StockIn.List)
				stockIns.POST("", h.StockIn.Create)
				stockIns.GET("/:id", h.StockIn.Get)
				stockIns.DELETE("/:id", h.StockIn.Delete)
			}

			// 出库管理
			stockOuts := authorized.Group("/stock-outs")
			{
				stockOuts.GET("", h.StockOut.List)
				stockOuts.POST("", h.StockOut.Create)
				stockOuts.GET("/:id", h.StockOut.Get)
				stockOuts.DELETE("/:id", h.StockOut.Delete)
			}

			// 处方管理
			prescriptions := authorized.Group("/prescriptions")
			{
				prescriptions.GET("", h.Prescription.List)
				prescriptions.POST("", h.Prescription.Create)
				prescriptions.GET("/:id", h.Prescription.Get)
				prescriptions.PUT("/:id", h.Prescription.Update)
				prescriptions.DELETE("/:id", h.Prescription.Delete)
			}

			// 报表 (仅管理员)
			reports := authorized.Group("/reports")
			reports.Use(middleware.RequireRole(entity.RoleAdmin))
			{
				reports.GET("/revenue", h.Report.Revenue)
				reports.GET("/revenue/by-doctor", h.Report.RevenueByDoctor)
				reports.GET("/revenue/export", h.Report.ExportRevenue)
			}
		}
	}
}
