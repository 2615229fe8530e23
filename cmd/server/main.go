// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"pytutor-go/internal/config"
	"pytutor-go/internal/handler"
	"pytutor-go/internal/middleware"
	"pytutor-go/internal/repository"
	"pytutor-go/internal/service"
	"pytutor-go/pkg/database"
	"pytutor-go/pkg/gemini"
	"pytutor-go/pkg/log"
	"pytutor-go/pkg/ratelimit"
	"pytutor-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.DB)
	settingRepo := repository.NewSettingRepository(database.DB)
	progressRepo := repository.NewProgressRepository(database.DB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	llmClient := gemini.NewClient(cfg.Gemini)
	userService := service.NewUserService(userRepo, jwtManager)
	settingService := service.NewSettingService(settingRepo)
	conversationService := service.NewConversationService(conversationRepo)
	chatService := service.NewChatService(conversationRepo, settingService, llmClient)
	progressService := service.NewProgressService(progressRepo)

	// 6. 初始化限流器：显式注入实例而不是包级单例
	limiter := newLimiter(cfg.RateLimit)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", handler.NewAuthHandler(userService).Register)
			auth.POST("/login", handler.NewAuthHandler(userService).Login)
			auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)

			authedAuth := auth.Group("/")
			authedAuth.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				authedAuth.POST("/logout", handler.NewAuthHandler(userService).Logout)
			}
		}

		// 除注册/登录外的所有路由都需要有效会话
		authed := apiV1.Group("/")
		authed.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			authed.POST("/chat", handler.NewChatHandler(chatService, limiter).Chat)
			authed.GET("/chat-history", handler.NewConversationHandler(conversationService, limiter).GetHistory)
			authed.GET("/tutors", handler.NewTutorHandler().List)
			authed.POST("/progress", handler.NewProgressHandler(progressService).SaveProgress)
			authed.GET("/user-data", handler.NewProgressHandler(progressService).GetUserData)

			// 设置路由需要同时通过认证和管理员授权两个中间件
			settings := authed.Group("/settings")
			settings.Use(middleware.AdminAuthMiddleware())
			{
				settings.POST("/provider-key", handler.NewSettingsHandler(settingService).UpdateProviderKey)
			}
		}
	}

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}

// newLimiter 根据配置选择限流实现：
// 单实例部署用进程内计数器即可，多实例部署切到 Redis 共享计数。
func newLimiter(cfg config.RateLimitConfig) ratelimit.Limiter {
	points := cfg.Points
	if points <= 0 {
		points = 10
	}
	windowSeconds := cfg.WindowSeconds
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	window := time.Duration(windowSeconds) * time.Second

	if cfg.Store == "redis" {
		log.Info("使用 Redis 共享限流器")
		return ratelimit.NewRedisLimiter(database.RDB, points, window)
	}
	log.Info("使用进程内限流器（仅适用于单实例部署）")
	return ratelimit.NewMemoryLimiter(points, window)
}
