// Package main 是应用程序的入口点。
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"supplier-smart-go/internal/analytics"
	"supplier-smart-go/internal/chatbot"
	"supplier-smart-go/internal/config"
	"supplier-smart-go/internal/handler"
	"supplier-smart-go/internal/middleware"
	"supplier-smart-go/internal/model"
	"supplier-smart-go/internal/repository"
	"supplier-smart-go/internal/service"
	"supplier-smart-go/pkg/database"
	"supplier-smart-go/pkg/kafka"
	"supplier-smart-go/pkg/llm"
	"supplier-smart-go/pkg/log"
	"supplier-smart-go/pkg/storage"
	"supplier-smart-go/pkg/token"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库、Redis 与对象存储
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := database.DB.AutoMigrate(&model.User{}, &model.Supplier{}, &model.Product{}); err != nil {
		log.Fatal("数据库迁移失败", err)
	}
	producer := kafka.NewProducer(cfg.Kafka)
	defer producer.Close()

	// 4. 初始化 Repository
	userRepository := repository.NewUserRepository(database.DB)
	catalogRepo := repository.NewCatalogRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.RDB, cfg.Chat.HistoryLimit)
	preferenceRepo := repository.NewPreferenceRepository(database.RDB)

	// 5. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	llmClient := llm.NewClient(cfg.LLM)
	userService := service.NewUserService(userRepository, jwtManager)
	catalogService := service.NewCatalogService(catalogRepo, cfg.Chat.SearchLimit)
	engine := chatbot.NewEngine(catalogService, catalogService, catalogService)
	chatService := service.NewChatService(engine, conversationRepo, preferenceRepo, llmClient, producer)
	conversationService := service.NewConversationService(conversationRepo)
	analyticsService := service.NewAnalyticsService(database.RDB, cfg.MinIO)

	// 6. 启动后台 Kafka 消费者，驱动分析聚合
	aggregator := analytics.NewAggregator(database.RDB)
	go kafka.StartConsumer(cfg.Kafka, aggregator)

	// 6.1 初始化导入 initdata 目录中的目录数据（幂等：已存在的记录跳过）
	seedCtx, cancelSeed := context.WithCancel(context.Background())
	defer cancelSeed()
	go initSeedCatalog(seedCtx, "initdata", catalogRepo)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由 (公开访问)
			users.POST("/register", handler.NewUserHandler(userService).Register)
			users.POST("/login", handler.NewUserHandler(userService).Login)

			// 需要认证的路由 (仅限登录用户访问)
			authed := users.Group("/")
			authed.Use(middleware.AuthMiddleware(jwtManager, userService))
			{
				authed.GET("/me", handler.NewUserHandler(userService).GetProfile)
				authed.POST("/logout", handler.NewUserHandler(userService).Logout)
			}
		}

		// Catalog 路由组，需要认证
		catalog := apiV1.Group("/catalog")
		catalog.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			catalog.GET("/products", handler.NewCatalogHandler(catalogService).SearchProducts)
			catalog.GET("/suppliers", handler.NewCatalogHandler(catalogService).SearchSuppliers)
			catalog.POST("/compare", handler.NewCatalogHandler(catalogService).Compare)
		}

		// Conversation 路由组，需要认证
		conversation := apiV1.Group("/users/conversation")
		conversation.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			conversation.GET("", handler.NewConversationHandler(conversationService).GetConversation)
		}

		// Chat 路由：REST 入口需要认证，WebSocket 在路径中携带 token
		chatGroup := apiV1.Group("/chat")
		chatGroup.Use(middleware.AuthMiddleware(jwtManager, userService))
		{
			chatGroup.POST("/message", handler.NewChatHandler(chatService, userService, jwtManager).PostMessage)
			chatGroup.GET("/preferences", handler.NewChatHandler(chatService, userService, jwtManager).GetPreferences)
		}
		r.GET("/chat/:token", handler.NewChatHandler(chatService, userService, jwtManager).Handle)

		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin := apiV1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtManager, userService), middleware.AdminAuthMiddleware())
		{
			admin.GET("/analytics", handler.NewAnalyticsHandler(analyticsService).GetAnalytics)
			admin.GET("/analytics/export", handler.NewAnalyticsHandler(analyticsService).ExportAnalytics)
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

// seedFile 描述 initdata 目录中单个 JSON 文件的结构。
type seedFile struct {
	Suppliers []seedSupplier `json:"suppliers"`
	Products  []seedProduct  `json:"products"`
}

type seedSupplier struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Categories string `json:"categories"`
}

type seedProduct struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Supplier    string  `json:"supplier"` // 供应商名称，用于关联
}

// initSeedCatalog 扫描目录下的 JSON 文件并导入目录数据（幂等）。
func initSeedCatalog(ctx context.Context, dir string, catalogRepo repository.CatalogRepository) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Infof("initSeedCatalog: 目录 '%s' 不存在或不可用，跳过初始化导入", dir)
		return
	}

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			log.Warnf("initSeedCatalog: 读取文件失败: %s, err=%v", path, err)
			return nil
		}

		var seed seedFile
		if err := json.Unmarshal(data, &seed); err != nil {
			log.Warnf("initSeedCatalog: 解析文件失败: %s, err=%v", path, err)
			return nil
		}

		// 先导入供应商，记录名称到 ID 的映射
		supplierIDs := make(map[string]uint)
		for _, s := range seed.Suppliers {
			existing, findErr := catalogRepo.FindSupplierByName(ctx, s.Name)
			if findErr == nil {
				supplierIDs[s.Name] = existing.ID
				continue
			}
			if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				log.Warnf("initSeedCatalog: 查询供应商失败: %s, err=%v", s.Name, findErr)
				continue
			}
			supplier := &model.Supplier{
				Name:       s.Name,
				Email:      s.Email,
				Phone:      s.Phone,
				Categories: s.Categories,
			}
			if createErr := catalogRepo.CreateSupplier(ctx, supplier); createErr != nil {
				log.Warnf("initSeedCatalog: 创建供应商失败: %s, err=%v", s.Name, createErr)
				continue
			}
			supplierIDs[s.Name] = supplier.ID
		}

		// 再导入产品并关联供应商
		for _, p := range seed.Products {
			if _, findErr := catalogRepo.FindProductByNameAndBrand(ctx, p.Name, p.Brand); findErr == nil {
				continue // 已存在则跳过
			} else if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				log.Warnf("initSeedCatalog: 查询产品失败: %s, err=%v", p.Name, findErr)
				continue
			}
			supplierID, ok := supplierIDs[p.Supplier]
			if !ok {
				if existing, findErr := catalogRepo.FindSupplierByName(ctx, p.Supplier); findErr == nil {
					supplierID = existing.ID
				} else {
					log.Warnf("initSeedCatalog: 产品 '%s' 引用了未知供应商 '%s'，跳过", p.Name, p.Supplier)
					continue
				}
			}
			product := &model.Product{
				Name:        p.Name,
				Brand:       p.Brand,
				Price:       p.Price,
				Category:    p.Category,
				Description: p.Description,
				SupplierID:  supplierID,
			}
			if createErr := catalogRepo.CreateProduct(ctx, product); createErr != nil {
				log.Warnf("initSeedCatalog: 创建产品失败: %s, err=%v", p.Name, createErr)
				continue
			}
		}

		log.Infof("initSeedCatalog: 导入完成: %s", path)
		return nil
	})
	if walkErr != nil {
		log.Warnf("initSeedCatalog: 遍历目录发生错误: %v", walkErr)
	}
}
