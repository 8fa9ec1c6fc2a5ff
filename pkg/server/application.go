package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	kratoslog "github.com/go-kratos/kratos/v2/log"

	"pixgram-social/pkg/config"
	"pixgram-social/pkg/database"
	"pixgram-social/pkg/kafka"
	"pixgram-social/pkg/lifecycle"
	"pixgram-social/pkg/logger"
	"pixgram-social/pkg/middleware"
	"pixgram-social/pkg/redis"
	"pixgram-social/pkg/snowflake"
	"pixgram-social/pkg/telemetry"
)

// Application 应用程序框架
type Application struct {
	serviceName    string
	config         *config.Config
	logger         kratoslog.Logger
	originalLogger logger.Logger
	serverManager  *ServerManager
	lifecycle      *lifecycle.LifecycleManager

	// 基础设施组件
	mongoDB       *database.MongoDB
	postgreSQL    *database.PostgreSQL
	redisClient   *redis.RedisClient
	kafkaProducer *kafka.Producer
	consumers     []*kafka.Consumer
	telemetry     *telemetry.Provider
	idNode        *snowflake.Node

	// 中间件
	authMiddleware    *middleware.AuthMiddleware
	loggingMiddleware *middleware.LoggingMiddleware

	// 注册函数
	httpRouteRegister func(*gin.Engine)
}

// NewApplication 创建应用程序
func NewApplication(serviceName string) *Application {
	cfg := config.LoadConfig(serviceName)

	if err := logger.Init("info"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	originalLogger := logger.GetLogger()

	kratosLogger := logger.NewKratosStdLogger(cfg.App.Name, cfg.App.Version)

	lifecycleManager := lifecycle.NewLifecycleManager(kratosLogger)
	serverManager := NewServerManager(cfg, kratosLogger)

	authMiddleware := middleware.NewAuthMiddleware(kratosLogger, cfg.App.JWTSecret)
	loggingMiddleware := middleware.NewLoggingMiddleware(kratosLogger)

	app := &Application{
		serviceName:       serviceName,
		config:            cfg,
		logger:            kratosLogger,
		originalLogger:    originalLogger,
		serverManager:     serverManager,
		lifecycle:         lifecycleManager,
		authMiddleware:    authMiddleware,
		loggingMiddleware: loggingMiddleware,
	}

	app.initInfrastructure()

	return app
}

// initInfrastructure 初始化基础设施组件
func (app *Application) initInfrastructure() {
	tp, err := telemetry.NewProvider(telemetry.DefaultConfig(app.serviceName))
	if err != nil {
		app.logger.Log(kratoslog.LevelError, "msg", "Failed to initialize telemetry", "error", err)
		panic(err)
	}
	app.telemetry = tp

	mongoDB, err := database.NewMongoDB(app.config.Database.MongoDB.URI, app.config.Database.MongoDB.DBName)
	if err != nil {
		app.logger.Log(kratoslog.LevelError, "msg", "Failed to connect to MongoDB", "error", err)
		panic(err)
	}
	app.mongoDB = mongoDB

	postgreSQL, err := database.NewPostgreSQL(app.config.Database.PostgreSQL.DSN, app.config.Database.PostgreSQL.DBName)
	if err != nil {
		app.logger.Log(kratoslog.LevelError, "msg", "Failed to connect to PostgreSQL", "error", err)
		panic(err)
	}
	app.postgreSQL = postgreSQL

	app.redisClient = redis.NewRedisClient(app.config.Redis.Addr, app.config.Redis.Password, app.config.Redis.DB)

	kafkaProducer, err := kafka.InitProducer(app.config.Kafka.Brokers)
	if err != nil {
		app.logger.Log(kratoslog.LevelError, "msg", "Failed to connect to Kafka", "error", err)
		panic(err)
	}
	app.kafkaProducer = kafkaProducer

	idNode, err := snowflake.NewNode(app.config.App.MachineID)
	if err != nil {
		app.logger.Log(kratoslog.LevelError, "msg", "Failed to create snowflake node", "error", err)
		panic(err)
	}
	app.idNode = idNode
}

// EnableHTTP 启用HTTP服务器并挂载公共中间件
func (app *Application) EnableHTTP() HTTPServer {
	httpServer := app.serverManager.EnableHTTP()

	httpServer.RegisterRoutes(func(engine *gin.Engine) {
		engine.Use(middleware.GinRequestID())
		engine.Use(app.loggingMiddleware.GinLogging())
		engine.Use(app.loggingMiddleware.GinRecovery())
		engine.Use(app.authMiddleware.GinAuth())
	})

	return httpServer
}

// RegisterHTTPRoutes 注册HTTP路由
func (app *Application) RegisterHTTPRoutes(registerFunc func(*gin.Engine)) {
	app.httpRouteRegister = registerFunc
}

// AddConsumer 注册Kafka消费者，随生命周期启停
func (app *Application) AddConsumer(topics []string, handler kafka.ConsumerHandler) error {
	consumer, err := kafka.InitConsumer(kafka.KafkaConfig{
		Brokers: app.config.Kafka.Brokers,
		GroupID: app.config.Kafka.GroupID,
		Topics:  topics,
	}, handler)
	if err != nil {
		return fmt.Errorf("failed to init consumer: %w", err)
	}
	app.consumers = append(app.consumers, consumer)
	return nil
}

// GetMongoDB 获取MongoDB连接
func (app *Application) GetMongoDB() *database.MongoDB {
	return app.mongoDB
}

// GetPostgreSQL 获取PostgreSQL连接
func (app *Application) GetPostgreSQL() *database.PostgreSQL {
	return app.postgreSQL
}

// GetRedisClient 获取Redis客户端
func (app *Application) GetRedisClient() *redis.RedisClient {
	return app.redisClient
}

// GetKafkaProducer 获取Kafka生产者
func (app *Application) GetKafkaProducer() *kafka.Producer {
	return app.kafkaProducer
}

// GetIDNode 获取分布式ID生成节点
func (app *Application) GetIDNode() *snowflake.Node {
	return app.idNode
}

// GetLogger 获取结构化日志器
func (app *Application) GetLogger() logger.Logger {
	return app.originalLogger
}

// GetKratosLogger 获取Kratos日志器
func (app *Application) GetKratosLogger() kratoslog.Logger {
	return app.logger
}

// GetConfig 获取配置
func (app *Application) GetConfig() *config.Config {
	return app.config
}

// Run 运行应用程序
func (app *Application) Run() error {
	app.registerLifecycleHooks()

	if err := app.lifecycle.Start(); err != nil {
		return fmt.Errorf("failed to start lifecycle: %w", err)
	}

	app.lifecycle.Wait()

	return nil
}

// registerLifecycleHooks 注册生命周期钩子
func (app *Application) registerLifecycleHooks() {
	if app.httpRouteRegister != nil {
		app.serverManager.RegisterHTTPRoutes(app.httpRouteRegister)
	}

	// 服务器钩子
	app.lifecycle.AddHook(lifecycle.Hook{
		Name:     "servers",
		Priority: 100,
		OnStart: func(ctx context.Context) error {
			return app.serverManager.StartAll(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return app.serverManager.StopAll(ctx)
		},
	})

	// 消费者钩子
	for i, consumer := range app.consumers {
		c := consumer
		app.lifecycle.AddHook(lifecycle.Hook{
			Name:     fmt.Sprintf("consumer-%d", i),
			Priority: 200,
			OnStart: func(ctx context.Context) error {
				return c.StartConsuming(ctx)
			},
			OnStop: func(ctx context.Context) error {
				return c.Close()
			},
		})
	}

	// 基础设施清理钩子
	app.lifecycle.AddHook(lifecycle.Hook{
		Name:     "infrastructure",
		Priority: 300,
		OnStop: func(ctx context.Context) error {
			if app.kafkaProducer != nil {
				if err := app.kafkaProducer.Close(); err != nil {
					app.logger.Log(kratoslog.LevelError, "msg", "Failed to close Kafka producer", "error", err)
				}
			}
			if app.redisClient != nil {
				if err := app.redisClient.Close(); err != nil {
					app.logger.Log(kratoslog.LevelError, "msg", "Failed to close Redis", "error", err)
				}
			}
			if app.mongoDB != nil {
				if err := app.mongoDB.Close(); err != nil {
					app.logger.Log(kratoslog.LevelError, "msg", "Failed to close MongoDB", "error", err)
				}
			}
			if app.postgreSQL != nil {
				if err := app.postgreSQL.Close(); err != nil {
					app.logger.Log(kratoslog.LevelError, "msg", "Failed to close PostgreSQL", "error", err)
				}
			}
			if app.telemetry != nil {
				if err := app.telemetry.Shutdown(ctx); err != nil {
					app.logger.Log(kratoslog.LevelError, "msg", "Failed to shutdown telemetry", "error", err)
				}
			}
			return nil
		},
	})
}
