package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// AppConfig 应用配置
type AppConfig struct {
	Name      string
	Version   string
	JWTSecret string
	MachineID int64
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPConfig
}

// HTTPConfig HTTP服务配置
type HTTPConfig struct {
	Addr    string
	Timeout string
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	PostgreSQL PostgreSQLConfig
	MongoDB    MongoDBConfig
}

// PostgreSQLConfig PostgreSQL配置
type PostgreSQLConfig struct {
	DSN    string
	DBName string
}

// MongoDBConfig MongoDB配置
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string
	GroupID string
}

// 各服务默认HTTP端口
var defaultHTTPPorts = map[string]string{
	"interaction-service":  "21001",
	"content-service":      "21002",
	"notification-service": "21003",
}

// LoadConfig 加载配置，环境变量优先于默认值
func LoadConfig(serviceName string) *Config {
	defaultPort, ok := defaultHTTPPorts[serviceName]
	if !ok {
		panic(fmt.Sprintf("unknown service name: %s", serviceName))
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", defaultPort)
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("JWT_SECRET", "pixgram-dev-secret")
	v.SetDefault("MACHINE_ID", 1)
	v.SetDefault("POSTGRESQL_DSN",
		"host=localhost user=postgres password=postgres dbname=pixgramDB port=5432 sslmode=disable TimeZone=Asia/Shanghai")
	v.SetDefault("POSTGRESQL_DB", "pixgramDB")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DB", serviceName+"DB")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_ID", serviceName+"-group")

	return &Config{
		App: AppConfig{
			Name:      serviceName,
			Version:   v.GetString("APP_VERSION"),
			JWTSecret: v.GetString("JWT_SECRET"),
			MachineID: v.GetInt64("MACHINE_ID"),
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{
				Addr:    ":" + v.GetString("HTTP_PORT"),
				Timeout: v.GetString("HTTP_TIMEOUT"),
			},
		},
		Database: DatabaseConfig{
			PostgreSQL: PostgreSQLConfig{
				DSN:    v.GetString("POSTGRESQL_DSN"),
				DBName: v.GetString("POSTGRESQL_DB"),
			},
			MongoDB: MongoDBConfig{
				URI:    v.GetString("MONGODB_URI"),
				DBName: v.GetString("MONGODB_DB"),
			},
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{v.GetString("KAFKA_BROKERS")},
			GroupID: v.GetString("KAFKA_GROUP_ID"),
		},
	}
}
