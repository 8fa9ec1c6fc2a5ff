package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgreSQL PostgreSQL连接管理器
type PostgreSQL struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	dbName string
}

// NewPostgreSQL 创建PostgreSQL连接
// TranslateError开启后，唯一约束冲突统一转换为gorm.ErrDuplicatedKey，
// 互动账本的insert-first语义依赖这一点
func NewPostgreSQL(dsn, dbName string) (*PostgreSQL, error) {
	config := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %v", err)
	}

	// 连接池配置
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	return &PostgreSQL{
		db:     db,
		sqlDB:  sqlDB,
		dbName: dbName,
	}, nil
}

// GetDB 获取GORM数据库实例
func (p *PostgreSQL) GetDB() *gorm.DB {
	return p.db
}

// WithContext 使用上下文
func (p *PostgreSQL) WithContext(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx)
}

// Transaction 执行事务
func (p *PostgreSQL) Transaction(fn func(*gorm.DB) error) error {
	return p.db.Transaction(fn)
}

// AutoMigrate 自动迁移表结构
func (p *PostgreSQL) AutoMigrate(models ...interface{}) error {
	return p.db.AutoMigrate(models...)
}

// Health 健康检查
func (p *PostgreSQL) Health(ctx context.Context) error {
	return p.sqlDB.PingContext(ctx)
}

// Stats 获取连接池统计信息
func (p *PostgreSQL) Stats() sql.DBStats {
	return p.sqlDB.Stats()
}

// Close 关闭连接
func (p *PostgreSQL) Close() error {
	if p.sqlDB != nil {
		return p.sqlDB.Close()
	}
	return nil
}
