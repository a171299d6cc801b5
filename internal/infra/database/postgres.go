package database

import (
	"fmt"
	"time"

	"video-stats/internal/config"
	"video-stats/internal/model"
	"video-stats/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init 初始化PostgreSQL数据库连接
func Init(cfg *config.DatabaseConfig) error {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	// 获取底层sql.DB来配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.DBName),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)

	return nil
}

// Migrate 迁移统计表结构（videos、video_snapshots 及其索引）
func Migrate() error {
	if err := DB.AutoMigrate(&model.Video{}, &model.VideoSnapshot{}); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	// 记录时间戳的 now() 默认值是 postgres 方言的 DDL，在这里补齐，不写在模型标签里
	for _, stmt := range []string{
		`ALTER TABLE videos ALTER COLUMN created_at SET DEFAULT now()`,
		`ALTER TABLE videos ALTER COLUMN updated_at SET DEFAULT now()`,
		`ALTER TABLE video_snapshots ALTER COLUMN updated_at SET DEFAULT now()`,
	} {
		if err := DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to set column default: %w", err)
		}
	}

	logger.Info("Database migration completed")
	return nil
}

// Close 关闭数据库连接
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	logger.Info("Database connection closed")
	return sqlDB.Close()
}

// Get 获取数据库实例
func Get() *gorm.DB {
	return DB
}
