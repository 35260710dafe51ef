package db

import (
	"fmt"

	"decision-console/internal/config"
	"decision-console/internal/logger"
	"decision-console/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB 连接诊断库；未配置 database.host 时不启用，DB 保持 nil
func InitDB(cfg *config.Config) error {
	if !cfg.Database.Enabled() {
		logger.Logger.Info().Msg("未配置数据库，诊断记录只写日志")
		return nil
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 自动迁移
	if err := DB.AutoMigrate(&model.Diagnostic{}); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	logger.Logger.Info().Str("host", cfg.Database.Host).Msg("数据库初始化成功")
	return nil
}
