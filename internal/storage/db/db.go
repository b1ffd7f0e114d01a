package db

import (
	"os"
	"path/filepath"

	"tvshell/internal/config"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// MemoryName 内存数据库名，仅用于测试
const MemoryName = ":memory:"

// Options 数据库配置选项
type Options struct {
	// Name 数据库文件名（位于应用数据目录下）
	Name string
	// FullPath 数据库文件完整路径，非空时忽略 Name
	FullPath string
	// Prefix 表前缀
	Prefix string
	// Logger GORM 日志实现
	Logger logger.Interface
}

// New 创建并初始化数据库连接
func New(opts Options) (*gorm.DB, error) {
	dsn, err := resolveDSN(opts)
	if err != nil {
		return nil, err
	}

	gormLogger := opts.Logger
	if gormLogger == nil {
		gormLogger = logger.Discard
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   opts.Prefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}

	// 单写者：偏好只在对话框确认时写入
	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate 执行数据库自动迁移
func Migrate(db *gorm.DB, models ...any) error {
	return db.AutoMigrate(models...)
}

// Close 关闭底层连接
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDefaultPath 获取平台相关的默认数据库文件路径
func GetDefaultPath(dbName string) (string, error) {
	dir, err := config.AppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbName), nil
}

// resolveDSN 计算连接串并确保数据库目录存在
func resolveDSN(opts Options) (string, error) {
	if opts.FullPath == "" && opts.Name == MemoryName {
		return MemoryName, nil
	}

	path := opts.FullPath
	if path == "" {
		var err error
		if path, err = GetDefaultPath(opts.Name); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}
