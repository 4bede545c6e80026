package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"doc-anchor/model"
	"doc-anchor/tool"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLDatabase MySQL database implementation
type MySQLDatabase struct {
	db *gorm.DB
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

const (
	connectAttempts = 5
	connectDelay    = 3 * time.Second

	mysqlDupEntry = 1062
)

// NewMySQLDatabase create MySQL database instance. The initial connect
// is retried a bounded number of times so the service survives a
// database that comes up slightly later than it does.
func NewMySQLDatabase(config interface{}) (Database, error) {
	cfg, ok := config.(*MySQLConfig)
	if !ok {
		return nil, fmt.Errorf("invalid MySQL config type")
	}

	var db *gorm.DB
	err := tool.Retry(context.Background(), connectAttempts, tool.FixedDelay(connectDelay), func(attempt int) error {
		var openErr error
		db, openErr = gorm.Open(gormmysql.Open(cfg.DSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if openErr != nil {
			log.Printf("MySQL connect attempt %d/%d failed: %v", attempt, connectAttempts, openErr)
		}
		return openErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&model.UploadRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Println("MySQL database connected successfully")

	return &MySQLDatabase{db: db}, nil
}

func (m *MySQLDatabase) CreateUploadRecord(rec *model.UploadRecord) error {
	err := m.db.Create(rec).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry {
			return ErrDuplicate
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
	}
	return err
}

func (m *MySQLDatabase) GetUploadRecordByCID(cid string) (*model.UploadRecord, error) {
	var rec model.UploadRecord
	err := m.db.Where("cid = ?", cid).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *MySQLDatabase) ListUploadRecords(limit, skip int) ([]*model.UploadRecord, int64, error) {
	var total int64
	if err := m.db.Model(&model.UploadRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []*model.UploadRecord
	err := m.db.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(skip).
		Find(&recs).Error
	return recs, total, err
}

func (m *MySQLDatabase) ListUploadRecordsByWallet(address string, limit, skip int) ([]*model.UploadRecord, int64, error) {
	var total int64
	if err := m.db.Model(&model.UploadRecord{}).
		Where("wallet_address = ?", address).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []*model.UploadRecord
	err := m.db.Where("wallet_address = ?", address).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(skip).
		Find(&recs).Error
	return recs, total, err
}

// Ping check the underlying connection
func (m *MySQLDatabase) Ping() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close close database connection
func (m *MySQLDatabase) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
