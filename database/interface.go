package database

import (
	"doc-anchor/model"
)

// Database interface for different store implementations. Create must
// enforce CID uniqueness atomically inside the adapter; callers never
// check-then-insert.
type Database interface {
	CreateUploadRecord(rec *model.UploadRecord) error
	GetUploadRecordByCID(cid string) (*model.UploadRecord, error)

	// List operations return records sorted by creation time descending,
	// together with the total count for the same filter.
	ListUploadRecords(limit, skip int) ([]*model.UploadRecord, int64, error)
	ListUploadRecordsByWallet(address string, limit, skip int) ([]*model.UploadRecord, int64, error)

	Ping() error
	Close() error
}

// DBType database type
type DBType string

const (
	DBTypeMySQL  DBType = "mysql"
	DBTypePebble DBType = "pebble"
)

// Global database instance
var DB Database

// InitDatabase initialize database with specified type
func InitDatabase(dbType DBType, config interface{}) error {
	var err error

	switch dbType {
	case DBTypeMySQL:
		DB, err = NewMySQLDatabase(config)
	case DBTypePebble:
		DB, err = NewPebbleDatabase(config)
	default:
		return ErrUnsupportedDBType
	}

	return err
}
