package dao

import (
	"doc-anchor/database"
	"doc-anchor/model"
)

// UploadRecordDAO upload record data access object
type UploadRecordDAO struct {
	db database.Database
}

// NewUploadRecordDAO create upload record DAO instance backed by the
// global database
func NewUploadRecordDAO() *UploadRecordDAO {
	return &UploadRecordDAO{
		db: database.DB,
	}
}

// NewUploadRecordDAOWithDB create DAO over an explicit database (tests)
func NewUploadRecordDAOWithDB(db database.Database) *UploadRecordDAO {
	return &UploadRecordDAO{db: db}
}

// Create create upload record; database.ErrDuplicate on cid conflict
func (dao *UploadRecordDAO) Create(rec *model.UploadRecord) error {
	return dao.db.CreateUploadRecord(rec)
}

// GetByCID get record by content identifier; database.ErrNotFound when absent
func (dao *UploadRecordDAO) GetByCID(cid string) (*model.UploadRecord, error) {
	return dao.db.GetUploadRecordByCID(cid)
}

// List get records sorted by creation time descending
// Returns: records, total, error
func (dao *UploadRecordDAO) List(limit, skip int) ([]*model.UploadRecord, int64, error) {
	return dao.db.ListUploadRecords(limit, skip)
}

// ListByWallet get records for a wallet address sorted by creation time
// descending
// Returns: records, total, error
func (dao *UploadRecordDAO) ListByWallet(address string, limit, skip int) ([]*model.UploadRecord, int64, error) {
	return dao.db.ListUploadRecordsByWallet(address, limit, skip)
}

// Ping check store health
func (dao *UploadRecordDAO) Ping() error {
	return dao.db.Ping()
}
