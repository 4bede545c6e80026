package record_service

import (
	"errors"
	"log"
	"strings"

	"doc-anchor/database"
	"doc-anchor/model"
	"doc-anchor/model/dao"

	"github.com/redis/go-redis/v9"
)

// ValidationError carries every violated field constraint of a request.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

var (
	// ErrDuplicateCID content identifier already recorded
	ErrDuplicateCID = errors.New("cid already exists")
	// ErrNotFound no record for the requested key
	ErrNotFound = errors.New("upload record not found")
)

const (
	defaultLimit = 10
	maxLimit     = 100

	cacheKeyPrefix = "record:cid:"
)

// RecordService persists and retrieves upload records
type RecordService struct {
	dao *dao.UploadRecordDAO
}

// NewRecordService create record service over the global database
func NewRecordService() *RecordService {
	return &RecordService{dao: dao.NewUploadRecordDAO()}
}

// NewRecordServiceWithDB create record service over an explicit database
func NewRecordServiceWithDB(db database.Database) *RecordService {
	return &RecordService{dao: dao.NewUploadRecordDAOWithDB(db)}
}

// Create validates and stores a record. Uniqueness of the content
// identifier is enforced by the store's unique index, never by a
// check-then-insert here.
func (s *RecordService) Create(rec *model.UploadRecord) (*model.UploadRecord, error) {
	rec.Normalize()
	if fields := rec.Validate(); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if err := s.dao.Create(rec); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrDuplicateCID
		}
		return nil, err
	}

	if err := database.SetCache(cacheKeyPrefix+rec.CID, rec); err != nil {
		log.Printf("Failed to cache record %s: %v", rec.CID, err)
	}

	return rec, nil
}

// GetByCID exact-match lookup, read-through cached when Redis is enabled
func (s *RecordService) GetByCID(cid string) (*model.UploadRecord, error) {
	var cached model.UploadRecord
	if err := database.GetCache(cacheKeyPrefix+cid, &cached); err == nil {
		return &cached, nil
	} else if err != redis.Nil {
		log.Printf("Cache lookup for %s failed: %v", cid, err)
	}

	rec, err := s.dao.GetByCID(cid)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := database.SetCache(cacheKeyPrefix+cid, rec); err != nil {
		log.Printf("Failed to cache record %s: %v", cid, err)
	}

	return rec, nil
}

// Page list result with pagination metadata
type Page struct {
	Records []*model.UploadRecord
	Total   int64
	Limit   int
	Skip    int
}

// HasMore reports whether later pages exist
func (p *Page) HasMore() bool {
	return int64(p.Skip+len(p.Records)) < p.Total
}

// clampPage bounds limit to [1,100] (default 10) and skip to >= 0
func clampPage(limit, skip int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

// List all records, most recent first
func (s *RecordService) List(limit, skip int) (*Page, error) {
	limit, skip = clampPage(limit, skip)
	recs, total, err := s.dao.List(limit, skip)
	if err != nil {
		return nil, err
	}
	return &Page{Records: recs, Total: total, Limit: limit, Skip: skip}, nil
}

// ListByWallet records for one wallet, most recent first. The address
// is lowercased so lookups are case-insensitive against the lowercased
// stored form.
func (s *RecordService) ListByWallet(address string, limit, skip int) (*Page, error) {
	limit, skip = clampPage(limit, skip)
	recs, total, err := s.dao.ListByWallet(strings.ToLower(address), limit, skip)
	if err != nil {
		return nil, err
	}
	return &Page{Records: recs, Total: total, Limit: limit, Skip: skip}, nil
}

// Ping store health check
func (s *RecordService) Ping() error {
	return s.dao.Ping()
}
