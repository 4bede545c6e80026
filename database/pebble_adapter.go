package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"doc-anchor/model"

	"github.com/cockroachdb/pebble"
)

// PebbleDatabase PebbleDB database implementation with multiple collections
type PebbleDatabase struct {
	collections map[string]*pebble.DB

	mu     sync.Mutex // guards create (check + multi-collection write)
	nextID int64
	closed bool
}

// PebbleConfig PebbleDB configuration
type PebbleConfig struct {
	DataDir string
}

// Collection names and their key-value formats
const (
	collectionRecordCID    = "record_cid"    // key: {cid}, value: JSON(UploadRecord)
	collectionRecordSeq    = "record_seq"    // key: {id:020d}, value: JSON(UploadRecord) - creation order
	collectionRecordWallet = "record_wallet" // key: {wallet}:{id:020d}, value: JSON(UploadRecord)
)

// NewPebbleDatabase create PebbleDB database instance
func NewPebbleDatabase(config interface{}) (Database, error) {
	cfg, ok := config.(*PebbleConfig)
	if !ok {
		return nil, fmt.Errorf("invalid PebbleDB config type")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}

	collectionNames := []string{
		collectionRecordCID,
		collectionRecordSeq,
		collectionRecordWallet,
	}

	collections := make(map[string]*pebble.DB)
	for _, name := range collectionNames {
		path := filepath.Join(cfg.DataDir, "anchor_db", name)
		db, err := pebble.Open(path, &pebble.Options{})
		if err != nil {
			for _, opened := range collections {
				opened.Close()
			}
			return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
		}
		collections[name] = db
	}

	p := &PebbleDatabase{collections: collections}

	// Recover the ID counter from the highest sequence key.
	iter, err := collections[collectionRecordSeq].NewIter(nil)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to scan sequence collection: %w", err)
	}
	if iter.Last() {
		var rec model.UploadRecord
		if err := json.Unmarshal(iter.Value(), &rec); err == nil {
			p.nextID = rec.ID
		}
	}
	if err := iter.Close(); err != nil {
		p.Close()
		return nil, err
	}

	log.Printf("PebbleDB opened at %s (next record id %d)", cfg.DataDir, p.nextID+1)

	return p, nil
}

func seqKey(id int64) []byte {
	return []byte(fmt.Sprintf("%020d", id))
}

func walletKey(address string, id int64) []byte {
	return []byte(fmt.Sprintf("%s:%020d", address, id))
}

func (p *PebbleDatabase) CreateUploadRecord(rec *model.UploadRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return errors.New("database is closed")
	}

	cidColl := p.collections[collectionRecordCID]
	if _, closer, err := cidColl.Get([]byte(rec.CID)); err == nil {
		closer.Close()
		return ErrDuplicate
	} else if err != pebble.ErrNotFound {
		return err
	}

	p.nextID++
	rec.ID = p.nextID
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := cidColl.Set([]byte(rec.CID), data, pebble.Sync); err != nil {
		return err
	}
	if err := p.collections[collectionRecordSeq].Set(seqKey(rec.ID), data, pebble.Sync); err != nil {
		return err
	}
	if rec.WalletAddress != "" {
		if err := p.collections[collectionRecordWallet].Set(walletKey(rec.WalletAddress, rec.ID), data, pebble.Sync); err != nil {
			return err
		}
	}

	return nil
}

func (p *PebbleDatabase) GetUploadRecordByCID(cid string) (*model.UploadRecord, error) {
	data, closer, err := p.collections[collectionRecordCID].Get([]byte(cid))
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var rec model.UploadRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// listReverse walks a collection newest-first within bounds, applying
// skip/limit while counting every key for the total.
func listReverse(db *pebble.DB, lower, upper []byte, limit, skip int) ([]*model.UploadRecord, int64, error) {
	opts := &pebble.IterOptions{}
	if lower != nil {
		opts.LowerBound = lower
	}
	if upper != nil {
		opts.UpperBound = upper
	}

	iter, err := db.NewIter(opts)
	if err != nil {
		return nil, 0, err
	}
	defer iter.Close()

	var (
		recs  []*model.UploadRecord
		total int64
		seen  int
	)
	for ok := iter.Last(); ok; ok = iter.Prev() {
		total++
		if seen < skip {
			seen++
			continue
		}
		if len(recs) >= limit {
			continue // keep iterating for the total
		}
		var rec model.UploadRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		recs = append(recs, &rec)
	}

	return recs, total, iter.Error()
}

func (p *PebbleDatabase) ListUploadRecords(limit, skip int) ([]*model.UploadRecord, int64, error) {
	return listReverse(p.collections[collectionRecordSeq], nil, nil, limit, skip)
}

func (p *PebbleDatabase) ListUploadRecordsByWallet(address string, limit, skip int) ([]*model.UploadRecord, int64, error) {
	lower := []byte(address + ":")
	upper := []byte(address + ";") // ':' + 1
	return listReverse(p.collections[collectionRecordWallet], lower, upper, limit, skip)
}

// Ping reports whether the store is usable
func (p *PebbleDatabase) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("database is closed")
	}
	return nil
}

// Close close all collections
func (p *PebbleDatabase) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var lastErr error
	for name, db := range p.collections {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close collection %s: %v", name, err)
			lastErr = err
		}
	}
	return lastErr
}
