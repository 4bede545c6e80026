package database

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"doc-anchor/model"
)

func newTestDB(t *testing.T) Database {
	t.Helper()
	db, err := NewPebbleDatabase(&PebbleConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to open pebble database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// testCID produces a distinct valid-shaped CIDv0 per index.
func testCID(i int) string {
	suffix := fmt.Sprintf("%d", i)
	base := "Qm" + strings.Repeat("a", 44-len(suffix))
	return base + suffix
}

func TestCreateAndGetByCID(t *testing.T) {
	db := newTestDB(t)

	rec := &model.UploadRecord{
		CID:      testCID(1),
		FileName: "report.pdf",
		FileType: "application/pdf",
		FileSize: 1024,
	}
	if err := db.CreateUploadRecord(rec); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if rec.ID == 0 {
		t.Error("expected assigned id")
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set on create")
	}

	got, err := db.GetUploadRecordByCID(rec.CID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.FileName != "report.pdf" || got.FileSize != 1024 {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestGetByCID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUploadRecordByCID(testCID(99))
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_DuplicateCIDYieldsOneRecord(t *testing.T) {
	db := newTestDB(t)

	cid := testCID(7)
	first := &model.UploadRecord{CID: cid, FileName: "a.png"}
	if err := db.CreateUploadRecord(first); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second := &model.UploadRecord{CID: cid, FileName: "b.png"}
	if err := db.CreateUploadRecord(second); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// The stored record is still the first one.
	got, err := db.GetUploadRecordByCID(cid)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.FileName != "a.png" {
		t.Errorf("duplicate insert overwrote record: %+v", got)
	}

	_, total, err := db.ListUploadRecords(100, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 stored record, got %d", total)
	}
}

func TestList_NewestFirstWithPagination(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		rec := &model.UploadRecord{CID: testCID(i)}
		if err := db.CreateUploadRecord(rec); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
		time.Sleep(time.Millisecond)
	}

	recs, total, err := db.ListUploadRecords(2, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	// Newest first, skipping the newest one: records 3 then 2.
	if recs[0].CID != testCID(3) || recs[1].CID != testCID(2) {
		t.Errorf("unexpected page order: %s, %s", recs[0].CID, recs[1].CID)
	}
}

func TestList_PaginationInvariant(t *testing.T) {
	db := newTestDB(t)

	const n = 7
	for i := 0; i < n; i++ {
		if err := db.CreateUploadRecord(&model.UploadRecord{CID: testCID(i)}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	for _, tc := range []struct{ limit, skip int }{
		{3, 0}, {3, 3}, {3, 6}, {3, 9}, {100, 0}, {1, 6},
	} {
		recs, total, err := db.ListUploadRecords(tc.limit, tc.skip)
		if err != nil {
			t.Fatalf("list(limit=%d skip=%d): %v", tc.limit, tc.skip, err)
		}
		if len(recs) > tc.limit {
			t.Errorf("limit=%d skip=%d: returned %d > limit", tc.limit, tc.skip, len(recs))
		}
		if total != n {
			t.Errorf("limit=%d skip=%d: total = %d, want %d", tc.limit, tc.skip, total, n)
		}
		hasMore := int64(tc.skip+len(recs)) < total
		wantMore := tc.skip+len(recs) < n
		if hasMore != wantMore {
			t.Errorf("limit=%d skip=%d: hasMore = %v, want %v", tc.limit, tc.skip, hasMore, wantMore)
		}
	}
}

func TestListByWallet(t *testing.T) {
	db := newTestDB(t)

	wallet := "0x" + strings.Repeat("ab", 20)
	other := "0x" + strings.Repeat("cd", 20)

	for i := 0; i < 3; i++ {
		if err := db.CreateUploadRecord(&model.UploadRecord{CID: testCID(i), WalletAddress: wallet}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if err := db.CreateUploadRecord(&model.UploadRecord{CID: testCID(10), WalletAddress: other}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	recs, total, err := db.ListUploadRecordsByWallet(wallet, 10, 0)
	if err != nil {
		t.Fatalf("list by wallet failed: %v", err)
	}
	if total != 3 || len(recs) != 3 {
		t.Errorf("expected 3 records for wallet, got total=%d len=%d", total, len(recs))
	}
	for _, r := range recs {
		if r.WalletAddress != wallet {
			t.Errorf("record for wrong wallet: %s", r.WalletAddress)
		}
	}
	// Newest first.
	if recs[0].CID != testCID(2) {
		t.Errorf("expected newest record first, got %s", recs[0].CID)
	}
}

func TestPing_FailsAfterClose(t *testing.T) {
	db, err := NewPebbleDatabase(&PebbleConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Errorf("expected healthy ping, got %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := db.Ping(); err == nil {
		t.Error("expected ping to fail after close")
	}
}

func TestCounterRecoversAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := NewPebbleDatabase(&PebbleConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := db.CreateUploadRecord(&model.UploadRecord{CID: testCID(1)}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	db, err = NewPebbleDatabase(&PebbleConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	rec := &model.UploadRecord{CID: testCID(2)}
	if err := db.CreateUploadRecord(rec); err != nil {
		t.Fatalf("create after reopen failed: %v", err)
	}
	if rec.ID != 2 {
		t.Errorf("expected id 2 after reopen, got %d", rec.ID)
	}
}
