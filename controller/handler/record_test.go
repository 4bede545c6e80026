package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"doc-anchor/conf"
	"doc-anchor/database"
	"doc-anchor/service/record_service"
	"doc-anchor/storage"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

const testCID = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"

func newTestRouter(t *testing.T, mirror storage.Storage) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conf.Cfg = &conf.Config{Env: "test"}

	db, err := database.NewPebbleDatabase(&database.PebbleConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	recordService := record_service.NewRecordServiceWithDB(db)
	recordHandler := NewRecordHandler(recordService, mirror)
	healthHandler := NewHealthHandler(recordService)

	r := gin.New()
	r.POST("/api/upload", recordHandler.CreateRecord)
	r.GET("/api/upload", recordHandler.ListRecords)
	r.GET("/api/upload/cid/:cid", recordHandler.GetRecordByCID)
	r.GET("/api/upload/wallet/:address", recordHandler.ListRecordsByWallet)
	r.GET("/api/upload/content/:cid", recordHandler.GetContent)
	r.GET("/health", healthHandler.Health)
	return r
}

func postRecord(t *testing.T, r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRecord_Created(t *testing.T) {
	r := newTestRouter(t, nil)

	w := postRecord(t, r, map[string]interface{}{
		"cid":           testCID,
		"fileName":      "contract.pdf",
		"fileType":      "application/pdf",
		"fileSize":      2048,
		"walletAddress": "0x9F8E7D6C5B4A39281706F5E4D3C2B1A098765432",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !gjson.Get(body, "success").Bool() {
		t.Error("expected success true")
	}
	if got := gjson.Get(body, "data.walletAddress").String(); got != "0x9f8e7d6c5b4a39281706f5e4d3c2b1a098765432" {
		t.Errorf("expected lowercased wallet in response, got %s", got)
	}
	if gjson.Get(body, "data.createdAt").String() == "" {
		t.Error("expected createdAt in response")
	}
}

func TestCreateRecord_DuplicateConflict(t *testing.T) {
	r := newTestRouter(t, nil)

	if w := postRecord(t, r, map[string]interface{}{"cid": testCID}); w.Code != http.StatusCreated {
		t.Fatalf("first create failed: %d", w.Code)
	}
	w := postRecord(t, r, map[string]interface{}{"cid": testCID})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if got := gjson.Get(w.Body.String(), "message").String(); got != "CID already exists" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestCreateRecord_ValidationListsAllErrors(t *testing.T) {
	r := newTestRouter(t, nil)

	w := postRecord(t, r, map[string]interface{}{
		"cid":             "bogus",
		"fileSize":        -1,
		"walletAddress":   "not-an-address",
		"transactionHash": "not-a-hash",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	errs := gjson.Get(w.Body.String(), "data.errors").Array()
	if len(errs) != 4 {
		t.Errorf("expected 4 violations, got %d: %s", len(errs), w.Body.String())
	}
}

func TestGetRecordByCID_NotFound(t *testing.T) {
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/upload/cid/"+testCID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if got := gjson.Get(w.Body.String(), "message").String(); got != "Upload not found" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestListRecords_PaginationEnvelope(t *testing.T) {
	r := newTestRouter(t, nil)

	for i := 0; i < 4; i++ {
		cid := testCID[:45] + string(rune('A'+i))
		if w := postRecord(t, r, map[string]interface{}{"cid": cid}); w.Code != http.StatusCreated {
			t.Fatalf("create %d failed: %d %s", i, w.Code, w.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/upload?limit=3&skip=0", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if got := gjson.Get(body, "data.pagination.total").Int(); got != 4 {
		t.Errorf("expected total 4, got %d", got)
	}
	if got := gjson.Get(body, "data.pagination.limit").Int(); got != 3 {
		t.Errorf("expected limit 3, got %d", got)
	}
	if !gjson.Get(body, "data.pagination.hasMore").Bool() {
		t.Error("expected hasMore true")
	}
	if got := len(gjson.Get(body, "data.records").Array()); got != 3 {
		t.Errorf("expected 3 records, got %d", got)
	}
}

func TestListRecords_RejectsNonNumericLimit(t *testing.T) {
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/upload?limit=abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetContent_ServedFromMirror(t *testing.T) {
	mirror, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create mirror: %v", err)
	}
	r := newTestRouter(t, mirror)

	content := []byte("%PDF-1.4 test")
	if err := mirror.Save(testCID, content); err != nil {
		t.Fatalf("failed to seed mirror: %v", err)
	}
	if w := postRecord(t, r, map[string]interface{}{"cid": testCID, "fileType": "application/pdf"}); w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/upload/content/"+testCID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), content) {
		t.Error("mirrored content does not match")
	}
	if got := w.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("expected stored content type, got %q", got)
	}
}

func TestGetContent_NotMirrored(t *testing.T) {
	mirror, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create mirror: %v", err)
	}
	r := newTestRouter(t, mirror)

	req := httptest.NewRequest(http.MethodGet, "/api/upload/content/"+testCID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHealth_ReportsDatabase(t *testing.T) {
	r := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if got := gjson.Get(body, "status").String(); got != "ok" {
		t.Errorf("expected status ok, got %q", got)
	}
	if got := gjson.Get(body, "database").String(); got != "connected" {
		t.Errorf("expected database connected, got %q", got)
	}
	if gjson.Get(body, "environment").String() != "test" {
		t.Error("expected environment from configuration")
	}
}

func TestHealth_DegradedWhenStoreClosed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conf.Cfg = &conf.Config{Env: "test"}

	db, err := database.NewPebbleDatabase(&database.PebbleConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	db.Close()

	r := gin.New()
	r.GET("/health", NewHealthHandler(record_service.NewRecordServiceWithDB(db)).Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	body := w.Body.String()
	if got := gjson.Get(body, "status").String(); got != "degraded" {
		t.Errorf("expected status degraded, got %q", got)
	}
	if got := gjson.Get(body, "database").String(); got != "disconnected" {
		t.Errorf("expected database disconnected, got %q", got)
	}
}
