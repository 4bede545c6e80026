package pin_service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"doc-anchor/conf"
)

func testConfig(endpoint string) conf.PinningConfig {
	return conf.PinningConfig{
		Endpoint:       endpoint,
		ApiKey:         "test-key",
		SecretKey:      "test-secret",
		TimeoutSeconds: 5,
		MaxRetries:     2,
		MaxFileSizeMB:  1,
	}
}

func pngFile(size int) *PinFile {
	return &PinFile{
		Name:        "scan.png",
		ContentType: "image/png",
		Content:     make([]byte, size),
	}
}

func TestPin_TransientFailureThenSuccess(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if got := r.Header.Get("pinata_api_key"); got != "test-key" {
			t.Errorf("unexpected api key header %q", got)
		}
		fmt.Fprint(w, `{"IpfsHash":"QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG","PinSize":1024,"Timestamp":"2024-01-01T00:00:00.000Z"}`)
	}))
	defer upstream.Close()

	s := NewPinServiceWithConfig(testConfig(upstream.URL), nil)
	result, err := s.Pin(context.Background(), pngFile(1024))
	if err != nil {
		t.Fatalf("pin failed: %v", err)
	}
	if result.ContentID != "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG" {
		t.Errorf("unexpected content id %s", result.ContentID)
	}
	if result.PinSizeBytes != 1024 {
		t.Errorf("unexpected pin size %d", result.PinSizeBytes)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 upstream calls, got %d", got)
	}
}

func TestPin_ExhaustsRetries(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	s := NewPinServiceWithConfig(testConfig(upstream.URL), nil)
	_, err := s.Pin(context.Background(), pngFile(10))
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.StatusCode != http.StatusBadGateway {
		t.Errorf("expected upstream 502 error, got %v", err)
	}
	// first attempt plus two retries
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 upstream calls, got %d", got)
	}
}

func TestPin_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"Invalid API key"}`)
	}))
	defer upstream.Close()

	s := NewPinServiceWithConfig(testConfig(upstream.URL), nil)
	_, err := s.Pin(context.Background(), pngFile(10))
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if ue.Message != "Invalid API key" {
		t.Errorf("expected upstream message to surface, got %q", ue.Message)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("expected a single upstream call, got %d", got)
	}
}

func TestPin_MissingCredentials(t *testing.T) {
	cfg := testConfig("http://localhost:0")
	cfg.ApiKey = ""
	s := NewPinServiceWithConfig(cfg, nil)

	_, err := s.Pin(context.Background(), pngFile(10))
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("expected ErrNoCredentials, got %v", err)
	}
}

func TestValidate_RejectsOversizeAndBadType(t *testing.T) {
	s := NewPinServiceWithConfig(testConfig("http://localhost:0"), nil)

	if err := s.Validate(pngFile(2 * 1024 * 1024)); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
	if err := s.Validate(&PinFile{Name: "x.gif", ContentType: "image/gif", Content: []byte{1}}); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	if err := s.Validate(&PinFile{Name: "x.pdf", ContentType: "application/pdf"}); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile, got %v", err)
	}
	if err := s.Validate(pngFile(16)); err != nil {
		t.Errorf("expected valid file to pass, got %v", err)
	}
}

func TestPin_MalformedSuccessBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"unexpected":true}`)
	}))
	defer upstream.Close()

	s := NewPinServiceWithConfig(testConfig(upstream.URL), nil)
	_, err := s.Pin(context.Background(), pngFile(10))
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected upstream error for missing content id, got %v", err)
	}
}
