package pin_service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/imroc/req"
	"github.com/tidwall/gjson"

	"doc-anchor/conf"
	"doc-anchor/storage"
	"doc-anchor/tool"
)

// allowedTypes document types accepted for pinning
var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

var (
	ErrNoCredentials   = errors.New("pinning service credentials are not configured")
	ErrEmptyFile       = errors.New("no file was provided")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("file type is not supported, only PDF, PNG and JPEG are allowed")
)

// UpstreamError carries the pinning service's rejection back to the caller.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("pinning service returned %d: %s", e.StatusCode, e.Message)
}

// PinResult successful pin outcome
type PinResult struct {
	ContentID    string `json:"contentId"`
	PinSizeBytes int64  `json:"pinSizeBytes"`
	PinnedAt     string `json:"pinnedAt"`
}

// PinFile a single file submitted for pinning
type PinFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// PinService forwards validated documents to the external pinning
// service, retrying transient failures, and optionally keeps a mirror
// copy keyed by content identifier.
type PinService struct {
	cfg    conf.PinningConfig
	mirror storage.Storage
	client *req.Req
}

// NewPinService create pin service from global configuration
func NewPinService(mirror storage.Storage) *PinService {
	return NewPinServiceWithConfig(conf.Cfg.Pinning, mirror)
}

// NewPinServiceWithConfig create pin service with explicit configuration
func NewPinServiceWithConfig(cfg conf.PinningConfig, mirror storage.Storage) *PinService {
	client := req.New()
	client.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	return &PinService{
		cfg:    cfg,
		mirror: mirror,
		client: client,
	}
}

// Validate checks the submitted file against the upload constraints
// without touching the network.
func (s *PinService) Validate(file *PinFile) error {
	if file == nil || len(file.Content) == 0 {
		return ErrEmptyFile
	}
	if int64(len(file.Content)) > s.cfg.MaxFileSizeBytes() {
		return ErrFileTooLarge
	}
	if !allowedTypes[file.ContentType] {
		return ErrUnsupportedType
	}
	return nil
}

// Pin validates the file and forwards it to the pinning service.
// Transport errors and upstream 5xx responses are retried with linear
// backoff; upstream 4xx responses fail immediately.
func (s *PinService) Pin(ctx context.Context, file *PinFile) (*PinResult, error) {
	if !s.cfg.HasCredentials() {
		return nil, ErrNoCredentials
	}
	if err := s.Validate(file); err != nil {
		return nil, err
	}

	fileName := tool.SanitizeFileName(file.Name)

	var result *PinResult
	attempts := 1 + s.cfg.MaxRetries
	backoff := tool.LinearBackoff(time.Duration(s.cfg.BackoffSeconds) * time.Second)

	err := tool.Retry(ctx, attempts, backoff, func(attempt int) error {
		if attempt > 1 {
			log.Printf("Retrying pin of %s (attempt %d/%d)", fileName, attempt, attempts)
		}

		resp, err := s.client.Post(s.cfg.Endpoint,
			req.Header{
				"pinata_api_key":        s.cfg.ApiKey,
				"pinata_secret_api_key": s.cfg.SecretKey,
			},
			req.FileUpload{
				File:      io.NopCloser(bytes.NewReader(file.Content)),
				FieldName: "file",
				FileName:  fileName,
			})
		if err != nil {
			return fmt.Errorf("forward to pinning service: %w", err)
		}

		status := resp.Response().StatusCode
		body, _ := resp.ToString()

		if status >= 500 {
			return &UpstreamError{StatusCode: status, Message: upstreamMessage(body)}
		}
		if status >= 400 {
			return &tool.Permanent{Err: &UpstreamError{StatusCode: status, Message: upstreamMessage(body)}}
		}

		cid := gjson.Get(body, "IpfsHash").String()
		if cid == "" {
			return &tool.Permanent{Err: &UpstreamError{StatusCode: status, Message: "response missing content identifier"}}
		}

		result = &PinResult{
			ContentID:    cid,
			PinSizeBytes: gjson.Get(body, "PinSize").Int(),
			PinnedAt:     gjson.Get(body, "Timestamp").String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mirrorCopy(result.ContentID, file.Content)

	return result, nil
}

// mirrorCopy keeps a best-effort local copy of the pinned content. A
// mirror failure never fails the pin.
func (s *PinService) mirrorCopy(cid string, content []byte) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Save(cid, content); err != nil {
		log.Printf("Failed to mirror %s: %v", cid, err)
	}
}

func upstreamMessage(body string) string {
	if msg := gjson.Get(body, "error.details").String(); msg != "" {
		return msg
	}
	if msg := gjson.Get(body, "error").String(); msg != "" {
		return msg
	}
	if len(body) > 200 {
		return body[:200]
	}
	return body
}
