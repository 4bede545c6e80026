package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/imroc/req"
	"github.com/tidwall/gjson"
)

const defaultUploadTimeout = 120 * time.Second

var (
	ErrUploadCancelled   = errors.New("upload cancelled")
	ErrNoResponse        = errors.New("no response from server, please check your connection")
	ErrMalformedResponse = errors.New("unexpected response from server")
)

// ServerRejectedError the gateway refused the upload and said why.
type ServerRejectedError struct {
	StatusCode int
	Message    string
}

func (e *ServerRejectedError) Error() string {
	return fmt.Sprintf("upload failed (%d): %s", e.StatusCode, e.Message)
}

// PinResult outcome of a successful pin, as reported by the gateway
type PinResult struct {
	ContentID    string
	PinSizeBytes int64
	PinnedAt     string
}

// UploadFile a document staged for pinning
type UploadFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// PinClient uploads documents to the pinning gateway.
type PinClient struct {
	baseURL string
	client  *req.Req
}

// NewPinClient create pin client for the given gateway base URL
func NewPinClient(baseURL string, timeout time.Duration) *PinClient {
	if timeout <= 0 {
		timeout = defaultUploadTimeout
	}
	client := req.New()
	client.SetTimeout(timeout)
	return &PinClient{
		baseURL: baseURL,
		client:  client,
	}
}

// Upload sends the file to the gateway. onProgress, when set, receives
// monotonically non-decreasing whole percents ending at 100.
func (c *PinClient) Upload(ctx context.Context, file *UploadFile, onProgress func(percent int)) (*PinResult, error) {
	if file == nil || len(file.Content) == 0 {
		return nil, errors.New("no file provided for upload")
	}

	lastPercent := -1
	progress := req.UploadProgress(func(current, total int64) {
		if total <= 0 || onProgress == nil {
			return
		}
		percent := int(current * 100 / total)
		if percent > lastPercent {
			lastPercent = percent
			onProgress(percent)
		}
	})

	resp, err := c.client.Post(c.baseURL+"/api/upload/ipfs",
		ctx,
		req.FileUpload{
			File:      io.NopCloser(bytes.NewReader(file.Content)),
			FieldName: "file",
			FileName:  file.Name,
		},
		progress)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrNoResponse, err)
	}

	status := resp.Response().StatusCode
	body, _ := resp.ToString()

	if status < 200 || status >= 300 {
		message := gjson.Get(body, "message").String()
		if message == "" {
			message = "upload rejected"
		}
		return nil, &ServerRejectedError{StatusCode: status, Message: message}
	}

	cid := gjson.Get(body, "data.contentId").String()
	if !gjson.Get(body, "success").Bool() || cid == "" {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, body)
	}

	return &PinResult{
		ContentID:    cid,
		PinSizeBytes: gjson.Get(body, "data.pinSizeBytes").Int(),
		PinnedAt:     gjson.Get(body, "data.pinnedAt").String(),
	}, nil
}
