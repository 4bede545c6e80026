package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/imroc/req"
	"github.com/tidwall/gjson"

	"doc-anchor/model"
)

var (
	ErrRecordNotFound  = errors.New("upload record not found")
	ErrRecordDuplicate = errors.New("a record for this CID already exists")
)

// RecordPage one page of upload records plus its pagination envelope
type RecordPage struct {
	Records []*model.UploadRecord
	Total   int64
	Limit   int
	Skip    int
	HasMore bool
}

// RecordClient reads and writes upload records through the gateway.
type RecordClient struct {
	baseURL string
	client  *req.Req
}

// NewRecordClient create record client for the given gateway base URL
func NewRecordClient(baseURL string) *RecordClient {
	client := req.New()
	client.SetTimeout(10 * time.Second)
	return &RecordClient{
		baseURL: baseURL,
		client:  client,
	}
}

// Create store a record for an anchored document
func (c *RecordClient) Create(ctx context.Context, record *model.UploadRecord) (*model.UploadRecord, error) {
	resp, err := c.client.Post(c.baseURL+"/api/upload", ctx, req.BodyJSON(record))
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	status := resp.Response().StatusCode
	body, _ := resp.ToString()

	switch {
	case status == http.StatusCreated:
		return decodeRecord(gjson.Get(body, "data").Raw)
	case status == http.StatusConflict:
		return nil, ErrRecordDuplicate
	default:
		return nil, fmt.Errorf("create record: server answered %d: %s", status, gjson.Get(body, "message").String())
	}
}

// GetByCID fetch the record anchored under cid
func (c *RecordClient) GetByCID(ctx context.Context, cid string) (*model.UploadRecord, error) {
	resp, err := c.client.Get(c.baseURL+"/api/upload/cid/"+cid, ctx)
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	status := resp.Response().StatusCode
	body, _ := resp.ToString()

	switch {
	case status == http.StatusOK:
		return decodeRecord(gjson.Get(body, "data").Raw)
	case status == http.StatusNotFound:
		return nil, ErrRecordNotFound
	default:
		return nil, fmt.Errorf("get record: server answered %d", status)
	}
}

// List fetch a page over all records, newest first
func (c *RecordClient) List(ctx context.Context, limit, skip int) (*RecordPage, error) {
	return c.listPage(ctx, fmt.Sprintf("%s/api/upload?limit=%d&skip=%d", c.baseURL, limit, skip))
}

// ListByWallet fetch a page of records anchored by the given wallet
func (c *RecordClient) ListByWallet(ctx context.Context, address string, limit, skip int) (*RecordPage, error) {
	return c.listPage(ctx, fmt.Sprintf("%s/api/upload/wallet/%s?limit=%d&skip=%d", c.baseURL, address, limit, skip))
}

func (c *RecordClient) listPage(ctx context.Context, url string) (*RecordPage, error) {
	resp, err := c.client.Get(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	status := resp.Response().StatusCode
	body, _ := resp.ToString()
	if status != http.StatusOK {
		return nil, fmt.Errorf("list records: server answered %d: %s", status, gjson.Get(body, "message").String())
	}

	page := &RecordPage{
		Total:   gjson.Get(body, "data.pagination.total").Int(),
		Limit:   int(gjson.Get(body, "data.pagination.limit").Int()),
		Skip:    int(gjson.Get(body, "data.pagination.skip").Int()),
		HasMore: gjson.Get(body, "data.pagination.hasMore").Bool(),
	}
	for _, raw := range gjson.Get(body, "data.records").Array() {
		record, err := decodeRecord(raw.Raw)
		if err != nil {
			return nil, err
		}
		page.Records = append(page.Records, record)
	}

	return page, nil
}

func decodeRecord(raw string) (*model.UploadRecord, error) {
	var record model.UploadRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &record, nil
}
