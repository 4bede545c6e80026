package respond

import (
	"time"

	"doc-anchor/model"
	"doc-anchor/service/record_service"
)

// UploadRecordResponse anchored document record response structure
type UploadRecordResponse struct {
	ID              int64     `json:"id" example:"1"`
	CID             string    `json:"cid" example:"QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"`
	FileName        string    `json:"fileName" example:"contract.pdf"`
	FileType        string    `json:"fileType" example:"application/pdf"`
	FileSize        int64     `json:"fileSize" example:"102400"`
	WalletAddress   string    `json:"walletAddress" example:"0x9f8e7d6c5b4a39281706f5e4d3c2b1a098765432"`
	TransactionHash string    `json:"transactionHash,omitempty" example:"0x3f2e1d..."`
	CreatedAt       time.Time `json:"createdAt" example:"2024-01-01T00:00:00Z"`
	UpdatedAt       time.Time `json:"updatedAt" example:"2024-01-01T00:00:00Z"`
}

// Pagination pagination envelope for record listings
type Pagination struct {
	Total   int64 `json:"total" example:"42"`
	Limit   int   `json:"limit" example:"10"`
	Skip    int   `json:"skip" example:"0"`
	HasMore bool  `json:"hasMore" example:"true"`
}

// UploadRecordListResponse paginated record list response structure
type UploadRecordListResponse struct {
	Records    []UploadRecordResponse `json:"records"`
	Pagination Pagination             `json:"pagination"`
}

// PinResultResponse pinning result response structure
type PinResultResponse struct {
	ContentID    string `json:"contentId" example:"QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"`
	PinSizeBytes int64  `json:"pinSizeBytes" example:"102400"`
	PinnedAt     string `json:"pinnedAt" example:"2024-01-01T00:00:00.000Z"`
}

// ToUploadRecordResponse convert model to response
func ToUploadRecordResponse(rec *model.UploadRecord) UploadRecordResponse {
	if rec == nil {
		return UploadRecordResponse{}
	}
	return UploadRecordResponse{
		ID:              rec.ID,
		CID:             rec.CID,
		FileName:        rec.FileName,
		FileType:        rec.FileType,
		FileSize:        rec.FileSize,
		WalletAddress:   rec.WalletAddress,
		TransactionHash: rec.TransactionHash,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// ToUploadRecordListResponse convert a service page to response
func ToUploadRecordListResponse(page *record_service.Page) UploadRecordListResponse {
	records := make([]UploadRecordResponse, 0, len(page.Records))
	for _, rec := range page.Records {
		records = append(records, ToUploadRecordResponse(rec))
	}
	return UploadRecordListResponse{
		Records: records,
		Pagination: Pagination{
			Total:   page.Total,
			Limit:   page.Limit,
			Skip:    page.Skip,
			HasMore: page.HasMore(),
		},
	}
}
