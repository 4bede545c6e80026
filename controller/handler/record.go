package handler

import (
	"errors"
	"log"
	"strconv"

	"doc-anchor/controller/respond"
	"doc-anchor/model"
	"doc-anchor/service/record_service"
	"doc-anchor/storage"

	"github.com/gin-gonic/gin"
)

// RecordHandler upload record handler
type RecordHandler struct {
	recordService *record_service.RecordService
	mirror        storage.Storage
}

// NewRecordHandler create record handler instance
func NewRecordHandler(recordService *record_service.RecordService, mirror storage.Storage) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		mirror:        mirror,
	}
}

// CreateRecordRequest create upload record request
type CreateRecordRequest struct {
	CID             string `json:"cid"`
	FileName        string `json:"fileName"`
	FileSize        int64  `json:"fileSize"`
	FileType        string `json:"fileType"`
	WalletAddress   string `json:"walletAddress"`
	TransactionHash string `json:"transactionHash"`
}

// CreateRecord create an upload record
// @Summary      Create upload record
// @Description  Save a pinned document's CID and metadata after the anchoring transaction
// @Tags         Records
// @Accept       json
// @Produce      json
// @Param        record  body  CreateRecordRequest  true  "Record to store"
// @Success      201  {object}  respond.Response{data=respond.UploadRecordResponse}  "Record created"
// @Failure      400  {object}  respond.Response  "Validation failed"
// @Failure      409  {object}  respond.Response  "CID already exists"
// @Router       /api/upload [post]
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	var request CreateRecordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respond.InvalidParam(c, "Invalid JSON body")
		return
	}

	record, err := h.recordService.Create(&model.UploadRecord{
		CID:             request.CID,
		FileName:        request.FileName,
		FileSize:        request.FileSize,
		FileType:        request.FileType,
		WalletAddress:   request.WalletAddress,
		TransactionHash: request.TransactionHash,
	})
	if err != nil {
		var validation *record_service.ValidationError
		switch {
		case errors.As(err, &validation):
			respond.ValidationFailed(c, validation.Fields)
		case errors.Is(err, record_service.ErrDuplicateCID):
			respond.Conflict(c, "CID already exists")
		default:
			log.Printf("Failed to create upload record: %v", err)
			respond.ServerError(c, "Internal Server Error")
		}
		return
	}

	respond.Created(c, respond.ToUploadRecordResponse(record))
}

// GetRecordByCID get an upload record by CID
// @Summary      Get record by CID
// @Tags         Records
// @Produce      json
// @Param        cid  path  string  true  "Content identifier"
// @Success      200  {object}  respond.Response{data=respond.UploadRecordResponse}
// @Failure      404  {object}  respond.Response  "Record not found"
// @Router       /api/upload/cid/{cid} [get]
func (h *RecordHandler) GetRecordByCID(c *gin.Context) {
	cid := c.Param("cid")
	if cid == "" {
		respond.InvalidParam(c, "cid is required")
		return
	}

	record, err := h.recordService.GetByCID(cid)
	if err != nil {
		if errors.Is(err, record_service.ErrNotFound) {
			respond.NotFound(c, "Upload not found")
			return
		}
		log.Printf("Failed to get upload record: %v", err)
		respond.ServerError(c, "Internal Server Error")
		return
	}

	respond.Success(c, respond.ToUploadRecordResponse(record))
}

// ListRecordsByWallet list upload records for a wallet address
// @Summary      List records by wallet
// @Tags         Records
// @Produce      json
// @Param        address  path   string  true   "Wallet address"
// @Param        limit    query  int     false  "Page size (1-100)"  default(10)
// @Param        skip     query  int     false  "Records to skip"    default(0)
// @Success      200  {object}  respond.Response{data=respond.UploadRecordListResponse}
// @Router       /api/upload/wallet/{address} [get]
func (h *RecordHandler) ListRecordsByWallet(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		respond.InvalidParam(c, "address is required")
		return
	}

	limit, skip, ok := parsePageQuery(c)
	if !ok {
		return
	}

	page, err := h.recordService.ListByWallet(address, limit, skip)
	if err != nil {
		log.Printf("Failed to list upload records: %v", err)
		respond.ServerError(c, "Internal Server Error")
		return
	}

	respond.Success(c, respond.ToUploadRecordListResponse(page))
}

// ListRecords list all upload records
// @Summary      List records
// @Tags         Records
// @Produce      json
// @Param        limit  query  int  false  "Page size (1-100)"  default(10)
// @Param        skip   query  int  false  "Records to skip"    default(0)
// @Success      200  {object}  respond.Response{data=respond.UploadRecordListResponse}
// @Router       /api/upload [get]
func (h *RecordHandler) ListRecords(c *gin.Context) {
	limit, skip, ok := parsePageQuery(c)
	if !ok {
		return
	}

	page, err := h.recordService.List(limit, skip)
	if err != nil {
		log.Printf("Failed to list upload records: %v", err)
		respond.ServerError(c, "Internal Server Error")
		return
	}

	respond.Success(c, respond.ToUploadRecordListResponse(page))
}

// GetContent serve a mirrored copy of pinned content
// @Summary      Get mirrored content
// @Description  Serve the mirror copy of a pinned document without a gateway round trip
// @Tags         Records
// @Produce      octet-stream
// @Param        cid  path  string  true  "Content identifier"
// @Success      200  {file}    file
// @Failure      404  {object}  respond.Response  "Content not mirrored"
// @Router       /api/upload/content/{cid} [get]
func (h *RecordHandler) GetContent(c *gin.Context) {
	cid := c.Param("cid")
	if !model.IsValidCID(cid) {
		respond.InvalidParam(c, "cid is not a valid IPFS CID (CIDv0 or CIDv1)")
		return
	}
	if h.mirror == nil {
		respond.NotFound(c, "Content mirror is not enabled")
		return
	}

	data, err := h.mirror.Get(cid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.NotFound(c, "Content not found")
			return
		}
		log.Printf("Failed to read mirrored content: %v", err)
		respond.ServerError(c, "Internal Server Error")
		return
	}

	contentType := "application/octet-stream"
	if record, err := h.recordService.GetByCID(cid); err == nil && record.FileType != "" {
		contentType = record.FileType
	}

	c.Data(200, contentType, data)
}

// parsePageQuery parses limit and skip query parameters. Out-of-range
// values are clamped by the service; non-numeric values are rejected.
func parsePageQuery(c *gin.Context) (limit, skip int, ok bool) {
	limit = 0
	skip = 0

	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respond.InvalidParam(c, "Limit must be between 1 and 100")
			return 0, 0, false
		}
		limit = v
	}
	if raw := c.Query("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respond.InvalidParam(c, "Skip must be a positive number")
			return 0, 0, false
		}
		skip = v
	}

	return limit, skip, true
}
