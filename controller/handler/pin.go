package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"doc-anchor/conf"
	"doc-anchor/controller/respond"
	"doc-anchor/service/pin_service"

	"github.com/gin-gonic/gin"
)

// PinHandler pinning gateway handler
type PinHandler struct {
	pinService *pin_service.PinService
}

// NewPinHandler create pin handler instance
func NewPinHandler(pinService *pin_service.PinService) *PinHandler {
	return &PinHandler{
		pinService: pinService,
	}
}

// PinFile pin an uploaded document
// @Summary      Pin file to IPFS
// @Description  Upload a document (PDF, PNG or JPEG) and pin it via the configured pinning service
// @Tags         Upload
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to pin"
// @Success      200  {object}  respond.Response{data=respond.PinResultResponse}  "File pinned successfully"
// @Failure      400  {object}  respond.Response  "Invalid file"
// @Failure      500  {object}  respond.Response  "Server configuration error"
// @Failure      502  {object}  respond.Response  "Pinning service unavailable"
// @Router       /api/upload/ipfs [post]
func (h *PinHandler) PinFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.InvalidParam(c, "No file provided")
		return
	}

	// Reject before buffering when the declared size is already over
	// the ceiling.
	if fileHeader.Size > conf.Cfg.Pinning.MaxFileSizeBytes() {
		respond.InvalidParam(c, "File size exceeds the 100 MB limit")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		respond.ServerError(c, "Failed to read uploaded file")
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		respond.ServerError(c, "Failed to read uploaded file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}

	result, err := h.pinService.Pin(c.Request.Context(), &pin_service.PinFile{
		Name:        fileHeader.Filename,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		h.respondPinError(c, err)
		return
	}

	respond.SuccessWithMessage(c, "File uploaded to IPFS successfully", respond.PinResultResponse{
		ContentID:    result.ContentID,
		PinSizeBytes: result.PinSizeBytes,
		PinnedAt:     result.PinnedAt,
	})
}

func (h *PinHandler) respondPinError(c *gin.Context, err error) {
	var upstream *pin_service.UpstreamError

	switch {
	case errors.Is(err, pin_service.ErrNoCredentials):
		log.Printf("Pinning credentials are not configured")
		respond.ServerError(c, "Server configuration error: pinning credentials not set")
	case errors.Is(err, pin_service.ErrEmptyFile):
		respond.InvalidParam(c, "No file provided")
	case errors.Is(err, pin_service.ErrFileTooLarge):
		respond.InvalidParam(c, "File size exceeds the 100 MB limit")
	case errors.Is(err, pin_service.ErrUnsupportedType):
		respond.InvalidParam(c, "Invalid file type. Only PDF, PNG, and JPEG files are allowed.")
	case errors.As(err, &upstream):
		log.Printf("Pinning service error: %v", upstream)
		respond.UpstreamError(c, "Failed to upload file to IPFS")
	default:
		log.Printf("Pin failed: %v", err)
		respond.UpstreamError(c, "Failed to upload file to IPFS")
	}
}
