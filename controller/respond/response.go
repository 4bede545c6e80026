package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response uniform API response envelope
type Response struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message,omitempty" example:"ok"`
	Data    interface{} `json:"data,omitempty"`
}

// Success respond 200 with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithCode respond with a custom success status code
func SuccessWithCode(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage respond 200 with data and a status message
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created respond 201 with the stored resource
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// InvalidParam respond 400 with a validation message
func InvalidParam(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Message: message,
	})
}

// ValidationFailed respond 400 listing every violated constraint
func ValidationFailed(c *gin.Context, fields []string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Message: "validation failed",
		Data:    gin.H{"errors": fields},
	})
}

// NotFound respond 404
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Success: false,
		Message: message,
	})
}

// Conflict respond 409 for duplicate resources
func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, Response{
		Success: false,
		Message: message,
	})
}

// ServerError respond 500
func ServerError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Message: message,
	})
}

// UpstreamError respond 502 when the pinning service cannot be reached
func UpstreamError(c *gin.Context, message string) {
	c.JSON(http.StatusBadGateway, Response{
		Success: false,
		Message: message,
	})
}

// TooManyRequests respond 429 when the rate limit window is exhausted
func TooManyRequests(c *gin.Context, message string) {
	c.JSON(http.StatusTooManyRequests, Response{
		Success: false,
		Message: message,
	})
}
