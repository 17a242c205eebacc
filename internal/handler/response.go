// Package handler exposes the intrinsic operations as a JSON HTTP API.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mywbem/internal/cim"
)

// Response is the uniform response envelope.
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:      http.StatusOK,
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// Error writes an error envelope with the given HTTP status.
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// FromError maps a CIM status code to an HTTP status and writes the
// error envelope.
func FromError(c *gin.Context, err error) {
	Error(c, httpStatus(cim.StatusOf(err)), err.Error())
}

func httpStatus(code cim.StatusCode) int {
	switch code {
	case cim.StatusNotFound, cim.StatusInvalidClass, cim.StatusInvalidNamespace:
		return http.StatusNotFound
	case cim.StatusAlreadyExists:
		return http.StatusConflict
	case cim.StatusInvalidParameter, cim.StatusInvalidEnumerationContext:
		return http.StatusBadRequest
	case cim.StatusMethodNotAvailable, cim.StatusNotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
