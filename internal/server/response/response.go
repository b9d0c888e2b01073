// Package response writes the JSON envelopes shared by every API route.
package response

import (
	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

// Error codes carried in ErrorBody.Code.
const (
	CodeValidation   = "validation_error"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodePersistence  = "persistence_error"
	CodeUnauthorized = "unauthorized"
	CodeBadRequest   = "bad_request"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal_error"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool               `json:"success"`
	Data       any                `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Error      *ErrorBody         `json:"error,omitempty"`
}

// ErrorBody is the machine-readable failure description.
type ErrorBody struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []models.FieldViolation `json:"details,omitempty"`
}

// OK writes a success envelope.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// Page writes a success envelope with pagination metadata.
func Page(c *gin.Context, status int, data any, p models.Pagination) {
	c.JSON(status, Envelope{Success: true, Data: data, Pagination: &p})
}

// Fail writes an error envelope and aborts the handler chain.
func Fail(c *gin.Context, status int, code, message string, details []models.FieldViolation) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message, Details: details},
	})
}
