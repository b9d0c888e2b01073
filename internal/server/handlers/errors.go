package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/server/response"
	"github.com/mamadbah2/stockledger/internal/service/auth"
)

// writeError maps domain errors onto HTTP statuses and error codes.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		verr *models.ValidationError
		perr *models.PersistenceError
	)

	switch {
	case errors.As(err, &verr):
		response.Fail(c, http.StatusBadRequest, response.CodeValidation, "validation failed", verr.Violations)
	case errors.Is(err, models.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.CodeNotFound, "resource not found", nil)
	case errors.Is(err, models.ErrConflict):
		response.Fail(c, http.StatusConflict, response.CodeConflict, "resource was modified by another request; reload and retry", nil)
	case errors.Is(err, models.ErrDuplicate):
		response.Fail(c, http.StatusConflict, response.CodeConflict, "already exists", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid username or password", nil)
	case errors.As(err, &perr):
		logger.Error("persistence failure", zap.String("op", perr.Op), zap.Error(perr.Err))
		_ = c.Error(err)
		response.Fail(c, http.StatusServiceUnavailable, response.CodePersistence, "storage is unavailable, try again later", nil)
	default:
		logger.Error("unhandled error", zap.Error(err))
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.CodeInternal, "internal server error", nil)
	}
}

func badRequest(c *gin.Context, message string) {
	response.Fail(c, http.StatusBadRequest, response.CodeBadRequest, message, nil)
}
