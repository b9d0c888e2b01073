package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/server/middleware"
	"github.com/mamadbah2/stockledger/internal/server/response"
	"github.com/mamadbah2/stockledger/internal/service/auth"
)

// AuthHandler serves registration, login and the current session.
type AuthHandler struct {
	svc    *auth.Service
	logger *zap.Logger
}

func NewAuthHandler(svc *auth.Service, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	res, err := h.svc.Register(c.Request.Context(), creds)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusCreated, res)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	res, err := h.svc.Login(c.Request.Context(), creds)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, res)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		response.Fail(c, http.StatusUnauthorized, response.CodeUnauthorized, "not signed in", nil)
		return
	}
	response.OK(c, http.StatusOK, session)
}
