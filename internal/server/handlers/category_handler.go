package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/server/response"
	"github.com/mamadbah2/stockledger/internal/service/catalog"
)

// CategoryHandler serves the category routes.
type CategoryHandler struct {
	svc    *catalog.Service
	logger *zap.Logger
}

func NewCategoryHandler(svc *catalog.Service, logger *zap.Logger) *CategoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryHandler{svc: svc, logger: logger}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, categories)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, category)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	category, err := h.svc.Create(c.Request.Context(), models.CategoryInput(req))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusCreated, category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	category, err := h.svc.Update(c.Request.Context(), c.Param("id"), models.CategoryInput(req))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}
