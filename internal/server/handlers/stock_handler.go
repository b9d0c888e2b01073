package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/server/middleware"
	"github.com/mamadbah2/stockledger/internal/server/response"
	"github.com/mamadbah2/stockledger/internal/service/inventory"
	"github.com/mamadbah2/stockledger/internal/service/reporting"
)

// IdempotencyKeyHeader deduplicates retried creates.
const IdempotencyKeyHeader = "Idempotency-Key"

// StockHandler serves the stock record routes.
type StockHandler struct {
	svc     *inventory.Service
	reports *reporting.Service
	logger  *zap.Logger
}

// NewStockHandler constructs the HTTP handler adapter.
func NewStockHandler(svc *inventory.Service, reports *reporting.Service, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{svc: svc, reports: reports, logger: logger}
}

type stockRequest struct {
	Name        string `json:"name"`
	LocationTag string `json:"location_tag"`
	Quantity    number `json:"quantity"`
	UnitPrice   number `json:"unit_price"`
	Notes       string `json:"notes"`
	CategoryID  string `json:"category_id"`
}

func (r stockRequest) input() models.StockInput {
	return models.StockInput{
		Name:        r.Name,
		LocationTag: r.LocationTag,
		Quantity:    float64(r.Quantity),
		UnitPrice:   float64(r.UnitPrice),
		Notes:       r.Notes,
		CategoryID:  r.CategoryID,
	}
}

type stockPatchRequest struct {
	Name        *string `json:"name"`
	LocationTag *string `json:"location_tag"`
	Quantity    *number `json:"quantity"`
	UnitPrice   *number `json:"unit_price"`
	Notes       *string `json:"notes"`
	CategoryID  *string `json:"category_id"`
}

func (r stockPatchRequest) patch() models.StockPatch {
	return models.StockPatch{
		Name:        r.Name,
		LocationTag: r.LocationTag,
		Quantity:    r.Quantity.ptr(),
		UnitPrice:   r.UnitPrice.ptr(),
		Notes:       r.Notes,
		CategoryID:  r.CategoryID,
	}
}

type listStocksQuery struct {
	Location         string `form:"location"`
	LocationContains string `form:"location_contains"`
	Name             string `form:"name"`
	Status           string `form:"status"`
	CategoryID       string `form:"category_id"`
	Page             int    `form:"page"`
	Limit            int    `form:"limit"`
}

// List handles GET /api/stocks.
func (h *StockHandler) List(c *gin.Context) {
	var q listStocksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "page and limit must be integers")
		return
	}

	views, page, err := h.svc.List(c.Request.Context(), inventory.ListQuery(q))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.Page(c, http.StatusOK, views, page)
}

// Get handles GET /api/stocks/:id.
func (h *StockHandler) Get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	setETag(c, view.Version)
	response.OK(c, http.StatusOK, view)
}

// Create handles POST /api/stocks.
func (h *StockHandler) Create(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid stock payload", zap.Error(err))
		badRequest(c, "invalid JSON body")
		return
	}

	view, replayed, err := h.svc.Create(c.Request.Context(), req.input(),
		middleware.SessionFrom(c), c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	setETag(c, view.Version)
	if replayed {
		c.Header("Idempotent-Replayed", "true")
		response.OK(c, http.StatusOK, view)
		return
	}
	response.OK(c, http.StatusCreated, view)
}

// Update handles PUT and PATCH /api/stocks/:id. Both apply the fields present
// in the body; an If-Match header pins the version being replaced.
func (h *StockHandler) Update(c *gin.Context) {
	expected, ok := parseIfMatch(c.GetHeader("If-Match"))
	if !ok {
		badRequest(c, "If-Match must carry a record version")
		return
	}

	var req stockPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid stock patch", zap.Error(err))
		badRequest(c, "invalid JSON body")
		return
	}

	view, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.patch(), expected)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	setETag(c, view.Version)
	response.OK(c, http.StatusOK, view)
}

// Delete handles DELETE /api/stocks/:id.
func (h *StockHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// Summary handles GET /api/stocks/summary.
func (h *StockHandler) Summary(c *gin.Context) {
	summaries, err := h.reports.LocationSummary(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, summaries)
}

// Dashboard handles GET /api/stocks/dashboard.
func (h *StockHandler) Dashboard(c *gin.Context) {
	d, err := h.reports.Dashboard(c.Request.Context(), time.Now().UTC())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	response.OK(c, http.StatusOK, d)
}

// Locations handles GET /api/locations.
func (h *StockHandler) Locations(c *gin.Context) {
	response.OK(c, http.StatusOK, h.svc.Locations())
}

func setETag(c *gin.Context, version int64) {
	c.Header("ETag", strconv.Quote(strconv.FormatInt(version, 10)))
}

// parseIfMatch accepts 3, "3" and W/"3". An absent header disables the check.
func parseIfMatch(header string) (int64, bool) {
	v := strings.TrimSpace(header)
	if v == "" {
		return 0, true
	}
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
