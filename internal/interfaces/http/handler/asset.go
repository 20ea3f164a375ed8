package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	applending "github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/dto"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AssetHandler handles catalog and stock HTTP requests
type AssetHandler struct {
	BaseHandler
	assetService *applending.AssetService
	now          func() time.Time
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetService *applending.AssetService) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		now:          time.Now,
	}
}

// List handles GET /assets; each asset carries its availability
func (h *AssetHandler) List(c *gin.Context) {
	var filter applending.AssetListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = dto.DefaultPageSize
	}

	assets, total, err := h.assetService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, assets, total, filter.Page, filter.PageSize)
}

// Get handles GET /assets/:id
func (h *AssetHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	asset, err := h.assetService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, asset)
}

// Create handles POST /assets (admin)
func (h *AssetHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req applending.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	asset, err := h.assetService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, asset)
}

// Update handles PATCH /assets/:id (admin)
func (h *AssetHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req applending.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	asset, err := h.assetService.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, asset)
}

// Delete handles DELETE /assets/:id (admin). Assets with active loans are kept.
func (h *AssetHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.assetService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetStock handles PUT /assets/stock (admin): absolute quantity
func (h *AssetHandler) SetStock(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req applending.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	stock, err := h.assetService.SetStock(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// AdjustStock handles POST /assets/stock (admin): relative delta
func (h *AssetHandler) AdjustStock(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req applending.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	stock, err := h.assetService.AdjustStock(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// Export handles GET /assets/export (admin). The workbook is built in memory
// so a failure can still be reported as JSON.
func (h *AssetHandler) Export(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.assetService.ExportAssets(c.Request.Context(), actor, &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("assets-%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
