package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotehub-sync/internal/app"
	"github.com/jsamuelsen/quotehub-sync/internal/domain"
)

// StaticHandler serves the curated category pages and their card actions.
type StaticHandler struct {
	catalog *app.StaticCatalog
}

// NewStaticHandler creates the handler.
func NewStaticHandler(catalog *app.StaticCatalog) *StaticHandler {
	return &StaticHandler{catalog: catalog}
}

type staticPageResponse struct {
	Category string            `json:"category"`
	Quotes   []app.StaticQuote `json:"quotes"`
}

// Page handles GET /api/v1/static/:category
func (h *StaticHandler) Page(c *gin.Context) {
	category := c.Param("category")

	quotes, err := h.catalog.Page(category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, staticPageResponse{Category: category, Quotes: quotes})
}

// Invoke handles POST /api/v1/static/:category/:index/:slot
// The favorite slot needs a session; copy does not.
func (h *StaticHandler) Invoke(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		dto.HandleError(c, domain.NewValidationErrorWithValue("index", "must be a number", c.Param("index")))
		return
	}

	slot, err := app.ParseHandlerSlot(c.Param("slot"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := h.catalog.Invoke(c.Request.Context(), c.Param("category"), index, slot)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers static page routes.
func (h *StaticHandler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/static/:category", h.Page)
	public.POST("/static/:category/:index/:slot", h.Invoke)
}
