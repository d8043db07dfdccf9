package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotehub-sync/internal/app"
	appctx "github.com/jsamuelsen/quotehub-sync/internal/app/context"
	"github.com/jsamuelsen/quotehub-sync/internal/domain"
)

// QuoteHandler serves the shared quote collection and per-quote likes.
type QuoteHandler struct {
	repo  *app.QuoteRepository
	likes *app.LikeStateManager
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(repo *app.QuoteRepository, likes *app.LikeStateManager) *QuoteHandler {
	return &QuoteHandler{repo: repo, likes: likes}
}

// List handles GET /api/v1/quotes?category=
// An empty category is seeded with the default quotes on first read.
func (h *QuoteHandler) List(c *gin.Context) {
	var q dto.CategoryQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	quotes, err := h.repo.QueryByCategory(c.Request.Context(), q.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuoteListResponse{
		Category: q.Category,
		Quotes:   dto.NewQuoteResponses(quotes),
	})
}

// Stream handles GET /api/v1/quotes/stream?category=
// It sends the category's quotes as an event on every change.
func (h *QuoteHandler) Stream(c *gin.Context) {
	var q dto.CategoryQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	seq, err := h.repo.Watch(c.Request.Context(), q.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	streamSeq(c, eventQuotes, seq, func(quotes []domain.Quote) dto.QuoteListResponse {
		return dto.QuoteListResponse{Category: q.Category, Quotes: dto.NewQuoteResponses(quotes)}
	})
}

// Get handles GET /api/v1/quotes/:id
func (h *QuoteHandler) Get(c *gin.Context) {
	quote, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// Create handles POST /api/v1/quotes
// The quote is written to the shared collection and mirrored under the
// author's custom quotes.
func (h *QuoteHandler) Create(c *gin.Context) {
	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	id, err := h.repo.Create(c.Request.Context(), domain.Quote{
		Text:     req.Text,
		Author:   req.Author,
		Category: req.Category,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", c.FullPath()+"/"+id)
	c.JSON(http.StatusCreated, dto.CreatedResponse{ID: id})
}

// Update handles PUT /api/v1/quotes/:id
func (h *QuoteHandler) Update(c *gin.Context) {
	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	quote, err := h.repo.Update(c.Request.Context(), c.Param("id"), req.Text, req.Author, req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// Delete handles DELETE /api/v1/quotes/:id
func (h *QuoteHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// LikeState handles GET /api/v1/quotes/:id/like
// Anonymous callers always see unliked.
func (h *QuoteHandler) LikeState(c *gin.Context) {
	id := c.Param("id")

	state, err := h.likes.State(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLikeStateResponse(id, state))
}

// ToggleLike handles POST /api/v1/quotes/:id/like
// A like whose quote has since been deleted can still be toggled off.
func (h *QuoteHandler) ToggleLike(c *gin.Context) {
	ctx := appctx.Scoped(c.Request.Context())
	id := c.Param("id")

	quote, err := h.repo.Get(ctx, id)
	if domain.IsNotFound(err) {
		snap, likesErr := h.likes.Likes(ctx)
		if likesErr != nil {
			dto.HandleError(c, likesErr)
			return
		}

		like, ok := snap.Likes.Get(id)
		if !ok {
			dto.HandleError(c, err)
			return
		}

		quote, err = like, nil
	}

	if err != nil {
		dto.HandleError(c, err)
		return
	}

	toggled, err := h.likes.Toggle(ctx, quote)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(toggled))
}

// RegisterRoutes registers quote routes. Reads are public; writes go on
// the authenticated group.
func (h *QuoteHandler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.GET("/quotes", h.List)
	public.GET("/quotes/stream", h.Stream)
	public.GET("/quotes/:id", h.Get)
	public.GET("/quotes/:id/like", h.LikeState)

	authed.POST("/quotes", h.Create)
	authed.PUT("/quotes/:id", h.Update)
	authed.DELETE("/quotes/:id", h.Delete)
	authed.POST("/quotes/:id/like", h.ToggleLike)
}
