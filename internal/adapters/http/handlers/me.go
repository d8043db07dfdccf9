package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotehub-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotehub-sync/internal/app"
	"github.com/jsamuelsen/quotehub-sync/internal/domain"
)

// MeHandlerConfig contains dependencies for the signed-in user's endpoints.
type MeHandlerConfig struct {
	Repo     *app.QuoteRepository
	Likes    *app.LikeStateManager
	Activity *app.ActivityLogger
	Profile  *app.ProfileService

	// PageSize is the activity log page size when no limit is given.
	PageSize int
}

// MeHandler serves the signed-in user's likes, activity, profile, and
// custom quotes. Every route requires a session.
type MeHandler struct {
	repo     *app.QuoteRepository
	likes    *app.LikeStateManager
	activity *app.ActivityLogger
	profile  *app.ProfileService
	pageSize int
}

// NewMeHandler creates the handler.
func NewMeHandler(cfg MeHandlerConfig) *MeHandler {
	return &MeHandler{
		repo:     cfg.Repo,
		likes:    cfg.Likes,
		activity: cfg.Activity,
		profile:  cfg.Profile,
		pageSize: cfg.PageSize,
	}
}

// Likes handles GET /api/v1/me/likes
func (h *MeHandler) Likes(c *gin.Context) {
	snap, err := h.likes.Likes(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toLikesResponse(snap))
}

// LikesStream handles GET /api/v1/me/likes/stream
// The first event is the current like-set; one follows every change. The
// stream ends when the user signs out.
func (h *MeHandler) LikesStream(c *gin.Context) {
	ch, err := h.likes.Watch(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	streamChan(c, eventLikes, ch, toLikesResponse)
}

// Activity handles GET /api/v1/me/activity?limit=
func (h *MeHandler) Activity(c *gin.Context) {
	var q dto.ActivityQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	entries, err := h.activity.Recent(c.Request.Context(), q.Limit)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewActivityEntryResponses(entries))
}

// ActivityStream handles GET /api/v1/me/activity/stream?limit=
func (h *MeHandler) ActivityStream(c *gin.Context) {
	var q dto.ActivityQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	seq, err := h.activity.Watch(c.Request.Context(), q.Limit)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	streamSeq(c, eventActivity, seq, dto.NewActivityEntryResponses)
}

// ActivityLog handles GET /api/v1/me/activity/log?cursor=&limit=
// Pages run newest first; nextCursor continues with strictly older entries.
func (h *MeHandler) ActivityLog(c *gin.Context) {
	var q dto.PageQuery
	if err := dto.BindQueryAndValidate(c, &q); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	pos, err := q.After()
	if err != nil {
		dto.HandleError(c, domain.NewValidationError("cursor", "is not a valid cursor"))
		return
	}

	var after *app.ActivityCursor
	if pos != nil {
		after = &app.ActivityCursor{Timestamp: pos.Timestamp, ID: pos.ID}
	}

	limit := q.PageSize(h.pageSize)

	entries, err := h.activity.Page(c.Request.Context(), after, limit)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	page := dto.NewPage(dto.NewActivityEntryResponses(entries), limit,
		func(e dto.ActivityEntryResponse) dto.Cursor {
			return dto.Cursor{Timestamp: e.Timestamp.UnixMilli(), ID: e.ID}
		})

	c.JSON(http.StatusOK, page)
}

// Profile handles GET /api/v1/me/profile
func (h *MeHandler) Profile(c *gin.Context) {
	summary, err := h.profile.Summary(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ClearCustomQuotes handles DELETE /api/v1/me/custom-quotes
// It removes every quote the user authored and clears their activity log.
func (h *MeHandler) ClearCustomQuotes(c *gin.Context) {
	removed, err := h.repo.ClearAllCustom(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ClearedResponse{Removed: removed})
}

// LatestCustomQuote handles GET /api/v1/me/custom-quotes/latest
func (h *MeHandler) LatestCustomQuote(c *gin.Context) {
	quote, ok, err := h.repo.LatestCustom(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if !ok {
		dto.HandleError(c, domain.NewNotFoundError("custom quote", ""))
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote))
}

// RegisterRoutes registers the /me routes on an authenticated group.
func (h *MeHandler) RegisterRoutes(authed *gin.RouterGroup) {
	me := authed.Group("/me")
	me.GET("/likes", h.Likes)
	me.GET("/likes/stream", h.LikesStream)
	me.GET("/activity", h.Activity)
	me.GET("/activity/stream", h.ActivityStream)
	me.GET("/activity/log", h.ActivityLog)
	me.GET("/profile", h.Profile)
	me.DELETE("/custom-quotes", h.ClearCustomQuotes)
	me.GET("/custom-quotes/latest", h.LatestCustomQuote)
}

// toLikesResponse lists the liked quotes newest first.
func toLikesResponse(snap app.LikeSnapshot) dto.LikesResponse {
	quotes := snap.Likes.Quotes()
	slices.Reverse(quotes)

	counts := snap.Counts
	if counts == nil {
		counts = domain.CategoryCount{}
	}

	return dto.LikesResponse{
		Quotes:  dto.NewQuoteResponses(quotes),
		Counts:  counts,
		Total:   snap.Likes.Len(),
		Version: snap.Version,
	}
}
