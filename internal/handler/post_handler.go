package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/SridharA16/Ghostprotocol/internal/common"
	"github.com/SridharA16/Ghostprotocol/internal/domain"
	"github.com/SridharA16/Ghostprotocol/internal/service"
	"github.com/gin-gonic/gin"
)

// PostHandler handles HTTP requests for posts
type PostHandler struct {
	service service.ContentService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(service service.ContentService) *PostHandler {
	return &PostHandler{service: service}
}

// respondError maps service failures onto HTTP statuses. Every
// failure kind keeps its identity in the error details so callers can
// distinguish them.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		common.ErrorResponse(c, 404, "Post not found", err)
	case errors.Is(err, common.ErrInvalidContentType),
		errors.Is(err, common.ErrInvalidSchedule),
		errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, 400, "Invalid request", err)
	case errors.Is(err, common.ErrInvalidTransition):
		common.ErrorResponse(c, 409, "Transition not allowed", err)
	case errors.Is(err, common.ErrConcurrentModification):
		common.ErrorResponse(c, 409, "Post was modified concurrently, re-read and retry", err)
	case errors.Is(err, common.ErrStorageUnavailable):
		common.ErrorResponse(c, 503, "Storage unavailable", err)
	default:
		common.ErrorResponse(c, 500, "Internal error", err)
	}
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Creates a new draft post from generated content and its source data
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        request  body      domain.CreatePostRequest  true  "Post creation request"
// @Success      201  {object}  common.APIResponse{data=domain.Post}
// @Failure      400  {object}  common.APIResponse
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req domain.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	post, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(201, common.APIResponse{Data: post})
}

// GetPost godoc
// @Summary      Get a post
// @Tags         posts
// @Produce      json
// @Param        id  path  string  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.Post}
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// EditPost godoc
// @Summary      Edit post content
// @Description  Overwrites the content, recording the prior content in the edit history
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true  "Post ID"
// @Param        request  body  domain.EditPostRequest  true  "New content"
// @Success      200  {object}  common.APIResponse{data=domain.Post}
// @Failure      404  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id} [put]
func (h *PostHandler) EditPost(c *gin.Context) {
	var req domain.EditPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	post, err := h.service.Edit(c.Request.Context(), c.Param("id"), req.Content, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// SchedulePost godoc
// @Summary      Schedule a draft for future publication
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id       path  string                      true  "Post ID"
// @Param        request  body  domain.SchedulePostRequest  true  "Schedule"
// @Success      200  {object}  common.APIResponse{data=domain.Post}
// @Failure      400  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/schedule [post]
func (h *PostHandler) SchedulePost(c *gin.Context) {
	var req domain.SchedulePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, 400, "Invalid request body", err)
		return
	}

	post, err := h.service.Schedule(c.Request.Context(), c.Param("id"), req.ScheduledDate)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// UnschedulePost godoc
// @Summary      Return a scheduled post to draft
// @Tags         posts
// @Produce      json
// @Param        id  path  string  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.Post}
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/unschedule [post]
func (h *PostHandler) UnschedulePost(c *gin.Context) {
	post, err := h.service.Unschedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// PublishPost godoc
// @Summary      Publish a post immediately
// @Tags         posts
// @Produce      json
// @Param        id  path  string  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.Post}
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/publish [post]
func (h *PostHandler) PublishPost(c *gin.Context) {
	post, err := h.service.PublishNow(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// ArchivePost godoc
// @Summary      Archive a post
// @Tags         posts
// @Produce      json
// @Param        id  path  string  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.Post}
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/archive [post]
func (h *PostHandler) ArchivePost(c *gin.Context) {
	post, err := h.service.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// RestorePost godoc
// @Summary      Restore an archived post to draft
// @Tags         posts
// @Produce      json
// @Param        id  path  string  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.Post}
// @Failure      409  {object}  common.APIResponse
// @Router       /posts/{id}/restore [post]
func (h *PostHandler) RestorePost(c *gin.Context) {
	post, err := h.service.Restore(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, post, nil)
}

// DeletePost godoc
// @Summary      Hard-delete a post and its history
// @Tags         posts
// @Param        id  path  string  true  "Post ID"
// @Success      204  "No Content"
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(204)
}

// GetHistory godoc
// @Summary      Get the edit history of a post
// @Tags         posts
// @Produce      json
// @Param        id  path  string  true  "Post ID"
// @Success      200  {object}  common.APIResponse{data=domain.EditHistory}
// @Failure      404  {object}  common.APIResponse
// @Router       /posts/{id}/history [get]
func (h *PostHandler) GetHistory(c *gin.Context) {
	history, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, history, nil)
}

// ListPosts godoc
// @Summary      List posts
// @Description  Filters by status, content type, or scheduled date range; defaults to most recent
// @Tags         posts
// @Produce      json
// @Param        status  query  string  false  "Filter by status"
// @Param        type    query  string  false  "Filter by content type"
// @Param        from    query  string  false  "Scheduled range start (RFC3339)"
// @Param        to      query  string  false  "Scheduled range end (RFC3339)"
// @Param        page    query  int     false  "Page number"  default(1)
// @Param        limit   query  int     false  "Items per page"  default(20)
// @Success      200  {object}  common.APIResponse{data=[]domain.Post}
// @Failure      400  {object}  common.APIResponse
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	ctx := c.Request.Context()

	switch {
	case c.Query("status") != "":
		posts, meta, err := h.service.ListByStatus(ctx, domain.Status(c.Query("status")), page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		common.SuccessResponse(c, posts, meta)

	case c.Query("type") != "":
		posts, meta, err := h.service.ListByType(ctx, domain.ContentType(c.Query("type")), page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		common.SuccessResponse(c, posts, meta)

	case c.Query("from") != "" || c.Query("to") != "":
		from, err := time.Parse(time.RFC3339, c.Query("from"))
		if err != nil {
			common.ErrorResponse(c, 400, "Invalid 'from' timestamp", err)
			return
		}
		to, err := time.Parse(time.RFC3339, c.Query("to"))
		if err != nil {
			common.ErrorResponse(c, 400, "Invalid 'to' timestamp", err)
			return
		}
		posts, meta, err := h.service.ListByScheduledRange(ctx, from, to, page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		common.SuccessResponse(c, posts, meta)

	default:
		posts, err := h.service.ListRecent(ctx, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		common.SuccessResponse(c, posts, nil)
	}
}

// queryInt reads an integer query parameter with a fallback default.
func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
