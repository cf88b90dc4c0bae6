// Item HTTP handlers.
//
// This file exposes the admin endpoints for content items:
//   - POST /admin/items        (create)
//   - GET  /admin/items        (list, paginated, ETag support)
//   - GET  /admin/items/{id}   (read)
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/services"
)

// CreateItemRequest is the JSON payload for creating an item.
type CreateItemRequest struct {
	// Topic is what proposers plan for (required).
	Topic string `json:"topic" binding:"required,max=255" example:"Photosynthesis"`
	// Title optionally labels the item; defaults to the topic.
	Title string `json:"title" binding:"max=255" example:"Photosynthesis basics"`
	// SourceURL is copied into every artifact published for the item.
	SourceURL *string `json:"sourceUrl" binding:"omitempty,url" example:"https://example.org/photosynthesis"`
}

// ListItemsResponse wraps a page of items and pagination information.
type ListItemsResponse struct {
	Items      []domain.Item `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// CreateItem godoc
// @ID          createItem
// @Summary     Create a content item
// @Description Creates an unlocked item that plans can later be locked onto.
// @Tags        Items
// @Accept      json
// @Produce     json
// @Security    AdminToken
//
// @Param       body  body  handlers.CreateItemRequest  true  "Item payload"
//
// @Success     201  {object}  domain.Item
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid admin token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/items [post]
func (h *Handlers) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "topic required; sourceUrl must be a URL")
		return
	}

	it, err := h.d.Items.Create(c.Request.Context(), req.Title, req.Topic, req.SourceURL)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTopic) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "topic required")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	c.Header("Location", c.Request.URL.Path+"/"+it.ID)
	ok(c, http.StatusCreated, it)
}

// GetItem godoc
// @ID          getItem
// @Summary     Read a content item
// @Tags        Items
// @Produce     json
// @Security    AdminToken
//
// @Param       id  path  string  true  "Item ID (UUID)"  format(uuid)
//
// @Success     200  {object}  domain.Item
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid admin token"
// @Failure     404  {object}  handlers.ErrorResponse  "Item not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/items/{id} [get]
func (h *Handlers) GetItem(c *gin.Context) {
	it, err := h.d.Items.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.itemError(c, err)
		return
	}
	ok(c, http.StatusOK, it)
}

// ListItems godoc
// @ID          listItems
// @Summary     List content items (paginated)
// @Description Returns a page of items, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Items
// @Produce     json
// @Security    AdminToken
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListItemsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid admin token"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /admin/items [get]
func (h *Handlers) ListItems(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.d.Items.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		if notModified(c, fmt.Sprintf(`W/"items:%d:%d:%d:%d"`, count, ts, page, pageSize)) {
			return
		}
	}

	items, total, err := h.d.Items.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ListItemsResponse{
		Items:      items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// itemError maps item lookup failures.
func (h *Handlers) itemError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrItemNotFound) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "item not found")
		return
	}
	fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
}
