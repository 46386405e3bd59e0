package media

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medialib/backend/internal/events"
	"github.com/medialib/backend/internal/models"
	"github.com/medialib/backend/pkg/response"
)

// Handler handles media record HTTP endpoints.
type Handler struct {
	store  Store
	hub    *events.Hub
	logger *zap.Logger
}

// NewHandler creates a media handler.
func NewHandler(store Store, hub *events.Hub, logger *zap.Logger) *Handler {
	return &Handler{store: store, hub: hub, logger: logger}
}

// Create handles POST /api/media/upload. The body is any JSON object; its
// fields are stored as-is under a new store-assigned id.
func (h *Handler) Create(c *gin.Context) {
	var fields models.Record
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	rec, err := h.store.Create(c.Request.Context(), fields)
	if err != nil {
		h.logger.Error("create media record failed", zap.Error(err))
		response.Internal(c, "failed to create media record")
		return
	}
	h.hub.Publish(events.EventCreated, rec)
	response.Created(c, rec)
}

// GetByID handles GET /api/media/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id := c.Param("id")
	rec, err := h.store.GetByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "media record not found")
		return
	}
	if err != nil {
		h.logger.Error("get media record failed", zap.Error(err), zap.String("id", id))
		response.Internal(c, "failed to get media record")
		return
	}
	response.OK(c, rec)
}

// Update handles PUT /api/media/:id/update. Supplied fields are merged
// into the record; fields not in the body keep their stored values.
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")

	var fields models.Record
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	rec, err := h.store.Update(c.Request.Context(), id, fields)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "media record not found")
		return
	}
	if err != nil {
		h.logger.Error("update media record failed", zap.Error(err), zap.String("id", id))
		response.Internal(c, "failed to update media record")
		return
	}
	h.hub.Publish(events.EventUpdated, rec)
	response.OK(c, rec)
}

// Delete handles DELETE /api/media/:id/delete. Deleting is idempotent:
// an unknown id is still a 204.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.store.Delete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NoContent(c)
		return
	}
	if err != nil {
		h.logger.Error("delete media record failed", zap.Error(err), zap.String("id", id))
		response.Internal(c, "failed to delete media record")
		return
	}
	h.hub.Publish(events.EventDeleted, rec)
	response.NoContent(c)
}

// List handles GET /api/medias. Records come back in insertion order.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list media records failed", zap.Error(err))
		response.Internal(c, "failed to list media records")
		return
	}
	if list == nil {
		list = make([]models.Record, 0)
	}
	response.OK(c, list)
}

// Stats handles GET /api/media/stats: the record total plus a per-type
// breakdown. Records without a string "type" field are counted under "".
func (h *Handler) Stats(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("stats query failed", zap.Error(err))
		response.Internal(c, "failed to compute media stats")
		return
	}

	byType := make(map[string]int)
	for _, rec := range list {
		byType[rec.Type()]++
	}
	response.OK(c, gin.H{
		"total":   len(list),
		"by_type": byType,
	})
}

// Health handles GET /health. It probes the store so a dead backend turns
// the probe red.
func (h *Handler) Health(c *gin.Context) {
	if _, err := h.store.Count(c.Request.Context()); err != nil {
		h.logger.Error("health probe failed", zap.Error(err))
		response.ServiceUnavailable(c, "store unavailable")
		return
	}
	response.OK(c, gin.H{"status": "ok"})
}
