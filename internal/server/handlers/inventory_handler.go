package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository"
	"github.com/mamadbah2/pantry/internal/service/inventory"
)

// InventoryHandler exposes the inventory intents as a JSON API.
type InventoryHandler struct {
	inventory inventory.Intents
	logger    *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(intents inventory.Intents, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{inventory: intents, logger: logger}
}

// List refreshes from the store and returns the items matching ?q=.
func (h *InventoryHandler) List(c *gin.Context) {
	snapshot, err := h.inventory.Refresh(c.Request.Context())
	h.respond(c, snapshot.Filter(c.Query("q")), err)
}

// Create is the "add new item" submit: it adds one unit of the named item.
func (h *InventoryHandler) Create(c *gin.Context) {
	var req models.ItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid item payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.ItemsResponse{Error: "invalid request body"})
		return
	}

	snapshot, err := h.inventory.AddOne(c.Request.Context(), req.Name)
	h.respond(c, snapshot, err)
}

// Add adds one unit of the item named in the path.
func (h *InventoryHandler) Add(c *gin.Context) {
	snapshot, err := h.inventory.AddOne(c.Request.Context(), c.Param("name"))
	h.respond(c, snapshot, err)
}

// Remove takes one unit of the item named in the path.
func (h *InventoryHandler) Remove(c *gin.Context) {
	snapshot, err := h.inventory.RemoveOne(c.Request.Context(), c.Param("name"))
	h.respond(c, snapshot, err)
}

// respond always ships a snapshot: the new one on success, the previous one
// alongside the error otherwise.
func (h *InventoryHandler) respond(c *gin.Context, snapshot models.Snapshot, err error) {
	if snapshot == nil {
		snapshot = models.Snapshot{}
	}
	if err == nil {
		c.JSON(http.StatusOK, models.ItemsResponse{Items: snapshot})
		return
	}

	status := http.StatusInternalServerError
	message := "internal error"
	switch {
	case errors.Is(err, inventory.ErrInvalidName):
		status = http.StatusBadRequest
		message = inventory.ErrInvalidName.Error()
	case errors.Is(err, repository.ErrStoreUnavailable), errors.Is(err, repository.ErrContention):
		status = http.StatusServiceUnavailable
		message = "inventory store unavailable"
	}

	h.logger.Error("inventory intent failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(status, models.ItemsResponse{Items: snapshot, Error: message})
}
