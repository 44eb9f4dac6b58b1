package handlers

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/server/http/dto"
)

// AdminHandler exposes the order dashboard.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// List handles GET /api/admin/orders.
func (h *AdminHandler) List(c *gin.Context) {
	status := model.OrderStatus(c.Query("status"))
	orders, err := h.facade.Orders(c.Request.Context(), status, queryLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/admin/orders/:id.
func (h *AdminHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Audit handles GET /api/admin/orders/:id/audit.
func (h *AdminHandler) Audit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	entries, err := h.facade.AuditTrail(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, dto.AuditEntryResponse{
			Action:    e.Action,
			Actor:     e.Actor,
			Note:      e.Note,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, response)
}

// Receipt handles GET /api/admin/orders/:id/receipt.
func (h *AdminHandler) Receipt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	path, err := h.facade.Receipt(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// Confirm handles POST /api/admin/orders/:id/confirm.
func (h *AdminHandler) Confirm(c *gin.Context) {
	h.transition(c, h.facade.ConfirmOrder)
}

// Reject handles POST /api/admin/orders/:id/reject.
func (h *AdminHandler) Reject(c *gin.Context) {
	h.transition(c, h.facade.RejectOrder)
}

// Redeliver handles POST /api/admin/orders/:id/redeliver.
func (h *AdminHandler) Redeliver(c *gin.Context) {
	h.transition(c, h.facade.RedeliverOrder)
}

type transitionFunc func(ctx context.Context, orderID int64, actor string) (*model.TransitionResult, error)

func (h *AdminHandler) transition(c *gin.Context, fn transitionFunc) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := fn(c.Request.Context(), id, dashboardActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransitionResponse(res))
}
