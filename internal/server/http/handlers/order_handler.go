package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/server/http/dto"
)

const proofField = "payment_proof"

// OrderHandler serves the public checkout endpoints.
type OrderHandler struct {
	facade OrderFacade
	logger *slog.Logger
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{facade: facade, logger: logger}
}

// Submit handles POST /api/orders.
func (h *OrderHandler) Submit(c *gin.Context) {
	var form dto.OrderForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:  "validation failed",
			Fields: map[string]string{"product_id": "is invalid"},
		})
		return
	}

	sub := &model.OrderSubmission{
		ProductID:        form.ProductID,
		BuyerName:        form.BuyerName,
		Email:            form.Email,
		Phone:            form.Phone,
		TelegramUsername: form.TelegramUsername,
		PaymentMethod:    model.PaymentMethod(form.PaymentMethod),
		TransactionID:    form.TransactionID,
	}

	header, err := c.FormFile(proofField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed multipart form"})
		return
	default:
		file, err := header.Open()
		if err != nil {
			h.logger.Error("open uploaded proof", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
			return
		}
		defer file.Close()
		sub.Proof = &model.Upload{Filename: header.Filename, Content: file}
	}

	order, err := h.facade.SubmitOrder(c.Request.Context(), sub)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OrderCreatedResponse{ID: order.ID, Status: string(order.Status)})
}

// Status handles GET /api/orders/:id.
func (h *OrderHandler) Status(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderStatusResponse(order))
}
