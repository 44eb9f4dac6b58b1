package handlers

import (
	"go.uber.org/multierr"

	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/server/http/dto"
)

func toProductResponse(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Type:  string(p.Type),
		Stock: p.StockCount,
	}
}

func toOrderStatusResponse(o *model.OrderDetails) dto.OrderStatusResponse {
	return dto.OrderStatusResponse{
		ID:          o.ID,
		Status:      string(o.Status),
		Product:     toProductResponse(o.Product),
		CreatedAt:   o.CreatedAt,
		ConfirmedAt: o.ConfirmedAt,
	}
}

func toOrderResponse(o *model.OrderDetails) dto.OrderResponse {
	return dto.OrderResponse{
		OrderStatusResponse: toOrderStatusResponse(o),
		BuyerName:           o.BuyerName,
		Email:               o.Email,
		Phone:               o.Phone,
		TelegramUsername:    o.TelegramUsername,
		PaymentMethod:       string(o.PaymentMethod),
		PaymentProofPath:    o.PaymentProofPath,
		TransactionID:       o.TransactionID,
		ReceiptPath:         o.ReceiptPath,
	}
}

func toDeliveryResponse(r *model.DeliveryReport) *dto.DeliveryResponse {
	if r == nil {
		return nil
	}
	out := &dto.DeliveryResponse{
		InventoryAllocated: r.InventoryAllocated,
		Degraded:           r.Degraded,
		DegradedReason:     r.DegradedReason,
		Message:            r.Message,
		DownloadURL:        r.DownloadURL,
		ReceiptPath:        r.ReceiptPath,
		ChatAttempted:      r.ChatAttempted,
		ChatSent:           r.ChatSent,
		EmailAttempted:     r.EmailAttempted,
		EmailSent:          r.EmailSent,
		OperatorNotified:   r.OperatorNotified,
	}
	for _, err := range multierr.Errors(r.Err) {
		out.Errors = append(out.Errors, err.Error())
	}
	return out
}

func toTransitionResponse(res *model.TransitionResult) dto.TransitionResponse {
	out := dto.TransitionResponse{
		Order:    toOrderResponse(res.Order),
		Delivery: toDeliveryResponse(res.Report),
	}
	if res.Report != nil {
		out.Outcome = string(res.Report.Outcome())
	}
	return out
}

func toTokenResponse(t model.TokenListing) dto.TokenResponse {
	return dto.TokenResponse{
		Token:         t.Token,
		OrderID:       t.OrderID,
		BuyerName:     t.BuyerName,
		ProductName:   t.ProductName,
		CreatedAt:     t.CreatedAt,
		ExpiresAt:     t.ExpiresAt,
		UsedAt:        t.UsedAt,
		DownloadCount: t.DownloadCount,
		MaxDownloads:  t.MaxDownloads,
		Exhausted:     t.Exhausted(),
	}
}
