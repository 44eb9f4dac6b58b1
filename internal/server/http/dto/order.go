package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderForm is the multipart checkout form. The proof file is read separately.
type OrderForm struct {
	ProductID        int64  `form:"product_id"`
	BuyerName        string `form:"buyer_name"`
	Email            string `form:"email"`
	Phone            string `form:"phone"`
	TelegramUsername string `form:"telegram_username"`
	PaymentMethod    string `form:"payment_method"`
	TransactionID    string `form:"transaction_id"`
}

// OrderCreatedResponse acknowledges a submitted order.
type OrderCreatedResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// ProductResponse is the product snapshot attached to orders.
type ProductResponse struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Type  string          `json:"type"`
	Stock int             `json:"stock_count"`
}

// OrderStatusResponse is the public view of an order.
type OrderStatusResponse struct {
	ID          int64           `json:"id"`
	Status      string          `json:"status"`
	Product     ProductResponse `json:"product"`
	CreatedAt   time.Time       `json:"created_at"`
	ConfirmedAt *time.Time      `json:"confirmed_at,omitempty"`
}

// OrderResponse is the admin view of an order.
type OrderResponse struct {
	OrderStatusResponse
	BuyerName        string `json:"buyer_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	TelegramUsername string `json:"telegram_username,omitempty"`
	PaymentMethod    string `json:"payment_method"`
	PaymentProofPath string `json:"payment_proof_path"`
	TransactionID    string `json:"transaction_id,omitempty"`
	ReceiptPath      string `json:"receipt_path,omitempty"`
}

// AuditEntryResponse is one audit log line.
type AuditEntryResponse struct {
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DeliveryResponse reports what happened on each delivery channel.
type DeliveryResponse struct {
	InventoryAllocated bool     `json:"inventory_allocated"`
	Degraded           bool     `json:"degraded"`
	DegradedReason     string   `json:"degraded_reason,omitempty"`
	Message            string   `json:"message"`
	DownloadURL        string   `json:"download_url,omitempty"`
	ReceiptPath        string   `json:"receipt_path,omitempty"`
	ChatAttempted      bool     `json:"chat_attempted"`
	ChatSent           bool     `json:"chat_sent"`
	EmailAttempted     bool     `json:"email_attempted"`
	EmailSent          bool     `json:"email_sent"`
	OperatorNotified   bool     `json:"operator_notified"`
	Errors             []string `json:"errors,omitempty"`
}

// TransitionResponse is returned by confirm, reject and redeliver.
type TransitionResponse struct {
	Order    OrderResponse     `json:"order"`
	Delivery *DeliveryResponse `json:"delivery,omitempty"`
	Outcome  string            `json:"outcome,omitempty"`
}
