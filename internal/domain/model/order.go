package model

import (
	"io"
	"time"
)

// OrderStatus describes where an order is in its review lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusRejected  OrderStatus = "rejected"
)

// Valid reports whether the status is one of the known values.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusRejected:
		return true
	}
	return false
}

// PaymentMethod is the bank transfer channel chosen by the buyer.
type PaymentMethod string

const (
	PaymentBaridiMob PaymentMethod = "baridimob"
	PaymentCCP       PaymentMethod = "ccp"
)

// Order is a buyer's purchase request backed by a proof of payment.
type Order struct {
	ID               int64
	ProductID        int64
	BuyerName        string
	Email            string
	Phone            string
	TelegramUsername string
	PaymentMethod    PaymentMethod
	PaymentProofPath string
	TransactionID    string
	Status           OrderStatus
	CreatedAt        time.Time
	ConfirmedAt      *time.Time
	ReceiptPath      string
}

// OrderDetails is an order joined with a snapshot of its product.
type OrderDetails struct {
	Order
	Product Product
}

// Upload is a file received from the buyer.
type Upload struct {
	Filename string
	Content  io.Reader
}

// OrderSubmission carries the buyer supplied checkout form.
type OrderSubmission struct {
	ProductID        int64         `json:"product_id" validate:"required,gt=0"`
	BuyerName        string        `json:"buyer_name" validate:"required,max=120"`
	Email            string        `json:"email" validate:"required,email,max=254"`
	Phone            string        `json:"phone" validate:"required,max=32"`
	TelegramUsername string        `json:"telegram_username" validate:"omitempty,max=64"`
	PaymentMethod    PaymentMethod `json:"payment_method" validate:"required,oneof=baridimob ccp"`
	TransactionID    string        `json:"transaction_id" validate:"omitempty,max=128"`
	Proof            *Upload       `json:"payment_proof" validate:"required"`
}

// TransitionResult is returned by confirm and reject.
type TransitionResult struct {
	Order  *OrderDetails
	Report *DeliveryReport
}
