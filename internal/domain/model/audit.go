package model

import (
	"strings"
	"time"
)

// Audit actions.
const (
	AuditOrderCreated     = "order_created"
	AuditOrderConfirmed   = "order_confirmed"
	AuditOrderRejected    = "order_rejected"
	AuditOrderRedelivered = "order_redelivered"
)

// Actors recorded on audit entries.
const (
	ActorDashboard = "admin_dashboard"
	ActorTelegram  = "telegram_admin"
	ActorCLI       = "cli_admin"
	ActorSystem    = "system"
)

// AuditEntry is an append-only record of a state changing action.
type AuditEntry struct {
	ID        int64
	OrderID   int64
	Action    string
	Actor     string
	Note      string
	CreatedAt time.Time
}

// DashboardActor names an admin acting through the HTTP dashboard.
func DashboardActor(username string) string {
	if username == "" {
		return ActorDashboard
	}
	return ActorDashboard + ":" + username
}

// BuyerActor names the buyer who submitted an order.
func BuyerActor(name string) string {
	return "buyer_" + strings.TrimSpace(name)
}
