package model

// DeliveryOutcome summarises a delivery report for callers.
type DeliveryOutcome string

const (
	OutcomeDelivered           DeliveryOutcome = "delivered"
	OutcomeDeliveredWithIssues DeliveryOutcome = "delivered_with_issues"
)

// DeliveryReport records what fulfillment managed to do for an order.
type DeliveryReport struct {
	OrderID            int64
	InventoryAllocated bool
	Degraded           bool
	DegradedReason     string
	Message            string
	DownloadURL        string
	ReceiptPath        string
	ChatAttempted      bool
	ChatSent           bool
	EmailAttempted     bool
	EmailSent          bool
	OperatorNotified   bool
	// Err aggregates every non-fatal failure met while delivering.
	Err error
}

// Outcome tells whether everything that was attempted succeeded.
func (r *DeliveryReport) Outcome() DeliveryOutcome {
	if r == nil {
		return OutcomeDeliveredWithIssues
	}
	if r.Degraded || r.Err != nil {
		return OutcomeDeliveredWithIssues
	}
	if r.ChatAttempted && !r.ChatSent {
		return OutcomeDeliveredWithIssues
	}
	if r.EmailAttempted && !r.EmailSent {
		return OutcomeDeliveredWithIssues
	}
	return OutcomeDelivered
}

// Email is an outbound message to a buyer.
type Email struct {
	To         string
	Name       string
	Subject    string
	Body       string
	Attachment string
}

// OperatorAlert is an internal notification for the store operator.
type OperatorAlert struct {
	Text      string
	ImagePath string
	// ReviewOrderID attaches confirm and reject buttons when non-zero.
	ReviewOrderID int64
}
