package usecase

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/domain/model"
)

const currency = "DZD"

// storeCopy holds the store details used in buyer-facing texts.
type storeCopy struct {
	storeName    string
	support      string
	baseURL      string
	ttl          time.Duration
	maxDownloads int
}

func newStoreCopy(cfg *config.Config) storeCopy {
	return storeCopy{
		storeName:    cfg.StoreName,
		support:      cfg.SupportContact,
		baseURL:      cfg.BaseURL,
		ttl:          cfg.DownloadTTL,
		maxDownloads: cfg.MaxDownloads,
	}
}

func (c storeCopy) downloadURL(token string) string {
	return c.baseURL + "/download/" + token
}

func (c storeCopy) linkCaveat() string {
	return fmt.Sprintf("(This link expires in %s and allows up to %d downloads)", humanDuration(c.ttl), c.maxDownloads)
}

func (c storeCopy) supportNote(subject string) string {
	return fmt.Sprintf("%s delivery issue - please contact support at %s.", subject, c.support)
}

// delivery builds the chat text and the email body snippet for a confirmed order.
type delivery struct {
	chat string
	info string
}

func (c storeCopy) keyDelivery(order *model.OrderDetails, key string) delivery {
	return delivery{
		chat: fmt.Sprintf("Your order #%d has been confirmed!\n\nProduct: %s\nYour Key: %s\n\nThank you for your purchase!",
			order.ID, order.Product.Name, key),
		info: "Your Product Key: " + key,
	}
}

func (c storeCopy) fileDelivery(order *model.OrderDetails, url string) delivery {
	return delivery{
		chat: fmt.Sprintf("Your order #%d has been confirmed!\n\nProduct: %s\nFile: %s\n\nDownload your product here: %s\n%s\n\nThank you for your purchase!",
			order.ID, order.Product.Name, filepath.Base(order.Product.FilePath), url, c.linkCaveat()),
		info: fmt.Sprintf("Download your product here: %s\n\n%s", url, c.linkCaveat()),
	}
}

func (c storeCopy) degradedDelivery(order *model.OrderDetails, subject string) delivery {
	note := c.supportNote(subject)
	return delivery{
		chat: fmt.Sprintf("Your order #%d has been confirmed!\n\nProduct: %s\n%s\n\nThank you for your purchase!",
			order.ID, order.Product.Name, note),
		info: note,
	}
}

func (c storeCopy) confirmationEmail(order *model.OrderDetails, info, receipt string) model.Email {
	var b strings.Builder
	b.WriteString("Your order has been confirmed and your product is ready!\n\n")
	c.writeOrderDetails(&b, order)
	b.WriteString("\n")
	b.WriteString(info)
	b.WriteString("\n\n")
	if receipt != "" {
		b.WriteString("Your official receipt is attached to this email for your records.\n\n")
	}
	fmt.Fprintf(&b, "Thank you for choosing %s!", c.storeName)
	return model.Email{
		To:         order.Email,
		Name:       order.BuyerName,
		Subject:    "Your Order Confirmation from " + c.storeName,
		Body:       b.String(),
		Attachment: receipt,
	}
}

func (c storeCopy) receivedEmail(order *model.OrderDetails) model.Email {
	var b strings.Builder
	b.WriteString("Thank you for your order! We have received your payment proof and are processing your request.\n\n")
	c.writeOrderDetails(&b, order)
	b.WriteString("\nYour order is currently being reviewed by our team. ")
	b.WriteString("You will receive another email once your order is confirmed and your product is ready.\n\n")
	fmt.Fprintf(&b, "If you have any questions, please contact us at %s.", c.support)
	return model.Email{
		To:      order.Email,
		Name:    order.BuyerName,
		Subject: "Order Received - " + c.storeName,
		Body:    b.String(),
	}
}

func (c storeCopy) rejectionEmail(order *model.OrderDetails) model.Email {
	var b strings.Builder
	b.WriteString("We regret to inform you that your recent order could not be processed.\n\n")
	fmt.Fprintf(&b, "Order Details:\n- Order ID: #%d\n- Product: %s\n- Submitted by: %s\n\n", order.ID, order.Product.Name, order.BuyerName)
	b.WriteString("Unfortunately, we were unable to verify your payment.\n\n")
	fmt.Fprintf(&b, "If you believe this is an error, please contact %s with your order ID and payment details.", c.support)
	return model.Email{
		To:      order.Email,
		Name:    order.BuyerName,
		Subject: "Order Update - " + c.storeName,
		Body:    b.String(),
	}
}

func (c storeCopy) rejectionChat(order *model.OrderDetails) string {
	return fmt.Sprintf("Order #%d Rejected\n\nUnfortunately, your payment for %q could not be verified.\n\nPlease contact %s if you believe this is an error.",
		order.ID, order.Product.Name, c.support)
}

func (c storeCopy) newOrderAlert(order *model.OrderDetails) string {
	return fmt.Sprintf("New Order #%d\n\nProduct: %s\nPrice: %s %s\nBuyer: %s\nEmail: %s\nPhone: %s\nTelegram: %s\nPayment: %s\nTransaction ID: %s",
		order.ID, order.Product.Name, order.Product.Price.StringFixed(2), currency,
		order.BuyerName, order.Email, order.Phone,
		orNotProvided(handleLabel(order.TelegramUsername)),
		strings.ToUpper(string(order.PaymentMethod)),
		orNotProvided(order.TransactionID))
}

func (c storeCopy) deliveredAlert(order *model.OrderDetails, report *model.DeliveryReport) string {
	text := fmt.Sprintf("Product delivered to %s for order #%d", order.BuyerName, order.ID)
	if report.Degraded {
		text += "\nDelivery degraded: " + report.DegradedReason
	}
	return text
}

func (c storeCopy) writeOrderDetails(b *strings.Builder, order *model.OrderDetails) {
	fmt.Fprintf(b, "Order Details:\n- Order ID: #%d\n- Product: %s\n- Price: %s %s\n- Payment Method: %s\n",
		order.ID, order.Product.Name, order.Product.Price.StringFixed(2), currency,
		strings.ToUpper(string(order.PaymentMethod)))
}

func handleLabel(handle string) string {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return ""
	}
	return "@" + handle
}

func orNotProvided(v string) string {
	if v == "" {
		return "Not provided"
	}
	return v
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "0 hours"
	case d%time.Hour == 0 && d/time.Hour == 1:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	default:
		return d.String()
	}
}
