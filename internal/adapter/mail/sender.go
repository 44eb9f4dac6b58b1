package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
)

// Sender delivers buyer emails through the Resend API.
type Sender struct {
	client  *resend.Client
	from    string
	replyTo string
	logger  *slog.Logger
}

// NewSender builds a Sender. Without an API key every Send reports
// ErrNotConfigured.
func NewSender(apiKey, fromAddress, fromName, replyTo string, logger *slog.Logger) *Sender {
	s := &Sender{from: formatAddress(fromName, fromAddress), replyTo: replyTo, logger: logger}
	if apiKey != "" {
		s.client = resend.NewCustomClient(&http.Client{Timeout: 30 * time.Second}, apiKey)
	}
	return s
}

// Send emails the message, attaching the referenced file when set.
func (s *Sender) Send(ctx context.Context, email model.Email) error {
	if s.client == nil {
		return domainErrors.ErrNotConfigured
	}
	if strings.TrimSpace(email.To) == "" {
		return fmt.Errorf("email recipient is empty")
	}

	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Text:    greeting(email.Name) + email.Body,
		Html:    renderHTML(email.Name, email.Body),
		ReplyTo: s.replyTo,
	}

	if email.Attachment != "" {
		content, err := os.ReadFile(email.Attachment)
		if err != nil {
			return fmt.Errorf("read attachment: %w", err)
		}
		req.Attachments = []*resend.Attachment{{
			Content:  content,
			Filename: filepath.Base(email.Attachment),
		}}
	}

	resp, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}

	s.logger.Debug("email sent",
		slog.String("id", resp.Id),
		slog.String("subject", email.Subject),
		slog.Bool("attachment", email.Attachment != ""),
	)
	return nil
}

func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

func greeting(name string) string {
	if name == "" {
		return "Hello,\n\n"
	}
	return "Dear " + name + ",\n\n"
}

func renderHTML(name, body string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; line-height: 1.5">`)
	for _, para := range strings.Split(greeting(name)+body, "\n\n") {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(para), "\n", "<br>"))
		b.WriteString("</p>")
	}
	b.WriteString("</div>")
	return b.String()
}
