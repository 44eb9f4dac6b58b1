package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
)

// APIError is a rejected Bot API call.
type APIError struct {
	Method      string
	StatusCode  int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("telegram %s: %d %s", e.Method, e.StatusCode, e.Description)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	return msg
}

// Client talks to the Telegram Bot API. It serves both buyer and operator
// messages and the replies to admin button presses.
type Client struct {
	baseURL     *url.URL
	token       string
	adminChatID string
	httpClient  *http.Client
	logger      *slog.Logger
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters,omitempty"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      string       `json:"chat_id"`
	Text        string       `json:"text"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

// NewClient creates a Bot API client. An empty token yields a client whose
// calls fail with ErrNotConfigured.
func NewClient(apiURL, token, adminChatID string, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse telegram url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("telegram url must be absolute")
	}
	return &Client{
		baseURL:     parsed,
		token:       token,
		adminChatID: adminChatID,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

// SendToBuyer sends text to a buyer. A numeric handle is used as a chat id,
// anything else is tried as @handle and then verbatim.
func (c *Client) SendToBuyer(ctx context.Context, handle, text string) error {
	if c.token == "" {
		return domainErrors.ErrNotConfigured
	}
	candidates := chatCandidates(handle)
	if len(candidates) == 0 {
		return fmt.Errorf("empty chat handle")
	}

	var errs error
	for _, chatID := range candidates {
		err := c.postJSON(ctx, "sendMessage", sendMessageRequest{ChatID: chatID, Text: text})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return multierr.Append(errs, err)
		}
		c.logger.Debug("telegram send attempt failed", slog.String("chat_id", chatID), slog.String("error", err.Error()))
		errs = multierr.Append(errs, err)
	}
	return errs
}

// NotifyOperator sends an alert to the admin chat. When the alert carries an
// image the photo is sent first and plain text is used as a fallback.
func (c *Client) NotifyOperator(ctx context.Context, alert model.OperatorAlert) error {
	if c.token == "" || c.adminChatID == "" {
		return domainErrors.ErrNotConfigured
	}

	var markup *replyMarkup
	if alert.ReviewOrderID > 0 {
		markup = reviewKeyboard(alert.ReviewOrderID)
	}

	if alert.ImagePath != "" {
		err := c.sendPhoto(ctx, alert.ImagePath, alert.Text, markup)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		c.logger.Warn("telegram photo failed, falling back to text", slog.String("error", err.Error()))
	}

	return c.postJSON(ctx, "sendMessage", sendMessageRequest{ChatID: c.adminChatID, Text: alert.Text, ReplyMarkup: markup})
}

// AnswerCallback acknowledges an inline button press.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if c.token == "" {
		return domainErrors.ErrNotConfigured
	}
	return c.postJSON(ctx, "answerCallbackQuery", answerCallbackRequest{CallbackQueryID: callbackID, Text: text})
}

// SendMessage sends text to a chat by numeric id.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if c.token == "" {
		return domainErrors.ErrNotConfigured
	}
	return c.postJSON(ctx, "sendMessage", sendMessageRequest{ChatID: strconv.FormatInt(chatID, 10), Text: text})
}

func (c *Client) sendPhoto(ctx context.Context, imagePath, caption string, markup *replyMarkup) error {
	file, err := os.Open(imagePath)
	if err != nil {
		return err
	}
	defer file.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("chat_id", c.adminChatID); err != nil {
		return err
	}
	if err := w.WriteField("caption", caption); err != nil {
		return err
	}
	if markup != nil {
		raw, err := json.Marshal(markup)
		if err != nil {
			return err
		}
		if err := w.WriteField("reply_markup", string(raw)); err != nil {
			return err
		}
	}
	part, err := w.CreateFormFile("photo", filepath.Base(imagePath))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendPhoto"), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, "sendPhoto")
}

func (c *Client) postJSON(ctx context.Context, method string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(method), bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, method)
}

func (c *Client) do(req *http.Request, method string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, scrubToken(err, c.token))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var data apiResponse
	decodeErr := json.Unmarshal(body, &data)
	if resp.StatusCode == http.StatusOK && decodeErr == nil && data.OK {
		return nil
	}

	apiErr := &APIError{Method: method, StatusCode: resp.StatusCode, Description: data.Description}
	if apiErr.Description == "" {
		apiErr.Description = http.StatusText(resp.StatusCode)
	}
	if data.Parameters != nil && data.Parameters.RetryAfter > 0 {
		apiErr.RetryAfter = time.Duration(data.Parameters.RetryAfter) * time.Second
	}
	c.logger.Error("telegram request failed",
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		slog.String("description", apiErr.Description),
	)
	return apiErr
}

func (c *Client) endpoint(method string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "bot"+c.token, method)
	return endpoint.String()
}

func reviewKeyboard(orderID int64) *replyMarkup {
	id := strconv.FormatInt(orderID, 10)
	return &replyMarkup{InlineKeyboard: [][]inlineButton{{
		{Text: "Confirm", CallbackData: "confirm_" + id},
		{Text: "Reject", CallbackData: "reject_" + id},
	}}}
}

func chatCandidates(handle string) []string {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil
	}
	if _, err := strconv.ParseInt(handle, 10, 64); err == nil {
		return []string{handle}
	}
	name := strings.TrimPrefix(handle, "@")
	if name == "" {
		return nil
	}
	return []string{"@" + name, name}
}

// scrubToken keeps the bot token out of transport errors, which embed the URL.
func scrubToken(err error, token string) error {
	var urlErr *url.Error
	if token == "" || !errors.As(err, &urlErr) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "<token>"))
}
