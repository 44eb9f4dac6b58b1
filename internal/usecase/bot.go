package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/polkiloo/digistore/internal/config"
	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
)

const (
	callbackConfirm = "confirm_"
	callbackReject  = "reject_"
)

// BotService turns chat platform updates into order transitions.
type BotService struct {
	orders      *OrderService
	bot         BotCommander
	guard       CallbackGuard
	adminChatID string
	storeName   string
	logger      *slog.Logger
}

// NewBotService constructs BotService.
func NewBotService(orders *OrderService, bot BotCommander, guard CallbackGuard, cfg *config.Config, logger *slog.Logger) *BotService {
	return &BotService{
		orders:      orders,
		bot:         bot,
		guard:       guard,
		adminChatID: cfg.TelegramAdminChatID,
		storeName:   cfg.StoreName,
		logger:      logger,
	}
}

// HandleUpdate processes one inbound update. Returned errors only describe
// failed replies; the update itself is never retried.
func (b *BotService) HandleUpdate(ctx context.Context, update model.BotUpdate) error {
	switch {
	case update.Callback != nil:
		return b.handleCallback(ctx, *update.Callback)
	case update.Message != nil:
		return b.handleMessage(ctx, *update.Message)
	}
	return nil
}

func (b *BotService) handleMessage(ctx context.Context, msg model.BotMessage) error {
	command := strings.Fields(strings.TrimSpace(msg.Text))
	if len(command) == 0 {
		return nil
	}
	// Commands may carry a bot suffix such as /start@store_bot.
	name := strings.SplitN(command[0], "@", 2)[0]

	switch name {
	case "/start":
		greeting := "Welcome"
		if msg.FirstName != "" {
			greeting += ", " + msg.FirstName
		}
		text := fmt.Sprintf("%s! This is the %s bot.\n\nYour chat ID: %d\n\nOrder updates and delivery messages will arrive here.",
			greeting, b.storeName, msg.ChatID)
		return b.bot.SendMessage(ctx, msg.ChatID, text)
	case "/chatid", "/id":
		return b.bot.SendMessage(ctx, msg.ChatID, fmt.Sprintf("Your chat ID: %d", msg.ChatID))
	}
	return nil
}

func (b *BotService) handleCallback(ctx context.Context, cb model.BotCallback) error {
	if b.adminChatID == "" || strconv.FormatInt(cb.ChatID, 10) != b.adminChatID {
		b.logger.Warn("callback from unauthorised chat", slog.Int64("chat_id", cb.ChatID))
		return b.bot.AnswerCallback(ctx, cb.ID, "Not authorised")
	}

	first, err := b.guard.FirstSeen(ctx, cb.ID)
	if err != nil {
		// The state machine still rejects duplicates, so a guard outage is not fatal.
		b.logger.Warn("callback dedup unavailable", slog.String("error", err.Error()))
		first = true
	}
	if !first {
		return b.bot.AnswerCallback(ctx, cb.ID, "Already handled")
	}

	action, orderID, ok := parseCallback(cb.Data)
	if !ok {
		return b.bot.AnswerCallback(ctx, cb.ID, "Unknown action")
	}

	var text string
	switch action {
	case callbackConfirm:
		res, err := b.orders.Confirm(ctx, orderID, model.ActorTelegram)
		text = confirmReply(orderID, res, err)
	case callbackReject:
		_, err := b.orders.Reject(ctx, orderID, model.ActorTelegram)
		text = rejectReply(orderID, err)
	}

	return multierr.Combine(
		b.bot.AnswerCallback(ctx, cb.ID, text),
		b.bot.SendMessage(ctx, cb.ChatID, text),
	)
}

func parseCallback(data string) (string, int64, bool) {
	for _, prefix := range []string{callbackConfirm, callbackReject} {
		if rest, found := strings.CutPrefix(data, prefix); found {
			id, err := strconv.ParseInt(rest, 10, 64)
			if err != nil || id <= 0 {
				return "", 0, false
			}
			return prefix, id, true
		}
	}
	return "", 0, false
}

func confirmReply(orderID int64, res *model.TransitionResult, err error) string {
	if err != nil {
		return failureReply(orderID, err)
	}
	if res.Report.Outcome() == model.OutcomeDelivered {
		return fmt.Sprintf("Order #%d confirmed, product delivered, and receipt generated!", orderID)
	}
	reason := res.Report.DegradedReason
	if reason == "" {
		reason = "some notifications failed"
	}
	return fmt.Sprintf("Order #%d confirmed, delivery degraded: %s", orderID, reason)
}

func rejectReply(orderID int64, err error) string {
	if err != nil {
		return failureReply(orderID, err)
	}
	return fmt.Sprintf("Order #%d rejected and buyer notified!", orderID)
}

func failureReply(orderID int64, err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrNotPending):
		return fmt.Sprintf("Order #%d already processed", orderID)
	case errors.Is(err, domainErrors.ErrNotFound):
		return fmt.Sprintf("Order #%d not found", orderID)
	}
	return fmt.Sprintf("Order #%d could not be processed", orderID)
}
