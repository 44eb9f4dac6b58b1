package usecase

import (
	"context"
	"io"

	"github.com/polkiloo/digistore/internal/domain/model"
)

// Messenger delivers chat messages to buyers and the store operator.
type Messenger interface {
	// SendToBuyer addresses a buyer by chat handle or numeric chat id.
	SendToBuyer(ctx context.Context, handle, text string) error
	NotifyOperator(ctx context.Context, alert model.OperatorAlert) error
}

// BotCommander answers chat platform interactions.
type BotCommander interface {
	AnswerCallback(ctx context.Context, callbackID, text string) error
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Mailer sends buyer emails.
type Mailer interface {
	Send(ctx context.Context, email model.Email) error
}

// ReceiptGenerator renders a durable receipt and returns its path.
type ReceiptGenerator interface {
	Generate(ctx context.Context, order *model.OrderDetails) (string, error)
}

// FileStore gives access to stored product files and payment proofs.
type FileStore interface {
	Exists(path string) bool
	SaveProof(ctx context.Context, filename string, content io.Reader) (string, error)
	DeleteProof(path string) error
}

// CallbackGuard reports whether a chat callback id is seen for the first time.
type CallbackGuard interface {
	FirstSeen(ctx context.Context, callbackID string) (bool, error)
}
