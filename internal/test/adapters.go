package test

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/polkiloo/digistore/internal/domain/model"
)

// ChatMessage is one message captured by MessengerStub or BotStub.
type ChatMessage struct {
	To   string
	Text string
}

// MessengerStub records buyer and operator chat messages.
type MessengerStub struct {
	mu          sync.Mutex
	SendErr     error
	OperatorErr error
	Sent        []ChatMessage
	Alerts      []model.OperatorAlert
}

// SendToBuyer records the message or returns SendErr.
func (m *MessengerStub) SendToBuyer(ctx context.Context, handle, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, ChatMessage{To: handle, Text: text})
	return nil
}

// NotifyOperator records the alert or returns OperatorErr.
func (m *MessengerStub) NotifyOperator(ctx context.Context, alert model.OperatorAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OperatorErr != nil {
		return m.OperatorErr
	}
	m.Alerts = append(m.Alerts, alert)
	return nil
}

// Messages returns a copy of the buyer messages sent so far.
func (m *MessengerStub) Messages() []ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChatMessage(nil), m.Sent...)
}

// OperatorAlerts returns a copy of the operator alerts sent so far.
func (m *MessengerStub) OperatorAlerts() []model.OperatorAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.OperatorAlert(nil), m.Alerts...)
}

// MailerStub records sent emails.
type MailerStub struct {
	mu     sync.Mutex
	Err    error
	Emails []model.Email
}

// Send records the email or returns Err.
func (m *MailerStub) Send(ctx context.Context, email model.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Emails = append(m.Emails, email)
	return nil
}

// Sent returns a copy of the emails sent so far.
func (m *MailerStub) Sent() []model.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Email(nil), m.Emails...)
}

// ReceiptStub returns predictable receipt paths and registers them in Files.
type ReceiptStub struct {
	mu    sync.Mutex
	Err   error
	Calls int
	Files *FileStoreStub
}

// Generate returns receipts/receipt_<id>.pdf.
func (r *ReceiptStub) Generate(ctx context.Context, order *model.OrderDetails) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return "", r.Err
	}
	path := fmt.Sprintf("receipts/receipt_%d.pdf", order.ID)
	if r.Files != nil {
		r.Files.Add(path)
	}
	return path, nil
}

// GenerateCalls returns how many receipts were requested.
func (r *ReceiptStub) GenerateCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Calls
}

// FileStoreStub tracks which paths exist.
type FileStoreStub struct {
	mu      sync.Mutex
	paths   map[string]bool
	SaveErr   error
	DeleteErr error
	Saved     map[string]string
}

// NewFileStoreStub marks paths as existing.
func NewFileStoreStub(paths ...string) *FileStoreStub {
	f := &FileStoreStub{paths: make(map[string]bool), Saved: make(map[string]string)}
	for _, p := range paths {
		f.paths[p] = true
	}
	return f
}

// Add marks path as existing.
func (f *FileStoreStub) Add(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[path] = true
}

// Remove marks path as missing.
func (f *FileStoreStub) Remove(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.paths, path)
}

// Exists reports whether path was added.
func (f *FileStoreStub) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paths[path]
}

// SaveProof stores the content under uploads/<filename>.
func (f *FileStoreStub) SaveProof(ctx context.Context, filename string, content io.Reader) (string, error) {
	if f.SaveErr != nil {
		return "", f.SaveErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	path := "uploads/" + filename
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[path] = true
	f.Saved[path] = string(data)
	return path, nil
}

// DeleteProof forgets a saved proof.
func (f *FileStoreStub) DeleteProof(path string) error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.paths, path)
	delete(f.Saved, path)
	return nil
}

// BotStub records callback answers and chat messages.
type BotStub struct {
	mu      sync.Mutex
	Err     error
	Answers []ChatMessage
	Sent    []ChatMessage
}

// AnswerCallback records the answer.
func (b *BotStub) AnswerCallback(ctx context.Context, callbackID, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Answers = append(b.Answers, ChatMessage{To: callbackID, Text: text})
	return b.Err
}

// SendMessage records the message.
func (b *BotStub) SendMessage(ctx context.Context, chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Sent = append(b.Sent, ChatMessage{To: fmt.Sprint(chatID), Text: text})
	return b.Err
}

// GuardStub remembers callback ids in memory.
type GuardStub struct {
	mu   sync.Mutex
	seen map[string]bool
	Err  error
}

// FirstSeen reports whether id is new.
func (g *GuardStub) FirstSeen(ctx context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return false, g.Err
	}
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[id] {
		return false, nil
	}
	g.seen[id] = true
	return true, nil
}

// HealthStub reports a fixed health state.
type HealthStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (h HealthStub) HealthCheck(context.Context) error { return h.Err }
