package receipt

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/domain/model"
)

func testOrder() *model.OrderDetails {
	confirmed := time.Date(2024, 5, 1, 15, 4, 0, 0, time.UTC)
	return &model.OrderDetails{
		Order: model.Order{
			ID:               7,
			BuyerName:        "Amélie",
			Email:            "amelie@example.com",
			TelegramUsername: "amelie",
			PaymentMethod:    model.PaymentBaridiMob,
			Status:           model.OrderStatusConfirmed,
			ConfirmedAt:      &confirmed,
		},
		Product: model.Product{Name: "Guide été", Price: decimal.RequireFromString("1500")},
	}
}

func newTestGenerator(t *testing.T) (*Generator, string) {
	dir := filepath.Join(t.TempDir(), "receipts")
	return NewGenerator(dir, "Test Store", "help@store.test", slog.New(slog.NewJSONHandler(io.Discard, nil))), dir
}

func TestGenerateWritesPDF(t *testing.T) {
	g, dir := newTestGenerator(t)

	path, err := g.Generate(context.Background(), testOrder())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "receipt_7.pdf"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
	assert.True(t, bytes.Contains(content, []byte("%%EOF")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

func TestGenerateReplacesExistingReceipt(t *testing.T) {
	g, _ := newTestGenerator(t)
	order := testOrder()

	first, err := g.Generate(context.Background(), order)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateWithoutConfirmationDate(t *testing.T) {
	g, _ := newTestGenerator(t)
	g.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	order := testOrder()
	order.ConfirmedAt = nil
	order.TelegramUsername = ""

	_, err := g.Generate(context.Background(), order)
	require.NoError(t, err)
}

func TestGenerateHonoursCancelledContext(t *testing.T) {
	g, dir := newTestGenerator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, testOrder())
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateFailsOnUnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	g := NewGenerator(filepath.Join(file, "receipts"), "Store", "x", slog.New(slog.NewJSONHandler(io.Discard, nil)))

	_, err := g.Generate(context.Background(), testOrder())
	assert.Error(t, err)
}

func TestNewGeneratorFromConfig(t *testing.T) {
	cfg := &config.Config{ReceiptDir: "r", StoreName: "S", SupportContact: "c"}
	g := newGenerator(cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	assert.Equal(t, "r", g.dir)
	assert.Equal(t, "S", g.storeName)
	assert.Equal(t, "c", g.support)
}
