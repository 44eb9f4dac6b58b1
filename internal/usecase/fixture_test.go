package usecase

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/digistore/internal/config"
	"github.com/polkiloo/digistore/internal/domain/model"
	"github.com/polkiloo/digistore/internal/metrics"
	testhelpers "github.com/polkiloo/digistore/internal/test"
)

const (
	testSupport = "help@store.test"
	testFile    = "files/guide.pdf"
)

type fixture struct {
	store     *testhelpers.MemoryStore
	files     *testhelpers.FileStoreStub
	messenger *testhelpers.MessengerStub
	mailer    *testhelpers.MailerStub
	receipts  *testhelpers.ReceiptStub
	cfg       *config.Config
	now       time.Time

	ledger      *InventoryLedger
	tokens      *TokenIssuer
	notify      *Dispatcher
	fulfillment *Fulfillment
	orders      *OrderService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:             "https://store.test",
		StoreName:           "Test Store",
		SupportContact:      testSupport,
		DownloadTTL:         48 * time.Hour,
		MaxDownloads:        3,
		NotifyTimeout:       time.Second,
		FileStockPolicy:     model.FileStockAllow,
		TelegramAdminChatID: "42",
	}
}

func newFixture(t *testing.T, tweak ...func(*config.Config)) *fixture {
	t.Helper()

	cfg := testConfig()
	for _, fn := range tweak {
		fn(cfg)
	}

	f := &fixture{
		store:     testhelpers.NewMemoryStore(),
		files:     testhelpers.NewFileStoreStub(testFile),
		messenger: &testhelpers.MessengerStub{},
		mailer:    &testhelpers.MailerStub{},
		cfg:       cfg,
		now:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.receipts = &testhelpers.ReceiptStub{Files: f.files}
	f.store.Now = f.clock

	logger := discardLogger()
	m := metrics.New(nil)
	f.ledger = NewInventoryLedger(f.store, cfg, logger, m)
	f.tokens = NewTokenIssuer(f.store, f.files, cfg, logger, m)
	f.tokens.now = f.clock
	f.notify = NewDispatcher(f.messenger, f.mailer, cfg, logger, m)
	f.fulfillment = NewFulfillment(f.store, f.tokens, f.files, f.receipts, f.notify, cfg, logger, m)
	f.orders = NewOrderService(f.store, f.ledger, f.fulfillment, f.files, f.notify, cfg, logger, m)
	f.orders.now = f.clock
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) keyProduct(keys ...string) int64 {
	id := f.store.AddProduct(model.Product{
		Name:      "Antivirus",
		Price:     decimal.RequireFromString("1500"),
		Type:      model.ProductTypeKey,
		IsVisible: true,
	})
	f.store.AddKeys(id, keys...)
	return id
}

func (f *fixture) fileProduct(stock int) int64 {
	return f.store.AddProduct(model.Product{
		Name:       "Guide",
		Price:      decimal.RequireFromString("900.50"),
		Type:       model.ProductTypeFile,
		StockCount: stock,
		FilePath:   testFile,
		IsVisible:  true,
	})
}

func (f *fixture) pendingOrder(productID int64) int64 {
	return f.store.AddOrder(model.Order{
		ProductID:        productID,
		BuyerName:        "Sam",
		Email:            "sam@example.com",
		Phone:            "0555000000",
		TelegramUsername: "sam_tg",
		PaymentMethod:    model.PaymentBaridiMob,
	})
}
