package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/digistore/internal/config"
	domainErrors "github.com/polkiloo/digistore/internal/domain/errors"
	"github.com/polkiloo/digistore/internal/domain/model"
)

func TestSubmitCreatesPendingOrder(t *testing.T) {
	f := newFixture(t)
	productID := f.keyProduct("K1")

	sub := validSubmission()
	sub.ProductID = productID
	order, err := f.orders.Submit(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, "Sam", order.BuyerName)
	assert.Equal(t, "uploads/proof.png", order.PaymentProofPath)
	assert.Equal(t, "png", f.files.Saved["uploads/proof.png"])

	audit := f.store.AuditOf(order.ID)
	require.Len(t, audit, 1)
	assert.Equal(t, model.AuditOrderCreated, audit[0].Action)
	assert.Equal(t, "buyer_Sam", audit[0].Actor)

	alerts := f.messenger.OperatorAlerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, order.ID, alerts[0].ReviewOrderID)
	assert.Equal(t, "uploads/proof.png", alerts[0].ImagePath)
	assert.Contains(t, alerts[0].Text, fmt.Sprintf("New Order #%d", order.ID))
	assert.Contains(t, alerts[0].Text, "Telegram: @sam_tg")

	emails := f.mailer.Sent()
	require.Len(t, emails, 1)
	assert.Equal(t, "Order Received - Test Store", emails[0].Subject)
	assert.Equal(t, "sam@example.com", emails[0].To)
}

func TestSubmitSurvivesNotificationFailures(t *testing.T) {
	f := newFixture(t)
	f.messenger.OperatorErr = errors.New("telegram down")
	f.mailer.Err = domainErrors.ErrNotConfigured

	sub := validSubmission()
	sub.ProductID = f.keyProduct("K1")
	order, err := f.orders.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, f.store.Order(order.ID).Status)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.Submit(context.Background(), &model.OrderSubmission{})
	assert.ErrorIs(t, err, domainErrors.ErrValidation)

	sub := validSubmission()
	sub.ProductID = 999
	_, err = f.orders.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestSubmitRejectsUnavailableProduct(t *testing.T) {
	f := newFixture(t)

	sub := validSubmission()
	sub.ProductID = f.keyProduct()
	_, err := f.orders.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, domainErrors.ErrProductUnavailable)
	assert.Empty(t, f.files.Saved)
}

func TestSubmitRollsBackWhenAuditFails(t *testing.T) {
	f := newFixture(t)
	sub := validSubmission()
	sub.ProductID = f.keyProduct("K1")
	f.store.Fail = map[string]error{"audit.Append": errors.New("disk full")}

	_, err := f.orders.Submit(context.Background(), sub)
	require.Error(t, err)

	orders, err := f.store.Orders().List(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestSubmitDeletesProofWhenOrderNotStored(t *testing.T) {
	for _, key := range []string{"orders.Create", "audit.Append"} {
		t.Run(key, func(t *testing.T) {
			f := newFixture(t)
			sub := validSubmission()
			sub.ProductID = f.keyProduct("K1")
			f.store.Fail = map[string]error{key: errors.New("disk full")}

			_, err := f.orders.Submit(context.Background(), sub)
			require.Error(t, err)
			assert.Empty(t, f.files.Saved)
		})
	}
}

func TestSubmitKeepsErrorWhenProofCleanupFails(t *testing.T) {
	f := newFixture(t)
	sub := validSubmission()
	sub.ProductID = f.keyProduct("K1")
	storeErr := errors.New("disk full")
	f.store.Fail = map[string]error{"orders.Create": storeErr}
	f.files.DeleteErr = errors.New("permission denied")

	_, err := f.orders.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, storeErr)
	assert.Len(t, f.files.Saved, 1)
}

func TestConfirmKeyOrderDeliversOldestKey(t *testing.T) {
	f := newFixture(t)
	productID := f.keyProduct("K1", "K2")
	orderID := f.pendingOrder(productID)

	res, err := f.orders.Confirm(context.Background(), orderID, model.ActorDashboard)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusConfirmed, res.Order.Status)
	assert.Equal(t, model.OutcomeDelivered, res.Report.Outcome())
	assert.True(t, res.Report.InventoryAllocated)
	assert.True(t, res.Report.ChatSent)
	assert.True(t, res.Report.EmailSent)
	assert.True(t, res.Report.OperatorNotified)
	assert.Contains(t, res.Report.Message, "Your Key: K1")

	stored := f.store.Order(orderID)
	assert.Equal(t, model.OrderStatusConfirmed, stored.Status)
	require.NotNil(t, stored.ConfirmedAt)
	assert.Equal(t, f.now, *stored.ConfirmedAt)
	assert.Equal(t, fmt.Sprintf("receipts/receipt_%d.pdf", orderID), stored.ReceiptPath)

	assert.Equal(t, 1, f.store.Product(productID).StockCount)
	keys := f.store.KeysOf(productID)
	require.Len(t, keys, 2)
	assert.True(t, keys[0].IsUsed)
	require.NotNil(t, keys[0].UsedByOrderID)
	assert.Equal(t, orderID, *keys[0].UsedByOrderID)
	assert.False(t, keys[1].IsUsed)

	msgs := f.messenger.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "sam_tg", msgs[0].To)

	emails := f.mailer.Sent()
	require.Len(t, emails, 1)
	assert.Equal(t, "Your Order Confirmation from Test Store", emails[0].Subject)
	assert.Contains(t, emails[0].Body, "Your Product Key: K1")
	assert.Equal(t, stored.ReceiptPath, emails[0].Attachment)

	audit := f.store.AuditOf(orderID)
	require.Len(t, audit, 1)
	assert.Equal(t, model.AuditOrderConfirmed, audit[0].Action)
	assert.Equal(t, model.ActorDashboard, audit[0].Actor)
	assert.Equal(t, fmt.Sprintf("key #%d", keys[0].ID), audit[0].Note)
}

func TestTransitionsAreOneWay(t *testing.T) {
	f := newFixture(t)
	productID := f.keyProduct("K1", "K2")
	orderID := f.pendingOrder(productID)
	ctx := context.Background()

	_, err := f.orders.Confirm(ctx, orderID, model.ActorDashboard)
	require.NoError(t, err)

	_, err = f.orders.Confirm(ctx, orderID, model.ActorTelegram)
	assert.ErrorIs(t, err, domainErrors.ErrNotPending)
	_, err = f.orders.Reject(ctx, orderID, model.ActorCLI)
	assert.ErrorIs(t, err, domainErrors.ErrNotPending)

	assert.Len(t, f.store.AuditOf(orderID), 1)
	assert.Equal(t, 1, f.store.UnusedKeys(productID))
	assert.Len(t, f.messenger.Messages(), 1)

	rejectedID := f.pendingOrder(productID)
	_, err = f.orders.Reject(ctx, rejectedID, model.ActorDashboard)
	require.NoError(t, err)
	_, err = f.orders.Confirm(ctx, rejectedID, model.ActorDashboard)
	assert.ErrorIs(t, err, domainErrors.ErrNotPending)
	assert.Equal(t, model.OrderStatusRejected, f.store.Order(rejectedID).Status)
	assert.Equal(t, 1, f.store.UnusedKeys(productID))
}

func TestConcurrentConfirmsNeverShareKeys(t *testing.T) {
	f := newFixture(t)
	const keys = 3
	productID := f.keyProduct("K1", "K2", "K3")

	orderIDs := make([]int64, keys+1)
	for i := range orderIDs {
		orderIDs[i] = f.pendingOrder(productID)
	}

	results := make([]*model.TransitionResult, len(orderIDs))
	var wg sync.WaitGroup
	for i, id := range orderIDs {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			res, err := f.orders.Confirm(context.Background(), id, model.ActorTelegram)
			if assert.NoError(t, err) {
				results[i] = res
			}
		}(i, id)
	}
	wg.Wait()

	delivered := make(map[string]int64)
	degraded := 0
	for i, res := range results {
		require.NotNil(t, res)
		if res.Report.Degraded {
			degraded++
			assert.Equal(t, ReasonOutOfStock, res.Report.DegradedReason)
			assert.Contains(t, res.Report.Message, testSupport)
			continue
		}
		var owner *int64
		for _, k := range f.store.KeysOf(productID) {
			if k.UsedByOrderID != nil && *k.UsedByOrderID == orderIDs[i] {
				owner = k.UsedByOrderID
				_, dup := delivered[k.Value]
				assert.False(t, dup, "key %s delivered twice", k.Value)
				delivered[k.Value] = *owner
			}
		}
		assert.NotNil(t, owner)
	}

	assert.Len(t, delivered, keys)
	assert.Equal(t, 1, degraded)
	assert.Equal(t, 0, f.store.Product(productID).StockCount)
	for _, id := range orderIDs {
		assert.Equal(t, model.OrderStatusConfirmed, f.store.Order(id).Status)
	}
}

func TestConfirmFileOrderIssuesDownloadLink(t *testing.T) {
	f := newFixture(t)
	f.tokens.newToken = func() string { return "tok-1" }
	productID := f.fileProduct(5)
	orderID := f.pendingOrder(productID)

	res, err := f.orders.Confirm(context.Background(), orderID, model.ActorDashboard)
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeDelivered, res.Report.Outcome())
	assert.Equal(t, "https://store.test/download/tok-1", res.Report.DownloadURL)
	assert.Contains(t, res.Report.Message, "This link expires in 48 hours and allows up to 3 downloads")
	assert.Equal(t, 4, f.store.Product(productID).StockCount)

	tokens := f.store.TokensOf(orderID)
	require.Len(t, tokens, 1)
	assert.Equal(t, f.now.Add(f.cfg.DownloadTTL), tokens[0].ExpiresAt)
	assert.Equal(t, 3, tokens[0].MaxDownloads)
	assert.Equal(t, 0, tokens[0].DownloadCount)
	assert.Equal(t, "file stock 4", f.store.AuditOf(orderID)[0].Note)
}

func TestConfirmFileWithoutStock(t *testing.T) {
	t.Run("allow policy keeps delivering", func(t *testing.T) {
		f := newFixture(t)
		orderID := f.pendingOrder(f.fileProduct(0))

		res, err := f.orders.Confirm(context.Background(), orderID, model.ActorDashboard)
		require.NoError(t, err)
		assert.False(t, res.Report.Degraded)
		assert.NotEmpty(t, res.Report.DownloadURL)
	})

	t.Run("strict policy degrades", func(t *testing.T) {
		f := newFixture(t, func(c *config.Config) { c.FileStockPolicy = model.FileStockStrict })
		orderID := f.pendingOrder(f.fileProduct(0))

		res, err := f.orders.Confirm(context.Background(), orderID, model.ActorDashboard)
		require.NoError(t, err)
		assert.True(t, res.Report.Degraded)
		assert.Equal(t, ReasonOutOfStock, res.Report.DegradedReason)
		assert.Contains(t, res.Report.Message, "File delivery issue - please contact support at "+testSupport)
		assert.Empty(t, f.store.TokensOf(orderID))
		assert.Equal(t, model.OrderStatusConfirmed, f.store.Order(orderID).Status)
		assert.Equal(t, "out of stock", f.store.AuditOf(orderID)[0].Note)
	})
}

func TestRedeliverFileConfirmedWithoutStock(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.FileStockPolicy = model.FileStockStrict })
	productID := f.fileProduct(0)
	orderID := f.pendingOrder(productID)

	_, err := f.orders.Confirm(context.Background(), orderID, model.ActorDashboard)
	require.NoError(t, err)

	res, err := f.orders.Redeliver(context.Background(), orderID, model.ActorDashboard)
	require.NoError(t, err)
	assert.True(t, res.Report.Degraded)
	assert.Equal(t, ReasonOutOfStock, res.Report.DegradedReason)
	assert.Empty(t, res.Report.DownloadURL)
	assert.Empty(t, f.store.TokensOf(orderID))
	assert.Equal(t, 0, f.store.Product(productID).StockCount)
}

func TestConfirmFileMissingOnDisk(t *testing.T) {
	f := newFixture(t)
	f.files.Remove(testFile)
	orderID := f.pendingOrder(f.fileProduct(2))

	res, err := f.orders.Confirm(context.Background(), orderID, model.ActorDashboard)
	require.NoError(t, err)
	assert.True(t, res.Report.Degraded)
	assert.Equal(t, ReasonFileUnavailable, res.Report.DegradedReason)
	assert.Empty(t, res.Report.DownloadURL)
	assert.Empty(t, f.store.TokensOf(orderID))
}

func TestConfirmBundleNeedsManualDelivery(t *testing.T) {
	f := newFixture(t)
	productID := f.store.AddProduct(model.Product{Name: "Pack", Type: model.ProductTypeBundle, StockCount: 2, IsVisible: true})
	orderID := f.pendingOrder(productID)

	res, err := f.orders.Confirm(context.Background(), orderID, model.ActorCLI)
	require.NoError(t, err)
	assert.Equal(t, ReasonManual, res.Report.DegradedReason)
	assert.Contains(t, res.Report.Message, "Bundle delivery issue")
	assert.Equal(t, 2, f.store.Product(productID).StockCount)
}

func TestConfirmKeepsConfirmationWhenNotificationsFail(t *testing.T) {
	f := newFixture(t)
	f.messenger.SendErr = errors.New("chat not found")
	f.mailer.Err = domainErrors.ErrNotConfigured
	orderID := f.pendingOrder(f.keyProduct("K1"))

	res, err := f.orders.Confirm(context.Background(), orderID, model.ActorDashboard)
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeDeliveredWithIssues, res.Report.Outcome())
	assert.True(t, res.Report.ChatAttempted)
	assert.False(t, res.Report.ChatSent)
	assert.False(t, res.Report.EmailSent)
	assert.ErrorIs(t, res.Report.Err, domainErrors.ErrNotConfigured)
	assert.Equal(t, model.OrderStatusConfirmed, f.store.Order(orderID).Status)
}

func TestConfirmRollsBackWhenAuditFails(t *testing.T) {
	f := newFixture(t)
	productID := f.keyProduct("K1")
	orderID := f.pendingOrder(productID)
	f.store.Fail = map[string]error{"audit.Append": errors.New("disk full")}

	_, err := f.orders.Confirm(context.Background(), orderID, model.ActorDashboard)
	require.Error(t, err)

	assert.Equal(t, model.OrderStatusPending, f.store.Order(orderID).Status)
	assert.Equal(t, 1, f.store.UnusedKeys(productID))
	assert.Equal(t, 1, f.store.Product(productID).StockCount)
	assert.Empty(t, f.messenger.Messages())
}

func TestConfirmUnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.Confirm(context.Background(), 404, model.ActorDashboard)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestRejectNotifiesBuyer(t *testing.T) {
	f := newFixture(t)
	productID := f.keyProduct("K1")
	orderID := f.pendingOrder(productID)

	res, err := f.orders.Reject(context.Background(), orderID, model.ActorTelegram)
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusRejected, res.Order.Status)
	assert.True(t, res.Report.ChatSent)
	assert.True(t, res.Report.EmailSent)
	assert.Contains(t, res.Report.Message, fmt.Sprintf("Order #%d Rejected", orderID))

	emails := f.mailer.Sent()
	require.Len(t, emails, 1)
	assert.Equal(t, "Order Update - Test Store", emails[0].Subject)
	assert.Contains(t, emails[0].Body, testSupport)

	assert.Equal(t, 1, f.store.UnusedKeys(productID))
	audit := f.store.AuditOf(orderID)
	require.Len(t, audit, 1)
	assert.Equal(t, model.AuditOrderRejected, audit[0].Action)
	assert.Equal(t, model.ActorTelegram, audit[0].Actor)
}

func TestRedeliverReusesAllocation(t *testing.T) {
	f := newFixture(t)
	productID := f.keyProduct("K1", "K2")
	orderID := f.pendingOrder(productID)
	ctx := context.Background()

	_, err := f.orders.Confirm(ctx, orderID, model.ActorDashboard)
	require.NoError(t, err)

	res, err := f.orders.Redeliver(ctx, orderID, model.ActorCLI)
	require.NoError(t, err)

	assert.Contains(t, res.Report.Message, "Your Key: K1")
	assert.Equal(t, 1, f.store.UnusedKeys(productID))
	assert.Equal(t, 1, f.receipts.GenerateCalls())

	audit := f.store.AuditOf(orderID)
	require.Len(t, audit, 2)
	assert.Equal(t, model.AuditOrderRedelivered, audit[1].Action)
	assert.Equal(t, model.ActorCLI, audit[1].Actor)
}

func TestRedeliverFileIssuesFreshToken(t *testing.T) {
	f := newFixture(t)
	productID := f.fileProduct(5)
	orderID := f.pendingOrder(productID)
	ctx := context.Background()

	_, err := f.orders.Confirm(ctx, orderID, model.ActorDashboard)
	require.NoError(t, err)
	_, err = f.orders.Redeliver(ctx, orderID, model.ActorDashboard)
	require.NoError(t, err)

	assert.Len(t, f.store.TokensOf(orderID), 2)
	assert.Equal(t, 4, f.store.Product(productID).StockCount)
}

func TestRedeliverRequiresConfirmedOrder(t *testing.T) {
	f := newFixture(t)
	orderID := f.pendingOrder(f.keyProduct("K1"))

	_, err := f.orders.Redeliver(context.Background(), orderID, model.ActorDashboard)
	assert.ErrorIs(t, err, domainErrors.ErrNotConfirmed)
	assert.Empty(t, f.store.AuditOf(orderID))
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	productID := f.keyProduct("K1")
	first := f.pendingOrder(productID)
	second := f.pendingOrder(productID)
	_, err := f.orders.Reject(context.Background(), first, model.ActorDashboard)
	require.NoError(t, err)

	all, err := f.orders.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second, all[0].ID)

	pending, err := f.orders.List(context.Background(), model.OrderStatusPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0].ID)

	_, err = f.orders.List(context.Background(), "shipped", 10)
	assert.ErrorIs(t, err, domainErrors.ErrValidation)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultListLimit, clampLimit(0))
	assert.Equal(t, defaultListLimit, clampLimit(-3))
	assert.Equal(t, 20, clampLimit(20))
	assert.Equal(t, maxListLimit, clampLimit(10_000))
}

func TestAuditTrailAndReceipt(t *testing.T) {
	f := newFixture(t)
	orderID := f.pendingOrder(f.keyProduct("K1"))
	ctx := context.Background()

	_, err := f.orders.Receipt(ctx, orderID)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)

	_, err = f.orders.Confirm(ctx, orderID, model.ActorDashboard)
	require.NoError(t, err)

	path, err := f.orders.Receipt(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, fmt.Sprintf("receipt_%d.pdf", orderID)))

	trail, err := f.orders.AuditTrail(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, trail, 1)

	_, err = f.orders.AuditTrail(ctx, 999)
	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
}
