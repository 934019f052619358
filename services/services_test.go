package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-storefront/clock"
	"go-storefront/database"
	"go-storefront/models"
)

// Fixtures from database/seed.yaml.
const (
	sellerUserID   = "6f1c2a9e-0d4b-4c1e-9a57-3b2f7f0c1a01"
	customerUserID = "6f1c2a9e-0d4b-4c1e-9a57-3b2f7f0c1a02"
	ownerUserID    = "6f1c2a9e-0d4b-4c1e-9a57-3b2f7f0c1a03"
	techStoreID    = "0b7d5e44-8f1a-4e7c-b2d3-5c6a9e8f1b02"

	headphonesID = "2d4e6f80-1a2b-4c3d-8e9f-000000000001" // 79.99, 50 in stock
	tshirtID     = "2d4e6f80-1a2b-4c3d-8e9f-000000000003" // 29.99, 100 in stock
	mugID        = "2d4e6f80-1a2b-4c3d-8e9f-000000000008" // 19.99, 80 in stock
)

func newTestDB(t *testing.T) (*sql.DB, *clock.MockClock) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = database.Seed(context.Background(), db, clock.NewMockClock(time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	// Later than the seed timestamps so new rows sort first.
	return db, clock.NewMockClock(time.Date(2030, 1, 15, 10, 0, 0, 0, time.UTC))
}

type fakeNotifier struct {
	mu            sync.Mutex
	confirmations []string
	statusUpdates []models.OrderStatus
}

func (n *fakeNotifier) SendOrderConfirmationEmail(toEmail, name string, order models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, toEmail+" "+order.OrderNumber)
	return nil
}

func (n *fakeNotifier) SendOrderStatusEmail(toEmail, name string, order models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statusUpdates = append(n.statusUpdates, order.Status)
	return nil
}

type memoryArchive struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (a *memoryArchive) Record(ctx context.Context, event models.OrderEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

func (a *memoryArchive) Events(ctx context.Context, orderID string) ([]models.OrderEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.OrderEvent
	for _, e := range a.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *memoryArchive) Close(ctx context.Context) error { return nil }

func stockOf(t *testing.T, db *sql.DB, productID string) int {
	t.Helper()
	var stock int
	require.NoError(t, db.QueryRow("SELECT stock_quantity FROM products WHERE id = ?", productID).Scan(&stock))
	return stock
}

func ptr[T any](v T) *T {
	return &v
}
