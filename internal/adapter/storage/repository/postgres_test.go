package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/soview/salesorders/internal/adapter/config"
	"github.com/soview/salesorders/internal/adapter/storage"
	"github.com/soview/salesorders/internal/adapter/storage/repository"
	"github.com/soview/salesorders/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests need a live database and are skipped unless DATABASE_URI
// points at one.
func getRepo(t *testing.T) *repository.Repository {
	t.Helper()

	dsn := os.Getenv("DATABASE_URI")
	if dsn == "" {
		t.Skip("DATABASE_URI is not set")
	}

	db, err := storage.NewDBStorage(context.Background(), &config.Database{DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	repo, err := repository.NewRepository(db)
	require.NoError(t, err)
	return repo
}

func testItem(orderID uuid.UUID, description string, quantity int32, unitPrice string) *domain.Item {
	price := decimal.MustParse(unitPrice)
	lineTotal, _ := domain.LineTotal(quantity, price)
	return &domain.Item{
		ID:          uuid.New(),
		OrderID:     orderID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   price,
		LineTotal:   lineTotal,
	}
}

// createTestOrder stores an order with items 5 x 100.00 and 3 x 150.00,
// total 950.00. The order number is randomized so runs do not collide.
func createTestOrder(t *testing.T, repo *repository.Repository) *domain.Order {
	t.Helper()

	now := time.Now()
	orderID := uuid.New()
	order := &domain.Order{
		ID:              orderID,
		Number:          "SO-" + uuid.NewString(),
		CustomerName:    "Acme Corp",
		CustomerAddress: "1 Industrial Way, Springfield",
		OrderDate:       time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
		DeliveryDate:    time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC),
		TotalAmount:     decimal.MustParse("950.00"),
		Status:          domain.OrderStatusDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items: []*domain.Item{
			testItem(orderID, "Widget", 5, "100.00"),
			testItem(orderID, "Gadget", 3, "150.00"),
		},
	}

	created, err := repo.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestRepositoryDB_ConcurrentItemAdds(t *testing.T) {
	repo := getRepo(t)
	order := createTestOrder(t, repo)

	// two writers against the same order, both must land in the total
	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreateItem(context.Background(),
				testItem(order.ID, "Bolt", 1, "25.00"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	stored, err := repo.ReadOrderWithItems(context.Background(), order.ID)
	assert.NoError(t, err)
	assert.Len(t, stored.Items, 4)
	assert.Equal(t, "1000.00", stored.TotalAmount.String())
}

func TestRepositoryDB_ItemWriteAndTotalCommitTogether(t *testing.T) {
	repo := getRepo(t)
	order := createTestOrder(t, repo)

	item, err := repo.UpdateItem(context.Background(),
		testItem(order.ID, "Widget", 10, "100.00"))
	// fabricated item id, so nothing may change
	assert.ErrorIs(t, err, domain.ErrDataNotFound)
	assert.Nil(t, item)

	stored, err := repo.ReadOrderWithItems(context.Background(), order.ID)
	assert.NoError(t, err)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, "950.00", stored.TotalAmount.String())

	// a real update moves both the item and the total
	updated := *stored.Items[0]
	updated.Quantity = 10
	updated.LineTotal, _ = domain.LineTotal(10, updated.UnitPrice)
	_, err = repo.UpdateItem(context.Background(), &updated)
	assert.NoError(t, err)

	stored, err = repo.ReadOrderWithItems(context.Background(), order.ID)
	assert.NoError(t, err)
	assert.Equal(t, "1450.00", stored.TotalAmount.String())
}

func TestRepositoryDB_ItemOwnershipEnforced(t *testing.T) {
	repo := getRepo(t)
	orderA := createTestOrder(t, repo)
	orderB := createTestOrder(t, repo)

	// orderA's item addressed through orderB must read as not found
	foreign := *orderA.Items[0]
	foreign.OrderID = orderB.ID
	foreign.Quantity = 99
	foreign.LineTotal, _ = domain.LineTotal(99, foreign.UnitPrice)

	_, err := repo.UpdateItem(context.Background(), &foreign)
	assert.ErrorIs(t, err, domain.ErrDataNotFound)

	err = repo.DeleteItem(context.Background(), orderB.ID, orderA.Items[0].ID)
	assert.ErrorIs(t, err, domain.ErrDataNotFound)

	for _, id := range []uuid.UUID{orderA.ID, orderB.ID} {
		stored, err := repo.ReadOrderWithItems(context.Background(), id)
		assert.NoError(t, err)
		assert.Len(t, stored.Items, 2)
		assert.Equal(t, "950.00", stored.TotalAmount.String())
	}
}

func TestRepositoryDB_RecomputeTotalIdempotent(t *testing.T) {
	repo := getRepo(t)
	order := createTestOrder(t, repo)

	first, err := repo.RecomputeTotal(context.Background(), order.ID)
	assert.NoError(t, err)
	second, err := repo.RecomputeTotal(context.Background(), order.ID)
	assert.NoError(t, err)

	assert.Equal(t, "950.00", first.TotalAmount.String())
	assert.Equal(t, first.TotalAmount.String(), second.TotalAmount.String())

	_, err = repo.RecomputeTotal(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrDataNotFound)
}

func TestRepositoryDB_DuplicateNumberConflicts(t *testing.T) {
	repo := getRepo(t)
	order := createTestOrder(t, repo)

	dup := createTestOrder(t, repo)
	require.NoError(t, repo.DeleteOrder(context.Background(), dup.ID))

	dup.ID = uuid.New()
	dup.Number = order.Number
	for _, item := range dup.Items {
		item.ID = uuid.New()
		item.OrderID = dup.ID
	}

	_, err := repo.CreateOrder(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrConflictingData)
}

func TestRepositoryDB_StatusUpdateLeavesTotalAlone(t *testing.T) {
	repo := getRepo(t)
	order := createTestOrder(t, repo)

	updated, err := repo.UpdateOrderStatus(context.Background(), order.ID, domain.OrderStatusApproved)
	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusApproved, updated.Status)
	assert.Equal(t, "950.00", updated.TotalAmount.String())

	_, err = repo.UpdateOrderStatus(context.Background(), uuid.New(), domain.OrderStatusApproved)
	assert.ErrorIs(t, err, domain.ErrDataNotFound)
}
