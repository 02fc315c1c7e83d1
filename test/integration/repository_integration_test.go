package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"shopkart/internal/lock"
	"shopkart/internal/model"
	"shopkart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeDiscount(shopID uuid.UUID, code string, maxUses int) *model.Discount {
	return &model.Discount{
		ID:             uuid.New(),
		ShopID:         shopID,
		Code:           code,
		Name:           "Test discount " + code,
		Type:           model.DiscountPercentage,
		Value:          decimal.NewFromInt(10),
		StartDate:      time.Now().Add(-time.Hour),
		EndDate:        time.Now().Add(24 * time.Hour),
		MaxUses:        maxUses,
		MaxUsesPerUser: 5,
		AppliesTo:      model.AppliesToAllProducts,
		IsActive:       true,
	}
}

func TestDiscountRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewDiscountRepository(testDB.Pool, logger)

	ctx := context.Background()
	shopID := uuid.New()

	t.Run("Redeem decrements remaining uses and records the ledger", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		d := activeDiscount(shopID, "SAVE10", 3)
		SeedDiscount(t, testDB.Pool, d)
		userID := uuid.New()

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Redeem(ctx, tx, "SAVE10", shopID, userID))
		require.NoError(t, tx.Commit(ctx))

		found, err := repo.FindByCode(ctx, "SAVE10", shopID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, 2, found.MaxUses)
		assert.Equal(t, 1, found.UsesCount)

		used, err := repo.UserUsageCount(ctx, d.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, used)
	})

	t.Run("Redeem fails once the budget is spent", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedDiscount(t, testDB.Pool, activeDiscount(shopID, "LAST1", 1))
		userID := uuid.New()

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Redeem(ctx, tx, "LAST1", shopID, userID))
		require.NoError(t, tx.Commit(ctx))

		tx, err = testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		err = repo.Redeem(ctx, tx, "LAST1", shopID, userID)
		assert.ErrorIs(t, err, model.ErrDiscountExhausted)
		require.NoError(t, tx.Rollback(ctx))
	})

	t.Run("Rolled back redemption leaves no trace", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		d := activeDiscount(shopID, "ROLLME", 5)
		SeedDiscount(t, testDB.Pool, d)
		userID := uuid.New()

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Redeem(ctx, tx, "ROLLME", shopID, userID))
		require.NoError(t, tx.Rollback(ctx))

		found, err := repo.FindByCode(ctx, "ROLLME", shopID)
		require.NoError(t, err)
		assert.Equal(t, 5, found.MaxUses)
		assert.Equal(t, 0, found.UsesCount)

		used, err := repo.UserUsageCount(ctx, d.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, used)
	})

	t.Run("CancelRedemption restores uses and clears the ledger", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		d := activeDiscount(shopID, "UNDO10", 3)
		SeedDiscount(t, testDB.Pool, d)
		userID := uuid.New()

		tx, err := testDB.Pool.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, repo.Redeem(ctx, tx, "UNDO10", shopID, userID))
		require.NoError(t, tx.Commit(ctx))

		require.NoError(t, repo.CancelRedemption(ctx, "UNDO10", shopID, userID))

		found, err := repo.FindByCode(ctx, "UNDO10", shopID)
		require.NoError(t, err)
		assert.Equal(t, 3, found.MaxUses)
		assert.Equal(t, 0, found.UsesCount)

		used, err := repo.UserUsageCount(ctx, d.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, used)
	})

	t.Run("CancelRedemption without a redemption is a no-op", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedDiscount(t, testDB.Pool, activeDiscount(shopID, "NOUSE", 3))

		require.NoError(t, repo.CancelRedemption(ctx, "NOUSE", shopID, uuid.New()))

		found, err := repo.FindByCode(ctx, "NOUSE", shopID)
		require.NoError(t, err)
		assert.Equal(t, 3, found.MaxUses)
		assert.Equal(t, 0, found.UsesCount)
	})

	t.Run("Create rejects duplicate codes per shop", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		d := activeDiscount(shopID, "TWICE", 3)
		require.NoError(t, repo.Create(ctx, d))

		dup := activeDiscount(shopID, "TWICE", 3)
		assert.ErrorIs(t, repo.Create(ctx, dup), model.ErrDiscountCodeExists)
	})
}

func TestInventoryRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewInventoryRepository(testDB.Pool, logger)

	ctx := context.Background()
	shopID := uuid.New()

	t.Run("Reserve succeeds while stock lasts", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		productID := SeedProduct(t, testDB.Pool, shopID, decimal.NewFromInt(10), 3)

		ok, err := repo.Reserve(ctx, productID, 2)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Reserve(ctx, productID, 2)
		require.NoError(t, err)
		assert.False(t, ok)

		inv, err := repo.GetStock(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 1, inv.Stock)
		assert.Equal(t, 2, inv.Reserved)
	})

	t.Run("Concurrent reservations never oversell", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		productID := SeedProduct(t, testDB.Pool, shopID, decimal.NewFromInt(10), 5)

		const workers = 10
		var wg sync.WaitGroup
		results := make(chan bool, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repo.Reserve(ctx, productID, 1)
				require.NoError(t, err)
				results <- ok
			}()
		}
		wg.Wait()
		close(results)

		won := 0
		for ok := range results {
			if ok {
				won++
			}
		}
		assert.Equal(t, 5, won)

		inv, err := repo.GetStock(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 0, inv.Stock)
		assert.Equal(t, 5, inv.Reserved)
	})

	t.Run("ReleaseReservation returns stock", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		productID := SeedProduct(t, testDB.Pool, shopID, decimal.NewFromInt(10), 4)

		ok, err := repo.Reserve(ctx, productID, 3)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, repo.ReleaseReservation(ctx, productID, 3))

		inv, err := repo.GetStock(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 4, inv.Stock)
		assert.Equal(t, 0, inv.Reserved)
	})
}

func TestPostgresLockStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	store := lock.NewPostgresStore(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("Second claim on a live key fails", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		claimed, err := store.SetIfAbsent(ctx, "lock:product:a", uuid.NewString(), time.Minute)
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = store.SetIfAbsent(ctx, "lock:product:a", uuid.NewString(), time.Minute)
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("Expired key is claimable again", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		claimed, err := store.SetIfAbsent(ctx, "lock:product:b", uuid.NewString(), 50*time.Millisecond)
		require.NoError(t, err)
		require.True(t, claimed)

		time.Sleep(100 * time.Millisecond)

		claimed, err = store.SetIfAbsent(ctx, "lock:product:b", uuid.NewString(), time.Minute)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("Delete frees the key", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		claimed, err := store.SetIfAbsent(ctx, "lock:product:c", uuid.NewString(), time.Minute)
		require.NoError(t, err)
		require.True(t, claimed)

		require.NoError(t, store.Delete(ctx, "lock:product:c"))

		claimed, err = store.SetIfAbsent(ctx, "lock:product:c", uuid.NewString(), time.Minute)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("Deleting an absent key is a no-op", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		require.NoError(t, store.Delete(ctx, "lock:product:missing"))
	})
}
