package memshipment

import (
	"context"
	"sync"
	"testing"

	"github.com/BearBump/CargoGate/internal/apperr"
	"github.com/BearBump/CargoGate/internal/models"
	"github.com/stretchr/testify/require"
)

func TestStorage_InsertAssignsMaxPlusOne(t *testing.T) {
	st := New()
	ctx := context.Background()

	st.Seed([]*models.ShipmentRecord{
		{ID: 123, Origin: "A", Destination: "B", Status: models.StatusPending, System: models.SystemGround},
		{ID: 456, Origin: "C", Destination: "D", Status: models.StatusPending, System: models.SystemAir},
	})

	rec, err := st.Insert(ctx, &models.ShipmentRecord{
		Origin: "E", Destination: "F", Status: models.StatusPending, System: models.SystemSea,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(457), rec.ID)
	require.False(t, rec.CreatedAt.IsZero())
}

func TestStorage_InsertConcurrentNoDuplicates(t *testing.T) {
	st := New()
	ctx := context.Background()

	const n = 100
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := st.Insert(ctx, &models.ShipmentRecord{
				Origin: "A", Destination: "B", Status: models.StatusPending, System: models.SystemGround,
			})
			require.NoError(t, err)
			ids <- rec.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool, n)
	for id := range ids {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	require.Len(t, seen, n)
}

func TestStorage_IDNotReusedAfterDelete(t *testing.T) {
	st := New()
	ctx := context.Background()

	first, err := st.Insert(ctx, &models.ShipmentRecord{Origin: "A", Destination: "B", Status: models.StatusPending, System: models.SystemGround})
	require.NoError(t, err)

	_, err = st.Delete(ctx, first.ID)
	require.NoError(t, err)

	// счётчик монотонный: id удалённого максимума не переиспользуется
	second, err := st.Insert(ctx, &models.ShipmentRecord{Origin: "C", Destination: "D", Status: models.StatusPending, System: models.SystemAir})
	require.NoError(t, err)
	require.Greater(t, second.ID, first.ID)
}

func TestStorage_ReplacePreservesCreatedAt(t *testing.T) {
	st := New()
	ctx := context.Background()

	created, err := st.Insert(ctx, &models.ShipmentRecord{Origin: "A", Destination: "B", Status: models.StatusPending, System: models.SystemGround})
	require.NoError(t, err)

	updated, err := st.Replace(ctx, created.ID, &models.ShipmentRecord{
		Origin: "A", Destination: "X", Status: models.StatusInTransit, System: models.SystemGround,
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.Equal(t, "X", updated.Destination)

	_, err = st.Replace(ctx, 999, created)
	require.True(t, apperr.IsNotFound(err))
}

func TestStorage_SeedIdempotent(t *testing.T) {
	st := New()
	ctx := context.Background()

	seed := []*models.ShipmentRecord{
		{ID: 5, Origin: "A", Destination: "B", Status: models.StatusPending, System: models.SystemGround},
	}
	st.Seed(seed)
	st.Seed(seed)

	all, err := st.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestStorage_ListAllSorted(t *testing.T) {
	st := New()
	st.Seed([]*models.ShipmentRecord{
		{ID: 789, Origin: "A", Destination: "B", Status: models.StatusPending, System: models.SystemSea},
		{ID: 123, Origin: "C", Destination: "D", Status: models.StatusPending, System: models.SystemGround},
		{ID: 456, Origin: "E", Destination: "F", Status: models.StatusPending, System: models.SystemAir},
	})

	all, err := st.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, uint64(123), all[0].ID)
	require.Equal(t, uint64(456), all[1].ID)
	require.Equal(t, uint64(789), all[2].ID)
}

func TestStorage_GetReturnsCopy(t *testing.T) {
	st := New()
	ctx := context.Background()

	created, err := st.Insert(ctx, &models.ShipmentRecord{Origin: "A", Destination: "B", Status: models.StatusPending, System: models.SystemGround})
	require.NoError(t, err)

	got, err := st.GetByID(ctx, created.ID)
	require.NoError(t, err)
	got.Origin = "mutated"

	again, err := st.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "A", again.Origin)
}
