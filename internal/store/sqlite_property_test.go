package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "strategies.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func condor(name string) *models.OptionStrategy {
	return &models.OptionStrategy{
		Name:       name,
		Underlying: "spy",
		Legs: []models.StrategyLeg{
			{Type: models.OptionTypePut, Direction: models.DirectionLong, Strike: 85, Premium: 1, Quantity: 1},
			{Type: models.OptionTypePut, Direction: models.DirectionShort, Strike: 90, Premium: 2.5, Quantity: 1},
			{Type: models.OptionTypeCall, Direction: models.DirectionShort, Strike: 110, Premium: 2.5, Quantity: 1},
			{Type: models.OptionTypeCall, Direction: models.DirectionLong, Strike: 115, Premium: 1, Quantity: 1},
		},
	}
}

func TestSaveStrategy_AssignsIDAndTimestamps(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	st := condor("ic")
	require.NoError(t, store.SaveStrategy(ctx, st))
	_, err := uuid.Parse(st.ID)
	assert.NoError(t, err)
	assert.Equal(t, "SPY", st.Underlying)
	assert.WithinDuration(t, time.Now(), st.CreatedAt, time.Minute)

	byID, err := store.GetStrategy(ctx, st.ID)
	require.NoError(t, err)
	byName, err := store.GetStrategy(ctx, "ic")
	require.NoError(t, err)
	assert.Equal(t, byID, byName)
	assert.Equal(t, st.Legs, byID.Legs)
}

func TestSaveStrategy_ReplacesByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := condor("ic")
	require.NoError(t, store.SaveStrategy(ctx, first))

	second := condor("ic")
	second.Description = "wider wings"
	second.Legs[0].Strike = 80
	require.NoError(t, store.SaveStrategy(ctx, second))
	assert.Equal(t, first.ID, second.ID, "the existing ID is kept")

	got, err := store.GetStrategy(ctx, "ic")
	require.NoError(t, err)
	assert.Equal(t, "wider wings", got.Description)
	assert.Equal(t, 80.0, got.Legs[0].Strike)

	all, err := store.ListStrategies(ctx, StrategyFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveStrategy_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveStrategy(ctx, condor("  ")), apperrors.ErrInvalidInput)

	empty := condor("empty")
	empty.Legs = nil
	assert.ErrorIs(t, store.SaveStrategy(ctx, empty), apperrors.ErrInvalidInput)
}

func TestListAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, store.SaveStrategy(ctx, condor(name)))
	}
	qqq := condor("q")
	qqq.Underlying = "QQQ"
	require.NoError(t, store.SaveStrategy(ctx, qqq))

	all, err := store.ListStrategies(ctx, StrategyFilter{})
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"a", "b", "c", "q"}, names)

	spy, err := store.ListStrategies(ctx, StrategyFilter{Underlying: "spy", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, spy, 2)

	require.NoError(t, store.DeleteStrategy(ctx, "b"))
	require.NoError(t, store.DeleteStrategy(ctx, qqq.ID))
	assert.ErrorIs(t, store.DeleteStrategy(ctx, "b"), apperrors.ErrStrategyNotFound)

	_, err = store.GetStrategy(ctx, "b")
	assert.ErrorIs(t, err, apperrors.ErrStrategyNotFound)
}

// Property 12: Strategy round-trip consistency
//
// For any valid strategy, saving it and reading it back by ID yields the same
// name, underlying and legs.
func TestProperty_StrategyRoundTripConsistency(t *testing.T) {
	store := newTestStore(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("save then get returns equivalent strategy", prop.ForAll(
		func(n int, strikes, premiums []float64, qtys []int, shortMask int) bool {
			ctx := context.Background()
			st := &models.OptionStrategy{Name: fmt.Sprintf("s-%d-%d", n, time.Now().UnixNano())}
			for i := range strikes {
				leg := models.StrategyLeg{
					Type:      models.OptionTypeCall,
					Direction: models.DirectionLong,
					Strike:    strikes[i],
					Premium:   premiums[i],
					Quantity:  qtys[i],
				}
				if i%2 == 1 {
					leg.Type = models.OptionTypePut
				}
				if shortMask&(1<<i) != 0 {
					leg.Direction = models.DirectionShort
				}
				st.Legs = append(st.Legs, leg)
			}

			if err := store.SaveStrategy(ctx, st); err != nil {
				t.Logf("save failed: %v", err)
				return false
			}
			got, err := store.GetStrategy(ctx, st.ID)
			if err != nil {
				t.Logf("get failed: %v", err)
				return false
			}
			if got.Name != st.Name || len(got.Legs) != len(st.Legs) {
				return false
			}
			for i := range st.Legs {
				if got.Legs[i] != st.Legs[i] {
					t.Logf("leg %d: got %+v, want %+v", i, got.Legs[i], st.Legs[i])
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 1000),
		gen.SliceOfN(3, gen.Float64Range(1, 50000)),
		gen.SliceOfN(3, gen.Float64Range(0, 5000)),
		gen.SliceOfN(3, gen.IntRange(1, 100)),
		gen.IntRange(0, 7),
	))

	properties.TestingRun(t)
}
