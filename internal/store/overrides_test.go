package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/spendsense/internal/models"
)

func TestAppendOverrideRequiresTransactionID(t *testing.T) {
	s := newTestStore(t)
	err := s.AppendOverride(&models.Override{CategoryCode: "fuel"})
	assert.Error(t, err)
}

func TestLatestOverridePicksMostRecent(t *testing.T) {
	s := newTestStore(t)

	older := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendOverride(&models.Override{
		TransactionID: "t1", CategoryCode: "fuel", CreatedAt: older,
	}))
	require.NoError(t, s.AppendOverride(&models.Override{
		TransactionID: "t1", CategoryCode: "food_dining", CreatedAt: newer,
	}))

	latest, err := s.LatestOverride("t1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "food_dining", latest.CategoryCode)
}

func TestLatestOverrideBreaksTimestampTiesByID(t *testing.T) {
	s := newTestStore(t)

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendOverride(&models.Override{
		TransactionID: "t1", CategoryCode: "first", CreatedAt: at,
	}))
	require.NoError(t, s.AppendOverride(&models.Override{
		TransactionID: "t1", CategoryCode: "second", CreatedAt: at,
	}))

	latest, err := s.LatestOverride("t1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "second", latest.CategoryCode)
}

func TestLatestOverrideMissing(t *testing.T) {
	s := newTestStore(t)
	latest, err := s.LatestOverride("nope")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestOverridesHistoryIsAppendOnly(t *testing.T) {
	s := newTestStore(t)

	// Re-stating the same correction still appends a row.
	for i := 0; i < 3; i++ {
		require.NoError(t, s.AppendOverride(&models.Override{
			TransactionID: "t1", CategoryCode: "fuel",
		}))
	}

	history, err := s.Overrides("t1")
	require.NoError(t, err)
	assert.Len(t, history, 3)
	// Oldest first.
	assert.True(t, history[0].ID < history[2].ID)
}
