package store

import (
	"testing"
	"time"

	"buysell_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateSalesByDay(t *testing.T) {
	day := func(value string) time.Time {
		ts, err := time.Parse(time.RFC3339, value)
		require.NoError(t, err)
		return ts
	}

	t.Run("no rows", func(t *testing.T) {
		assert.Empty(t, aggregateSalesByDay(nil))
	})

	t.Run("orders on the same day share a bucket", func(t *testing.T) {
		got := aggregateSalesByDay([]salesRow{
			{Amount: 10, CreatedAt: day("2026-03-01T08:00:00Z")},
			{Amount: 15, CreatedAt: day("2026-03-01T21:30:00Z")},
		})

		assert.Equal(t, []models.DailySales{
			{Date: "2026-03-01", TotalSales: 25, OrderCount: 2},
		}, got)
	})

	t.Run("buckets come back in ascending date order", func(t *testing.T) {
		got := aggregateSalesByDay([]salesRow{
			{Amount: 5, CreatedAt: day("2026-03-03T12:00:00Z")},
			{Amount: 7, CreatedAt: day("2026-03-01T12:00:00Z")},
			{Amount: 9, CreatedAt: day("2026-03-02T12:00:00Z")},
		})

		require.Len(t, got, 3)
		assert.Equal(t, "2026-03-01", got[0].Date)
		assert.Equal(t, "2026-03-02", got[1].Date)
		assert.Equal(t, "2026-03-03", got[2].Date)
	})

	t.Run("bucketing is done in UTC", func(t *testing.T) {
		loc := time.FixedZone("UTC+5", 5*3600)
		// 02:00 local on March 2nd is still March 1st in UTC
		got := aggregateSalesByDay([]salesRow{
			{Amount: 12, CreatedAt: time.Date(2026, 3, 2, 2, 0, 0, 0, loc)},
		})

		require.Len(t, got, 1)
		assert.Equal(t, "2026-03-01", got[0].Date)
	})
}
