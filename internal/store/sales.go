package store

import (
	"sort"
	"time"

	"buysell_back_end/internal/models"
)

type salesRow struct {
	Amount    float64
	CreatedAt time.Time
}

// aggregateSalesByDay buckets order amounts per UTC calendar day and
// returns the buckets in ascending date order.
func aggregateSalesByDay(rows []salesRow) []models.DailySales {
	buckets := make(map[string]*models.DailySales)

	for _, row := range rows {
		day := row.CreatedAt.UTC().Format("2006-01-02")
		bucket, ok := buckets[day]
		if !ok {
			bucket = &models.DailySales{Date: day}
			buckets[day] = bucket
		}
		bucket.TotalSales += row.Amount
		bucket.OrderCount++
	}

	result := make([]models.DailySales, 0, len(buckets))
	for _, bucket := range buckets {
		result = append(result, *bucket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})

	return result
}
