package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mycoledger/mycoledger/internal/sales"
)

const weeklyDays = 7

// DailyRevenue is the paid revenue booked on one calendar day.
type DailyRevenue struct {
	Day     time.Time       `json:"day"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
}

// WeeklyRevenue returns the last seven days of revenue, oldest first. Days
// without sales are present with zero revenue.
func WeeklyRevenue(records []sales.Record, now time.Time) []DailyRevenue {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	out := make([]DailyRevenue, weeklyDays)
	index := make(map[string]int, weeklyDays)
	for i := 0; i < weeklyDays; i++ {
		day := today.AddDate(0, 0, i-weeklyDays+1)
		out[i] = DailyRevenue{Day: day, Label: day.Format("Mon"), Revenue: decimal.Zero}
		index[day.Format(time.DateOnly)] = i
	}
	for _, rec := range records {
		if !rec.Status.CountsAsRevenue() {
			continue
		}
		i, ok := index[rec.DateCreated.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		out[i].Revenue = out[i].Revenue.Add(rec.TotalAmount)
	}
	return out
}
