package crm

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mycoledger/mycoledger/internal/sales"
)

// ComputeStats derives a customer's spend and history from the sales ledger.
// Only PAID and DELIVERED records count toward spend; every record appears
// in the history, newest first. The favourite product is the one bought in
// the largest quantity, ties broken by label.
func ComputeStats(customerID string, ledger []sales.Record) Stats {
	st := Stats{CustomerID: customerID, TotalSpent: decimal.Zero, History: []Purchase{}}
	units := map[string]int{}
	var last time.Time
	for _, rec := range ledger {
		if rec.CustomerID != customerID {
			continue
		}
		st.OrderCount++
		if rec.Status.CountsAsRevenue() {
			st.TotalSpent = st.TotalSpent.Add(rec.TotalAmount)
		}
		if rec.DateCreated.After(last) {
			last = rec.DateCreated
		}
		for _, it := range rec.Items {
			units[productName(it)] += it.Quantity
		}
		st.History = append(st.History, Purchase{
			SaleID:      rec.ID,
			InvoiceID:   rec.InvoiceID,
			DateCreated: rec.DateCreated,
			TotalAmount: rec.TotalAmount,
			Status:      string(rec.Status),
		})
	}
	sort.SliceStable(st.History, func(i, j int) bool {
		return st.History[i].DateCreated.After(st.History[j].DateCreated)
	})
	best := 0
	for name, qty := range units {
		if qty > best || (qty == best && name < st.FavoriteProduct) {
			best, st.FavoriteProduct = qty, name
		}
	}
	if !last.IsZero() {
		st.LastOrderDate = &last
	}
	st.IsVIP = st.TotalSpent.GreaterThan(VIPThreshold)
	return st
}

func productName(it sales.LineItem) string {
	switch {
	case it.ProductLabel == "":
		return it.ProductID
	case it.Packaging == "":
		return it.ProductLabel
	default:
		return it.ProductLabel + " (" + it.Packaging + ")"
	}
}
