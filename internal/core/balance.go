package core

import "time"

// SumBalance computes the signed cent sum of a sequence of transactions:
// payments add, withdrawals subtract. The sum is commutative, so input
// ordering never affects the result. An empty sequence yields 0.
func SumBalance(transactions []Transaction) int64 {
	var total int64
	for _, t := range transactions {
		total += t.Signed()
	}
	return total
}

// MonthRange returns the inclusive [start, end] UTC instants covering the
// given calendar month: first-of-month midnight through the last second of
// the month's final day.
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}
