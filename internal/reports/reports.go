// Package reports holds the expense aggregation math: category breakdowns,
// time-bucketed trends, top/bottom rankings and the dashboard report. It is
// pure; callers fetch the rows and hand them in.
package reports

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"lifeboard/internal/domain/expense"
)

type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type Breakdown struct {
	TotalSpending     float64          `json:"totalSpending"`
	CategoryBreakdown []CategoryAmount `json:"categoryBreakdown"`
}

// CategoryTotals groups expenses by category and sums amounts. Order is
// first-seen, so two calls over the same rows agree; callers must not rely
// on any particular category order beyond that.
func CategoryTotals(expenses []expense.Expense) []CategoryAmount {
	idx := make(map[string]int, len(expenses))
	out := make([]CategoryAmount, 0, len(expenses))

	for _, e := range expenses {
		i, ok := idx[e.ExpenseType]

		if !ok {
			idx[e.ExpenseType] = len(out)
			out = append(out, CategoryAmount{Category: e.ExpenseType, Amount: e.Amount})
			continue
		}

		out[i].Amount += e.Amount
	}

	return out
}

// CategoryBreakdown is CategoryTotals plus the grand total, the shape the
// analysis endpoint returns.
func CategoryBreakdown(expenses []expense.Expense) Breakdown {
	totals := CategoryTotals(expenses)

	var total float64
	for _, c := range totals {
		total += c.Amount
	}

	return Breakdown{
		TotalSpending:     total,
		CategoryBreakdown: totals,
	}
}

// Interval selects the trend bucket size.
type Interval string

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

var ErrUnknownInterval = errors.New("unknown interval")

// ParseInterval accepts the query-string spelling; empty means monthly.
func ParseInterval(raw string) (Interval, error) {
	switch raw {
	case "":
		return IntervalMonthly, nil
	case string(IntervalDaily), string(IntervalWeekly), string(IntervalMonthly):
		return Interval(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownInterval, raw)
	}
}

type TrendPoint struct {
	Date   int64   `json:"date"` // bucket start, epoch milliseconds
	Amount float64 `json:"amount"`
}

// bucket is the grouping key. Fields a granularity does not use stay zero:
// weekly buckets have no month/day, monthly buckets have no day/week.
type bucket struct {
	year  int
	month int // 1-12, 0 when absent
	day   int // 0 when absent
	week  int // ISO week, 0 when absent
}

func bucketFor(t time.Time, interval Interval) bucket {
	t = t.UTC()

	switch interval {
	case IntervalDaily:
		return bucket{year: t.Year(), month: int(t.Month()), day: t.Day()}
	case IntervalWeekly:
		y, w := t.ISOWeek()
		return bucket{year: y, week: w}
	default:
		return bucket{year: t.Year(), month: int(t.Month())}
	}
}

// start maps a bucket to its emitted timestamp. Absent month means January
// and absent day means the 1st, so a weekly bucket resolves to Jan 1 of its
// year and a monthly bucket to the first of the month.
func (b bucket) start() int64 {
	month := time.Month(b.month)
	if b.month == 0 {
		month = time.January
	}

	day := b.day
	if day == 0 {
		day = 1
	}

	return time.Date(b.year, month, day, 0, 0, 0, 0, time.UTC).UnixMilli()
}

// SpendingTrends sums amounts per time bucket, ascending by
// (year, month, day) with absent fields sorting first and the week number
// breaking remaining ties.
func SpendingTrends(expenses []expense.Expense, interval Interval) []TrendPoint {
	sums := make(map[bucket]float64)

	for _, e := range expenses {
		sums[bucketFor(e.Date, interval)] += e.Amount
	}

	keys := make([]bucket, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.year != b.year {
			return a.year < b.year
		}
		if a.month != b.month {
			return a.month < b.month
		}
		if a.day != b.day {
			return a.day < b.day
		}
		return a.week < b.week
	})

	out := make([]TrendPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, TrendPoint{Date: k.start(), Amount: sums[k]})
	}

	return out
}

type RankedExpense struct {
	Item   string  `json:"item"`
	Amount float64 `json:"amount"`
}

const DefaultRankLimit = 5

// TopExpenses returns the limit highest-amount expenses, projected to
// {item, amount}. Ties break on newer date first, then id, so the ranking
// is deterministic.
func TopExpenses(expenses []expense.Expense, limit int) []RankedExpense {
	return rank(expenses, limit, func(a, b expense.Expense) bool {
		return a.Amount > b.Amount
	})
}

// LowestExpenses is the ascending counterpart of TopExpenses.
func LowestExpenses(expenses []expense.Expense, limit int) []RankedExpense {
	return rank(expenses, limit, func(a, b expense.Expense) bool {
		return a.Amount < b.Amount
	})
}

func rank(expenses []expense.Expense, limit int, less func(a, b expense.Expense) bool) []RankedExpense {
	if limit <= 0 {
		limit = DefaultRankLimit
	}

	sorted := make([]expense.Expense, len(expenses))
	copy(sorted, expenses)

	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Amount != b.Amount {
			return less(a, b)
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.ID < b.ID
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]RankedExpense, 0, len(sorted))
	for _, e := range sorted {
		out = append(out, RankedExpense{Item: e.ExpenseName, Amount: e.Amount})
	}

	return out
}

type PieSlice struct {
	Category   string `json:"category"`
	Percentage string `json:"percentage"` // "12.34", percent of total
}

type DashboardReport struct {
	BarChartData []CategoryAmount `json:"barChartData"`
	PieChartData []PieSlice       `json:"pieChartData"`
}

// Dashboard builds the expense report view: top-5 categories by absolute
// amount (2dp) and top-5 by share of total spending. Both lists are empty
// when there is nothing to report; a zero total never divides.
func Dashboard(expenses []expense.Expense) DashboardReport {
	totals := CategoryTotals(expenses)

	var total float64
	for _, c := range totals {
		total += c.Amount
	}

	report := DashboardReport{
		BarChartData: []CategoryAmount{},
		PieChartData: []PieSlice{},
	}

	if len(totals) == 0 || total == 0 {
		return report
	}

	bars := make([]CategoryAmount, len(totals))
	for i, c := range totals {
		bars[i] = CategoryAmount{Category: c.Category, Amount: round2(c.Amount)}
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Amount > bars[j].Amount
	})

	if len(bars) > 5 {
		bars = bars[:5]
	}
	report.BarChartData = bars

	type share struct {
		category string
		pct      float64
	}

	shares := make([]share, len(totals))
	for i, c := range totals {
		shares[i] = share{category: c.Category, pct: c.Amount / total * 100}
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].pct > shares[j].pct
	})

	if len(shares) > 5 {
		shares = shares[:5]
	}

	for _, s := range shares {
		report.PieChartData = append(report.PieChartData, PieSlice{
			Category:   s.category,
			Percentage: fmt.Sprintf("%.2f", s.pct),
		})
	}

	return report
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
