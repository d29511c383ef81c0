package reports_test

import (
	"math"
	"strconv"
	"testing"
	"time"

	"lifeboard/internal/domain/expense"
	"lifeboard/internal/reports"
)

func exp(name, category string, amount float64, date time.Time) expense.Expense {
	return expense.Expense{
		ID:          name + "-" + category,
		ExpenseName: name,
		ExpenseType: category,
		Amount:      amount,
		Date:        date,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestCategoryBreakdown(t *testing.T) {
	rows := []expense.Expense{
		exp("coffee", "Food", 4.5, day(2024, time.January, 3)),
		exp("groceries", "Food", 55.25, day(2024, time.January, 9)),
		exp("train", "Travel", 20, day(2024, time.January, 10)),
	}

	got := reports.CategoryBreakdown(rows)

	if got.TotalSpending != 79.75 {
		t.Fatalf("total = %v, want 79.75", got.TotalSpending)
	}

	// breakdown is a set; check membership not order
	byCat := map[string]float64{}
	for _, c := range got.CategoryBreakdown {
		byCat[c.Category] = c.Amount
	}

	if len(byCat) != 2 {
		t.Fatalf("got %d categories, want 2", len(byCat))
	}
	if byCat["Food"] != 59.75 || byCat["Travel"] != 20 {
		t.Fatalf("unexpected breakdown: %+v", byCat)
	}

	// sum of parts equals the total
	var sum float64
	for _, c := range got.CategoryBreakdown {
		sum += c.Amount
	}
	if math.Abs(sum-got.TotalSpending) > 1e-9 {
		t.Fatalf("sum(breakdown) = %v, total = %v", sum, got.TotalSpending)
	}
}

func TestCategoryBreakdownEmpty(t *testing.T) {
	got := reports.CategoryBreakdown(nil)

	if got.TotalSpending != 0 {
		t.Fatalf("total = %v, want 0", got.TotalSpending)
	}
	if len(got.CategoryBreakdown) != 0 {
		t.Fatalf("breakdown should be empty, got %+v", got.CategoryBreakdown)
	}
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		raw     string
		want    reports.Interval
		wantErr bool
	}{
		{raw: "", want: reports.IntervalMonthly},
		{raw: "daily", want: reports.IntervalDaily},
		{raw: "weekly", want: reports.IntervalWeekly},
		{raw: "monthly", want: reports.IntervalMonthly},
		{raw: "hourly", wantErr: true},
	}

	for _, tc := range tests {
		got, err := reports.ParseInterval(tc.raw)

		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseInterval(%q): expected error", tc.raw)
			}
			continue
		}

		if err != nil {
			t.Errorf("ParseInterval(%q): %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseInterval(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestSpendingTrendsMonthly(t *testing.T) {
	rows := []expense.Expense{
		exp("a", "Food", 10, day(2024, time.March, 2)),
		exp("b", "Food", 5, day(2024, time.January, 15)),
		exp("c", "Travel", 7, day(2024, time.March, 28)),
		exp("d", "Food", 1, day(2023, time.December, 31)),
	}

	got := reports.SpendingTrends(rows, reports.IntervalMonthly)

	want := []reports.TrendPoint{
		{Date: time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), Amount: 1},
		{Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), Amount: 5},
		{Date: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), Amount: 17},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSpendingTrendsDaily(t *testing.T) {
	rows := []expense.Expense{
		exp("a", "Food", 3, day(2024, time.May, 2)),
		exp("b", "Food", 4, day(2024, time.May, 2)),
		exp("c", "Food", 9, day(2024, time.May, 1)),
	}

	got := reports.SpendingTrends(rows, reports.IntervalDaily)

	want := []reports.TrendPoint{
		{Date: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), Amount: 9},
		{Date: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC).UnixMilli(), Amount: 7},
	}

	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSpendingTrendsWeekly(t *testing.T) {
	// two ISO weeks of the same year; weekly buckets carry no month or day,
	// so both points resolve to Jan 1 of the year and order by week number
	rows := []expense.Expense{
		exp("a", "Food", 2, day(2024, time.February, 6)), // ISO week 6
		exp("b", "Food", 8, day(2024, time.January, 10)), // ISO week 2
	}

	got := reports.SpendingTrends(rows, reports.IntervalWeekly)

	if len(got) != 2 {
		t.Fatalf("got %d points, want 2", len(got))
	}

	jan1 := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if got[0].Date != jan1 || got[1].Date != jan1 {
		t.Fatalf("weekly buckets should resolve to Jan 1, got %+v", got)
	}
	if got[0].Amount != 8 || got[1].Amount != 2 {
		t.Fatalf("weekly buckets out of order: %+v", got)
	}
}

func TestTopAndLowestExpenses(t *testing.T) {
	rows := []expense.Expense{
		exp("ten", "Other", 10, day(2024, time.June, 1)),
		exp("fifty", "Other", 50, day(2024, time.June, 2)),
		exp("thirty", "Other", 30, day(2024, time.June, 3)),
		exp("five", "Other", 5, day(2024, time.June, 4)),
	}

	top := reports.TopExpenses(rows, 3)

	if len(top) != 3 {
		t.Fatalf("top: got %d items, want 3", len(top))
	}
	for i, want := range []float64{50, 30, 10} {
		if top[i].Amount != want {
			t.Errorf("top[%d].Amount = %v, want %v", i, top[i].Amount, want)
		}
	}
	if top[0].Item != "fifty" {
		t.Errorf("top[0].Item = %q, want %q", top[0].Item, "fifty")
	}

	low := reports.LowestExpenses(rows, 3)

	for i, want := range []float64{5, 10, 30} {
		if low[i].Amount != want {
			t.Errorf("low[%d].Amount = %v, want %v", i, low[i].Amount, want)
		}
	}
}

func TestRankDefaultLimitAndTies(t *testing.T) {
	older := day(2024, time.June, 1)
	newer := day(2024, time.June, 9)

	rows := []expense.Expense{
		exp("a", "Other", 10, older),
		exp("b", "Other", 10, newer),
	}
	for i := 0; i < 6; i++ {
		rows = append(rows, exp("filler"+strconv.Itoa(i), "Other", 1, older))
	}

	top := reports.TopExpenses(rows, 0)

	if len(top) != 5 {
		t.Fatalf("default limit: got %d items, want 5", len(top))
	}

	// equal amounts: newer date wins
	if top[0].Item != "b" || top[1].Item != "a" {
		t.Fatalf("tie order wrong: %+v", top[:2])
	}
}

func TestDashboardReport(t *testing.T) {
	rows := []expense.Expense{
		exp("a", "Food", 40, day(2024, time.July, 1)),
		exp("b", "Travel", 30, day(2024, time.July, 2)),
		exp("c", "Retail", 20, day(2024, time.July, 3)),
		exp("d", "Utilities", 5, day(2024, time.July, 4)),
		exp("e", "Electronic", 3, day(2024, time.July, 5)),
		exp("f", "Other", 2, day(2024, time.July, 6)),
	}

	got := reports.Dashboard(rows)

	if len(got.BarChartData) != 5 {
		t.Fatalf("bar chart: got %d entries, want 5", len(got.BarChartData))
	}
	if got.BarChartData[0].Category != "Food" || got.BarChartData[0].Amount != 40 {
		t.Fatalf("bar chart top = %+v", got.BarChartData[0])
	}

	// smallest category fell off both top-5 lists
	for _, c := range got.BarChartData {
		if c.Category == "Other" {
			t.Fatalf("Other should be truncated from bar chart: %+v", got.BarChartData)
		}
	}

	if len(got.PieChartData) != 5 {
		t.Fatalf("pie chart: got %d entries, want 5", len(got.PieChartData))
	}
	if got.PieChartData[0].Category != "Food" || got.PieChartData[0].Percentage != "40.00" {
		t.Fatalf("pie chart top = %+v", got.PieChartData[0])
	}

	var pctSum float64
	for _, p := range got.PieChartData {
		v, err := strconv.ParseFloat(p.Percentage, 64)
		if err != nil {
			t.Fatalf("percentage %q does not parse: %v", p.Percentage, err)
		}
		pctSum += v
	}
	// five of six categories kept; the dropped one holds 2%
	if math.Abs(pctSum-98) > 0.05 {
		t.Fatalf("pie percentages sum to %v, want ~98", pctSum)
	}
}

func TestDashboardPercentagesCoverAll(t *testing.T) {
	rows := []expense.Expense{
		exp("a", "Food", 75, day(2024, time.July, 1)),
		exp("b", "Travel", 25, day(2024, time.July, 2)),
	}

	got := reports.Dashboard(rows)

	var pctSum float64
	for _, p := range got.PieChartData {
		v, _ := strconv.ParseFloat(p.Percentage, 64)
		pctSum += v
	}
	if math.Abs(pctSum-100) > 0.01 {
		t.Fatalf("pie percentages sum to %v, want 100", pctSum)
	}
}

func TestDashboardEmpty(t *testing.T) {
	got := reports.Dashboard(nil)

	if len(got.BarChartData) != 0 || len(got.PieChartData) != 0 {
		t.Fatalf("empty input should yield empty report, got %+v", got)
	}
}

func TestDashboardZeroTotal(t *testing.T) {
	rows := []expense.Expense{
		exp("free", "Other", 0, day(2024, time.July, 1)),
	}

	got := reports.Dashboard(rows)

	// no spendable total means no shares; must not divide by zero
	if len(got.PieChartData) != 0 {
		t.Fatalf("zero total should yield empty pie chart, got %+v", got.PieChartData)
	}
}
