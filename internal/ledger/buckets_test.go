package ledger

import (
	"testing"

	"github.com/shopspring/decimal"

	"housebudget/internal/core"
)

func entry(category, amount string) core.Entry {
	return core.Entry{BankName: "b", Month: "2025-01", Receiver: "r", Category: category, Amount: dec(amount)}
}

func TestCategoryBucketsConsolidation(t *testing.T) {
	entries := []core.Entry{
		entry("Rent", "-800"),
		entry("Food", "-150"),
		entry("Food", "-50"),
		entry("Stamps", "-1"),
		entry("Gum", "-0.5"),
	}
	// grand total 1001.5; 1% cut = 10.015
	got := CategoryBuckets(entries, 0.01)
	want := []core.Bucket{
		{Category: "Rent", Total: dec("800")},
		{Category: "Food", Total: dec("200")},
		{Category: "Other", Total: dec("1.5")},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i].Category != want[i].Category || !got[i].Total.Equal(want[i].Total) {
			t.Fatalf("bucket %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCategoryBucketsOtherOmittedWhenEmpty(t *testing.T) {
	got := CategoryBuckets([]core.Entry{entry("A", "-10"), entry("B", "-20")}, 0.01)
	for _, b := range got {
		if b.Category == core.OtherCategory {
			t.Fatalf("unexpected Other bucket: %v", got)
		}
	}
}

func TestCategoryBucketsRealOtherCategoryIsMerged(t *testing.T) {
	got := CategoryBuckets([]core.Entry{
		entry("Other", "-50"),
		entry("Rent", "-100"),
		entry("Tiny", "-0.1"),
	}, 0.01)
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %v", got)
	}
	if got[1].Category != "Other" || !got[1].Total.Equal(dec("50.1")) {
		t.Fatalf("unexpected Other bucket: %+v", got[1])
	}
}

func TestCategoryBucketsEmptyAndZero(t *testing.T) {
	if got := CategoryBuckets(nil, 0.01); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", got)
	}
	if got := CategoryBuckets([]core.Entry{entry("A", "0"), entry("B", "0")}, 0.01); len(got) != 0 {
		t.Fatalf("zero grand total must yield no buckets, got %v", got)
	}
}

func TestCategoryBucketsConservation(t *testing.T) {
	entries := []core.Entry{
		entry("A", "-33.33"), entry("B", "12.01"), entry("C", "-0.02"),
		entry("D", "-7"), entry("A", "-0.67"), entry("E", "0.01"),
	}
	grand := decimal.Zero
	for _, e := range entries {
		grand = grand.Add(e.Amount.Abs())
	}
	for _, th := range []float64{0, 0.001, 0.01, 0.1, 0.5, 1} {
		sum := decimal.Zero
		for _, b := range CategoryBuckets(entries, th) {
			sum = sum.Add(b.Total)
		}
		if !sum.Equal(grand) {
			t.Fatalf("threshold %v: bucket sum %s != grand total %s", th, sum, grand)
		}
	}
}

func TestCategoryBucketsThresholdMonotonic(t *testing.T) {
	entries := []core.Entry{
		entry("A", "-500"), entry("B", "-120"), entry("C", "-60"),
		entry("D", "-9"), entry("E", "-3"), entry("F", "-1"),
	}
	named := func(bs []core.Bucket) int {
		n := 0
		for _, b := range bs {
			if b.Category != core.OtherCategory {
				n++
			}
		}
		return n
	}
	prev := named(CategoryBuckets(entries, 0))
	for _, th := range []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.2, 0.5, 0.9, 1.5} {
		n := named(CategoryBuckets(entries, th))
		if n > prev {
			t.Fatalf("threshold %v produced %d named buckets, previous %d", th, n, prev)
		}
		prev = n
	}
}

func TestCategoryBucketsDeterministicTies(t *testing.T) {
	entries := []core.Entry{entry("Z", "-10"), entry("A", "-10"), entry("M", "-10")}
	for i := 0; i < 20; i++ {
		got := CategoryBuckets(entries, 0.01)
		if got[0].Category != "Z" || got[1].Category != "A" || got[2].Category != "M" {
			t.Fatalf("ties must keep first-appearance order, got %v", got)
		}
	}
}

func TestSavingsEntrySign(t *testing.T) {
	overspent := SavingsEntry("2025-01", core.MonthlySummary{Net: dec("-120")})
	assertDecimal(t, "overspent savings amount", overspent.Amount, "120")
	if overspent.Category != "Savings" || overspent.Receiver != "Myself" || overspent.BankName != "Generated" || overspent.Month != "2025-01" {
		t.Fatalf("unexpected savings entry: %+v", overspent)
	}

	saved := SavingsEntry("2025-02", core.MonthlySummary{Net: dec("80")})
	assertDecimal(t, "saved savings amount", saved.Amount, "-80")

	buckets := CategoryBuckets([]core.Entry{entry("Food", "-20"), saved}, 0.01)
	var savings decimal.Decimal
	for _, b := range buckets {
		if b.Category == core.SavingsCategory {
			savings = b.Total
		}
	}
	assertDecimal(t, "savings bucket", savings, "80")

	buckets = CategoryBuckets([]core.Entry{entry("Food", "-20"), overspent}, 0.01)
	if buckets[0].Category != core.SavingsCategory || !buckets[0].Total.Equal(dec("120")) {
		t.Fatalf("overspent savings bucket: %+v", buckets)
	}
}

func TestExpenseBreakdown(t *testing.T) {
	cs := Classify([]core.Transaction{
		tx(1, "ING", "Employer", "2025-05", "Salary", "1000"),
		tx(2, "ING", "Landlord", "2025-05", "Rent", "-600"),
		tx(3, "ING", "Market", "2025-05", "Food", "-200"),
		tx(4, "ING", "Kiosk", "2025-05", "Snacks", "-1"),
		tx(5, "ING", "Broker", "2025-05", "Move", "-300"),
		tx(6, "Broker", "ING", "2025-05", "Move", "300"),
	})
	got := ExpenseBreakdown(cs, "2025-05", 0.01)
	// net = 1000 - 801 = 199; savings entry -199 contributes 199.
	want := map[string]string{"Rent": "600", "Food": "200", "Savings": "199", "Other": "1"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for _, b := range got {
		w, ok := want[b.Category]
		if !ok || !b.Total.Equal(dec(w)) {
			t.Fatalf("unexpected bucket %+v", b)
		}
	}
	if got[0].Category != "Rent" || got[1].Category != "Food" || got[2].Category != "Savings" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestExpenseBreakdownWithoutExpenses(t *testing.T) {
	cs := Classify([]core.Transaction{tx(1, "ING", "Employer", "2025-05", "Salary", "1000")})
	if got := ExpenseBreakdown(cs, "2025-05", 0.01); len(got) != 0 {
		t.Fatalf("expected no breakdown, got %v", got)
	}
}

func TestIncomeBreakdown(t *testing.T) {
	cs := Classify([]core.Transaction{
		tx(1, "ING", "Employer", "2025-05", "Salary", "1000"),
		tx(2, "ING", "Bank", "2025-05", "Interest", "0.5"),
		tx(3, "ING", "Market", "2025-05", "Food", "-20"),
		tx(4, "ING", "Nobody", "2025-05", "Zero", "0"),
	})
	got := IncomeBreakdown(cs, "2025-05")
	if len(got) != 2 || got[0].Category != "Salary" || got[1].Category != "Interest" {
		t.Fatalf("unexpected income breakdown: %v", got)
	}
}
