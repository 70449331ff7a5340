package query

import (
	"testing"
	"time"
)

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func mustParse(t *testing.T, p Params) Query {
	t.Helper()
	q, errs := Parse(p, testNow)
	if len(errs) > 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	return q
}

func hasError(errs []FieldError, message string) bool {
	for _, e := range errs {
		if e.Message == message {
			return true
		}
	}
	return false
}

func TestParseDefaults(t *testing.T) {
	q := mustParse(t, Params{})

	if q.Sort != SortCreatedAt {
		t.Fatalf("default sort = %q, want %q", q.Sort, SortCreatedAt)
	}
	if q.Order != OrderDesc {
		t.Fatalf("default order = %q, want %q", q.Order, OrderDesc)
	}
	if q.Page != 1 || q.Limit != 10 {
		t.Fatalf("default page/limit = %d/%d, want 1/10", q.Page, q.Limit)
	}
	if q.YearCeiling != 2027 {
		t.Fatalf("year ceiling = %d, want 2027", q.YearCeiling)
	}
	if q.MinPrice != nil || q.MaxPrice != nil || q.MinYear != nil || q.MaxYear != nil {
		t.Fatal("absent bounds should stay nil")
	}
}

func TestParseInvertedPriceRange(t *testing.T) {
	_, errs := Parse(Params{MinPrice: "5000", MaxPrice: "1000"}, testNow)
	if !hasError(errs, "Invalid price range") {
		t.Fatalf("expected price range error, got %v", errs)
	}
}

func TestParseInvertedYearRange(t *testing.T) {
	_, errs := Parse(Params{MinYear: "2020", MaxYear: "2010"}, testNow)
	if !hasError(errs, "Invalid year range") {
		t.Fatalf("expected year range error, got %v", errs)
	}
}

func TestParseYearOutOfWindow(t *testing.T) {
	_, errs := Parse(Params{MinYear: "1850"}, testNow)
	if !hasError(errs, "Invalid minYear") {
		t.Fatalf("expected minYear error, got %v", errs)
	}

	_, errs = Parse(Params{MaxYear: "2099"}, testNow)
	if !hasError(errs, "Invalid maxYear") {
		t.Fatalf("expected maxYear error, got %v", errs)
	}

	// currentYear+1 is inside the window.
	mustParse(t, Params{MaxYear: "2027"})
}

func TestParseUnknownSortRejectedNotDefaulted(t *testing.T) {
	_, errs := Parse(Params{Sort: "bogus"}, testNow)
	if !hasError(errs, "Invalid sort field") {
		t.Fatalf("expected sort field error, got %v", errs)
	}

	_, errs = Parse(Params{Order: "sideways"}, testNow)
	if !hasError(errs, "Invalid sort order") {
		t.Fatalf("expected sort order error, got %v", errs)
	}
}

func TestParseAccumulatesAllErrors(t *testing.T) {
	_, errs := Parse(Params{
		MinPrice: "9000",
		MaxPrice: "100",
		MinYear:  "2025",
		MaxYear:  "2000",
		Sort:     "bogus",
		Order:    "sideways",
		FuelType: "plutonium",
	}, testNow)

	for _, want := range []string{
		"Invalid price range",
		"Invalid year range",
		"Invalid sort field",
		"Invalid sort order",
		"Invalid fuel type",
	} {
		if !hasError(errs, want) {
			t.Fatalf("missing %q in %v", want, errs)
		}
	}
}

func TestParseNonNumericBound(t *testing.T) {
	_, errs := Parse(Params{MinPrice: "cheap"}, testNow)
	if !hasError(errs, "Invalid minPrice") {
		t.Fatalf("expected minPrice error, got %v", errs)
	}
}

func TestParseCategoricalNormalization(t *testing.T) {
	q := mustParse(t, Params{FuelType: "  Diesel ", Transmission: "AUTOMATIC"})
	if q.FuelType != "diesel" {
		t.Fatalf("fuel = %q, want %q", q.FuelType, "diesel")
	}
	if q.Transmission != "automatic" {
		t.Fatalf("transmission = %q, want %q", q.Transmission, "automatic")
	}

	// Blank and whitespace-only values mean "not specified".
	q = mustParse(t, Params{CarClass: "   "})
	if q.CarClass != "" {
		t.Fatalf("blank class should be absent, got %q", q.CarClass)
	}
}

func TestParsePageAndLimitClamped(t *testing.T) {
	q := mustParse(t, Params{Page: "0", Limit: "9999"})
	if q.Page != 1 {
		t.Fatalf("page = %d, want 1", q.Page)
	}
	if q.Limit != 100 {
		t.Fatalf("limit = %d, want 100", q.Limit)
	}
}

func TestFiltersOmitAbsentValues(t *testing.T) {
	q := mustParse(t, Params{Text: "Toyota", MinPrice: "1000", CarClass: ""})
	f := q.Filters()

	if f["q"] != "Toyota" {
		t.Fatalf("filters q = %v, want Toyota", f["q"])
	}
	if f["minPrice"] != int64(1000) {
		t.Fatalf("filters minPrice = %v, want 1000", f["minPrice"])
	}
	if _, ok := f["class"]; ok {
		t.Fatal("absent class must not be echoed")
	}
	if _, ok := f["maxPrice"]; ok {
		t.Fatal("absent maxPrice must not be echoed")
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{101, 10, 11},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.limit); got != tc.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
