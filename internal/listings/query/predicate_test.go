package query

import (
	"strings"
	"testing"
)

func TestBuildAlwaysConstrainsPriceAndYear(t *testing.T) {
	q := mustParse(t, Params{})
	sql := q.Build()

	if !strings.Contains(sql.Where, "price >= $1") {
		t.Fatalf("where missing price floor: %s", sql.Where)
	}
	if !strings.Contains(sql.Where, "year >= $2") || !strings.Contains(sql.Where, "year <= $3") {
		t.Fatalf("where missing year window: %s", sql.Where)
	}
	if sql.Args[0] != int64(0) {
		t.Fatalf("default price floor = %v, want 0", sql.Args[0])
	}
	if sql.Args[1] != MinYear || sql.Args[2] != 2027 {
		t.Fatalf("default year window = %v..%v, want %d..2027", sql.Args[1], sql.Args[2], MinYear)
	}

	// No upper price bound unless the caller supplied one.
	if strings.Contains(sql.Where, "price <=") {
		t.Fatalf("unexpected price ceiling: %s", sql.Where)
	}
}

func TestBuildSuppliedBounds(t *testing.T) {
	q := mustParse(t, Params{MinPrice: "1000", MaxPrice: "5000", MinYear: "2010", MaxYear: "2020"})
	sql := q.Build()

	if !strings.Contains(sql.Where, "price <= $2") {
		t.Fatalf("where missing price ceiling: %s", sql.Where)
	}
	want := []interface{}{int64(1000), int64(5000), 2010, 2020}
	for i, v := range want {
		if sql.Args[i] != v {
			t.Fatalf("args[%d] = %v, want %v", i, sql.Args[i], v)
		}
	}
}

func TestBuildCategoricalFilters(t *testing.T) {
	q := mustParse(t, Params{FuelType: "Diesel", Transmission: "manual", CarClass: "suv"})
	sql := q.Build()

	for _, fragment := range []string{
		"LOWER(fuel_type) =",
		"LOWER(transmission) =",
		"LOWER(car_class) =",
	} {
		if !strings.Contains(sql.Where, fragment) {
			t.Fatalf("where missing %q: %s", fragment, sql.Where)
		}
	}
	joined := ""
	for _, a := range sql.Args {
		if s, ok := a.(string); ok {
			joined += s + " "
		}
	}
	if !strings.Contains(joined, "diesel") {
		t.Fatalf("categorical args not lowercased: %v", sql.Args)
	}
}

func TestBuildTextMatchesThreeColumns(t *testing.T) {
	q := mustParse(t, Params{Text: "Toyota"})
	sql := q.Build()

	if !strings.Contains(sql.Where, "make ILIKE") ||
		!strings.Contains(sql.Where, "model ILIKE") ||
		!strings.Contains(sql.Where, "description ILIKE") {
		t.Fatalf("text predicate incomplete: %s", sql.Where)
	}
	if sql.Args[len(sql.Args)-1] != "%Toyota%" {
		t.Fatalf("text arg = %v, want %%Toyota%%", sql.Args[len(sql.Args)-1])
	}
}

func TestBuildEscapesLikeMetacharacters(t *testing.T) {
	q := mustParse(t, Params{Text: "100%_sale"})
	sql := q.Build()

	arg := sql.Args[len(sql.Args)-1].(string)
	if arg != `%100\%\_sale%` {
		t.Fatalf("escaped text arg = %q", arg)
	}
}

func TestBuildRelevanceOrdersByTier(t *testing.T) {
	q := mustParse(t, Params{Text: "Toyota", Sort: SortRelevance})
	sql := q.Build()

	if !strings.Contains(sql.OrderBy, "CASE") {
		t.Fatalf("relevance order missing tier case: %s", sql.OrderBy)
	}
	if !strings.Contains(sql.OrderBy, "THEN 1") || !strings.Contains(sql.OrderBy, "ELSE 4") {
		t.Fatalf("tier ranking incomplete: %s", sql.OrderBy)
	}
	if !strings.HasSuffix(sql.OrderBy, "created_at DESC") {
		t.Fatalf("relevance tie-break missing: %s", sql.OrderBy)
	}

	// Exact, prefix and substring terms carried by the CASE placeholders.
	if len(sql.SortArgs) != 3 {
		t.Fatalf("sort args = %v, want 3 values", sql.SortArgs)
	}
	if sql.SortArgs[0] != "toyota" || sql.SortArgs[1] != "Toyota%" || sql.SortArgs[2] != "%Toyota%" {
		t.Fatalf("relevance args = %v", sql.SortArgs)
	}
	if sql.NextArg() != len(sql.Args)+4 {
		t.Fatalf("next arg index = %d", sql.NextArg())
	}
}

func TestBuildRelevanceWithoutTermFallsBack(t *testing.T) {
	q := mustParse(t, Params{Sort: SortRelevance})
	sql := q.Build()

	if sql.OrderBy != "created_at DESC" {
		t.Fatalf("fallback order = %q, want created_at DESC", sql.OrderBy)
	}
}

func TestBuildFieldSorts(t *testing.T) {
	cases := []struct {
		sort, order, want string
	}{
		{SortPrice, OrderAsc, "price ASC"},
		{SortYear, OrderDesc, "year DESC"},
		{SortCreatedAt, "", "created_at DESC"},
		{"", "", "created_at DESC"},
	}
	for _, tc := range cases {
		q := mustParse(t, Params{Sort: tc.sort, Order: tc.order})
		if got := q.Build().OrderBy; got != tc.want {
			t.Fatalf("sort %q/%q order by = %q, want %q", tc.sort, tc.order, got, tc.want)
		}
	}
}

func TestBuildPagination(t *testing.T) {
	q := mustParse(t, Params{Page: "3", Limit: "20"})
	sql := q.Build()

	if sql.Limit != 20 {
		t.Fatalf("limit = %d, want 20", sql.Limit)
	}
	if sql.Offset != 40 {
		t.Fatalf("offset = %d, want 40", sql.Offset)
	}
}
