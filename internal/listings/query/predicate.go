package query

import (
	"fmt"
	"strings"
)

// SQL is the store-ready form of a Query: a WHERE clause body, an ORDER BY
// clause and pagination bounds. Args holds the WHERE placeholders and
// SortArgs the extra placeholders referenced by OrderBy, kept separate so
// a count query can run on the predicate alone.
type SQL struct {
	Where    string
	OrderBy  string
	Args     []interface{}
	SortArgs []interface{}
	Limit    int
	Offset   int
}

// NextArg returns the first free placeholder index after Args and SortArgs,
// for callers appending LIMIT and OFFSET parameters.
func (s SQL) NextArg() int {
	return len(s.Args) + len(s.SortArgs) + 1
}

// Build assembles the filter predicate and sort clause.
//
// Price and year are always constrained, even when the caller supplied no
// bounds, so count and page queries see one uniform predicate shape:
// price defaults to [0, +inf) and year to [1900, currentYear+1].
//
// A free-text term matches make, model or description case-insensitively.
// The match tiers (exact make/model, prefix, substring, description) do not
// gate inclusion; they only drive the relevance sort.
func (q Query) Build() SQL {
	whereClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	minPrice := int64(0)
	if q.MinPrice != nil {
		minPrice = *q.MinPrice
	}
	whereClauses = append(whereClauses, fmt.Sprintf("price >= $%d", argIdx))
	args = append(args, minPrice)
	argIdx++

	if q.MaxPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("price <= $%d", argIdx))
		args = append(args, *q.MaxPrice)
		argIdx++
	}

	minYear := MinYear
	if q.MinYear != nil {
		minYear = *q.MinYear
	}
	maxYear := q.YearCeiling
	if q.MaxYear != nil {
		maxYear = *q.MaxYear
	}
	whereClauses = append(whereClauses, fmt.Sprintf("year >= $%d", argIdx))
	args = append(args, minYear)
	argIdx++
	whereClauses = append(whereClauses, fmt.Sprintf("year <= $%d", argIdx))
	args = append(args, maxYear)
	argIdx++

	for _, cat := range []struct {
		column string
		value  string
	}{
		{"fuel_type", q.FuelType},
		{"transmission", q.Transmission},
		{"car_class", q.CarClass},
	} {
		if cat.value == "" {
			continue
		}
		whereClauses = append(whereClauses, fmt.Sprintf("LOWER(%s) = $%d", cat.column, argIdx))
		args = append(args, strings.ToLower(cat.value))
		argIdx++
	}

	if q.Text != "" {
		sub := "%" + escapeLike(q.Text) + "%"
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(make ILIKE $%d OR model ILIKE $%d OR description ILIKE $%d)",
			argIdx, argIdx, argIdx,
		))
		args = append(args, sub)
		argIdx++
	}

	orderBy, sortArgs := q.orderBy(argIdx)

	return SQL{
		Where:    strings.Join(whereClauses, " AND "),
		OrderBy:  orderBy,
		Args:     args,
		SortArgs: sortArgs,
		Limit:    q.Limit,
		Offset:   (q.Page - 1) * q.Limit,
	}
}

// orderBy resolves the sort clause. Relevance sorts by match tier with
// created_at DESC as the tie-break; without a text term it falls back to
// created_at DESC because no tier can be computed.
func (q Query) orderBy(argIdx int) (string, []interface{}) {
	if q.Sort == SortRelevance {
		if q.Text == "" {
			return "created_at DESC", nil
		}
		term := strings.ToLower(q.Text)
		prefix := escapeLike(q.Text) + "%"
		sub := "%" + escapeLike(q.Text) + "%"
		clause := fmt.Sprintf(
			"CASE"+
				" WHEN LOWER(make) = $%d OR LOWER(model) = $%d THEN 1"+
				" WHEN make ILIKE $%d OR model ILIKE $%d THEN 2"+
				" WHEN make ILIKE $%d OR model ILIKE $%d THEN 3"+
				" ELSE 4 END ASC, created_at DESC",
			argIdx, argIdx, argIdx+1, argIdx+1, argIdx+2, argIdx+2,
		)
		return clause, []interface{}{term, prefix, sub}
	}

	// Whitelisted column switch; caller input never reaches the SQL text.
	var column string
	switch q.Sort {
	case SortPrice:
		column = "price"
	case SortYear:
		column = "year"
	default:
		column = "created_at"
	}

	direction := "DESC"
	if q.Order == OrderAsc {
		direction = "ASC"
	}

	return column + " " + direction, nil
}

// escapeLike neutralizes LIKE metacharacters in user-supplied terms.
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return replacer.Replace(s)
}
