// Package query translates untrusted listing-search parameters into a
// validated, store-ready filter, sort and pagination specification.
package query

import (
	"strconv"
	"strings"
	"time"
)

// Sort fields accepted from callers.
const (
	SortCreatedAt = "createdAt"
	SortPrice     = "price"
	SortYear      = "year"
	SortRelevance = "relevance"
)

// Sort directions accepted from callers.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

const (
	// MinYear is the lowest model year the filter window admits.
	MinYear = 1900

	defaultLimit = 10
	maxLimit     = 100
)

// Categorical filter values are closed sets. Arbitrary strings would
// silently produce empty result sets on typos.
var (
	fuelTypes = map[string]struct{}{
		"gasoline": {}, "diesel": {}, "hybrid": {}, "electric": {}, "lpg": {},
	}
	transmissions = map[string]struct{}{
		"manual": {}, "automatic": {},
	}
	carClasses = map[string]struct{}{
		"sedan": {}, "suv": {}, "hatchback": {}, "coupe": {},
		"wagon": {}, "convertible": {}, "pickup": {}, "van": {},
	}
)

// NormalizeFuelType lowercases and validates a fuel type value.
func NormalizeFuelType(s string) (string, bool) {
	return normalize(s, fuelTypes)
}

// NormalizeTransmission lowercases and validates a transmission value.
func NormalizeTransmission(s string) (string, bool) {
	return normalize(s, transmissions)
}

// NormalizeCarClass lowercases and validates a car class value.
func NormalizeCarClass(s string) (string, bool) {
	return normalize(s, carClasses)
}

func normalize(s string, allowed map[string]struct{}) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(s))
	_, ok := allowed[value]
	return value, ok
}

// Params carries the raw query-string values of a search request.
// All values are untrusted strings; Parse validates and converts them.
type Params struct {
	Text         string
	FuelType     string
	Transmission string
	CarClass     string
	MinPrice     string
	MaxPrice     string
	MinYear      string
	MaxYear      string
	Page         string
	Limit        string
	Sort         string
	Order        string
}

// FieldError describes a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Query is a validated search specification. Optional numeric bounds are
// nil when the caller did not supply them; categorical filters are empty
// when not specified. YearCeiling is currentYear+1 captured at parse time
// so the predicate and its tests agree on the window.
type Query struct {
	Text         string
	FuelType     string
	Transmission string
	CarClass     string
	MinPrice     *int64
	MaxPrice     *int64
	MinYear      *int
	MaxYear      *int
	Page         int
	Limit        int
	Sort         string
	Order        string
	YearCeiling  int
}

// Parse validates raw parameters and builds a Query. It accumulates every
// violation instead of failing fast, so the caller can report all problems
// at once. On any error the returned Query must not be used.
func Parse(p Params, now time.Time) (Query, []FieldError) {
	var errs []FieldError
	ceiling := now.Year() + 1

	q := Query{
		Sort:        SortCreatedAt,
		Order:       OrderDesc,
		YearCeiling: ceiling,
	}

	q.Text = strings.TrimSpace(p.Text)

	q.MinPrice = parseOptionalInt64(p.MinPrice, "minPrice", &errs)
	q.MaxPrice = parseOptionalInt64(p.MaxPrice, "maxPrice", &errs)
	q.MinYear = parseOptionalInt(p.MinYear, "minYear", &errs)
	q.MaxYear = parseOptionalInt(p.MaxYear, "maxYear", &errs)

	if q.MinPrice != nil && *q.MinPrice < 0 {
		errs = append(errs, FieldError{Field: "minPrice", Message: "Invalid minPrice"})
	}
	if q.MaxPrice != nil && *q.MaxPrice < 0 {
		errs = append(errs, FieldError{Field: "maxPrice", Message: "Invalid maxPrice"})
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		errs = append(errs, FieldError{Field: "price", Message: "Invalid price range"})
	}

	if q.MinYear != nil && q.MaxYear != nil && *q.MinYear > *q.MaxYear {
		errs = append(errs, FieldError{Field: "year", Message: "Invalid year range"})
	}
	if q.MinYear != nil && (*q.MinYear < MinYear || *q.MinYear > ceiling) {
		errs = append(errs, FieldError{Field: "minYear", Message: "Invalid minYear"})
	}
	if q.MaxYear != nil && (*q.MaxYear < MinYear || *q.MaxYear > ceiling) {
		errs = append(errs, FieldError{Field: "maxYear", Message: "Invalid maxYear"})
	}

	// Sort and order default only when entirely omitted. A value that is
	// present but unknown is rejected, never silently replaced.
	if sort := strings.TrimSpace(p.Sort); sort != "" {
		switch sort {
		case SortCreatedAt, SortPrice, SortYear, SortRelevance:
			q.Sort = sort
		default:
			errs = append(errs, FieldError{Field: "sort", Message: "Invalid sort field"})
		}
	}
	if order := strings.ToLower(strings.TrimSpace(p.Order)); order != "" {
		switch order {
		case OrderAsc, OrderDesc:
			q.Order = order
		default:
			errs = append(errs, FieldError{Field: "order", Message: "Invalid sort order"})
		}
	}

	q.FuelType = parseCategory(p.FuelType, "fuel", "Invalid fuel type", fuelTypes, &errs)
	q.Transmission = parseCategory(p.Transmission, "transmission", "Invalid transmission", transmissions, &errs)
	q.CarClass = parseCategory(p.CarClass, "class", "Invalid car class", carClasses, &errs)

	q.Page = parsePage(p.Page)
	q.Limit = parseLimit(p.Limit)

	if len(errs) > 0 {
		return Query{}, errs
	}
	return q, nil
}

// Filters returns the normalized applied filters for echoing in the
// response envelope. Absent values are omitted, never empty strings.
func (q Query) Filters() map[string]interface{} {
	f := make(map[string]interface{})
	if q.Text != "" {
		f["q"] = q.Text
	}
	if q.FuelType != "" {
		f["fuel"] = q.FuelType
	}
	if q.Transmission != "" {
		f["transmission"] = q.Transmission
	}
	if q.CarClass != "" {
		f["class"] = q.CarClass
	}
	if q.MinPrice != nil {
		f["minPrice"] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		f["maxPrice"] = *q.MaxPrice
	}
	if q.MinYear != nil {
		f["minYear"] = *q.MinYear
	}
	if q.MaxYear != nil {
		f["maxYear"] = *q.MaxYear
	}
	return f
}

// TotalPages computes ceil(total/limit), with 0 pages for 0 matches.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func parseOptionalInt64(raw, field string, errs *[]FieldError) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		*errs = append(*errs, FieldError{Field: field, Message: "Invalid " + field})
		return nil
	}
	return &v
}

func parseOptionalInt(raw, field string, errs *[]FieldError) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, FieldError{Field: field, Message: "Invalid " + field})
		return nil
	}
	return &v
}

func parseCategory(raw, field, message string, allowed map[string]struct{}, errs *[]FieldError) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return ""
	}
	if _, ok := allowed[value]; !ok {
		*errs = append(*errs, FieldError{Field: field, Message: message})
		return ""
	}
	return value
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit < 1 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
