package outbound

// statusTable maps inclusive status code ranges to categories. Kept as a
// table rather than nested conditionals so the mapping stays exhaustively
// testable.
var statusTable = []struct {
	lo, hi   int
	category Category
}{
	{200, 299, CategorySuccess},
	{400, 499, CategoryClientError},
	{500, 599, CategoryServerError},
}

// CategoryForStatus maps an HTTP status code to a Category. Codes outside
// every known range fall back to CategoryServerError so an exotic upstream
// status is never fatal to the caller.
func CategoryForStatus(code int) Category {
	for _, row := range statusTable {
		if code >= row.lo && code <= row.hi {
			return row.category
		}
	}
	return CategoryServerError
}
