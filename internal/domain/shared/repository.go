package shared

// Filter carries common list-query options
type Filter struct {
	Limit   int
	Offset  int
	OrderBy string
	Desc    bool
}

// DefaultFilter returns a filter with sane pagination defaults
func DefaultFilter() Filter {
	return Filter{
		Limit:   50,
		Offset:  0,
		OrderBy: "created_at",
		Desc:    true,
	}
}

// Paginated wraps a page of results with the total row count
type Paginated[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}
