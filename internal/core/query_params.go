// internal/core/query_params.go
package core

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Limit constants for pagination. An explicit 'limit' may not exceed MaxLimit;
// without one every row is returned.
const (
	MaxLimit     = 1000
	DefaultOrder = "asc"
)

// BookSortColumns maps the accepted 'sort' values to book columns.
var BookSortColumns = map[string]string{
	"id":      "book_id",
	"title":   "title",
	"created": "created_at",
}

// ListQueryOptions holds parsed query parameters for list endpoints
type ListQueryOptions struct {
	// Pagination. Zero Limit means no limit.
	Limit  int
	Offset int

	// Sorting
	SortBy    string // column name, already resolved through the whitelist
	SortOrder string // "asc" or "desc"
}

// ParseListQueryOptions extracts pagination and sorting options from query parameters.
// sortColumns whitelists the sortable columns. Returns the parsed options and any validation error.
func ParseListQueryOptions(queryParams url.Values, sortColumns map[string]string) (*ListQueryOptions, error) {
	opts := &ListQueryOptions{
		Limit:     0,
		Offset:    0,
		SortBy:    "",
		SortOrder: DefaultOrder,
	}

	// Parse limit
	if limitStr := queryParams.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'limit' parameter: must be an integer")
		}
		if limit < 1 {
			return nil, fmt.Errorf("invalid 'limit' parameter: must be at least 1")
		}
		if limit > MaxLimit {
			return nil, fmt.Errorf("invalid 'limit' parameter: maximum is %d", MaxLimit)
		}
		opts.Limit = limit
	}

	// Parse offset
	if offsetStr := queryParams.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'offset' parameter: must be an integer")
		}
		if offset < 0 {
			return nil, fmt.Errorf("invalid 'offset' parameter: must be non-negative")
		}
		opts.Offset = offset
	}

	// Parse sort column
	if sortBy := queryParams.Get("sort"); sortBy != "" {
		column, ok := sortColumns[strings.ToLower(sortBy)]
		if !ok {
			return nil, fmt.Errorf("invalid 'sort' parameter: '%s' is not a sortable field", sortBy)
		}
		opts.SortBy = column
	}

	// Parse sort order
	if order := queryParams.Get("order"); order != "" {
		lowerOrder := strings.ToLower(order)
		if lowerOrder != "asc" && lowerOrder != "desc" {
			return nil, fmt.Errorf("invalid 'order' parameter: must be 'asc' or 'desc'")
		}
		opts.SortOrder = lowerOrder
	}

	return opts, nil
}
