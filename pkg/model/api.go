package model

import (
	"math"
	"time"
)

// DefaultPageSize is the number of rows requested per list page.
const DefaultPageSize = 10

// Page is the list envelope returned by the bot API. Count and TotalPages
// are optional; different endpoints report one or the other.
type Page[T any] struct {
	Data       []T `json:"data"`
	Count      int `json:"count,omitempty"`
	TotalPages int `json:"totalPages,omitempty"`
}

// Pages returns the number of pages the collection spans for pageSize.
// A reported totalPages wins over count; the result is never below 1.
func (p *Page[T]) Pages(pageSize int) int {
	if p == nil {
		return 1
	}
	if p.TotalPages > 0 {
		return p.TotalPages
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	n := int(math.Ceil(float64(p.Count) / float64(pageSize)))
	if n < 1 {
		return 1
	}
	return n
}

// Response is the standard envelope of the server's own JSON API.
type Response struct {
	Status     string      `json:"status"`
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error"`
}

// Pagination holds paging metadata for list views served by the JSON API.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}
