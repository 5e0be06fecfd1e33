package domain

import "math"

// PageRequest is a 1-based page request.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the number of rows to skip for this page, saturating at math.MaxInt.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Size <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Size
}

// RatePage is one page of stored observations plus the total row count.
type RatePage struct {
	Items []RateObservation
	Page  int
	Size  int
	Total int
}

// TotalPages returns the number of pages of Size needed to cover Total.
func (p RatePage) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return (p.Total + p.Size - 1) / p.Size
}
