package request

import "car-rental/pkg/utils"

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PaginatedRequest is 1-indexed. Out-of-range values are clamped rather
// than rejected.
type PaginatedRequest struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Normalize clamps page to at least 1 and per_page into [1, MaxPerPage],
// substituting DefaultPerPage for non-positive sizes.
func (p PaginatedRequest) Normalize() PaginatedRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p PaginatedRequest) Offset() int {
	n := p.Normalize()
	return utils.CalculateOffset(n.Page, n.PerPage)
}

func (p PaginatedRequest) Limit() int {
	return p.Normalize().PerPage
}
