package domain

const (
	DefaultPerPage = 25
	MaxPerPage     = 100
)

// ListParams is a page/size pair shared by list queries.
type ListParams struct {
	Page    int
	PerPage int
}

// Normalize clamps the params to sane bounds.
func (p ListParams) Normalize() ListParams {
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

// Offset returns the SQL offset for the normalized params.
func (p ListParams) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PerPage
}
