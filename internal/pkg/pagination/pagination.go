// internal/pkg/pagination/pagination.go
package pagination

// Params are page/limit query parameters
type Params struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Meta describes a page of results
type Meta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// Normalize applies defaults and caps the limit
func (p Params) Normalize(defaultLimit, maxLimit int) Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Offset returns the number of rows to skip
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewMeta builds page metadata for total rows
func NewMeta(p Params, total int64) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Meta{
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: pages,
	}
}
