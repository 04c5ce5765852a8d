package pagination

// Defaults and bounds for offset pagination.
const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 100
)

// Request is a 1-based page request.
type Request struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=50"`
}

// Normalize clamps the request into valid bounds.
func (r Request) Normalize() Request {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	if r.Limit < 1 {
		r.Limit = DefaultLimit
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	return r
}

// Offset returns the row offset for the normalized request.
func (r Request) Offset() int {
	return (r.Page - 1) * r.Limit
}

// PageInfo describes a result page.
type PageInfo struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// BuildPageInfo computes page counts, with pages = ceil(total/limit).
func BuildPageInfo(req Request, total int64) PageInfo {
	req = req.Normalize()
	pages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return PageInfo{
		Page:  req.Page,
		Limit: req.Limit,
		Total: total,
		Pages: pages,
	}
}
