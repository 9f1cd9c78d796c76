package pagination

// Page is the offset pagination carried by list requests.
type Page struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"pageSize,default=20"`
}

// Normalize clamps page and pageSize into usable bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageInfo is returned alongside list payloads.
type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
}

func NewPageInfo(page Page, total int64) PageInfo {
	return PageInfo{
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: total,
	}
}
