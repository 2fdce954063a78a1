package domain

const (
	DefaultPageSize = 20
	PopularPageSize = 12
	MaxPageSize     = 200
)

// SearchQuery is the filter set accepted by the catalog. Empty fields are
// left out of the upstream request.
type SearchQuery struct {
	Keyword            string `json:"keyword,omitempty"`
	City               string `json:"city,omitempty"`
	ClassificationName string `json:"classificationName,omitempty"`
	StartDateTime      string `json:"startDateTime,omitempty"`
	EndDateTime        string `json:"endDateTime,omitempty"`
	Page               int    `json:"page,omitempty"`
	Size               int    `json:"size,omitempty"`
}

// Normalized returns a copy with the page and size defaults applied.
func (q SearchQuery) Normalized() SearchQuery {
	if q.Page < 0 {
		q.Page = 0
	}
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	return q
}

type PageInfo struct {
	Number        int `json:"number"`
	Size          int `json:"size"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

// PageResult is one upstream page of events, in upstream order.
type PageResult struct {
	Events []Event  `json:"events"`
	Page   PageInfo `json:"page"`
}

// EmptyPage is returned when the upstream response carries no events.
func EmptyPage() *PageResult {
	return &PageResult{Events: []Event{}}
}
