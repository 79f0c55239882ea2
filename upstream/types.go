package upstream

import "github.com/poiesic/concierge/core"

// Page is one page of the upstream catalog.
type Page struct {
	Residences []*core.Residence `json:"residences"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	Total      int               `json:"total"`
}

// Last reports whether no pages follow this one.
func (p *Page) Last() bool {
	return len(p.Residences) == 0 || p.Page*p.Limit >= p.Total
}

type vocabularyResponse struct {
	Field  core.Field `json:"field"`
	Values []string   `json:"values"`
}

type searchRequest struct {
	Filters map[core.Field][]string `json:"filters"`
}

type searchResponse struct {
	Residences []*core.Residence `json:"residences"`
}

type rankingsResponse struct {
	Rankings []core.RankingScore `json:"rankings"`
}
