package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

type FilterParams struct {
	Query     string
	City      string
	Area      string
	Colony    string
	Category  string
	MinWeight *float64
	SortBy    string
	Limit     int64
}

// FilterSearch performs a search restricted by region and weight
func (s *SearchClient) FilterSearch(params FilterParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit: params.Limit,
	}
	if filter := buildFilter(params); filter != "" {
		searchReq.Filter = filter
	}
	if params.SortBy != "" {
		searchReq.Sort = []string{params.SortBy}
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		// Convert hit to JSON then to Document
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc Document
		if err := json.Unmarshal(hitJSON, &doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}

	return &SearchResult{
		Hits:           docs,
		TotalHits:      searchRes.EstimatedTotalHits,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}

func buildFilter(params FilterParams) string {
	var filters []string
	for _, f := range []struct{ field, value string }{
		{"city", params.City},
		{"area", params.Area},
		{"colony", params.Colony},
		{"category", params.Category},
	} {
		if v := strings.TrimSpace(f.value); v != "" {
			filters = append(filters, fmt.Sprintf("%s = %s", f.field, quote(v)))
		}
	}
	if params.MinWeight != nil {
		filters = append(filters, fmt.Sprintf("estimated_weight >= %g", *params.MinWeight))
	}
	return strings.Join(filters, " AND ")
}

// quote wraps v in double quotes for a Meilisearch filter expression
func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}
