package search

import (
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

// Document is the search representation of a scrap listing. Seller address
// fields are copied in so facilities can filter by region.
type Document struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	Category        string  `json:"category,omitempty"`
	SellerID        string  `json:"seller_id"`
	SellerName      string  `json:"seller_name"`
	City            string  `json:"city"`
	Area            string  `json:"area"`
	Colony          string  `json:"colony"`
	EstimatedWeight float64 `json:"estimated_weight"`
	CreatedAt       int64   `json:"created_at"`
}

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey, index string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})
	if index == "" {
		index = "scrap_listings"
	}

	return &SearchClient{
		client: client,
		index:  index,
	}
}

// Healthy reports whether the Meilisearch server answers
func (s *SearchClient) Healthy() bool {
	return s.client.IsHealthy()
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && !strings.Contains(err.Error(), "index_already_exists") {
		return err
	}

	idx := s.client.Index(s.index)
	if _, err := idx.UpdateSearchableAttributes(&[]string{
		"title",
		"description",
		"category",
		"seller_name",
		"colony",
		"area",
	}); err != nil {
		return err
	}

	if _, err := idx.UpdateFilterableAttributes(&[]string{
		"city",
		"area",
		"colony",
		"category",
		"seller_id",
		"estimated_weight",
	}); err != nil {
		return err
	}

	if _, err := idx.UpdateSortableAttributes(&[]string{
		"estimated_weight",
		"created_at",
	}); err != nil {
		return err
	}

	return nil
}

// IndexDocuments adds or replaces documents by id
func (s *SearchClient) IndexDocuments(docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := s.client.Index(s.index).AddDocuments(docs, "id")
	return err
}

// ReplaceAll clears the index and loads docs
func (s *SearchClient) ReplaceAll(docs []Document) error {
	if _, err := s.client.Index(s.index).DeleteAllDocuments(); err != nil {
		return err
	}
	return s.IndexDocuments(docs)
}

// SearchResult represents search results
type SearchResult struct {
	Hits           []Document `json:"hits"`
	TotalHits      int64      `json:"totalHits"`
	ProcessingTime int64      `json:"processingTimeMs"`
}
