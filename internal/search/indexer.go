package search

import (
	"context"
	"fmt"

	"ewaste-exchange/internal/models"

	"go.uber.org/zap"
)

// DocumentIndex is the write side of the search index
type DocumentIndex interface {
	IndexDocuments(docs []Document) error
	ReplaceAll(docs []Document) error
}

// ListingStore reads the rows that feed the index
type ListingStore interface {
	ListScrapListings(ctx context.Context) ([]models.Listing, error)
	GetListingsByIDs(ctx context.Context, ids []string) ([]models.Listing, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// Indexer keeps the scrap listing index in step with storage
type Indexer struct {
	index DocumentIndex
	store ListingStore
	log   *zap.Logger
}

func NewIndexer(index DocumentIndex, store ListingStore, log *zap.Logger) *Indexer {
	return &Indexer{index: index, store: store, log: log.Named("search-indexer")}
}

// ListingsFlagged indexes listings that just became scrap
func (i *Indexer) ListingsFlagged(ctx context.Context, ids []string) error {
	listings, err := i.store.GetListingsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load flagged listings: %w", err)
	}
	docs, err := i.documents(ctx, listings)
	if err != nil {
		return err
	}
	if err := i.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}
	i.log.Debug("indexed flagged listings", zap.Int("count", len(docs)))
	return nil
}

// Reindex rebuilds the index from every scrap listing and returns the count
func (i *Indexer) Reindex(ctx context.Context) (int, error) {
	listings, err := i.store.ListScrapListings(ctx)
	if err != nil {
		return 0, fmt.Errorf("load scrap listings: %w", err)
	}
	docs, err := i.documents(ctx, listings)
	if err != nil {
		return 0, err
	}
	if err := i.index.ReplaceAll(docs); err != nil {
		return 0, fmt.Errorf("replace documents: %w", err)
	}
	i.log.Info("reindexed scrap listings", zap.Int("count", len(docs)))
	return len(docs), nil
}

func (i *Indexer) documents(ctx context.Context, listings []models.Listing) ([]Document, error) {
	var sellerIDs []string
	seen := make(map[string]bool)
	for _, l := range listings {
		if !seen[l.SellerID] {
			seen[l.SellerID] = true
			sellerIDs = append(sellerIDs, l.SellerID)
		}
	}

	users, err := i.store.GetUsersByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, fmt.Errorf("load sellers: %w", err)
	}
	byID := make(map[string]*models.User, len(users))
	for k := range users {
		byID[users[k].ID] = &users[k]
	}

	docs := make([]Document, 0, len(listings))
	for _, l := range listings {
		if !l.IsScrapItem {
			continue
		}
		doc := Document{
			ID:              l.ID,
			Title:           l.Title,
			Description:     l.Description,
			Category:        l.Category,
			SellerID:        l.SellerID,
			EstimatedWeight: l.EstimatedWeight,
			CreatedAt:       l.CreatedAt.Unix(),
		}
		if u, ok := byID[l.SellerID]; ok {
			doc.SellerName = u.FullName()
			doc.City = u.Address.City
			doc.Area = u.Address.Area
			doc.Colony = u.Address.Colony
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
