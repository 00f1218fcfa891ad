package services

import (
	"context"
	"fmt"

	"bookshop-insights/models"
	"bookshop-insights/storage"
	"bookshop-insights/utils"
)

// BookService hands out table snapshots. It deliberately keeps no cache:
// every Snapshot goes back to the source so analyses always see the current
// contents of the dataset.
type BookService struct {
	source storage.BookSource
	logger *utils.Logger
}

func NewBookService(source storage.BookSource, logger *utils.Logger) *BookService {
	return &BookService{source: source, logger: logger}
}

// Snapshot loads a fresh copy of the book table.
func (s *BookService) Snapshot(ctx context.Context) (*models.Table, error) {
	table, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s.logger.Debug("[books] Snapshot has %d rows", table.Len())
	return table, nil
}
