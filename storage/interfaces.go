package storage

import (
	"context"

	"bookshop-insights/models"
)

// BookSource is the interface any dataset backend must satisfy.
// Load re-reads the backing store on every call.
type BookSource interface {
	Load(ctx context.Context) (*models.Table, error)
	Close() error
}
