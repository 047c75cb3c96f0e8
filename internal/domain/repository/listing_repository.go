package repository

import (
	"context"

	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
)

// ListingRepository is the listing store. It never decides what a caller may see.
type ListingRepository interface {
	Create(ctx context.Context, l *entity.Listing) error
	Update(ctx context.Context, l *entity.Listing) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	GetByCategory(ctx context.Context, category entity.Category) ([]entity.Listing, error)
	GetByOwner(ctx context.Context, ownerID string) ([]entity.Listing, error)
}
