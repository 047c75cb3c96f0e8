package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/internal/domain/repository"
)

const listingColumns = `id, owner_id, category, title, description, location, price, image_url, contact_name, contact_phone, contact_email, brochure_object, created_at, updated_at`

type ListingRepository struct {
	db DB
}

func NewListingRepository(db DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *entity.Listing) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO listings (id, owner_id, category, title, description, location, price, image_url, contact_name, contact_phone, contact_email, brochure_object)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, l.ID, l.OwnerID, string(l.Category), l.Title, l.Description, l.Location, l.Price, l.ImageURL,
		l.ContactName, l.ContactPhone, l.ContactEmail, l.BrochureObject)
	return row.Scan(&l.CreatedAt, &l.UpdatedAt)
}

func (r *ListingRepository) Update(ctx context.Context, l *entity.Listing) error {
	row := r.db.QueryRow(ctx, `
		UPDATE listings
		SET owner_id = NULLIF($2, '')::uuid, category = $3, title = $4, description = $5, location = $6, price = $7, image_url = $8,
		    contact_name = $9, contact_phone = $10, contact_email = $11, brochure_object = $12, updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, l.ID, l.OwnerID, string(l.Category), l.Title, l.Description, l.Location, l.Price, l.ImageURL,
		l.ContactName, l.ContactPhone, l.ContactEmail, l.BrochureObject)
	if err := row.Scan(&l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrListingNotFound
		}
		return err
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	l, err := scanListing(r.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *ListingRepository) GetByCategory(ctx context.Context, c entity.Category) ([]entity.Listing, error) {
	return r.list(ctx, `SELECT `+listingColumns+` FROM listings WHERE category = $1 ORDER BY created_at DESC, id`, string(c))
}

func (r *ListingRepository) GetByOwner(ctx context.Context, ownerID string) ([]entity.Listing, error) {
	return r.list(ctx, `SELECT `+listingColumns+` FROM listings WHERE owner_id = $1 ORDER BY created_at DESC, id`, ownerID)
}

func (r *ListingRepository) list(ctx context.Context, sql string, arg any) ([]entity.Listing, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func scanListing(row pgx.Row) (*entity.Listing, error) {
	var (
		l        entity.Listing
		owner    *string
		category string
	)
	if err := row.Scan(&l.ID, &owner, &category, &l.Title, &l.Description, &l.Location, &l.Price, &l.ImageURL,
		&l.ContactName, &l.ContactPhone, &l.ContactEmail, &l.BrochureObject, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	if owner != nil {
		l.OwnerID = *owner
	}
	l.Category = entity.Category(category)
	return &l, nil
}

var _ repository.ListingRepository = (*ListingRepository)(nil)
