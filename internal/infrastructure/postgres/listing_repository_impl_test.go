package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/internal/domain/repository"
)

var listingCols = []string{"id", "owner_id", "category", "title", "description", "location", "price", "image_url",
	"contact_name", "contact_phone", "contact_email", "brochure_object", "created_at", "updated_at"}

func TestListingRepository_GetByCategory(t *testing.T) {
	mock := newMock(t)
	repo := NewListingRepository(mock)
	now := time.Now()
	owner := "b1"

	mock.ExpectQuery(`WHERE category = \$1`).
		WithArgs("rental").
		WillReturnRows(pgxmock.NewRows(listingCols).
			AddRow("l1", &owner, "rental", "Flat", "", "Jakarta", int64(1000), "", "Budi", "123", "b@x.com", "b/l1.pdf", now, now).
			AddRow("l2", nil, "rental", "Room", "", "", int64(500), "", "", "", "", "", now, now))

	ls, err := repo.GetByCategory(context.Background(), entity.CategoryRental)
	require.NoError(t, err)
	require.Len(t, ls, 2)
	assert.Equal(t, "b1", ls[0].OwnerID)
	assert.Equal(t, "123", ls[0].ContactPhone)
	assert.Empty(t, ls[1].OwnerID)
	assert.Equal(t, entity.CategoryRental, ls[1].Category)
}

func TestListingRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewListingRepository(mock)

	mock.ExpectQuery(`FROM listings WHERE id = \$1`).
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows(listingCols))

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestListingRepository_CreateUpdateDelete(t *testing.T) {
	mock := newMock(t)
	repo := NewListingRepository(mock)
	ctx := context.Background()
	now := time.Now()
	l := &entity.Listing{ID: "l1", Category: entity.CategoryHostel, Title: "Bunk"}

	mock.ExpectQuery(`INSERT INTO listings`).
		WithArgs("l1", "", "hostel", "Bunk", "", "", int64(0), "", "", "", "", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	require.NoError(t, repo.Create(ctx, l))

	mock.ExpectQuery(`UPDATE listings`).
		WithArgs("l1", "", "hostel", "Bunk 2", "", "", int64(0), "", "", "", "", "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}))
	l.Title = "Bunk 2"
	assert.ErrorIs(t, repo.Update(ctx, l), domain.ErrListingNotFound)

	mock.ExpectExec(`DELETE FROM listings`).
		WithArgs("l1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, repo.Delete(ctx, "l1"))

	mock.ExpectExec(`DELETE FROM listings`).
		WithArgs("l1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(ctx, "l1"), domain.ErrListingNotFound)
}

func TestAuditRepository_Record(t *testing.T) {
	mock := newMock(t)
	repo := NewAuditRepository(mock)

	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs("u1", "a@x.com", "role_change", "10.0.0.1", "curl", []byte(`{"to":"admin"}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Record(context.Background(), repository.AuditEntry{
		UserID: "u1", Email: "a@x.com", Action: "role_change", IP: "10.0.0.1", UserAgent: "curl",
		Metadata: map[string]any{"to": "admin"},
	})
	require.NoError(t, err)
}
