package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
)

var userCols = []string{"id", "email", "name", "password_hash", "password_salt", "role", "plan",
	"projects_viewed", "projects_limit", "subscription_expiry", "created_at", "updated_at"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	return mock
}

func TestUserRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("u1", "a@x.com", "Alice", "h", "s", "user", "No Plan", 0, 0, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u := &entity.User{ID: "u1", Email: "a@x.com", Name: "Alice", PasswordHash: "h", PasswordSalt: "s", Role: entity.RoleUser}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, now, u.CreatedAt)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &entity.User{ID: "u1", Email: "a@x.com", Role: entity.RoleUser})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	exp := now.AddDate(0, 0, 15)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u1", "a@x.com", "Alice", "h", "s", "builder", "Professional", 3, 10, &exp, now, now))

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBuilder, u.Role)
	assert.Equal(t, entity.PlanProfessional, u.Plan)
	assert.Equal(t, 3, u.ProjectsViewed)
	require.NotNil(t, u.SubscriptionExpiry)
	assert.Equal(t, exp, *u.SubscriptionExpiry)
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_GetByIDUnknownPlan(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u1", "a@x.com", "", "h", "s", "user", "Gold", 0, 0, nil, now, now))

	_, err := repo.GetByID(context.Background(), "u1")
	assert.ErrorContains(t, err, "unknown plan")
}

func TestUserRepository_List(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`ORDER BY created_at, email`).
		WithArgs(20, 40).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow("u1", "a@x.com", "", "h", "s", "user", "No Plan", 0, 0, nil, now, now).
			AddRow("u2", "b@x.com", "", "h", "s", "admin", "No Plan", 0, 0, nil, now, now))

	users, err := repo.List(context.Background(), 20, 40)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, entity.RoleAdmin, users[1].Role)
	assert.Nil(t, users[0].SubscriptionExpiry)
}

func TestUserRepository_UpdateEntitlement(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	exp := time.Now().Add(time.Hour)

	mock.ExpectQuery(`UPDATE users\s+SET plan = \$2`).
		WithArgs("u1", "Premium", 0, 15, &exp).
		WillReturnRows(pgxmock.NewRows([]string{"role"}).AddRow("user"))
	mock.ExpectQuery(`UPDATE users\s+SET plan = \$2`).
		WithArgs("u2", "No Plan", 0, 0, pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	ctx := context.Background()
	role, err := repo.UpdateEntitlement(ctx, &entity.User{ID: "u1", Role: entity.RoleBuilder, Plan: entity.PlanPremium, ProjectsLimit: 15, SubscriptionExpiry: &exp})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, role, "the stored role wins over the caller's copy")

	_, err = repo.UpdateEntitlement(ctx, &entity.User{ID: "u2", Role: entity.RoleUser})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_PromoteBuilder(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	exp := time.Now().Add(time.Hour)

	mock.ExpectQuery(`SET role = CASE WHEN role = 'admin' THEN role ELSE 'builder' END`).
		WithArgs("u1", "Builder", 0, entity.UnlimitedProjects, &exp).
		WillReturnRows(pgxmock.NewRows([]string{"role"}).AddRow("builder"))

	role, err := repo.PromoteBuilder(context.Background(), &entity.User{ID: "u1", Plan: entity.PlanBuilder, ProjectsLimit: entity.UnlimitedProjects, SubscriptionExpiry: &exp})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleBuilder, role)
}

func TestUserRepository_SetProjectsViewed(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE users SET projects_viewed`).
		WithArgs("u1", 2, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	ok, err := repo.SetProjectsViewed(ctx, "u1", 2, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(`UPDATE users SET projects_viewed`).
		WithArgs("u1", 2, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err = repo.SetProjectsViewed(ctx, "u1", 2, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectExec(`UPDATE users SET projects_viewed`).
		WithArgs("gone", 0, 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("gone").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	_, err = repo.SetProjectsViewed(ctx, "gone", 0, 1)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET role`).
		WithArgs("u1", "admin").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateRole(context.Background(), "u1", entity.RoleAdmin))
}
