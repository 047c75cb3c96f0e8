package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	"github.com/oksasatya/estate-marketplace/internal/domain/repository"
)

const userColumns = `id, email, name, password_hash, password_salt, role, plan, projects_viewed, projects_limit, subscription_expiry, created_at, updated_at`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, email, name, password_hash, password_salt, role, plan, projects_viewed, projects_limit, subscription_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.Name, u.PasswordHash, u.PasswordSalt, string(u.Role), u.Plan.String(),
		u.ProjectsViewed, u.ProjectsLimit, u.SubscriptionExpiry)

	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, sql string, arg any) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at, email
		LIMIT $1 OFFSET $2
	`, limitArg(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *UserRepository) UpdateEntitlement(ctx context.Context, u *entity.User) (entity.Role, error) {
	return r.writeEntitlement(ctx, `
		UPDATE users
		SET plan = $2, projects_viewed = $3, projects_limit = $4, subscription_expiry = $5, updated_at = now()
		WHERE id = $1
		RETURNING role
	`, u)
}

func (r *UserRepository) PromoteBuilder(ctx context.Context, u *entity.User) (entity.Role, error) {
	return r.writeEntitlement(ctx, `
		UPDATE users
		SET role = CASE WHEN role = 'admin' THEN role ELSE 'builder' END,
			plan = $2, projects_viewed = $3, projects_limit = $4, subscription_expiry = $5, updated_at = now()
		WHERE id = $1
		RETURNING role
	`, u)
}

func (r *UserRepository) writeEntitlement(ctx context.Context, sql string, u *entity.User) (entity.Role, error) {
	var role string
	err := r.db.QueryRow(ctx, sql, u.ID, u.Plan.String(), u.ProjectsViewed, u.ProjectsLimit, u.SubscriptionExpiry).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrUserNotFound
		}
		return "", err
	}
	return entity.Role(role), nil
}

func (r *UserRepository) SetProjectsViewed(ctx context.Context, id string, from, to int) (bool, error) {
	res, err := r.db.Exec(ctx, `
		UPDATE users SET projects_viewed = $3, updated_at = now()
		WHERE id = $1 AND projects_viewed = $2
	`, id, from, to)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() == 1 {
		return true, nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, domain.ErrUserNotFound
	}
	return false, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role entity.Role) error {
	res, err := r.db.Exec(ctx, `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`, id, string(role))
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u          entity.User
		role, plan string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.PasswordSalt, &role, &plan,
		&u.ProjectsViewed, &u.ProjectsLimit, &u.SubscriptionExpiry, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	p, ok := entity.ParsePlanName(plan)
	if !ok {
		return nil, fmt.Errorf("user %s: unknown plan %q", u.ID, plan)
	}
	u.Plan = p
	return &u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
