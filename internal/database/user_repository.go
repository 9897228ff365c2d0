package database

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const userColumns = `id, name, email, phone, role, password_hash, created_at, updated_at`

type userRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository creates a user repository on db or a transaction
func NewUserRepository(db sqlx.ExtContext) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, phone, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Name, user.Email, user.Phone, user.Role, user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translateError(err))
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", translateError(err))
	}
	return &user, nil
}

// GetByEmail retrieves a user by email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := sqlx.GetContext(ctx, r.db, &user, query, email); err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", translateError(err))
	}
	return &user, nil
}

// GetByIDs retrieves users keyed by ID. Unknown IDs are skipped.
func (r *userRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	result := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::uuid[])`
	if err := sqlx.SelectContext(ctx, r.db, &users, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", translateError(err))
	}

	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}

// List returns users ordered by name
func (r *userRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	where := &whereClause{}
	if filter.Role != "" {
		where.add("role = ?", filter.Role)
	}

	users := []models.User{}
	query := `SELECT ` + userColumns + ` FROM users` + where.String() + ` ORDER BY name ASC`
	if err := sqlx.SelectContext(ctx, r.db, &users, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", translateError(err))
	}
	return users, nil
}

// Update writes the mutable profile fields and password hash
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, email = $3, phone = $4, password_hash = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Name, user.Email, user.Phone, user.PasswordHash,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", translateError(err))
	}
	return nil
}
