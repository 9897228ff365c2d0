package database

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostel-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

const advertisementColumns = `id, user_id, title, description, price, category, images, contact_info, created_at, updated_at`

var advertisementFieldColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"title":     "title",
	"category":  "category",
}

type advertisementRepository struct {
	db sqlx.ExtContext
}

// NewAdvertisementRepository creates an advertisement repository on db or a transaction
func NewAdvertisementRepository(db sqlx.ExtContext) AdvertisementRepository {
	return &advertisementRepository{db: db}
}

// Create inserts a new advertisement
func (r *advertisementRepository) Create(ctx context.Context, ad *models.Advertisement) error {
	query := `
		INSERT INTO advertisements (id, user_id, title, description, price, category, images, contact_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		ad.ID, ad.UserID, ad.Title, ad.Description, ad.Price, ad.Category,
		textArray(ad.Images), ad.ContactInfo,
	).Scan(&ad.CreatedAt, &ad.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create advertisement: %w", translateError(err))
	}
	return nil
}

// GetByID retrieves an advertisement by ID
func (r *advertisementRepository) GetByID(ctx context.Context, id string) (*models.Advertisement, error) {
	var ad models.Advertisement
	query := `SELECT ` + advertisementColumns + ` FROM advertisements WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, &ad, query, id); err != nil {
		return nil, fmt.Errorf("failed to fetch advertisement: %w", translateError(err))
	}
	return &ad, nil
}

func (r *advertisementRepository) where(filter models.AdvertisementFilter) *whereClause {
	where := &whereClause{}
	if filter.Category != "" {
		where.add("category = ?", filter.Category)
	}
	if filter.UserID != "" {
		where.add("user_id::text = ?", filter.UserID)
	}
	if filter.MinPrice != nil {
		where.add("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		where.add("price <= ?", *filter.MaxPrice)
	}
	return where
}

// List returns the advertisements matching filter
func (r *advertisementRepository) List(ctx context.Context, filter models.AdvertisementFilter) ([]models.Advertisement, error) {
	where := r.where(filter)
	query := `SELECT ` + advertisementColumns + ` FROM advertisements` + where.String() +
		orderBy(filter.Sort, advertisementFieldColumns) + limitOffset(filter.Page, where)

	ads := []models.Advertisement{}
	if err := sqlx.SelectContext(ctx, r.db, &ads, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list advertisements: %w", translateError(err))
	}
	return ads, nil
}

// Count returns the number of advertisements matching filter, ignoring paging
func (r *advertisementRepository) Count(ctx context.Context, filter models.AdvertisementFilter) (int, error) {
	return count(ctx, r.db, "advertisements", r.where(filter))
}

// Update writes every mutable advertisement field
func (r *advertisementRepository) Update(ctx context.Context, ad *models.Advertisement) error {
	query := `
		UPDATE advertisements
		SET title = $2, description = $3, price = $4, category = $5, images = $6,
			contact_info = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		ad.ID, ad.Title, ad.Description, ad.Price, ad.Category, textArray(ad.Images), ad.ContactInfo,
	).Scan(&ad.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update advertisement: %w", translateError(err))
	}
	return nil
}

// Delete removes an advertisement
func (r *advertisementRepository) Delete(ctx context.Context, id string) error {
	if err := execAffectingOne(ctx, r.db, `DELETE FROM advertisements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete advertisement: %w", err)
	}
	return nil
}
