package repository

import (
	"context"

	"github.com/cabiir/FianlFitnessGym/internal/models"
)

type TrailInput struct {
	Title       string
	Category    string
	Duration    string
	Intensity   string
	Description string
	Image       string
}

type TrailRepository struct {
	db DBTX
}

func NewTrailRepository(db DBTX) *TrailRepository {
	return &TrailRepository{db: db}
}

const trailColumns = `id, title, category, duration, intensity, description, image, workouts, created_at, updated_at`

func (r *TrailRepository) Create(ctx context.Context, input TrailInput) (*models.Trail, error) {
	query := `
		INSERT INTO trails (title, category, duration, intensity, description, image)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + trailColumns

	return scanTrail(r.db.QueryRow(
		ctx,
		query,
		input.Title,
		input.Category,
		input.Duration,
		input.Intensity,
		input.Description,
		input.Image,
	))
}

// List returns trails newest first, restricted to category unless it is empty.
func (r *TrailRepository) List(ctx context.Context, category string) ([]models.Trail, error) {
	query := `
		SELECT ` + trailColumns + `
		FROM trails
		WHERE ($1 = '' OR category = $1)
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trails := make([]models.Trail, 0)
	for rows.Next() {
		trail, err := scanTrail(rows)
		if err != nil {
			return nil, err
		}
		trails = append(trails, *trail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trails, nil
}

func (r *TrailRepository) GetByID(ctx context.Context, id int64) (*models.Trail, error) {
	query := `SELECT ` + trailColumns + ` FROM trails WHERE id = $1`
	return scanTrail(r.db.QueryRow(ctx, query, id))
}

func (r *TrailRepository) Update(ctx context.Context, id int64, input TrailInput) (*models.Trail, error) {
	query := `
		UPDATE trails
		SET title = $2,
			category = $3,
			duration = $4,
			intensity = $5,
			description = $6,
			image = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + trailColumns

	return scanTrail(r.db.QueryRow(
		ctx,
		query,
		id,
		input.Title,
		input.Category,
		input.Duration,
		input.Intensity,
		input.Description,
		input.Image,
	))
}

func (r *TrailRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM trails WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrail(row rowScanner) (*models.Trail, error) {
	var trail models.Trail
	err := row.Scan(
		&trail.ID,
		&trail.Title,
		&trail.Category,
		&trail.Duration,
		&trail.Intensity,
		&trail.Description,
		&trail.Image,
		&trail.Workouts,
		&trail.CreatedAt,
		&trail.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trail, nil
}
