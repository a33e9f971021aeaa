package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-registrar-api/internal/models"
)

// SchoolYearRepository persists school years.
type SchoolYearRepository struct {
	db *sqlx.DB
}

// NewSchoolYearRepository constructs a school year repository.
func NewSchoolYearRepository(db *sqlx.DB) *SchoolYearRepository {
	return &SchoolYearRepository{db: db}
}

// FindByID loads a school year. A missing row surfaces sql.ErrNoRows.
func (r *SchoolYearRepository) FindByID(ctx context.Context, id int64) (*models.SchoolYear, error) {
	const query = `SELECT id, start_year, end_year, created_at FROM school_years WHERE id = $1`
	var year models.SchoolYear
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		return nil, err
	}
	return &year, nil
}

// Ensure returns the school year starting at startYear, creating it when absent.
func (r *SchoolYearRepository) Ensure(ctx context.Context, exec sqlx.ExtContext, startYear, endYear int) (*models.SchoolYear, error) {
	if exec == nil {
		exec = r.db
	}
	const query = `
INSERT INTO school_years (start_year, end_year, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (start_year, end_year) DO UPDATE SET start_year = EXCLUDED.start_year
RETURNING id, start_year, end_year, created_at`
	var year models.SchoolYear
	if err := sqlx.GetContext(ctx, exec, &year, query, startYear, endYear, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("ensure school year: %w", err)
	}
	return &year, nil
}
