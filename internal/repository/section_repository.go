package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-registrar-api/internal/models"
)

// SectionRepository reads class sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a section repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindByID loads a section. A missing row surfaces sql.ErrNoRows.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, strand_id, grade_level, section_name, adviser_id, created_at, updated_at FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}
