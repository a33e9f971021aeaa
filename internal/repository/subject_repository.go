package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-registrar-api/internal/models"
)

// SubjectRepository reads the subject catalogue.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListByStrand returns every subject offered to a strand, ordered by code.
func (r *SubjectRepository) ListByStrand(ctx context.Context, strandID string) ([]models.Subject, error) {
	const query = `SELECT id, code, name, strand_id, grade_level, created_at, updated_at FROM subjects WHERE strand_id = $1 ORDER BY grade_level ASC, code ASC`
	subjects := []models.Subject{}
	if err := r.db.SelectContext(ctx, &subjects, query, strandID); err != nil {
		return nil, fmt.Errorf("list subjects by strand: %w", err)
	}
	return subjects, nil
}

// FindByID loads one subject. A missing row surfaces sql.ErrNoRows.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, code, name, strand_id, grade_level, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}
