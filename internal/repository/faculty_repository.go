package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-registrar-api/internal/models"
)

// facultyRow carries the aggregated subject ids alongside the faculty columns.
type facultyRow struct {
	ID         string         `db:"id"`
	Firstname  string         `db:"firstname"`
	Lastname   string         `db:"lastname"`
	SubjectIDs pq.StringArray `db:"subject_ids"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (f facultyRow) model() models.Faculty {
	return models.Faculty{
		ID:         f.ID,
		Firstname:  f.Firstname,
		Lastname:   f.Lastname,
		SubjectIDs: []string(f.SubjectIDs),
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

const facultySelect = `
SELECT f.id, f.firstname, f.lastname,
       COALESCE(array_agg(fs.subject_id::text ORDER BY fs.subject_id) FILTER (WHERE fs.subject_id IS NOT NULL), '{}') AS subject_ids,
       f.created_at, f.updated_at
FROM faculty f
LEFT JOIN faculty_subjects fs ON fs.faculty_id = f.id`

// FacultyRepository reads teaching staff together with the subjects they teach.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs a faculty repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// ListCandidates returns the section adviser and everyone teaching one of the
// given subjects, ordered by last name.
func (r *FacultyRepository) ListCandidates(ctx context.Context, adviserID string, subjectIDs []string) ([]models.Faculty, error) {
	query := facultySelect + `
WHERE f.id::text = $1 OR f.id IN (SELECT faculty_id FROM faculty_subjects WHERE subject_id::text = ANY($2))
GROUP BY f.id
ORDER BY f.lastname ASC, f.firstname ASC`
	var rows []facultyRow
	if err := r.db.SelectContext(ctx, &rows, query, adviserID, pq.Array(subjectIDs)); err != nil {
		return nil, fmt.Errorf("list faculty candidates: %w", err)
	}
	out := make([]models.Faculty, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// FindByID loads one faculty member. A missing row surfaces sql.ErrNoRows.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	query := facultySelect + `
WHERE f.id::text = $1
GROUP BY f.id`
	var row facultyRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	faculty := row.model()
	return &faculty, nil
}
