package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SchoolYear is the single representation of an academic year past the API boundary.
type SchoolYear struct {
	ID        int64     `db:"id" json:"id"`
	StartYear int       `db:"start_year" json:"start_year"`
	EndYear   int       `db:"end_year" json:"end_year"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Format renders the year as "YYYY-YYYY".
func (y SchoolYear) Format() string {
	return fmt.Sprintf("%04d-%04d", y.StartYear, y.EndYear)
}

// ParseSchoolYearLabel parses "YYYY-YYYY" where the end year follows the start year.
func ParseSchoolYearLabel(label string) (start, end int, err error) {
	parts := strings.Split(strings.TrimSpace(label), "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 4 {
		return 0, 0, fmt.Errorf("school year %q must look like YYYY-YYYY", label)
	}
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("school year %q: %w", label, err)
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("school year %q: %w", label, err)
	}
	if end != start+1 {
		return 0, 0, fmt.Errorf("school year %q must span consecutive years", label)
	}
	return start, end, nil
}
