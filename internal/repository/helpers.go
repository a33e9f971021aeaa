package repository

import (
	"database/sql"
	"fmt"
)

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// expectAffected maps a zero-row write to sql.ErrNoRows so services can report not found.
func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
