package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Semester identifies an instructional term inside a school year.
type Semester string

const (
	FirstSemester  Semester = "1st Semester"
	SecondSemester Semester = "2nd Semester"
	Summer         Semester = "Summer"
)

// ParseSemester accepts the canonical labels and common shorthands.
func ParseSemester(raw string) (Semester, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1st semester", "1st", "first", "first semester":
		return FirstSemester, nil
	case "2nd semester", "2nd", "second", "second semester":
		return SecondSemester, nil
	case "summer":
		return Summer, nil
	}
	return "", fmt.Errorf("unknown semester %q", raw)
}

// Valid reports whether s is a canonical semester label.
func (s Semester) Valid() bool {
	return s == FirstSemester || s == SecondSemester || s == Summer
}

// UnmarshalJSON canonicalises the semester label. An empty string leaves s unset.
func (s *Semester) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	sem, err := ParseSemester(raw)
	if err != nil {
		return err
	}
	*s = sem
	return nil
}
