package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Weekday is the canonical day name stored on schedules.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// SchoolDays are the days a schedule may be placed on.
var SchoolDays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var weekdayIndex = map[string]Weekday{
	"monday": Monday, "mon": Monday,
	"tuesday": Tuesday, "tue": Tuesday,
	"wednesday": Wednesday, "wed": Wednesday,
	"thursday": Thursday, "thu": Thursday,
	"friday": Friday, "fri": Friday,
	"saturday": Saturday, "sat": Saturday,
	"sunday": Sunday, "sun": Sunday,
}

// ParseWeekday normalises a day label (full or three-letter, any case).
func ParseWeekday(raw string) (Weekday, error) {
	day, ok := weekdayIndex[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("unknown day of week %q", raw)
	}
	return day, nil
}

// IsSchoolDay reports whether schedules may be placed on the day. Sunday is display-only.
func (d Weekday) IsSchoolDay() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday:
		return true
	}
	return false
}

// Valid reports whether d is one of the seven canonical names.
func (d Weekday) Valid() bool {
	return d.IsSchoolDay() || d == Sunday
}

// UnmarshalJSON canonicalises the day label. An empty string leaves d unset.
func (d *Weekday) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*d = ""
		return nil
	}
	day, err := ParseWeekday(raw)
	if err != nil {
		return err
	}
	*d = day
	return nil
}
