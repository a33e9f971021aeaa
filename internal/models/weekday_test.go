package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleJSONCanonicalisesLabels(t *testing.T) {
	var s Schedule
	require.NoError(t, json.Unmarshal([]byte(`{"day_of_week":"monday","semester":"1st semester"}`), &s))
	assert.Equal(t, Monday, s.DayOfWeek)
	assert.Equal(t, FirstSemester, s.Semester)

	require.NoError(t, json.Unmarshal([]byte(`{"day_of_week":"THU","semester":"second"}`), &s))
	assert.Equal(t, Thursday, s.DayOfWeek)
	assert.Equal(t, SecondSemester, s.Semester)
}

func TestScheduleJSONLeavesEmptyLabelsUnset(t *testing.T) {
	var s Schedule
	require.NoError(t, json.Unmarshal([]byte(`{"day_of_week":"","semester":""}`), &s))
	assert.Equal(t, Weekday(""), s.DayOfWeek)
	assert.Equal(t, Semester(""), s.Semester)
}

func TestScheduleJSONRejectsUnknownLabels(t *testing.T) {
	var s Schedule
	assert.Error(t, json.Unmarshal([]byte(`{"day_of_week":"Funday"}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"semester":"3rd Semester"}`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"day_of_week":3}`), &s))
}
