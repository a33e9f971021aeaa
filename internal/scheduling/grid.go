package scheduling

import (
	"encoding/json"
	"fmt"

	"github.com/noah-isme/sma-registrar-api/internal/models"
)

// Instructional day used when no configuration overrides it.
const (
	DefaultDayStart    = "07:30"
	DefaultDayEnd      = "16:30"
	DefaultSlotMinutes = 30
)

// TimeSlots is a fixed cadence of slot start times covering the instructional day.
type TimeSlots struct {
	start  int
	step   int
	labels []string
}

// NewTimeSlots builds slots of step minutes from dayStart up to (excluding) dayEnd.
func NewTimeSlots(dayStart, dayEnd string, step int) (TimeSlots, error) {
	if step <= 0 {
		return TimeSlots{}, fmt.Errorf("slot length must be positive, got %d", step)
	}
	window, err := ParseInterval(dayStart, dayEnd)
	if err != nil {
		return TimeSlots{}, err
	}
	labels := make([]string, 0, window.Minutes()/step+1)
	for m := window.Start; m < window.End; m += step {
		labels = append(labels, FormatMinutes(m))
	}
	return TimeSlots{start: window.Start, step: step, labels: labels}, nil
}

// DefaultTimeSlots covers 07:30–16:30 in 30 minute steps.
func DefaultTimeSlots() TimeSlots {
	slots, _ := NewTimeSlots(DefaultDayStart, DefaultDayEnd, DefaultSlotMinutes)
	return slots
}

// Labels returns the "HH:MM" start of every slot.
func (t TimeSlots) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Len is the number of slots.
func (t TimeSlots) Len() int {
	return len(t.labels)
}

// Step is the slot length in minutes.
func (t TimeSlots) Step() int {
	return t.step
}

// Index returns the position of a slot label.
func (t TimeSlots) Index(label string) (int, bool) {
	m, err := ToMinutes(label)
	if err != nil || t.step == 0 || m < t.start || (m-t.start)%t.step != 0 {
		return 0, false
	}
	idx := (m - t.start) / t.step
	return idx, idx < len(t.labels)
}

// span maps a minute interval to the slot range [from, to) it touches.
func (t TimeSlots) span(i Interval) (from, to int, ok bool) {
	if len(t.labels) == 0 {
		return 0, 0, false
	}
	from = floorDiv(i.Start-t.start, t.step)
	to = -floorDiv(-(i.End - t.start), t.step)
	if from < 0 {
		from = 0
	}
	if to > len(t.labels) {
		to = len(t.labels)
	}
	return from, to, from < to
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Cell is one (day, slot) position of a timetable. A nil cell is free. The
// first slot of a schedule holds the start cell; every later slot of the same
// span is Occupied so renderers can merge the span into a single row-spanning cell.
type Cell struct {
	ScheduleID string           `json:"schedule_id"`
	IsStart    bool             `json:"is_start"`
	IsEnd      bool             `json:"is_end"`
	IsMiddle   bool             `json:"is_middle"`
	Occupied   bool             `json:"-"`
	RowSpan    int              `json:"row_span,omitempty"`
	Schedule   *models.Schedule `json:"schedule,omitempty"`
}

// MarshalJSON encodes continuation cells as the string "occupied".
func (c *Cell) MarshalJSON() ([]byte, error) {
	if c.Occupied {
		return []byte(`"occupied"`), nil
	}
	type plain Cell
	return json.Marshal((*plain)(c))
}

// Grid is a day × slot projection of schedules. It is a read view: building it
// never fails on conflicting input.
type Grid struct {
	days  []models.Weekday
	slots TimeSlots
	cells map[models.Weekday][]*Cell
}

// Days returns the day columns in display order.
func (g *Grid) Days() []models.Weekday {
	out := make([]models.Weekday, len(g.days))
	copy(out, g.days)
	return out
}

// Slots returns the slot cadence of the grid.
func (g *Grid) Slots() TimeSlots {
	return g.slots
}

// At returns the cell at a day and slot index; nil when free or out of range.
func (g *Grid) At(day models.Weekday, index int) *Cell {
	row, ok := g.cells[day]
	if !ok || index < 0 || index >= len(row) {
		return nil
	}
	return row[index]
}

// Lookup returns the cell for a day and "HH:MM" slot label.
func (g *Grid) Lookup(day models.Weekday, slot string) *Cell {
	idx, ok := g.slots.Index(slot)
	if !ok {
		return nil
	}
	return g.At(day, idx)
}

// Row is one slot across all days, in Days() order.
type Row struct {
	Slot  string
	Cells []*Cell
}

// Rows lays the grid out slot by slot for renderers.
func (g *Grid) Rows() []Row {
	rows := make([]Row, 0, g.slots.Len())
	for i, label := range g.slots.labels {
		row := Row{Slot: label, Cells: make([]*Cell, len(g.days))}
		for j, day := range g.days {
			row.Cells[j] = g.At(day, i)
		}
		rows = append(rows, row)
	}
	return rows
}

// Starts returns every start cell, day by day in slot order.
func (g *Grid) Starts() []*Cell {
	var out []*Cell
	for _, day := range g.days {
		for _, c := range g.cells[day] {
			if c != nil && c.IsStart {
				out = append(out, c)
			}
		}
	}
	return out
}

// MarshalJSON encodes the grid as {days, time_slots, cells: {day: {slot: cell}}}.
func (g *Grid) MarshalJSON() ([]byte, error) {
	cells := make(map[models.Weekday]map[string]*Cell, len(g.days))
	for _, day := range g.days {
		byslot := make(map[string]*Cell, g.slots.Len())
		for i, label := range g.slots.labels {
			byslot[label] = g.At(day, i)
		}
		cells[day] = byslot
	}
	return json.Marshal(struct {
		Days      []models.Weekday                    `json:"days"`
		TimeSlots []string                            `json:"time_slots"`
		Cells     map[models.Weekday]map[string]*Cell `json:"cells"`
	}{g.days, g.slots.labels, cells})
}

// BuildGrid projects schedules onto days × slots. Schedules on days outside
// the list, outside the instructional day, or with malformed times are left
// out. When two schedules overlap, the later one in iteration order wins and
// the earlier one is removed from that day entirely: its slots that the
// winner does not cover are left as nil cells.
func BuildGrid(schedules []models.Schedule, slots TimeSlots, days []models.Weekday) *Grid {
	if len(days) == 0 {
		days = models.SchoolDays
	}
	g := &Grid{
		days:  append([]models.Weekday(nil), days...),
		slots: slots,
		cells: make(map[models.Weekday][]*Cell, len(days)),
	}
	owners := make(map[models.Weekday][]int, len(days))
	for _, day := range g.days {
		g.cells[day] = make([]*Cell, slots.Len())
		row := make([]int, slots.Len())
		for i := range row {
			row[i] = -1
		}
		owners[day] = row
	}

	for n := range schedules {
		sched := schedules[n]
		row, ok := g.cells[sched.DayOfWeek]
		if !ok {
			continue
		}
		window, err := ParseInterval(sched.StartTime, sched.EndTime)
		if err != nil {
			continue
		}
		from, to, ok := slots.span(window)
		if !ok {
			continue
		}

		owner := owners[sched.DayOfWeek]
		for i := from; i < to; i++ {
			if prev := owner[i]; prev >= 0 {
				evict(row, owner, prev)
			}
		}

		ref := &sched
		for i := from; i < to; i++ {
			owner[i] = n
			cell := &Cell{
				ScheduleID: sched.ID,
				IsStart:    i == from,
				IsEnd:      i == to-1,
				IsMiddle:   i > from && i < to-1,
				Occupied:   i != from,
				Schedule:   ref,
			}
			if cell.IsStart {
				cell.RowSpan = to - from
			}
			row[i] = cell
		}
	}
	return g
}

func evict(row []*Cell, owner []int, victim int) {
	for i, o := range owner {
		if o == victim {
			owner[i] = -1
			row[i] = nil
		}
	}
}
