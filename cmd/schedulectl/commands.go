package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-registrar-api/internal/dto"
	"github.com/noah-isme/sma-registrar-api/internal/models"
	"github.com/noah-isme/sma-registrar-api/internal/scheduling"
	"github.com/noah-isme/sma-registrar-api/internal/service"
	"github.com/noah-isme/sma-registrar-api/pkg/export"
)

// errRejected signals a candidate that failed validation; the verdict is already printed.
var errRejected = errors.New("schedule rejected")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "schedulectl",
		Short:         "Offline checks for class schedules and academic calendars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCalendarCmd(), newDurationCmd(), newValidateCmd(), newGridCmd())
	return root
}

func newCalendarCmd() *cobra.Command {
	var startDate, semester string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Derive end date, quarters and grading deadline from a start date",
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := scheduling.DeriveCalendarFromStrings(startDate, semester)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), fields)
		},
	}
	cmd.Flags().StringVar(&startDate, "start-date", "", "semester start, YYYY-MM-DD")
	cmd.Flags().StringVar(&semester, "semester", "", `"1st Semester", "2nd Semester" or "Summer"`)
	return cmd
}

func newDurationCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "duration",
		Short: "Report the bucketed duration of a time range",
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := scheduling.ParseInterval(start, end)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.DurationResponse{
				Duration: scheduling.BucketMinutes(window.Minutes()),
				Minutes:  window.Minutes(),
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start time, HH:MM")
	cmd.Flags().StringVar(&end, "end", "", "end time, HH:MM")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var candidatePath, existingPath, excludeID string
	var loadCap int
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a candidate schedule against existing schedules",
		Long:  "Prints the verdict as JSON and exits non-zero when the candidate is rejected.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var candidate models.Schedule
			if err := readJSON(cmd.InOrStdin(), candidatePath, &candidate); err != nil {
				return err
			}
			var existing []models.Schedule
			if existingPath != "" {
				if err := readJSON(cmd.InOrStdin(), existingPath, &existing); err != nil {
					return err
				}
			}
			verdict, err := scheduling.ValidateSchedule(candidate, existing, scheduling.ValidateOptions{
				ExcludeID: excludeID,
				LoadCap:   loadCap,
			})
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), verdict); err != nil {
				return err
			}
			if !verdict.OK {
				fmt.Fprintln(cmd.ErrOrStderr(), verdict.Message())
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&candidatePath, "candidate", "", `candidate schedule JSON file ("-" for stdin)`)
	cmd.Flags().StringVar(&existingPath, "existing", "", "JSON array of stored schedules")
	cmd.Flags().StringVar(&excludeID, "exclude", "", "schedule id to ignore, for edits")
	cmd.Flags().IntVar(&loadCap, "load-cap", scheduling.DefaultLoadCap, "schedules a faculty member may hold")
	_ = cmd.MarkFlagRequired("candidate")
	return cmd
}

func newGridCmd() *cobra.Command {
	var schedulesPath, dayStart, dayEnd, format string
	var step int
	var days []string
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Lay schedules out as a day by time-slot timetable",
		RunE: func(cmd *cobra.Command, args []string) error {
			var schedules []models.Schedule
			if err := readJSON(cmd.InOrStdin(), schedulesPath, &schedules); err != nil {
				return err
			}
			slots, err := scheduling.NewTimeSlots(dayStart, dayEnd, step)
			if err != nil {
				return err
			}
			columns := make([]models.Weekday, 0, len(days))
			for _, label := range days {
				day, err := models.ParseWeekday(label)
				if err != nil {
					return err
				}
				columns = append(columns, day)
			}
			grid := scheduling.BuildGrid(schedules, slots, columns)

			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), grid)
			case "csv":
				body, err := export.NewCSVExporter().Render(service.GridSheet(grid, scheduleLabel))
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(body)
				return err
			default:
				return fmt.Errorf("unknown format %q, want json or csv", format)
			}
		},
	}
	cmd.Flags().StringVar(&schedulesPath, "schedules", "-", `JSON array of schedules ("-" for stdin)`)
	cmd.Flags().StringVar(&dayStart, "day-start", scheduling.DefaultDayStart, "first slot, HH:MM")
	cmd.Flags().StringVar(&dayEnd, "day-end", scheduling.DefaultDayEnd, "end of the last slot, HH:MM")
	cmd.Flags().IntVar(&step, "slot-minutes", scheduling.DefaultSlotMinutes, "slot length in minutes")
	cmd.Flags().StringSliceVar(&days, "days", weekdayLabels(models.SchoolDays), "day columns")
	cmd.Flags().StringVar(&format, "format", "json", "json or csv")
	return cmd
}

func scheduleLabel(s *models.Schedule) string {
	label := s.SubjectID
	if !s.HasFaculty() {
		label += ", TBA"
	} else {
		label += ", " + s.FacultyID
	}
	if s.Room != nil && *s.Room != "" {
		label += ", " + *s.Room
	}
	return label
}

func weekdayLabels(days []models.Weekday) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = string(d)
	}
	return out
}

func readJSON(stdin io.Reader, path string, dst interface{}) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
