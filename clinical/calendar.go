/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package clinical

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Granularity is the width of a calendar column.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity parses a granularity, defaulting to month.
func ParseGranularity(s string) (Granularity, bool) {
	switch Granularity(strings.TrimSpace(s)) {
	case GranularityDay:
		return GranularityDay, true
	case GranularityWeek:
		return GranularityWeek, true
	case GranularityMonth:
		return GranularityMonth, true
	}

	return GranularityMonth, false
}

// Column is one calendar column. Start and End are inclusive dates.
type Column struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether the date of t falls within the column.
func (c Column) Contains(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(c.Start) && !d.After(c.End)
}

// CalendarRow holds the per-column flags of one medication.
type CalendarRow struct {
	Medication Medication
	Covered    []bool
	StartsIn   []bool
}

// Calendar is the aligned column view of a patient's medications.
type Calendar struct {
	Granularity Granularity
	RangeStart  time.Time
	RangeEnd    time.Time
	Columns     []Column
	Rows        []CalendarRow
	// TodayIndex is the first column containing today, or -1.
	TodayIndex int
}

// BuildCalendar lays medications out over columns of the given granularity.
// The range covers today and every interval, widened by one year on each
// side. Ongoing medications are covered through the end of the range.
func BuildCalendar(meds []Medication, g Granularity, today time.Time) *Calendar {
	if _, ok := ParseGranularity(string(g)); !ok {
		g = GranularityMonth
	}

	today = DateOf(today)
	lo, hi := observedRange(meds, today)
	lo = lo.AddDate(-1, 0, 0)
	hi = hi.AddDate(1, 0, 0)

	cal := &Calendar{
		Granularity: g,
		RangeStart:  lo,
		RangeEnd:    hi,
		Columns:     buildColumns(g, lo, hi),
		TodayIndex:  -1,
	}

	for i, col := range cal.Columns {
		if col.Contains(today) {
			cal.TodayIndex = i
			break
		}
	}

	ordered := slices.Clone(meds)
	slices.SortStableFunc(ordered, func(a, b Medication) int {
		if c := DateOf(a.StartDate).Compare(DateOf(b.StartDate)); c != 0 {
			return c
		}
		return strings.Compare(a.MedicationName, b.MedicationName)
	})

	for _, med := range ordered {
		start := DateOf(med.StartDate)
		end := hi
		if med.EndDate != nil {
			end = DateOf(*med.EndDate)
		}

		row := CalendarRow{
			Medication: med,
			Covered:    make([]bool, len(cal.Columns)),
			StartsIn:   make([]bool, len(cal.Columns)),
		}

		for i, col := range cal.Columns {
			row.Covered[i] = !start.After(col.End) && !end.Before(col.Start)
			row.StartsIn[i] = col.Contains(start)
		}

		cal.Rows = append(cal.Rows, row)
	}

	return cal
}

// observedRange returns today plus or minus one year, widened to include
// every interval. An open end counts as today.
func observedRange(meds []Medication, today time.Time) (time.Time, time.Time) {
	lo := today.AddDate(-1, 0, 0)
	hi := today.AddDate(1, 0, 0)

	for _, med := range meds {
		start := DateOf(med.StartDate)
		end := today
		if med.EndDate != nil {
			end = DateOf(*med.EndDate)
		}

		for _, d := range []time.Time{start, end} {
			if d.Before(lo) {
				lo = d
			}
			if d.After(hi) {
				hi = d
			}
		}
	}

	return lo, hi
}

func buildColumns(g Granularity, lo, hi time.Time) []Column {
	var cols []Column

	switch g {
	case GranularityDay:
		for d := lo; !d.After(hi); d = d.AddDate(0, 0, 1) {
			cols = append(cols, Column{Start: d, End: d, Label: d.Format("01/02")})
		}
	case GranularityWeek:
		for d := MondayOnOrBefore(lo); !d.After(hi); d = d.AddDate(0, 0, 7) {
			cols = append(cols, Column{
				Start: d,
				End:   d.AddDate(0, 0, 6),
				Label: fmt.Sprintf("%d月\n%d週", int(d.Month()), WeekOfMonth(d)),
			})
		}
	default:
		for d := time.Date(lo.Year(), lo.Month(), 1, 0, 0, 0, 0, time.UTC); !d.After(hi); d = d.AddDate(0, 1, 0) {
			cols = append(cols, Column{
				Start: d,
				End:   d.AddDate(0, 1, -1),
				Label: fmt.Sprintf("%d年\n%d月", d.Year(), int(d.Month())),
			})
		}
	}

	return cols
}

// MondayOnOrBefore returns the Monday of the week containing t.
func MondayOnOrBefore(t time.Time) time.Time {
	d := DateOf(t)
	offset := (int(d.Weekday()) + 6) % 7

	return d.AddDate(0, 0, -offset)
}

// WeekOfMonth returns the ordinal of the Monday-aligned week containing t
// within t's month. Week 1 starts on the first Monday on or after the 1st;
// days before it belong to week 0.
func WeekOfMonth(t time.Time) int {
	d := DateOf(t)
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)

	firstMonday := MondayOnOrBefore(first)
	if firstMonday.Before(first) {
		firstMonday = firstMonday.AddDate(0, 0, 7)
	}

	days := int(d.Sub(firstMonday).Hours() / 24)
	if days < 0 {
		return 0
	}

	return days/7 + 1
}
