/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package clinical

import (
	"cmp"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// DuplicatePolicy decides what BuildMatrix does when more than one result is
// stored for the same (item, date) pair.
type DuplicatePolicy int

const (
	// KeepLast places the last result encountered in the cell.
	KeepLast DuplicatePolicy = iota
	// RejectDuplicates fails with an AmbiguousDataError.
	RejectDuplicates
)

// MatrixOptions selects what BuildMatrix renders.
type MatrixOptions struct {
	Kind ItemKind
	// SubCategory restricts lab result rows to one category label. Empty
	// means all. Other kinds ignore it.
	SubCategory string
	Duplicates  DuplicatePolicy
}

// Row is one test item and its results keyed by date.
type Row struct {
	Item  TestItem
	Cells map[string]*TestResult
}

// Result returns the result stored for date, if any.
func (r *Row) Result(date string) (*TestResult, bool) {
	res, ok := r.Cells[date]
	return res, ok
}

// Value returns the stored value for date, or "" when the cell is empty.
func (r *Row) Value(date string) string {
	if res, ok := r.Cells[date]; ok {
		return res.ResultValue
	}

	return ""
}

// Band is a category label and its rows in display order.
type Band struct {
	Category string
	Rows     []*Row
}

// Matrix is the dense item by date view of a patient's results.
type Matrix struct {
	Kind  ItemKind
	Dates []string
	Bands []Band
	Rows  map[uuid.UUID]*Row
	// Orphans counts results whose item is missing from the catalog.
	Orphans int
}

// Items returns the rows' items in band order.
func (m *Matrix) Items() []TestItem {
	var items []TestItem
	for _, band := range m.Bands {
		for _, row := range band.Rows {
			items = append(items, row.Item)
		}
	}

	return items
}

// Cell returns the stored result for the item and date, if any.
func (m *Matrix) Cell(itemID uuid.UUID, date string) (*TestResult, bool) {
	row, ok := m.Rows[itemID]
	if !ok {
		return nil, false
	}

	return row.Result(date)
}

// BuildMatrix turns the sparse result list of one patient into a dense
// matrix for the selected kind. Inputs are not modified; cells point into
// results.
func BuildMatrix(items []TestItem, results []TestResult, opts MatrixOptions) (*Matrix, error) {
	kindItems := make(map[uuid.UUID]struct{})
	catalog := make(map[uuid.UUID]struct{}, len(items))

	m := &Matrix{
		Kind: opts.Kind,
		Rows: make(map[uuid.UUID]*Row),
	}

	var rows []*Row

	for _, item := range items {
		catalog[item.ID] = struct{}{}

		if item.Kind() != opts.Kind {
			continue
		}

		kindItems[item.ID] = struct{}{}

		if opts.Kind == KindLabResult && opts.SubCategory != "" && CategoryLabel(item.Category) != opts.SubCategory {
			continue
		}

		if _, dup := m.Rows[item.ID]; dup {
			continue
		}

		row := &Row{Item: item, Cells: make(map[string]*TestResult)}
		m.Rows[item.ID] = row
		rows = append(rows, row)
	}

	dates := make(map[string]struct{})
	placedBy := make(map[uuid.UUID]map[string][]uuid.UUID)

	for i := range results {
		res := &results[i]
		key := DateKey(res.TestDate)

		if _, known := catalog[res.ItemID]; !known {
			m.Orphans++
		}

		_, inKind := kindItems[res.ItemID]
		if opts.Kind == KindImaging || inKind {
			dates[key] = struct{}{}
		}

		row, ok := m.Rows[res.ItemID]
		if !ok {
			continue
		}

		if _, exists := row.Cells[key]; exists && opts.Duplicates == RejectDuplicates {
			ids := placedBy[res.ItemID][key]
			return nil, &AmbiguousDataError{
				ItemID:    res.ItemID,
				Date:      key,
				ResultIDs: append(slices.Clone(ids), res.ID),
			}
		}

		row.Cells[key] = res

		if placedBy[res.ItemID] == nil {
			placedBy[res.ItemID] = make(map[string][]uuid.UUID)
		}
		placedBy[res.ItemID][key] = append(placedBy[res.ItemID][key], res.ID)
	}

	m.Dates = make([]string, 0, len(dates))
	for d := range dates {
		m.Dates = append(m.Dates, d)
	}
	sort.Strings(m.Dates)

	m.Bands = groupBands(rows, opts.Kind)

	return m, nil
}

func groupBands(rows []*Row, kind ItemKind) []Band {
	index := make(map[string]int)

	var bands []Band

	for _, row := range rows {
		label := CategoryLabel(row.Item.Category)

		i, ok := index[label]
		if !ok {
			i = len(bands)
			index[label] = i
			bands = append(bands, Band{Category: label})
		}

		bands[i].Rows = append(bands[i].Rows, row)
	}

	compare := strings.Compare
	if kind == KindLabResult {
		compare = CompareCategories
	}

	slices.SortFunc(bands, func(a, b Band) int {
		return compare(a.Category, b.Category)
	})

	for i := range bands {
		slices.SortStableFunc(bands[i].Rows, func(a, b *Row) int {
			return cmp.Compare(a.Item.DisplayOrder, b.Item.DisplayOrder)
		})
	}

	return bands
}

// DateSelection is the set of date columns currently shown.
type DateSelection map[string]struct{}

// SelectDates builds a selection containing dates.
func SelectDates(dates ...string) DateSelection {
	sel := make(DateSelection, len(dates))
	for _, d := range dates {
		sel[d] = struct{}{}
	}

	return sel
}

// Contains reports whether date is selected.
func (s DateSelection) Contains(date string) bool {
	_, ok := s[date]
	return ok
}

// Toggle returns a new selection with date flipped.
func (s DateSelection) Toggle(date string) DateSelection {
	out := make(DateSelection, len(s)+1)
	for d := range s {
		out[d] = struct{}{}
	}

	if _, ok := out[date]; ok {
		delete(out, date)
	} else {
		out[date] = struct{}{}
	}

	return out
}

// Filter keeps the selected dates of all, preserving their order.
func (s DateSelection) Filter(all []string) []string {
	out := make([]string, 0, len(all))
	for _, d := range all {
		if s.Contains(d) {
			out = append(out, d)
		}
	}

	return out
}

// Keys returns the selected dates in ascending order.
func (s DateSelection) Keys() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Strings(out)

	return out
}
