// SPDX-FileCopyrightText: 2025 ENO0123
// SPDX-License-Identifier: Apache-2.0

package clinical

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func bandLabels(m *Matrix) []string {
	labels := make([]string, 0, len(m.Bands))
	for _, b := range m.Bands {
		labels = append(labels, b.Category)
	}

	return labels
}

func rowNames(b Band) []string {
	names := make([]string, 0, len(b.Rows))
	for _, r := range b.Rows {
		names = append(names, r.Item.ItemName)
	}

	return names
}

func TestBuildMatrixLabResults(t *testing.T) {
	t.Parallel()

	ldl := newItem("LDLコレステロール", "脂質代謝", 92)
	hdl := newItem("HDLコレステロール", "脂質代謝", 91)
	wbc := newItem("白血球数", "血液", 67)
	ast := newItem("AST", "肝胆膵", 100)
	odd := newItem("謎の項目", "", 1)
	height := newItem("身長", "身体", 1)

	items := []TestItem{ldl, hdl, wbc, ast, odd, height}
	results := []TestResult{
		newResult(t, ldl, "2024-03-01", "150"),
		newResult(t, wbc, "2024-01-15", "5.20"),
		newResult(t, height, "2023-12-01", "170.5"),
		newResult(t, hdl, "2024-03-01", "55"),
	}

	m, err := BuildMatrix(items, results, MatrixOptions{Kind: KindLabResult})
	if err != nil {
		t.Fatalf("BuildMatrix failed: %v", err)
	}

	wantDates := []string{"2024-01-15", "2024-03-01"}
	if !slices.Equal(m.Dates, wantDates) {
		t.Fatalf("expected dates %v, got %v", wantDates, m.Dates)
	}

	wantBands := []string{"血液", "脂質代謝", "肝胆膵", UncategorizedLabel}
	if got := bandLabels(m); !slices.Equal(got, wantBands) {
		t.Fatalf("expected bands %v, got %v", wantBands, got)
	}

	if got := rowNames(m.Bands[1]); !slices.Equal(got, []string{"HDLコレステロール", "LDLコレステロール"}) {
		t.Fatalf("expected rows ordered by display order, got %v", got)
	}

	if _, ok := m.Rows[height.ID]; ok {
		t.Fatalf("expected physical item to be excluded from lab matrix")
	}

	row, ok := m.Rows[ast.ID]
	if !ok {
		t.Fatalf("expected a row for an item without results")
	}

	if len(row.Cells) != 0 {
		t.Fatalf("expected empty row, got %d cells", len(row.Cells))
	}
}

func TestBuildMatrixSubCategory(t *testing.T) {
	t.Parallel()

	wbc := newItem("白血球数", "血液", 67)
	ast := newItem("AST", "肝胆膵", 100)

	results := []TestResult{
		newResult(t, wbc, "2024-01-15", "5.2"),
		newResult(t, ast, "2024-02-01", "30"),
	}

	m, err := BuildMatrix([]TestItem{wbc, ast}, results, MatrixOptions{Kind: KindLabResult, SubCategory: "血液"})
	if err != nil {
		t.Fatalf("BuildMatrix failed: %v", err)
	}

	if len(m.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(m.Rows))
	}

	// Dates still come from the whole lab category.
	want := []string{"2024-01-15", "2024-02-01"}
	if !slices.Equal(m.Dates, want) {
		t.Fatalf("expected dates %v, got %v", want, m.Dates)
	}
}

func TestBuildMatrixExtremeDisplayOrders(t *testing.T) {
	t.Parallel()

	last := newItem("LAST", "血液", math.MaxInt)
	first := newItem("FIRST", "血液", math.MinInt)

	m, err := BuildMatrix([]TestItem{last, first}, nil, MatrixOptions{Kind: KindLabResult})
	if err != nil {
		t.Fatalf("BuildMatrix failed: %v", err)
	}

	items := m.Items()
	if len(items) != 2 || items[0].ID != first.ID || items[1].ID != last.ID {
		t.Fatalf("expected MinInt order before MaxInt order, got %+v", items)
	}
}

func TestBuildMatrixSubCategoryIgnoredOutsideLabResults(t *testing.T) {
	t.Parallel()

	height := newItem("身長", "身体", 1)
	weight := newItem("体重", "計測", 2)

	m, err := BuildMatrix([]TestItem{height, weight}, nil, MatrixOptions{Kind: KindPhysical, SubCategory: "身体"})
	if err != nil {
		t.Fatalf("BuildMatrix failed: %v", err)
	}

	if len(m.Rows) != 2 {
		t.Fatalf("expected sub category to be ignored for physical items, got %d rows", len(m.Rows))
	}
}

func TestBuildMatrixImagingSeedsDatesFromAllResults(t *testing.T) {
	t.Parallel()

	xray := newItem("胸部X線", "呼吸器", 1)
	ecg := newItem("安静時心電図", "循環器", 2)
	wbc := newItem("白血球数", "血液", 67)

	results := []TestResult{
		newResult(t, wbc, "2024-05-01", "5.0"),
		newResult(t, xray, "2024-06-01", "異常なし"),
	}

	m, err := BuildMatrix([]TestItem{xray, ecg, wbc}, results, MatrixOptions{Kind: KindImaging})
	if err != nil {
		t.Fatalf("BuildMatrix failed: %v", err)
	}

	want := []string{"2024-05-01", "2024-06-01"}
	if !slices.Equal(m.Dates, want) {
		t.Fatalf("expected dates %v, got %v", want, m.Dates)
	}

	// Non-lab bands sort alphabetically, not by priority.
	if got := bandLabels(m); !slices.Equal(got, []string{"呼吸器", "循環器"}) {
		t.Fatalf("expected alphabetical bands, got %v", got)
	}
}

func TestBuildMatrixDuplicates(t *testing.T) {
	t.Parallel()

	wbc := newItem("白血球数", "血液", 67)
	first := newResult(t, wbc, "2024-01-15", "5.0")
	second := newResult(t, wbc, "2024-01-15", "6.0")
	results := []TestResult{first, second}

	t.Run("keep last", func(t *testing.T) {
		t.Parallel()

		m, err := BuildMatrix([]TestItem{wbc}, results, MatrixOptions{Kind: KindLabResult})
		if err != nil {
			t.Fatalf("BuildMatrix failed: %v", err)
		}

		res, ok := m.Cell(wbc.ID, "2024-01-15")
		if !ok {
			t.Fatalf("expected a cell")
		}

		if res.ID != second.ID {
			t.Fatalf("expected last result %s, got %s", second.ID, res.ID)
		}
	})

	t.Run("reject", func(t *testing.T) {
		t.Parallel()

		_, err := BuildMatrix([]TestItem{wbc}, results, MatrixOptions{Kind: KindLabResult, Duplicates: RejectDuplicates})

		var ambiguous *AmbiguousDataError
		if !errors.As(err, &ambiguous) {
			t.Fatalf("expected AmbiguousDataError, got %v", err)
		}

		if ambiguous.Date != "2024-01-15" || len(ambiguous.ResultIDs) != 2 {
			t.Fatalf("unexpected error details: %+v", ambiguous)
		}
	})
}

func TestBuildMatrixOrphanResults(t *testing.T) {
	t.Parallel()

	wbc := newItem("白血球数", "血液", 67)
	ghost := newItem("削除済み", "血液", 1)

	results := []TestResult{
		newResult(t, wbc, "2024-01-15", "5.0"),
		newResult(t, ghost, "2024-02-15", "1.0"),
	}

	m, err := BuildMatrix([]TestItem{wbc}, results, MatrixOptions{Kind: KindLabResult})
	if err != nil {
		t.Fatalf("BuildMatrix failed: %v", err)
	}

	if m.Orphans != 1 {
		t.Fatalf("expected 1 orphan, got %d", m.Orphans)
	}

	if !slices.Equal(m.Dates, []string{"2024-01-15"}) {
		t.Fatalf("expected orphan date to be skipped, got %v", m.Dates)
	}
}

func TestBuildMatrixRoundTripAndIdempotence(t *testing.T) {
	t.Parallel()

	a := newItem("A", "血液", 2)
	b := newItem("B", "血液", 1)
	c := newItem("C", "血液", 1)

	results := []TestResult{
		newResult(t, a, "2024-01-02", "5.00"),
		newResult(t, b, "2023-11-30", "0.10"),
		newResult(t, c, "2024-01-02", "(+)"),
		newResult(t, a, "2023-11-30", "12.345678"),
	}
	items := []TestItem{a, b, c}

	first, err := BuildMatrix(items, results, MatrixOptions{Kind: KindLabResult})
	if err != nil {
		t.Fatalf("BuildMatrix failed: %v", err)
	}

	for _, res := range results {
		if got := first.Rows[res.ItemID].Value(DateKey(res.TestDate)); got != res.ResultValue {
			t.Fatalf("expected %q, got %q", res.ResultValue, got)
		}
	}

	second, err := BuildMatrix(items, results, MatrixOptions{Kind: KindLabResult})
	if err != nil {
		t.Fatalf("BuildMatrix failed: %v", err)
	}

	if !slices.Equal(first.Dates, second.Dates) {
		t.Fatalf("expected identical dates, got %v and %v", first.Dates, second.Dates)
	}

	if got, want := rowNames(second.Bands[0]), rowNames(first.Bands[0]); !slices.Equal(got, want) {
		t.Fatalf("expected identical row order, got %v and %v", want, got)
	}

	// Equal display order keeps catalog order.
	if got := rowNames(first.Bands[0]); !slices.Equal(got, []string{"B", "C", "A"}) {
		t.Fatalf("expected [B C A], got %v", got)
	}
}

func TestDateSelection(t *testing.T) {
	t.Parallel()

	all := []string{"2024-01-01", "2024-02-01", "2024-03-01"}
	sel := SelectDates(all...)

	toggled := sel.Toggle("2024-02-01")
	if !sel.Contains("2024-02-01") {
		t.Fatalf("expected toggle to leave the original selection untouched")
	}

	if got := toggled.Filter(all); !slices.Equal(got, []string{"2024-01-01", "2024-03-01"}) {
		t.Fatalf("unexpected filtered dates %v", got)
	}

	if got := toggled.Toggle("2024-02-01").Keys(); !slices.Equal(got, all) {
		t.Fatalf("expected toggling twice to restore, got %v", got)
	}
}
