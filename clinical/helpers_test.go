// SPDX-FileCopyrightText: 2025 ENO0123
// SPDX-License-Identifier: Apache-2.0

package clinical

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func ptr(f float64) *float64 {
	return &f
}

func date(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", s, err)
	}

	return d
}

func newItem(name, category string, order int) TestItem {
	return TestItem{
		ID:           uuid.New(),
		ItemCode:     name,
		ItemName:     name,
		Category:     category,
		DisplayOrder: order,
	}
}

func newResult(t *testing.T, item TestItem, day, value string) TestResult {
	t.Helper()

	return TestResult{
		ID:          uuid.New(),
		ItemID:      item.ID,
		TestDate:    date(t, day),
		ResultValue: value,
	}
}

func assertBounds(t *testing.T, got Bounds, wantMin, wantMax *float64) {
	t.Helper()

	if !sameBound(got.Min, wantMin) {
		t.Fatalf("expected min %v, got %v", describeBound(wantMin), describeBound(got.Min))
	}

	if !sameBound(got.Max, wantMax) {
		t.Fatalf("expected max %v, got %v", describeBound(wantMax), describeBound(got.Max))
	}
}

func sameBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}

func describeBound(b *float64) interface{} {
	if b == nil {
		return "<nil>"
	}

	return *b
}
