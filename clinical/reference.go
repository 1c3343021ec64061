/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package clinical

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Bounds is a resolved reference range. Either side may be absent.
type Bounds struct {
	Min *float64
	Max *float64
}

// Defined reports whether at least one bound is present.
func (b Bounds) Defined() bool {
	return b.Min != nil || b.Max != nil
}

// String formats the range for display.
func (b Bounds) String() string {
	switch {
	case b.Min != nil && b.Max != nil:
		return fmt.Sprintf("%s-%s", formatBound(*b.Min), formatBound(*b.Max))
	case b.Min != nil:
		return fmt.Sprintf("≥ %s", formatBound(*b.Min))
	case b.Max != nil:
		return fmt.Sprintf("≤ %s", formatBound(*b.Max))
	default:
		return ""
	}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ResolveRange returns the reference range that applies to a patient of the
// given gender. Sex-specific bounds are used only when both sides are
// present; otherwise the common bounds apply as a pair.
func ResolveRange(item TestItem, gender Gender) Bounds {
	if gender == GenderFemale {
		if item.ReferenceMinFemale != nil && item.ReferenceMaxFemale != nil {
			return Bounds{Min: item.ReferenceMinFemale, Max: item.ReferenceMaxFemale}
		}
	} else if item.ReferenceMinMale != nil && item.ReferenceMaxMale != nil {
		return Bounds{Min: item.ReferenceMinMale, Max: item.ReferenceMaxMale}
	}

	return Bounds{Min: item.ReferenceMin, Max: item.ReferenceMax}
}

// Status is the classification of a single cell.
type Status string

const (
	StatusUnclassified Status = "unclassified"
	StatusNormal       Status = "normal"
	StatusBelowRange   Status = "below_range"
	StatusAboveRange   Status = "above_range"
)

// Abnormal reports whether the status is outside the reference range.
func (s Status) Abnormal() bool {
	return s == StatusBelowRange || s == StatusAboveRange
}

// NoDataValue is the placeholder rendered for a missing cell.
const NoDataValue = "-"

// ParseValue parses a result value as a finite decimal number.
func ParseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// Classify compares a raw value against resolved bounds.
func Classify(value string, b Bounds) Status {
	value = strings.TrimSpace(value)
	if value == "" || value == NoDataValue {
		return StatusUnclassified
	}

	if !b.Defined() {
		return StatusUnclassified
	}

	v, ok := ParseValue(value)
	if !ok {
		return StatusUnclassified
	}

	if b.Min != nil && v < *b.Min {
		return StatusBelowRange
	}

	if b.Max != nil && v > *b.Max {
		return StatusAboveRange
	}

	return StatusNormal
}

// Evaluate resolves the range for an item and classifies value against it.
func Evaluate(item TestItem, gender Gender, value string) (Bounds, Status) {
	b := ResolveRange(item, gender)
	return b, Classify(value, b)
}
