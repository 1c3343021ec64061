/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package clinical

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// Finding is a result outside the reference range of its item.
type Finding struct {
	Result TestResult
	Item   TestItem
	Bounds Bounds
	Status Status
}

// FindAbnormal returns the results of one patient that fall outside their
// gender-specific reference range, newest first. Results of unknown items
// are skipped.
func FindAbnormal(items []TestItem, results []TestResult, gender Gender) []Finding {
	catalog := make(map[uuid.UUID]TestItem, len(items))
	for _, item := range items {
		catalog[item.ID] = item
	}

	var findings []Finding

	for _, res := range results {
		item, ok := catalog[res.ItemID]
		if !ok {
			continue
		}

		bounds, status := Evaluate(item, gender, res.ResultValue)
		if !status.Abnormal() {
			continue
		}

		findings = append(findings, Finding{Result: res, Item: item, Bounds: bounds, Status: status})
	}

	slices.SortStableFunc(findings, func(a, b Finding) int {
		if c := DateOf(b.Result.TestDate).Compare(DateOf(a.Result.TestDate)); c != 0 {
			return c
		}
		return cmp.Compare(a.Item.DisplayOrder, b.Item.DisplayOrder)
	})

	return findings
}
