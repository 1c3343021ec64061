/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package clinical

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender represents the gender recorded for a patient.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender accepts the stored value or the Japanese label used on forms.
func ParseGender(s string) (Gender, bool) {
	switch strings.TrimSpace(s) {
	case string(GenderMale), "男":
		return GenderMale, true
	case string(GenderFemale), "女":
		return GenderFemale, true
	case string(GenderOther), "その他":
		return GenderOther, true
	}

	return "", false
}

// Label returns the Japanese display label.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "男"
	case GenderFemale:
		return "女"
	default:
		return "その他"
	}
}

// TestItem is a catalog entry for a single lab or physical measurement.
type TestItem struct {
	ID                 uuid.UUID `db:"id"`
	ItemCode           string    `db:"item_code"`
	ItemName           string    `db:"item_name"`
	Category           string    `db:"category"`
	Unit               string    `db:"unit"`
	ReferenceMin       *float64  `db:"reference_min"`
	ReferenceMax       *float64  `db:"reference_max"`
	ReferenceMinMale   *float64  `db:"reference_min_male"`
	ReferenceMaxMale   *float64  `db:"reference_max_male"`
	ReferenceMinFemale *float64  `db:"reference_min_female"`
	ReferenceMaxFemale *float64  `db:"reference_max_female"`
	DisplayOrder       int       `db:"display_order"`
	Notes              *string   `db:"notes"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// Kind returns the top-level grouping derived from the item name.
func (i TestItem) Kind() ItemKind {
	return KindOf(i.ItemName)
}

// TestResult is one stored value for a (patient, item, date) triple.
type TestResult struct {
	ID                uuid.UUID  `db:"id"`
	PatientID         uuid.UUID  `db:"patient_id"`
	ItemID            uuid.UUID  `db:"item_id"`
	VisitID           *uuid.UUID `db:"visit_id"`
	TestDate          time.Time  `db:"test_date"`
	ResultValue       string     `db:"result_value"`
	ResultComment     *string    `db:"result_comment"`
	AdditionalComment *string    `db:"additional_comment"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// Medication is a prescribed interval. A nil EndDate means ongoing.
type Medication struct {
	ID             uuid.UUID  `db:"id"`
	PatientID      uuid.UUID  `db:"patient_id"`
	MedicationName string     `db:"medication_name"`
	StartDate      time.Time  `db:"start_date"`
	EndDate        *time.Time `db:"end_date"`
	Notes          *string    `db:"notes"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// Ongoing reports whether the medication has no end date.
func (m Medication) Ongoing() bool {
	return m.EndDate == nil
}

// Validate checks that the end date does not precede the start date.
func (m Medication) Validate() error {
	if strings.TrimSpace(m.MedicationName) == "" {
		return ErrMedicationNameRequired
	}

	if m.EndDate != nil && DateOf(*m.EndDate).Before(DateOf(m.StartDate)) {
		return ErrMedicationEndBeforeStart
	}

	return nil
}
