// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-FileCopyrightText: 2025 ENO0123
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPatientAge(t *testing.T) {
	t.Parallel()

	p := Patient{BirthDate: time.Date(1980, time.June, 15, 0, 0, 0, 0, time.UTC)}

	cases := []struct {
		now  time.Time
		want int
	}{
		{now: time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC), want: 43},
		{now: time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), want: 44},
		{now: time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), want: 44},
	}

	for _, tc := range cases {
		if got := p.Age(tc.now); got != tc.want {
			t.Fatalf("expected %d, got %d", tc.want, got)
		}
	}
}

func TestPatientStatusLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status PatientStatus
		want   string
		valid  bool
	}{
		{status: PatientActive, want: "契約中", valid: true},
		{status: PatientEnded, want: "終了", valid: true},
		{status: PatientNew, want: "新規", valid: true},
		{status: PatientStatus("paused"), want: "新規", valid: false},
	}

	for _, tc := range cases {
		if got := tc.status.Label(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
		if got := tc.status.Valid(); got != tc.valid {
			t.Fatalf("expected valid=%v for %q", tc.valid, tc.status)
		}
	}
}

func TestVisitTypeLabel(t *testing.T) {
	t.Parallel()

	if VisitCheckup.Label() != "定期健診" || VisitUnscheduled.Label() != "突発的受診" || VisitOther.Label() != "その他" {
		t.Fatalf("unexpected visit type labels")
	}
	if VisitType("walk-in").Valid() {
		t.Fatalf("expected unknown visit type to be invalid")
	}
}

func TestScopeAllows(t *testing.T) {
	t.Parallel()

	mine := uuid.New()
	other := uuid.New()

	if !AllPatients.Allows(other) {
		t.Fatalf("expected admin scope to allow every doctor")
	}

	scope := DoctorScope(mine)
	if !scope.Allows(mine) {
		t.Fatalf("expected doctor scope to allow own patients")
	}
	if scope.Allows(other) {
		t.Fatalf("expected doctor scope to reject other patients")
	}
}

func TestDefaultCatalogCodesUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, item := range DefaultCatalog() {
		if seen[item.Code] {
			t.Fatalf("duplicate catalog code %s", item.Code)
		}
		seen[item.Code] = true

		if item.MinMale != nil && item.MaxMale == nil {
			t.Fatalf("catalog item %s has an incomplete male range", item.Code)
		}
	}
}
