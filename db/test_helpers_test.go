// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-FileCopyrightText: 2025 ENO0123
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

func testContext() context.Context {
	return context.Background()
}

func stringPtr(value string) *string {
	return &value
}

func day(value string) time.Time {
	d, err := clinical.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

func mustCreateDoctor(t *testing.T, name string) *Doctor {
	t.Helper()
	doctor, err := CreateDoctor(testContext(), CreateDoctorInput{Name: name, Email: name + "@example.com"})
	if err != nil {
		t.Fatalf("failed to create doctor: %v", err)
	}
	return doctor
}

func mustCreatePatient(t *testing.T, name string, gender clinical.Gender, doctorID uuid.UUID) uuid.UUID {
	t.Helper()
	id, err := CreatePatient(testContext(), CreatePatientInput{
		Name:      name,
		Gender:    gender,
		BirthDate: day("1970-04-01"),
		DoctorID:  doctorID,
		Status:    PatientActive,
	})
	if err != nil {
		t.Fatalf("failed to create patient: %v", err)
	}
	return id
}

func mustItemByCode(t *testing.T, code string) clinical.TestItem {
	t.Helper()
	items, err := ListTestItems(testContext())
	if err != nil {
		t.Fatalf("ListTestItems failed: %v", err)
	}
	for _, item := range items {
		if item.ItemCode == code {
			return item
		}
	}
	t.Fatalf("catalog item %s not found", code)
	return clinical.TestItem{}
}
