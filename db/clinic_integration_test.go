// SPDX-FileCopyrightText: 2025 ENO0123
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

func TestDoctorCodesAndLogin(t *testing.T) {
	resetDatabase(t)
	ctx := testContext()

	first := mustCreateDoctor(t, "Tanaka")
	second := mustCreateDoctor(t, "Suzuki")

	if first.DoctorCode != "D001" || second.DoctorCode != "D002" {
		t.Fatalf("expected D001 and D002, got %s and %s", first.DoctorCode, second.DoctorCode)
	}

	if _, err := SetDoctorLogin(ctx, first.ID, "tanaka", "short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	user, err := SetDoctorLogin(ctx, first.ID, "tanaka", "correct-horse")
	if err != nil {
		t.Fatalf("SetDoctorLogin failed: %v", err)
	}
	if user.DoctorID == nil || *user.DoctorID != first.ID {
		t.Fatalf("expected user linked to doctor")
	}

	if _, err := Authenticate(ctx, "tanaka", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	signedIn, err := Authenticate(ctx, "tanaka", "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if signedIn.ID != user.ID {
		t.Fatalf("expected %v, got %v", user.ID, signedIn.ID)
	}

	// Renaming the login keeps the password.
	if _, err := SetDoctorLogin(ctx, first.ID, "tanaka2", ""); err != nil {
		t.Fatalf("SetDoctorLogin rename failed: %v", err)
	}
	if _, err := Authenticate(ctx, "tanaka2", "correct-horse"); err != nil {
		t.Fatalf("expected renamed login to authenticate, got %v", err)
	}

	if _, err := SetDoctorLogin(ctx, second.ID, "tanaka2", "another-pass"); !errors.Is(err, ErrLoginIDTaken) {
		t.Fatalf("expected ErrLoginIDTaken, got %v", err)
	}

	doctor, err := GetDoctor(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetDoctor failed: %v", err)
	}
	if doctor.LoginID == nil || *doctor.LoginID != "tanaka2" {
		t.Fatalf("expected joined login id, got %v", doctor.LoginID)
	}

	mustCreatePatient(t, "Yamada", clinical.GenderMale, first.ID)

	if err := DeleteDoctor(ctx, first.ID); !errors.Is(err, ErrDoctorHasPatients) {
		t.Fatalf("expected ErrDoctorHasPatients, got %v", err)
	}

	if err := DeleteDoctor(ctx, second.ID); err != nil {
		t.Fatalf("DeleteDoctor failed: %v", err)
	}
}

func TestPatientScopeAndSearch(t *testing.T) {
	resetDatabase(t)
	ctx := testContext()

	mine := mustCreateDoctor(t, "Mine")
	other := mustCreateDoctor(t, "Other")

	a := mustCreatePatient(t, "山田 太郎", clinical.GenderMale, mine.ID)
	b := mustCreatePatient(t, "佐藤 花子", clinical.GenderFemale, other.ID)

	all, err := ListPatients(ctx, ListPatientsInput{Scope: AllPatients})
	if err != nil {
		t.Fatalf("ListPatients failed: %v", err)
	}
	if len(all) != 2 || all[0].PatientCode != "P001" || all[1].PatientCode != "P002" {
		t.Fatalf("expected P001 and P002, got %+v", all)
	}

	scoped, err := ListPatients(ctx, ListPatientsInput{Scope: DoctorScope(mine.ID)})
	if err != nil {
		t.Fatalf("ListPatients failed: %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != a {
		t.Fatalf("expected only own patient, got %+v", scoped)
	}

	if _, err := GetPatient(ctx, DoctorScope(mine.ID), b); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound outside scope, got %v", err)
	}

	found, err := ListPatients(ctx, ListPatientsInput{Scope: AllPatients, Search: "花子"})
	if err != nil {
		t.Fatalf("ListPatients search failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != b {
		t.Fatalf("expected search to match 佐藤 花子, got %+v", found)
	}

	ended, err := ListPatients(ctx, ListPatientsInput{Scope: AllPatients, Statuses: []PatientStatus{PatientEnded}})
	if err != nil {
		t.Fatalf("ListPatients status filter failed: %v", err)
	}
	if len(ended) != 0 {
		t.Fatalf("expected no ended patients, got %d", len(ended))
	}

	if err := UpdatePatient(ctx, DoctorScope(mine.ID), b, UpdatePatientInput{
		Name: "x", Gender: clinical.GenderFemale, BirthDate: day("1990-01-01"), DoctorID: other.ID, Status: PatientEnded,
	}); !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected scoped update to fail, got %v", err)
	}
}

func TestReconciledWritesRoundTrip(t *testing.T) {
	resetDatabase(t)
	ctx := testContext()

	doctor := mustCreateDoctor(t, "Tanaka")
	patientID := mustCreatePatient(t, "Yamada", clinical.GenderMale, doctor.ID)

	wbc := mustItemByCode(t, "WBC")
	hgb := mustItemByCode(t, "HGB")
	plt := mustItemByCode(t, "PLT")
	date := day("2024-05-01")

	store := &ResultStore{}

	first := &clinical.Plan{Date: date, ToCreate: []clinical.CreateOp{
		{ItemID: wbc.ID, Value: "5.2"},
		{ItemID: hgb.ID, Value: "14.0"},
	}}
	if err := clinical.ApplyPlan(ctx, store, patientID, first); err != nil {
		t.Fatalf("ApplyPlan create failed: %v", err)
	}

	existing, err := ListTestResults(ctx, patientID)
	if err != nil {
		t.Fatalf("ListTestResults failed: %v", err)
	}
	if len(existing) != 2 {
		t.Fatalf("expected 2 results, got %d", len(existing))
	}

	plan, err := clinical.Reconcile(clinical.ReconcileInput{
		Date:  date,
		Items: []clinical.TestItem{wbc, hgb, plt},
		Submitted: map[uuid.UUID]string{
			wbc.ID: "5.2",
			hgb.ID: "",
			plt.ID: "20.1",
		},
		Existing: existing,
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if len(plan.ToCreate) != 1 || len(plan.ToUpdate) != 0 || len(plan.ToDelete) != 1 {
		t.Fatalf("unexpected plan %+v", plan)
	}

	if err := clinical.ApplyPlan(ctx, store, patientID, plan); err != nil {
		t.Fatalf("ApplyPlan failed: %v", err)
	}

	after, err := ListTestResults(ctx, patientID)
	if err != nil {
		t.Fatalf("ListTestResults failed: %v", err)
	}

	values := make(map[string]string)
	for _, r := range after {
		values[r.ItemID.String()] = r.ResultValue
	}
	if len(values) != 2 || values[wbc.ID.String()] != "5.2" || values[plt.ID.String()] != "20.1" {
		t.Fatalf("unexpected stored values %v", values)
	}

	var hgbResult clinical.TestResult
	for _, r := range existing {
		if r.ItemID == hgb.ID {
			hgbResult = r
		}
	}

	// The Hb result was already deleted above.
	missing := &clinical.Plan{Date: date, ToDelete: []clinical.DeleteOp{{ResultID: hgbResult.ID, ItemID: hgb.ID}}}
	err = clinical.ApplyPlan(ctx, store, patientID, missing)

	var partial *clinical.PartialWriteFailure
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialWriteFailure, got %v", err)
	}
	if !errors.Is(err, ErrTestResultNotFound) {
		t.Fatalf("expected wrapped ErrTestResultNotFound, got %v", err)
	}
}

func TestMedicationValidationAndSnapshot(t *testing.T) {
	resetDatabase(t)
	ctx := testContext()

	doctor := mustCreateDoctor(t, "Tanaka")
	patientID := mustCreatePatient(t, "Yamada", clinical.GenderFemale, doctor.ID)

	end := day("2024-01-01")
	if _, err := CreateMedication(ctx, patientID, nil, MedicationInput{
		MedicationName: "Drug", StartDate: day("2024-02-01"), EndDate: &end,
	}); !errors.Is(err, clinical.ErrMedicationEndBeforeStart) {
		t.Fatalf("expected ErrMedicationEndBeforeStart, got %v", err)
	}

	if _, err := CreateMedication(ctx, patientID, nil, MedicationInput{
		MedicationName: "Drug", StartDate: day("2024-02-01"),
	}); err != nil {
		t.Fatalf("CreateMedication failed: %v", err)
	}

	snap, err := LoadPatientSnapshot(ctx, AllPatients, patientID)
	if err != nil {
		t.Fatalf("LoadPatientSnapshot failed: %v", err)
	}
	if len(snap.Medications) != 1 || !snap.Medications[0].Ongoing() {
		t.Fatalf("expected one ongoing medication, got %+v", snap.Medications)
	}
	if len(snap.Items) != len(DefaultCatalog()) {
		t.Fatalf("expected full catalog, got %d items", len(snap.Items))
	}
}

func TestAbnormalResultsAndStats(t *testing.T) {
	resetDatabase(t)
	ctx := testContext()

	doctor := mustCreateDoctor(t, "Tanaka")
	woman := mustCreatePatient(t, "Sato", clinical.GenderFemale, doctor.ID)
	man := mustCreatePatient(t, "Ito", clinical.GenderMale, doctor.ID)

	// Hb 12.0 is normal for women (11.6-14.8) and low for men (13.7-16.8).
	hgb := mustItemByCode(t, "HGB")
	store := &ResultStore{}
	for _, id := range []uuid.UUID{woman, man} {
		plan := &clinical.Plan{Date: day("2024-03-01"), ToCreate: []clinical.CreateOp{{ItemID: hgb.ID, Value: "12.0"}}}
		if err := clinical.ApplyPlan(ctx, store, id, plan); err != nil {
			t.Fatalf("ApplyPlan failed: %v", err)
		}
	}

	abnormal, err := ListAbnormalResults(ctx, AllPatients)
	if err != nil {
		t.Fatalf("ListAbnormalResults failed: %v", err)
	}
	if len(abnormal) != 1 || abnormal[0].PatientID != man || abnormal[0].Status != clinical.StatusBelowRange {
		t.Fatalf("expected one low result for the male patient, got %+v", abnormal)
	}

	stats, err := GetDashboardStats(ctx, DoctorScope(doctor.ID), day("2024-03-15"))
	if err != nil {
		t.Fatalf("GetDashboardStats failed: %v", err)
	}
	if stats.PatientCount != 2 || stats.AbnormalCount != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestCatalogCacheInvalidation(t *testing.T) {
	resetDatabase(t)
	ctx := testContext()

	before, err := CachedTestItems(ctx)
	if err != nil {
		t.Fatalf("CachedTestItems failed: %v", err)
	}

	if _, err := CreateTestItem(ctx, TestItemInput{ItemCode: "CUSTOM", ItemName: "Custom", Category: "血液"}); err != nil {
		t.Fatalf("CreateTestItem failed: %v", err)
	}

	after, err := CachedTestItems(ctx)
	if err != nil {
		t.Fatalf("CachedTestItems failed: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("expected cache to be invalidated, got %d then %d", len(before), len(after))
	}

	if _, err := CreateTestItem(ctx, TestItemInput{ItemCode: "BAD", ItemName: "Bad", Category: "nope"}); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}
