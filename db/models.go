/*
 * Copyright 2025 Humaid Alqasimi
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

// User represents an account that can sign in.
type User struct {
	ID             uuid.UUID  `db:"id"`
	LoginID        string     `db:"login_id"`
	PasswordHash   string     `db:"password_hash"`
	DisplayName    string     `db:"display_name"`
	IsAdmin        bool       `db:"is_admin"`
	DoctorID       *uuid.UUID `db:"doctor_id"`
	LastSignedInAt *time.Time `db:"last_signed_in_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// Doctor represents an advisory doctor patients are assigned to.
type Doctor struct {
	ID          uuid.UUID `db:"id"`
	DoctorCode  string    `db:"doctor_code"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	Affiliation *string   `db:"affiliation"`
	Specialties *string   `db:"specialties"`
	Notes       *string   `db:"notes"`
	// LoginID is the login of the linked user, if any.
	LoginID   *string   `db:"login_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PatientStatus is the contract state of a patient.
type PatientStatus string

// PatientStatus values.
const (
	PatientActive PatientStatus = "active"
	PatientEnded  PatientStatus = "ended"
	PatientNew    PatientStatus = "new"
)

// PatientStatuses lists all statuses in display order.
func PatientStatuses() []PatientStatus {
	return []PatientStatus{PatientActive, PatientEnded, PatientNew}
}

// Label returns the Japanese display label.
func (s PatientStatus) Label() string {
	switch s {
	case PatientActive:
		return "契約中"
	case PatientEnded:
		return "終了"
	default:
		return "新規"
	}
}

// Valid reports whether s is a known status.
func (s PatientStatus) Valid() bool {
	switch s {
	case PatientActive, PatientEnded, PatientNew:
		return true
	}

	return false
}

// Patient represents a patient record.
type Patient struct {
	ID          uuid.UUID       `db:"id"`
	PatientCode string          `db:"patient_code"`
	Name        string          `db:"name"`
	NameKana    *string         `db:"name_kana"`
	Gender      clinical.Gender `db:"gender"`
	BirthDate   time.Time       `db:"birth_date"`
	Phone       *string         `db:"phone"`
	Email       *string         `db:"email"`
	Address     *string         `db:"address"`
	DoctorID    uuid.UUID       `db:"doctor_id"`
	Status      PatientStatus   `db:"status"`
	Notes       *string         `db:"notes"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// Age returns the patient's age in whole years at the given time.
func (p *Patient) Age(now time.Time) int {
	age := now.Year() - p.BirthDate.Year()
	if now.Month() < p.BirthDate.Month() || (now.Month() == p.BirthDate.Month() && now.Day() < p.BirthDate.Day()) {
		age--
	}

	return age
}

// PatientSummary is a patient with the assigned doctor's name for lists.
type PatientSummary struct {
	Patient
	DoctorName string `db:"doctor_name"`
	DoctorCode string `db:"doctor_code"`
}

// VisitType is the reason for a visit.
type VisitType string

// VisitType values.
const (
	VisitCheckup     VisitType = "checkup"
	VisitUnscheduled VisitType = "unscheduled"
	VisitOther       VisitType = "other"
)

// VisitTypes lists all visit types in display order.
func VisitTypes() []VisitType {
	return []VisitType{VisitCheckup, VisitUnscheduled, VisitOther}
}

// Label returns the Japanese display label.
func (v VisitType) Label() string {
	switch v {
	case VisitCheckup:
		return "定期健診"
	case VisitUnscheduled:
		return "突発的受診"
	default:
		return "その他"
	}
}

// Valid reports whether v is a known visit type.
func (v VisitType) Valid() bool {
	switch v {
	case VisitCheckup, VisitUnscheduled, VisitOther:
		return true
	}

	return false
}

// Visit represents a consultation.
type Visit struct {
	ID             uuid.UUID  `db:"id"`
	PatientID      uuid.UUID  `db:"patient_id"`
	VisitDate      time.Time  `db:"visit_date"`
	VisitType      VisitType  `db:"visit_type"`
	ChiefComplaint *string    `db:"chief_complaint"`
	Findings       *string    `db:"findings"`
	Diagnosis      *string    `db:"diagnosis"`
	Treatment      *string    `db:"treatment"`
	Prescription   *string    `db:"prescription"`
	Notes          *string    `db:"notes"`
	CreatedBy      *uuid.UUID `db:"created_by"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// TestResultImage is the metadata of an image stored in the blob store.
type TestResultImage struct {
	ID           uuid.UUID  `db:"id"`
	PatientID    uuid.UUID  `db:"patient_id"`
	ItemID       uuid.UUID  `db:"item_id"`
	TestResultID *uuid.UUID `db:"test_result_id"`
	TestDate     time.Time  `db:"test_date"`
	BlobKey      string     `db:"blob_key"`
	FileName     string     `db:"file_name"`
	FileSize     int64      `db:"file_size"`
	MimeType     string     `db:"mime_type"`
	CreatedBy    *uuid.UUID `db:"created_by"`
	CreatedAt    time.Time  `db:"created_at"`
}

// DashboardStats summarises the patients visible to a user.
type DashboardStats struct {
	PatientCount  int
	RecentVisits  int
	AbnormalCount int
}

// Scope restricts queries to the patients of one doctor. A nil DoctorID
// means every patient is visible.
type Scope struct {
	DoctorID *uuid.UUID
}

// AllPatients is the scope of an administrator.
var AllPatients = Scope{}

// DoctorScope returns the scope of a doctor account.
func DoctorScope(doctorID uuid.UUID) Scope {
	return Scope{DoctorID: &doctorID}
}

// Allows reports whether a patient assigned to doctorID is visible.
func (s Scope) Allows(doctorID uuid.UUID) bool {
	return s.DoctorID == nil || *s.DoctorID == doctorID
}
