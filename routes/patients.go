/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
	"github.com/ENO0123/hyoe-medical-records-system/db"
)

var (
	listPatientsFn  = db.ListPatients
	createPatientFn = db.CreatePatient
	updatePatientFn = db.UpdatePatient
	deletePatientFn = db.DeletePatient
	listVisitsFn    = db.ListVisits
)

func patientsBreadcrumb(isCurrent bool) BreadcrumbItem {
	return BreadcrumbItem{Name: "患者一覧", URL: "/patients", IsCurrent: isCurrent}
}

// parsePatientForm reads the shared fields of the create and edit forms. The
// returned message is empty when the form is valid.
func parsePatientForm(form url.Values) (db.UpdatePatientInput, string) {
	input := db.UpdatePatientInput{
		Name:     strings.TrimSpace(form.Get("name")),
		NameKana: getOptionalString(form.Get("name_kana")),
		Phone:    getOptionalString(form.Get("phone")),
		Email:    getOptionalString(form.Get("email")),
		Address:  getOptionalString(form.Get("address")),
		Notes:    getOptionalString(form.Get("notes")),
	}

	if input.Name == "" {
		return input, "氏名は必須です"
	}

	gender, ok := clinical.ParseGender(form.Get("gender"))
	if !ok {
		return input, "性別を選択してください"
	}
	input.Gender = gender

	birthDate, err := clinical.ParseDate(form.Get("birth_date"))
	if err != nil {
		return input, "生年月日の形式が正しくありません"
	}
	input.BirthDate = birthDate

	doctorID, err := uuid.Parse(strings.TrimSpace(form.Get("doctor_id")))
	if err != nil {
		return input, "担当顧問医を選択してください"
	}
	input.DoctorID = doctorID

	input.Status = db.PatientStatus(strings.TrimSpace(form.Get("status")))
	if input.Status == "" {
		input.Status = db.PatientNew
	}
	if !input.Status.Valid() {
		return input, "ステータスが正しくありません"
	}

	return input, ""
}

func parseStatusFilter(values []string) []db.PatientStatus {
	var statuses []db.PatientStatus
	for _, v := range values {
		status := db.PatientStatus(strings.TrimSpace(v))
		if status.Valid() {
			statuses = append(statuses, status)
		}
	}

	return statuses
}

// ListPatients displays the patients visible to the session user, filtered
// by the search box and status checkboxes.
func ListPatients(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	data["IsPatients"] = true
	data["Breadcrumbs"] = []BreadcrumbItem{patientsBreadcrumb(true)}

	query := c.Request().URL.Query()
	search := strings.TrimSpace(query.Get("q"))
	statuses := parseStatusFilter(query["status"])

	selected := make(map[db.PatientStatus]bool, len(statuses))
	for _, status := range statuses {
		selected[status] = true
	}

	data["Search"] = search
	data["Statuses"] = db.PatientStatuses()
	data["SelectedStatuses"] = selected

	patients, err := listPatientsFn(c.Request().Context(), db.ListPatientsInput{
		Scope:    sessionScope(s),
		Search:   search,
		Statuses: statuses,
	})
	if err != nil {
		logger.Error("Error fetching patients", "error", err)
		data["Error"] = "患者一覧の取得に失敗しました"
	} else {
		data["Patients"] = patients
	}

	data["Now"] = time.Now()

	t.HTML(http.StatusOK, "patients")
}

// NewPatientForm renders the add patient form
func NewPatientForm(c flamego.Context, t template.Template, data template.Data) {
	data["IsPatients"] = true
	data["Breadcrumbs"] = []BreadcrumbItem{
		patientsBreadcrumb(false),
		{Name: "新規登録", IsCurrent: true},
	}

	injectPatientFormOptions(c, data)
	t.HTML(http.StatusOK, "patient_form")
}

func injectPatientFormOptions(c flamego.Context, data template.Data) {
	data["Statuses"] = db.PatientStatuses()
	data["Genders"] = []clinical.Gender{clinical.GenderMale, clinical.GenderFemale}

	doctors, err := listDoctorsFn(c.Request().Context())
	if err != nil {
		logger.Error("Error fetching doctors", "error", err)
		data["Error"] = "顧問医の取得に失敗しました"

		return
	}

	data["Doctors"] = doctors
}

// CreatePatient handles the add patient form.
func CreatePatient(c flamego.Context, s session.Session) {
	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect("/patients/new", http.StatusSeeOther)

		return
	}

	form := c.Request().Form

	fields, msg := parsePatientForm(form)
	if msg != "" {
		SetErrorFlash(s, msg)
		c.Redirect("/patients/new", http.StatusSeeOther)

		return
	}

	id, err := createPatientFn(c.Request().Context(), db.CreatePatientInput{
		PatientCode: strings.TrimSpace(form.Get("patient_code")),
		Name:        fields.Name,
		NameKana:    fields.NameKana,
		Gender:      fields.Gender,
		BirthDate:   fields.BirthDate,
		Phone:       fields.Phone,
		Email:       fields.Email,
		Address:     fields.Address,
		DoctorID:    fields.DoctorID,
		Status:      fields.Status,
		Notes:       fields.Notes,
	})
	if err != nil {
		if errors.Is(err, db.ErrDoctorNotFound) {
			SetErrorFlash(s, "担当顧問医が見つかりません")
		} else {
			logger.Error("Error creating patient", "error", err)
			SetErrorFlash(s, "患者の登録に失敗しました")
		}
		c.Redirect("/patients/new", http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "患者を登録しました")
	c.Redirect(patientPath(id), http.StatusSeeOther)
}

// ViewPatient displays a patient with visits and links to results,
// medications and images.
func ViewPatient(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	data["IsPatients"] = true
	data["Patient"] = patient
	data["Age"] = patient.Age(time.Now())
	data["Breadcrumbs"] = patientBreadcrumbs(patient, "")

	visits, err := listVisitsFn(c.Request().Context(), patient.ID)
	if err != nil {
		logger.Error("Error fetching visits", "patient_id", patient.ID, "error", err)
		data["Error"] = "受診記録の取得に失敗しました"
	} else {
		data["Visits"] = visits
	}

	t.HTML(http.StatusOK, "patient_view")
}

// EditPatientForm renders the edit patient form
func EditPatientForm(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	data["IsPatients"] = true
	data["Patient"] = patient
	data["Breadcrumbs"] = patientBreadcrumbs(patient, "編集")

	injectPatientFormOptions(c, data)
	t.HTML(http.StatusOK, "patient_form")
}

// UpdatePatient handles the edit patient form.
func UpdatePatient(c flamego.Context, s session.Session) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "患者が見つかりません")
		c.Redirect("/patients", http.StatusSeeOther)

		return
	}

	editPath := patientPath(id) + "/edit"

	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	input, msg := parsePatientForm(c.Request().Form)
	if msg != "" {
		SetErrorFlash(s, msg)
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	if err := updatePatientFn(c.Request().Context(), sessionScope(s), id, input); err != nil {
		switch {
		case errors.Is(err, db.ErrPatientNotFound):
			logAccessDenied(c, s, "patient_out_of_scope", http.StatusSeeOther, "/patients", "patient_id", id)
			SetErrorFlash(s, "患者が見つかりません")
			c.Redirect("/patients", http.StatusSeeOther)

			return
		case errors.Is(err, db.ErrDoctorNotFound):
			SetErrorFlash(s, "担当顧問医が見つかりません")
		default:
			logger.Error("Error updating patient", "patient_id", id, "error", err)
			SetErrorFlash(s, "患者情報の更新に失敗しました")
		}
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "患者情報を更新しました")
	c.Redirect(patientPath(id), http.StatusSeeOther)
}

// DeletePatient removes a patient and every dependent record.
// TODO: remove the patient's image blobs once db exposes a per-patient image listing.
func DeletePatient(c flamego.Context, s session.Session) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "患者が見つかりません")
		c.Redirect("/patients", http.StatusSeeOther)

		return
	}

	if err := deletePatientFn(c.Request().Context(), sessionScope(s), id); err != nil {
		if errors.Is(err, db.ErrPatientNotFound) {
			SetErrorFlash(s, "患者が見つかりません")
		} else {
			logger.Error("Error deleting patient", "patient_id", id, "error", err)
			SetErrorFlash(s, "患者の削除に失敗しました")
		}
		c.Redirect("/patients", http.StatusSeeOther)

		return
	}

	logger.Info("Deleted patient", "patient_id", id, "user_id", sessionUserUUID(s))
	SetSuccessFlash(s, "患者を削除しました")
	c.Redirect("/patients", http.StatusSeeOther)
}
