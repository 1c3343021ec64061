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

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
	"github.com/ENO0123/hyoe-medical-records-system/db"
)

var (
	getVisitFn    = db.GetVisit
	createVisitFn = db.CreateVisit
	updateVisitFn = db.UpdateVisit
	deleteVisitFn = db.DeleteVisit
)

func parseVisitForm(form url.Values) (db.VisitInput, string) {
	input := db.VisitInput{
		VisitType:      db.VisitType(strings.TrimSpace(form.Get("visit_type"))),
		ChiefComplaint: getOptionalString(form.Get("chief_complaint")),
		Findings:       getOptionalString(form.Get("findings")),
		Diagnosis:      getOptionalString(form.Get("diagnosis")),
		Treatment:      getOptionalString(form.Get("treatment")),
		Prescription:   getOptionalString(form.Get("prescription")),
		Notes:          getOptionalString(form.Get("notes")),
	}

	visitDate, err := clinical.ParseDate(form.Get("visit_date"))
	if err != nil {
		return input, "受診日の形式が正しくありません"
	}
	input.VisitDate = visitDate

	if input.VisitType == "" {
		input.VisitType = db.VisitCheckup
	}
	if !input.VisitType.Valid() {
		return input, "受診種別が正しくありません"
	}

	return input, ""
}

// NewVisitForm renders the add visit form
func NewVisitForm(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	data["IsPatients"] = true
	data["Patient"] = patient
	data["VisitTypes"] = db.VisitTypes()
	data["Today"] = clinical.DateKey(time.Now())
	data["Breadcrumbs"] = patientBreadcrumbs(patient, "受診記録の追加")

	t.HTML(http.StatusOK, "visit_form")
}

// CreateVisit handles the add visit form.
func CreateVisit(c flamego.Context, s session.Session) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	newPath := patientPath(patient.ID) + "/visits/new"

	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect(newPath, http.StatusSeeOther)

		return
	}

	input, msg := parseVisitForm(c.Request().Form)
	if msg != "" {
		SetErrorFlash(s, msg)
		c.Redirect(newPath, http.StatusSeeOther)

		return
	}

	if _, err := createVisitFn(c.Request().Context(), patient.ID, sessionUserUUID(s), input); err != nil {
		logger.Error("Error creating visit", "patient_id", patient.ID, "error", err)
		SetErrorFlash(s, "受診記録の登録に失敗しました")
		c.Redirect(newPath, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "受診記録を登録しました")
	c.Redirect(patientPath(patient.ID), http.StatusSeeOther)
}

// EditVisitForm renders the edit visit form
func EditVisitForm(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	visitID, err := parseIDParam(c, "visit_id")
	if err != nil {
		SetErrorFlash(s, "受診記録が見つかりません")
		c.Redirect(patientPath(patient.ID), http.StatusSeeOther)

		return
	}

	visit, err := getVisitFn(c.Request().Context(), patient.ID, visitID)
	if err != nil {
		if !errors.Is(err, db.ErrVisitNotFound) {
			logger.Error("Error fetching visit", "visit_id", visitID, "error", err)
		}
		SetErrorFlash(s, "受診記録が見つかりません")
		c.Redirect(patientPath(patient.ID), http.StatusSeeOther)

		return
	}

	data["IsPatients"] = true
	data["Patient"] = patient
	data["Visit"] = visit
	data["VisitTypes"] = db.VisitTypes()
	data["Breadcrumbs"] = patientBreadcrumbs(patient, "受診記録の編集")

	t.HTML(http.StatusOK, "visit_form")
}

// UpdateVisit handles the edit visit form.
func UpdateVisit(c flamego.Context, s session.Session) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	visitID, err := parseIDParam(c, "visit_id")
	if err != nil {
		SetErrorFlash(s, "受診記録が見つかりません")
		c.Redirect(patientPath(patient.ID), http.StatusSeeOther)

		return
	}

	editPath := patientPath(patient.ID) + "/visits/" + visitID.String() + "/edit"

	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	input, msg := parseVisitForm(c.Request().Form)
	if msg != "" {
		SetErrorFlash(s, msg)
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	if err := updateVisitFn(c.Request().Context(), patient.ID, visitID, input); err != nil {
		if errors.Is(err, db.ErrVisitNotFound) {
			SetErrorFlash(s, "受診記録が見つかりません")
		} else {
			logger.Error("Error updating visit", "visit_id", visitID, "error", err)
			SetErrorFlash(s, "受診記録の更新に失敗しました")
		}
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "受診記録を更新しました")
	c.Redirect(patientPath(patient.ID), http.StatusSeeOther)
}

// DeleteVisit removes a visit.
func DeleteVisit(c flamego.Context, s session.Session) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	visitID, err := parseIDParam(c, "visit_id")
	if err != nil {
		SetErrorFlash(s, "受診記録が見つかりません")
		c.Redirect(patientPath(patient.ID), http.StatusSeeOther)

		return
	}

	if err := deleteVisitFn(c.Request().Context(), patient.ID, visitID); err != nil {
		if errors.Is(err, db.ErrVisitNotFound) {
			SetErrorFlash(s, "受診記録が見つかりません")
		} else {
			logger.Error("Error deleting visit", "visit_id", visitID, "error", err)
			SetErrorFlash(s, "受診記録の削除に失敗しました")
		}
		c.Redirect(patientPath(patient.ID), http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "受診記録を削除しました")
	c.Redirect(patientPath(patient.ID), http.StatusSeeOther)
}
