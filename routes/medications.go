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
	getMedicationFn    = db.GetMedication
	createMedicationFn = db.CreateMedication
	updateMedicationFn = db.UpdateMedication
	deleteMedicationFn = db.DeleteMedication
	nowFn              = time.Now
)

type calendarColumn struct {
	Lines   []string
	IsToday bool
}

type calendarCell struct {
	Covered bool
	Starts  bool
	IsToday bool
}

type calendarRow struct {
	Medication clinical.Medication
	Cells      []calendarCell
}

type granularityTab struct {
	Label  string
	URL    string
	Active bool
}

func medicationsPath(patientID uuid.UUID) string {
	return patientPath(patientID) + "/medications"
}

func granularityTabs(patientID uuid.UUID, current clinical.Granularity) []granularityTab {
	options := []struct {
		g     clinical.Granularity
		label string
	}{
		{clinical.GranularityDay, "日"},
		{clinical.GranularityWeek, "週"},
		{clinical.GranularityMonth, "月"},
	}

	tabs := make([]granularityTab, 0, len(options))
	for _, opt := range options {
		tabs = append(tabs, granularityTab{
			Label:  opt.label,
			URL:    medicationsPath(patientID) + "?g=" + string(opt.g),
			Active: opt.g == current,
		})
	}

	return tabs
}

// calendarView flattens a calendar into rows of cells for the template.
func calendarView(cal *clinical.Calendar) ([]calendarColumn, []calendarRow) {
	columns := make([]calendarColumn, len(cal.Columns))
	for i, col := range cal.Columns {
		columns[i] = calendarColumn{
			Lines:   strings.Split(col.Label, "\n"),
			IsToday: i == cal.TodayIndex,
		}
	}

	rows := make([]calendarRow, 0, len(cal.Rows))
	for _, r := range cal.Rows {
		row := calendarRow{Medication: r.Medication, Cells: make([]calendarCell, len(cal.Columns))}
		for i := range cal.Columns {
			row.Cells[i] = calendarCell{
				Covered: r.Covered[i],
				Starts:  r.StartsIn[i],
				IsToday: i == cal.TodayIndex,
			}
		}
		rows = append(rows, row)
	}

	return columns, rows
}

func parseMedicationForm(form url.Values) (db.MedicationInput, string) {
	input := db.MedicationInput{
		MedicationName: strings.TrimSpace(form.Get("medication_name")),
		Notes:          getOptionalString(form.Get("notes")),
	}

	if input.MedicationName == "" {
		return input, "薬剤名は必須です"
	}

	start, err := clinical.ParseDate(form.Get("start_date"))
	if err != nil {
		return input, "開始日の形式が正しくありません"
	}
	input.StartDate = start

	end, err := parseOptionalDate(form.Get("end_date"))
	if err != nil {
		return input, "終了日の形式が正しくありません"
	}
	input.EndDate = end

	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return input, "終了日は開始日以降にしてください"
	}

	return input, ""
}

func medicationErrorMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, clinical.ErrMedicationEndBeforeStart):
		return "終了日は開始日以降にしてください"
	case errors.Is(err, clinical.ErrMedicationNameRequired):
		return "薬剤名は必須です"
	case errors.Is(err, db.ErrMedicationNotFound):
		return "服薬記録が見つかりません"
	default:
		return fallback
	}
}

// ViewMedications renders the medication list and the interval calendar.
func ViewMedications(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	snap, ok := loadSnapshot(c, s)
	if !ok {
		return
	}

	patient := snap.Patient
	g, _ := clinical.ParseGranularity(c.Query("g"))
	cal := clinical.BuildCalendar(snap.Medications, g, nowFn())
	columns, rows := calendarView(cal)

	data["IsPatients"] = true
	data["Patient"] = patient
	data["Medications"] = snap.Medications
	data["Granularity"] = string(cal.Granularity)
	data["GranularityTabs"] = granularityTabs(patient.ID, cal.Granularity)
	data["Columns"] = columns
	data["CalendarRows"] = rows
	data["Today"] = clinical.DateKey(nowFn())
	data["Breadcrumbs"] = patientBreadcrumbs(patient, "服薬")

	t.HTML(http.StatusOK, "medications")
}

// CreateMedication handles the add medication form.
func CreateMedication(c flamego.Context, s session.Session) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	back := medicationsPath(patient.ID)

	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	input, msg := parseMedicationForm(c.Request().Form)
	if msg != "" {
		SetErrorFlash(s, msg)
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	if _, err := createMedicationFn(c.Request().Context(), patient.ID, sessionUserUUID(s), input); err != nil {
		logger.Error("Error creating medication", "patient_id", patient.ID, "error", err)
		SetErrorFlash(s, medicationErrorMessage(err, "服薬記録の登録に失敗しました"))
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "服薬記録を登録しました")
	c.Redirect(back, http.StatusSeeOther)
}

// EditMedicationForm renders the edit medication form
func EditMedicationForm(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	back := medicationsPath(patient.ID)

	medID, err := parseIDParam(c, "med_id")
	if err != nil {
		SetErrorFlash(s, "服薬記録が見つかりません")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	med, err := getMedicationFn(c.Request().Context(), patient.ID, medID)
	if err != nil {
		if !errors.Is(err, db.ErrMedicationNotFound) {
			logger.Error("Error fetching medication", "medication_id", medID, "error", err)
		}
		SetErrorFlash(s, "服薬記録が見つかりません")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	endDate := ""
	if med.EndDate != nil {
		endDate = clinical.DateKey(*med.EndDate)
	}

	data["IsPatients"] = true
	data["Patient"] = patient
	data["Medication"] = med
	data["StartDate"] = clinical.DateKey(med.StartDate)
	data["EndDate"] = endDate
	data["Breadcrumbs"] = patientBreadcrumbs(patient, "服薬記録の編集")

	t.HTML(http.StatusOK, "medication_form")
}

// UpdateMedication handles the edit medication form.
func UpdateMedication(c flamego.Context, s session.Session) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	back := medicationsPath(patient.ID)

	medID, err := parseIDParam(c, "med_id")
	if err != nil {
		SetErrorFlash(s, "服薬記録が見つかりません")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	editPath := back + "/" + medID.String() + "/edit"

	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	input, msg := parseMedicationForm(c.Request().Form)
	if msg != "" {
		SetErrorFlash(s, msg)
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	if err := updateMedicationFn(c.Request().Context(), patient.ID, medID, input); err != nil {
		if !errors.Is(err, db.ErrMedicationNotFound) {
			logger.Error("Error updating medication", "medication_id", medID, "error", err)
		}
		SetErrorFlash(s, medicationErrorMessage(err, "服薬記録の更新に失敗しました"))
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "服薬記録を更新しました")
	c.Redirect(back, http.StatusSeeOther)
}

// DeleteMedication removes a medication.
func DeleteMedication(c flamego.Context, s session.Session) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	back := medicationsPath(patient.ID)

	medID, err := parseIDParam(c, "med_id")
	if err != nil {
		SetErrorFlash(s, "服薬記録が見つかりません")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	if err := deleteMedicationFn(c.Request().Context(), patient.ID, medID); err != nil {
		if !errors.Is(err, db.ErrMedicationNotFound) {
			logger.Error("Error deleting medication", "medication_id", medID, "error", err)
		}
		SetErrorFlash(s, medicationErrorMessage(err, "服薬記録の削除に失敗しました"))
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "服薬記録を削除しました")
	c.Redirect(back, http.StatusSeeOther)
}
