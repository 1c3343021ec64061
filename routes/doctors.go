/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/ENO0123/hyoe-medical-records-system/db"
)

var (
	listDoctorsFn    = db.ListDoctors
	getDoctorFn      = db.GetDoctor
	createDoctorFn   = db.CreateDoctor
	updateDoctorFn   = db.UpdateDoctor
	deleteDoctorFn   = db.DeleteDoctor
	setDoctorLoginFn = db.SetDoctorLogin
)

func doctorsBreadcrumb(isCurrent bool) BreadcrumbItem {
	return BreadcrumbItem{Name: "顧問医", URL: "/doctors", IsCurrent: isCurrent}
}

// ListDoctors displays all advisory doctors.
func ListDoctors(c flamego.Context, t template.Template, data template.Data) {
	data["IsDoctors"] = true
	data["Breadcrumbs"] = []BreadcrumbItem{doctorsBreadcrumb(true)}

	doctors, err := listDoctorsFn(c.Request().Context())
	if err != nil {
		logger.Error("Error fetching doctors", "error", err)
		data["Error"] = "顧問医の取得に失敗しました"
	} else {
		data["Doctors"] = doctors
	}

	t.HTML(http.StatusOK, "doctors")
}

// NewDoctorForm renders the add doctor form
func NewDoctorForm(t template.Template, data template.Data) {
	data["IsDoctors"] = true
	data["Breadcrumbs"] = []BreadcrumbItem{
		doctorsBreadcrumb(false),
		{Name: "新規登録", IsCurrent: true},
	}

	t.HTML(http.StatusOK, "doctor_form")
}

// CreateDoctor handles the add doctor form.
func CreateDoctor(c flamego.Context, s session.Session) {
	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect("/doctors/new", http.StatusSeeOther)

		return
	}

	form := c.Request().Form

	input := db.CreateDoctorInput{
		DoctorCode:  strings.TrimSpace(form.Get("doctor_code")),
		Name:        strings.TrimSpace(form.Get("name")),
		Email:       strings.TrimSpace(form.Get("email")),
		Affiliation: getOptionalString(form.Get("affiliation")),
		Specialties: getOptionalString(form.Get("specialties")),
		Notes:       getOptionalString(form.Get("notes")),
	}
	if input.Name == "" {
		SetErrorFlash(s, "氏名は必須です")
		c.Redirect("/doctors/new", http.StatusSeeOther)

		return
	}

	doctor, err := createDoctorFn(c.Request().Context(), input)
	if err != nil {
		logger.Error("Error creating doctor", "error", err)
		SetErrorFlash(s, "顧問医の登録に失敗しました")
		c.Redirect("/doctors/new", http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "顧問医 "+doctor.DoctorCode+" を登録しました")
	c.Redirect("/doctors", http.StatusSeeOther)
}

// EditDoctorForm renders the edit doctor form, including the login setup.
func EditDoctorForm(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "顧問医が見つかりません")
		c.Redirect("/doctors", http.StatusSeeOther)

		return
	}

	doctor, err := getDoctorFn(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, db.ErrDoctorNotFound) {
			logger.Error("Error fetching doctor", "doctor_id", id, "error", err)
		}
		SetErrorFlash(s, "顧問医が見つかりません")
		c.Redirect("/doctors", http.StatusSeeOther)

		return
	}

	data["IsDoctors"] = true
	data["Doctor"] = doctor
	data["Breadcrumbs"] = []BreadcrumbItem{
		doctorsBreadcrumb(false),
		{Name: doctor.Name, IsCurrent: true},
	}

	t.HTML(http.StatusOK, "doctor_form")
}

// UpdateDoctor handles the edit doctor form.
func UpdateDoctor(c flamego.Context, s session.Session) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "顧問医が見つかりません")
		c.Redirect("/doctors", http.StatusSeeOther)

		return
	}

	editPath := "/doctors/" + id.String() + "/edit"

	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	form := c.Request().Form

	input := db.UpdateDoctorInput{
		Name:        strings.TrimSpace(form.Get("name")),
		Email:       strings.TrimSpace(form.Get("email")),
		Affiliation: getOptionalString(form.Get("affiliation")),
		Specialties: getOptionalString(form.Get("specialties")),
		Notes:       getOptionalString(form.Get("notes")),
	}
	if input.Name == "" {
		SetErrorFlash(s, "氏名は必須です")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	if err := updateDoctorFn(c.Request().Context(), id, input); err != nil {
		logger.Error("Error updating doctor", "doctor_id", id, "error", err)
		SetErrorFlash(s, "顧問医の更新に失敗しました")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "顧問医を更新しました")
	c.Redirect("/doctors", http.StatusSeeOther)
}

// DeleteDoctor removes a doctor without assigned patients.
func DeleteDoctor(c flamego.Context, s session.Session) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "顧問医が見つかりません")
		c.Redirect("/doctors", http.StatusSeeOther)

		return
	}

	if err := deleteDoctorFn(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, db.ErrDoctorHasPatients):
			SetErrorFlash(s, "担当患者がいるため削除できません")
		case errors.Is(err, db.ErrDoctorNotFound):
			SetErrorFlash(s, "顧問医が見つかりません")
		default:
			logger.Error("Error deleting doctor", "doctor_id", id, "error", err)
			SetErrorFlash(s, "顧問医の削除に失敗しました")
		}

		c.Redirect("/doctors", http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "顧問医を削除しました")
	c.Redirect("/doctors", http.StatusSeeOther)
}

// SetDoctorLogin creates or updates the login account of a doctor.
func SetDoctorLogin(c flamego.Context, s session.Session) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "顧問医が見つかりません")
		c.Redirect("/doctors", http.StatusSeeOther)

		return
	}

	editPath := "/doctors/" + id.String() + "/edit"

	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	form := c.Request().Form
	loginID := strings.TrimSpace(form.Get("login_id"))
	password := form.Get("password")

	if loginID == "" {
		SetErrorFlash(s, "ログインIDは必須です")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	if _, err := setDoctorLoginFn(c.Request().Context(), id, loginID, password); err != nil {
		switch {
		case errors.Is(err, db.ErrLoginIDTaken):
			SetErrorFlash(s, "このログインIDは既に使用されています")
		case errors.Is(err, db.ErrPasswordTooShort):
			SetErrorFlash(s, "パスワードは8文字以上にしてください")
		default:
			logger.Error("Error setting doctor login", "doctor_id", id, "error", err)
			SetErrorFlash(s, "ログイン設定に失敗しました")
		}

		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "ログインを設定しました")
	c.Redirect(editPath, http.StatusSeeOther)
}
