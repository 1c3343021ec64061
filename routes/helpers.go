/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
	"github.com/ENO0123/hyoe-medical-records-system/db"
)

// BreadcrumbItem represents a single breadcrumb navigation item
type BreadcrumbItem struct {
	Name      string
	URL       string
	IsCurrent bool
}

var getPatientFn = db.GetPatient

func getOptionalString(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}

func derefString(val *string) string {
	if val == nil {
		return ""
	}

	return *val
}

func parseOptionalFloat(val string) (*float64, error) {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errInvalidNumber, trimmed)
	}

	return &f, nil
}

func formatOptionalFloat(val *float64) string {
	if val == nil {
		return ""
	}

	return strconv.FormatFloat(*val, 'f', -1, 64)
}

func parseIDParam(c flamego.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", errInvalidID, name)
	}

	return id, nil
}

func patientPath(id uuid.UUID) string {
	return "/patients/" + id.String()
}

func patientBreadcrumbs(p *db.PatientSummary, current string) []BreadcrumbItem {
	crumbs := []BreadcrumbItem{
		{Name: "患者一覧", URL: "/patients"},
		{Name: p.Name, URL: patientPath(p.ID), IsCurrent: current == ""},
	}
	if current != "" {
		crumbs = append(crumbs, BreadcrumbItem{Name: current, IsCurrent: true})
	}

	return crumbs
}

// loadPatient resolves the {id} route parameter to a patient visible to the
// session user. On failure it sets a flash, redirects and returns false.
func loadPatient(c flamego.Context, s session.Session) (*db.PatientSummary, bool) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "患者が見つかりません")
		c.Redirect("/patients", http.StatusSeeOther)

		return nil, false
	}

	patient, err := getPatientFn(c.Request().Context(), sessionScope(s), id)
	if err != nil {
		if errors.Is(err, db.ErrPatientNotFound) {
			logAccessDenied(c, s, "patient_out_of_scope", http.StatusSeeOther, "/patients", "patient_id", id)
			SetErrorFlash(s, "患者が見つかりません")
		} else {
			logger.Error("Error fetching patient", "patient_id", id, "error", err)
			SetErrorFlash(s, "患者情報の取得に失敗しました")
		}

		c.Redirect("/patients", http.StatusSeeOther)

		return nil, false
	}

	return patient, true
}

// parseOptionalDate parses an optional YYYY-MM-DD form value.
func parseOptionalDate(val string) (*time.Time, error) {
	if strings.TrimSpace(val) == "" {
		return nil, nil
	}

	d, err := clinical.ParseDate(val)
	if err != nil {
		return nil, err
	}

	return &d, nil
}
