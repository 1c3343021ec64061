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

const resultValuePrefix = "value_"

var (
	loadPatientSnapshotFn = db.LoadPatientSnapshot
	applyPlanFn           = clinical.ApplyPlan
	newResultWriterFn     = func(createdBy *uuid.UUID) clinical.ResultWriter {
		return &db.ResultStore{CreatedBy: createdBy}
	}
)

type kindTab struct {
	Kind   clinical.ItemKind
	Label  string
	URL    string
	Active bool
}

type subCategoryTab struct {
	Name   string
	URL    string
	Active bool
}

type dateToggle struct {
	Key      string
	Label    string
	Selected bool
	URL      string
}

type matrixCell struct {
	Date     string
	Value    string
	Status   clinical.Status
	ImageURL string
}

type matrixRow struct {
	Item     clinical.TestItem
	Bounds   clinical.Bounds
	Cells    []matrixCell
	ChartURL string
}

type matrixBand struct {
	Category string
	Rows     []matrixRow
}

// resultsView is the query state of the results page.
type resultsView struct {
	PatientID   uuid.UUID
	Kind        clinical.ItemKind
	SubCategory string
	// Explicit is set once the user has toggled a date column. Until then
	// every date is shown.
	Explicit bool
	Dates    clinical.DateSelection
}

func parseResultsView(patientID uuid.UUID, query url.Values) resultsView {
	kind, _ := clinical.ParseItemKind(query.Get("kind"))

	view := resultsView{
		PatientID:   patientID,
		Kind:        kind,
		SubCategory: strings.TrimSpace(query.Get("sub")),
		Explicit:    query.Get("sel") == "1",
	}

	if view.Kind != clinical.KindLabResult {
		view.SubCategory = ""
	}

	if view.Explicit {
		view.Dates = clinical.SelectDates(query["show"]...)
	}

	return view
}

func (v resultsView) URL() string {
	q := url.Values{}
	q.Set("kind", v.Kind.String())

	if v.SubCategory != "" {
		q.Set("sub", v.SubCategory)
	}

	if v.Explicit {
		q.Set("sel", "1")
		for _, d := range v.Dates.Keys() {
			q.Add("show", d)
		}
	}

	return patientPath(v.PatientID) + "/results?" + q.Encode()
}

// visible returns the shown subset of all, in order.
func (v resultsView) visible(all []string) []string {
	if !v.Explicit {
		return all
	}

	return v.Dates.Filter(all)
}

func (v resultsView) toggles(all []string) []dateToggle {
	current := v.Dates
	if !v.Explicit {
		current = clinical.SelectDates(all...)
	}

	toggles := make([]dateToggle, 0, len(all))
	for _, d := range all {
		next := v
		next.Explicit = true
		next.Dates = current.Toggle(d)

		toggles = append(toggles, dateToggle{
			Key:      d,
			Label:    clinical.DisplayDate(d),
			Selected: current.Contains(d),
			URL:      next.URL(),
		})
	}

	return toggles
}

func (v resultsView) kindTabs() []kindTab {
	tabs := make([]kindTab, 0, 3)
	for _, k := range clinical.ItemKinds() {
		tabs = append(tabs, kindTab{
			Kind:   k,
			Label:  k.Label(),
			URL:    resultsView{PatientID: v.PatientID, Kind: k}.URL(),
			Active: k == v.Kind,
		})
	}

	return tabs
}

// subCategoryTabs returns the category filter tabs, which only the lab
// result tab has.
func (v resultsView) subCategoryTabs(items []clinical.TestItem) []subCategoryTab {
	if v.Kind != clinical.KindLabResult {
		return nil
	}

	all := v
	all.SubCategory = ""

	tabs := []subCategoryTab{{Name: "すべて", URL: all.URL(), Active: v.SubCategory == ""}}
	for _, name := range clinical.SubCategories(items, v.Kind) {
		next := v
		next.SubCategory = name
		tabs = append(tabs, subCategoryTab{Name: name, URL: next.URL(), Active: name == v.SubCategory})
	}

	return tabs
}

func imagesURL(patientID, itemID uuid.UUID, date string) string {
	q := url.Values{}
	q.Set("item", itemID.String())
	q.Set("date", date)

	return patientPath(patientID) + "/images?" + q.Encode()
}

func chartURL(patientID, itemID uuid.UUID) string {
	return patientPath(patientID) + "/charts/" + itemID.String()
}

// buildMatrixBands classifies every visible cell against the patient's
// reference ranges.
func buildMatrixBands(m *clinical.Matrix, dates []string, patientID uuid.UUID, gender clinical.Gender) []matrixBand {
	bands := make([]matrixBand, 0, len(m.Bands))

	for _, band := range m.Bands {
		out := matrixBand{Category: band.Category}

		for _, row := range band.Rows {
			mr := matrixRow{
				Item:   row.Item,
				Bounds: clinical.ResolveRange(row.Item, gender),
				Cells:  make([]matrixCell, 0, len(dates)),
			}
			if m.Kind == clinical.KindPhysical {
				mr.ChartURL = chartURL(patientID, row.Item.ID)
			}

			for _, d := range dates {
				cell := matrixCell{Date: d, Value: clinical.NoDataValue, Status: clinical.StatusUnclassified}
				if value := row.Value(d); value != "" {
					cell.Value = value
					cell.Status = clinical.Classify(value, mr.Bounds)
				}
				if m.Kind == clinical.KindImaging {
					cell.ImageURL = imagesURL(patientID, row.Item.ID, d)
				}
				mr.Cells = append(mr.Cells, cell)
			}

			out.Rows = append(out.Rows, mr)
		}

		bands = append(bands, out)
	}

	return bands
}

func loadSnapshot(c flamego.Context, s session.Session) (*db.PatientSnapshot, bool) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "患者が見つかりません")
		c.Redirect("/patients", http.StatusSeeOther)

		return nil, false
	}

	snap, err := loadPatientSnapshotFn(c.Request().Context(), sessionScope(s), id)
	if err != nil {
		if errors.Is(err, db.ErrPatientNotFound) {
			logAccessDenied(c, s, "patient_out_of_scope", http.StatusSeeOther, "/patients", "patient_id", id)
			SetErrorFlash(s, "患者が見つかりません")
			c.Redirect("/patients", http.StatusSeeOther)
		} else {
			logger.Error("Error loading patient snapshot", "patient_id", id, "error", err)
			SetErrorFlash(s, "検査結果の取得に失敗しました")
			c.Redirect(patientPath(id), http.StatusSeeOther)
		}

		return nil, false
	}

	return snap, true
}

// ViewResults renders the item by date matrix of one patient.
func ViewResults(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	snap, ok := loadSnapshot(c, s)
	if !ok {
		return
	}

	patient := snap.Patient
	view := parseResultsView(patient.ID, c.Request().URL.Query())

	m, err := clinical.BuildMatrix(snap.Items, snap.Results, clinical.MatrixOptions{
		Kind:        view.Kind,
		SubCategory: view.SubCategory,
		Duplicates:  clinical.KeepLast,
	})
	if err != nil {
		logger.Error("Error building result matrix", "patient_id", patient.ID, "error", err)
		SetErrorFlash(s, "検査結果の表示に失敗しました")
		c.Redirect(patientPath(patient.ID), http.StatusSeeOther)

		return
	}

	if m.Orphans > 0 {
		logger.Warn("Results reference missing test items", "patient_id", patient.ID, "count", m.Orphans)
	}

	dates := view.visible(m.Dates)

	data["IsPatients"] = true
	data["Patient"] = patient
	data["Kind"] = view.Kind
	data["KindTabs"] = view.kindTabs()
	data["SubCategoryTabs"] = view.subCategoryTabs(snap.Items)
	data["DateToggles"] = view.toggles(m.Dates)
	data["Dates"] = dates
	data["DateLabels"] = displayDates(dates)
	data["Bands"] = buildMatrixBands(m, dates, patient.ID, patient.Gender)
	data["Editable"] = view.Kind != clinical.KindImaging
	data["NewDateURL"] = patientPath(patient.ID) + "/results/edit?kind=" + view.Kind.String()
	data["Breadcrumbs"] = patientBreadcrumbs(patient, "検査結果")

	t.HTML(http.StatusOK, "results")
}

func displayDates(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = clinical.DisplayDate(k)
	}

	return out
}

type editField struct {
	Item   clinical.TestItem
	Name   string
	Value  string
	Bounds clinical.Bounds
}

type editBand struct {
	Category string
	Fields   []editField
}

// editableItems returns the items of kind in band order.
func editableItems(snap *db.PatientSnapshot, kind clinical.ItemKind) ([]clinical.TestItem, *clinical.Matrix, error) {
	m, err := clinical.BuildMatrix(snap.Items, snap.Results, clinical.MatrixOptions{Kind: kind})
	if err != nil {
		return nil, nil, err
	}

	return m.Items(), m, nil
}

// EditResultsForm renders the edit form of one date column. Without a
// date it renders the new date form.
func EditResultsForm(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	snap, ok := loadSnapshot(c, s)
	if !ok {
		return
	}

	patient := snap.Patient
	kind, _ := clinical.ParseItemKind(c.Query("kind"))
	back := resultsView{PatientID: patient.ID, Kind: kind}.URL()

	if kind == clinical.KindImaging {
		SetErrorFlash(s, "画像検査は画像ページから登録してください")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	var date string
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		d, err := clinical.ParseDate(raw)
		if err != nil {
			SetErrorFlash(s, "日付の形式が正しくありません")
			c.Redirect(back, http.StatusSeeOther)

			return
		}
		date = clinical.DateKey(d)
	}

	_, m, err := editableItems(snap, kind)
	if err != nil {
		logger.Error("Error building result matrix", "patient_id", patient.ID, "error", err)
		SetErrorFlash(s, "検査結果の表示に失敗しました")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	bands := make([]editBand, 0, len(m.Bands))
	for _, band := range m.Bands {
		eb := editBand{Category: band.Category}
		for _, row := range band.Rows {
			field := editField{
				Item:   row.Item,
				Name:   resultValuePrefix + row.Item.ID.String(),
				Bounds: clinical.ResolveRange(row.Item, patient.Gender),
			}
			if date != "" {
				field.Value = row.Value(date)
			}
			eb.Fields = append(eb.Fields, field)
		}
		bands = append(bands, eb)
	}

	title := "新しい日付の入力"
	if date != "" {
		title = clinical.DisplayDate(date) + " の編集"
	}

	data["IsPatients"] = true
	data["Patient"] = patient
	data["Kind"] = kind
	data["Date"] = date
	data["IsNewDate"] = date == ""
	data["Today"] = clinical.DateKey(time.Now())
	data["Bands"] = bands
	data["BackURL"] = back
	data["Title"] = title
	data["Breadcrumbs"] = patientBreadcrumbs(patient, title)

	t.HTML(http.StatusOK, "results_edit")
}

// submittedValues extracts the value_<item id> fields of the edit form.
func submittedValues(form url.Values) (map[uuid.UUID]string, error) {
	values := make(map[uuid.UUID]string)

	for key, vals := range form {
		if !strings.HasPrefix(key, resultValuePrefix) {
			continue
		}

		id, err := uuid.Parse(strings.TrimPrefix(key, resultValuePrefix))
		if err != nil {
			return nil, errInvalidID
		}

		if len(vals) > 0 {
			values[id] = vals[0]
		}
	}

	return values, nil
}

// newDateMode marks a submission from the add date form.
const newDateMode = "new"

// SaveResults reconciles the submitted column with the stored results and
// applies the resulting creates, updates and deletes. A submission from the
// new date form only adds or changes values; its blank fields never delete.
func SaveResults(c flamego.Context, s session.Session) {
	snap, ok := loadSnapshot(c, s)
	if !ok {
		return
	}

	patient := snap.Patient

	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect(resultsView{PatientID: patient.ID}.URL(), http.StatusSeeOther)

		return
	}

	form := c.Request().Form
	kind, _ := clinical.ParseItemKind(form.Get("kind"))
	back := resultsView{PatientID: patient.ID, Kind: kind}.URL()
	newDate := form.Get("mode") == newDateMode
	editQuery := url.Values{"kind": {kind.String()}}
	if !newDate {
		editQuery.Set("date", strings.TrimSpace(form.Get("date")))
	}
	editPath := patientPath(patient.ID) + "/results/edit?" + editQuery.Encode()

	date, err := clinical.ParseDate(form.Get("date"))
	if err != nil {
		SetErrorFlash(s, "日付を入力してください")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	submitted, err := submittedValues(form)
	if err != nil {
		SetErrorFlash(s, "入力項目が正しくありません")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	items, _, err := editableItems(snap, kind)
	if err != nil {
		logger.Error("Error building result matrix", "patient_id", patient.ID, "error", err)
		SetErrorFlash(s, "検査結果の保存に失敗しました")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	plan, err := clinical.Reconcile(clinical.ReconcileInput{
		Date:      date,
		Items:     items,
		Submitted: submitted,
		Existing:  snap.Results,
	})
	if err != nil {
		var validationErr *clinical.ValidationError
		var notFoundErr *clinical.NotFoundError

		switch {
		case errors.As(err, &validationErr):
			SetErrorFlash(s, validationErr.ItemName+" の値「"+validationErr.Value+"」は数値ではありません")
		case errors.As(err, &notFoundErr):
			logger.Warn("Submitted unknown test item", "patient_id", patient.ID, "item_id", notFoundErr.ItemID)
			SetErrorFlash(s, "検査項目が見つかりません")
		default:
			logger.Error("Error reconciling results", "patient_id", patient.ID, "error", err)
			SetErrorFlash(s, "検査結果の保存に失敗しました")
		}
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	if newDate && len(plan.ToDelete) > 0 {
		logger.Info("Kept results left blank on new date form",
			"patient_id", patient.ID,
			"date", clinical.DateKey(date),
			"kept", len(plan.ToDelete),
		)
		plan.ToDelete = nil
	}

	if plan.Empty() {
		SetSuccessFlash(s, "変更はありません")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	err = applyPlanFn(c.Request().Context(), newResultWriterFn(sessionUserUUID(s)), patient.ID, plan)
	if err != nil {
		var partial *clinical.PartialWriteFailure
		if errors.As(err, &partial) {
			logger.Error("Some result writes failed",
				"patient_id", patient.ID,
				"date", clinical.DateKey(date),
				"failed", len(partial.Failed),
				"succeeded", partial.Succeeded,
				"kinds", partial.Kinds(),
				"error", err,
			)
			SetWarningFlash(s, "一部の検査結果を保存できませんでした。内容を確認してください")
		} else {
			logger.Error("Error applying result plan", "patient_id", patient.ID, "error", err)
			SetErrorFlash(s, "検査結果の保存に失敗しました")
		}
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	logger.Info("Saved results",
		"patient_id", patient.ID,
		"date", clinical.DateKey(date),
		"created", len(plan.ToCreate),
		"updated", len(plan.ToUpdate),
		"deleted", len(plan.ToDelete),
	)
	SetSuccessFlash(s, "検査結果を保存しました")
	c.Redirect(back, http.StatusSeeOther)
}
