// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-FileCopyrightText: 2025 ENO0123
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
	"github.com/ENO0123/hyoe-medical-records-system/db"
)

var (
	errTestBoom              = errors.New("boom")
	errTestShouldNotBeCalled = errors.New("should not be called")
)

func newMutatingHandlersTestApp(s session.Session) *flamego.Flame {
	f := flamego.New()
	f.Use(func(c flamego.Context) {
		c.MapTo(s, (*session.Session)(nil))
		c.Next()
	})

	f.Post("/login", Login)
	f.Post("/doctors/{id}/delete", DeleteDoctor)
	f.Post("/doctors/{id}/login", SetDoctorLogin)
	f.Post("/patients/new", CreatePatient)
	f.Post("/patients/{id}/edit", UpdatePatient)
	f.Post("/patients/{id}/results/edit", SaveResults)
	f.Post("/patients/{id}/medications/new", CreateMedication)
	f.Post("/test-items/new", CreateTestItem)

	return f
}

func performFormPOST(
	t *testing.T,
	f *flamego.Flame,
	path string,
	form url.Values,
	headers map[string]string,
) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

func performMalformedFormPOST(
	t *testing.T,
	f *flamego.Flame,
	path string,
) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader("%"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, wantLocation string) {
	t.Helper()

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}

	if got := rec.Header().Get("Location"); got != wantLocation {
		t.Fatalf("expected redirect %q, got %q", wantLocation, got)
	}
}

func assertFlash(t *testing.T, s *testSession, wantType FlashType, wantMessage string) {
	t.Helper()

	msg, ok := s.flash.(FlashMessage)
	if !ok {
		t.Fatalf("expected flash message, got %T", s.flash)
	}

	if msg.Type != wantType || msg.Message != wantMessage {
		t.Fatalf("unexpected flash message: %#v", msg)
	}
}

func assertNoFlash(t *testing.T, s *testSession) {
	t.Helper()

	if s.flash != nil {
		t.Fatalf("expected no flash message, got %#v", s.flash)
	}
}

func setAdminSession(s *testSession) {
	s.Set(db.SessionAuthenticatedKey, true)
	s.Set(db.SessionUserIDKey, uuid.NewString())
	s.Set(db.SessionIsAdminKey, true)
	s.Set(db.SessionDisplayNameKey, "管理者")
}

func setDoctorSession(s *testSession, doctorID uuid.UUID) {
	s.Set(db.SessionAuthenticatedKey, true)
	s.Set(db.SessionUserIDKey, uuid.NewString())
	s.Set(db.SessionIsAdminKey, false)
	s.Set(db.SessionDoctorIDKey, doctorID.String())
}

// stubPatient makes getPatientFn and loadPatientSnapshotFn return patient
// for any scope that allows its doctor.
func stubPatient(t *testing.T, patient *db.PatientSummary, snap *db.PatientSnapshot) {
	t.Helper()

	originalGetPatientFn := getPatientFn
	originalLoadSnapshotFn := loadPatientSnapshotFn

	getPatientFn = func(_ context.Context, scope db.Scope, id uuid.UUID) (*db.PatientSummary, error) {
		if id != patient.ID || !scope.Allows(patient.DoctorID) {
			return nil, db.ErrPatientNotFound
		}
		return patient, nil
	}

	loadPatientSnapshotFn = func(ctx context.Context, scope db.Scope, id uuid.UUID) (*db.PatientSnapshot, error) {
		p, err := getPatientFn(ctx, scope, id)
		if err != nil {
			return nil, err
		}
		out := *snap
		out.Patient = p
		return &out, nil
	}

	t.Cleanup(func() {
		getPatientFn = originalGetPatientFn
		loadPatientSnapshotFn = originalLoadSnapshotFn
	})
}

func newTestPatient() *db.PatientSummary {
	return &db.PatientSummary{
		Patient: db.Patient{
			ID:          uuid.New(),
			PatientCode: "P001",
			Name:        "佐藤 花子",
			Gender:      clinical.GenderFemale,
			BirthDate:   time.Date(1980, 4, 1, 0, 0, 0, 0, time.UTC),
			DoctorID:    uuid.New(),
			Status:      db.PatientActive,
		},
	}
}

func TestLoginRejectsBlankCredentials(t *testing.T) {
	originalAuthenticateFn := authenticateFn
	authenticateFn = func(context.Context, string, string) (*db.User, error) {
		return nil, errTestShouldNotBeCalled
	}

	t.Cleanup(func() {
		authenticateFn = originalAuthenticateFn
	})

	s := newTestSession()
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, "/login", url.Values{"login_id": {"  "}, "password": {"x"}}, nil)

	assertRedirect(t, rec, "/login")
	assertFlash(t, s, FlashError, "ログインIDとパスワードを入力してください")
}

func TestLoginInvalidCredentials(t *testing.T) {
	originalAuthenticateFn := authenticateFn
	authenticateFn = func(context.Context, string, string) (*db.User, error) {
		return nil, db.ErrInvalidCredentials
	}

	t.Cleanup(func() {
		authenticateFn = originalAuthenticateFn
	})

	s := newTestSession()
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, "/login", url.Values{"login_id": {"dr"}, "password": {"wrong-password"}}, nil)

	assertRedirect(t, rec, "/login")
	assertFlash(t, s, FlashError, "ログインIDまたはパスワードが正しくありません")

	if authenticated, _ := s.Get(db.SessionAuthenticatedKey).(bool); authenticated {
		t.Fatalf("expected session to stay unauthenticated")
	}
}

func TestLoginSuccessSetsSessionUser(t *testing.T) {
	doctorID := uuid.New()
	user := &db.User{ID: uuid.New(), LoginID: "dr", DisplayName: "鈴木 一郎", DoctorID: &doctorID}

	originalAuthenticateFn := authenticateFn

	var capturedLogin string

	authenticateFn = func(_ context.Context, loginID, _ string) (*db.User, error) {
		capturedLogin = loginID
		return user, nil
	}

	t.Cleanup(func() {
		authenticateFn = originalAuthenticateFn
	})

	s := newTestSession()
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, "/login", url.Values{"login_id": {"  dr  "}, "password": {"correct-horse"}}, nil)

	assertRedirect(t, rec, "/")
	assertNoFlash(t, s)

	if capturedLogin != "dr" {
		t.Fatalf("expected trimmed login id, got %q", capturedLogin)
	}

	if s.ID() != "regenerated-session" {
		t.Fatalf("expected session id to be regenerated")
	}

	scope := sessionScope(s)
	if scope.DoctorID == nil || *scope.DoctorID != doctorID {
		t.Fatalf("expected doctor scope after login, got %#v", scope.DoctorID)
	}
}

func TestDeleteDoctorWithPatients(t *testing.T) {
	originalDeleteDoctorFn := deleteDoctorFn
	deleteDoctorFn = func(context.Context, uuid.UUID) error {
		return db.ErrDoctorHasPatients
	}

	t.Cleanup(func() {
		deleteDoctorFn = originalDeleteDoctorFn
	})

	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, "/doctors/"+uuid.NewString()+"/delete", url.Values{}, nil)

	assertRedirect(t, rec, "/doctors")
	assertFlash(t, s, FlashError, "担当患者がいるため削除できません")
}

func TestSetDoctorLoginLoginIDTaken(t *testing.T) {
	originalSetDoctorLoginFn := setDoctorLoginFn
	setDoctorLoginFn = func(context.Context, uuid.UUID, string, string) (*db.User, error) {
		return nil, db.ErrLoginIDTaken
	}

	t.Cleanup(func() {
		setDoctorLoginFn = originalSetDoctorLoginFn
	})

	doctorID := uuid.NewString()
	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, "/doctors/"+doctorID+"/login", url.Values{
		"login_id": {"taken"},
		"password": {"long-enough"},
	}, nil)

	assertRedirect(t, rec, "/doctors/"+doctorID+"/edit")
	assertFlash(t, s, FlashError, "このログインIDは既に使用されています")
}

func TestCreatePatientParseFormError(t *testing.T) {
	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performMalformedFormPOST(t, f, "/patients/new")

	assertRedirect(t, rec, "/patients/new")
	assertFlash(t, s, FlashError, "フォームを読み取れませんでした")
}

func TestCreatePatientValidation(t *testing.T) {
	originalCreatePatientFn := createPatientFn
	createPatientFn = func(context.Context, db.CreatePatientInput) (uuid.UUID, error) {
		return uuid.Nil, errTestShouldNotBeCalled
	}

	t.Cleanup(func() {
		createPatientFn = originalCreatePatientFn
	})

	valid := url.Values{
		"name":       {"佐藤 花子"},
		"gender":     {"female"},
		"birth_date": {"1980-04-01"},
		"doctor_id":  {uuid.NewString()},
	}

	tests := []struct {
		name    string
		field   string
		value   string
		message string
	}{
		{name: "blank name", field: "name", value: "  ", message: "氏名は必須です"},
		{name: "bad gender", field: "gender", value: "x", message: "性別を選択してください"},
		{name: "bad birth date", field: "birth_date", value: "1980/04/01", message: "生年月日の形式が正しくありません"},
		{name: "missing doctor", field: "doctor_id", value: "", message: "担当顧問医を選択してください"},
		{name: "bad status", field: "status", value: "archived", message: "ステータスが正しくありません"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			for k, v := range valid {
				form[k] = v
			}
			form.Set(tt.field, tt.value)

			s := newTestSession()
			setAdminSession(s)
			f := newMutatingHandlersTestApp(s)
			rec := performFormPOST(t, f, "/patients/new", form, nil)

			assertRedirect(t, rec, "/patients/new")
			assertFlash(t, s, FlashError, tt.message)
		})
	}
}

func TestCreatePatientSuccessDefaultsStatus(t *testing.T) {
	originalCreatePatientFn := createPatientFn
	newID := uuid.New()

	var captured db.CreatePatientInput

	createPatientFn = func(_ context.Context, input db.CreatePatientInput) (uuid.UUID, error) {
		captured = input
		return newID, nil
	}

	t.Cleanup(func() {
		createPatientFn = originalCreatePatientFn
	})

	doctorID := uuid.New()
	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, "/patients/new", url.Values{
		"name":       {"  佐藤 花子  "},
		"name_kana":  {"  "},
		"gender":     {"female"},
		"birth_date": {"1980-04-01"},
		"doctor_id":  {doctorID.String()},
	}, nil)

	assertRedirect(t, rec, "/patients/"+newID.String())
	assertFlash(t, s, FlashSuccess, "患者を登録しました")

	if captured.Name != "佐藤 花子" || captured.NameKana != nil {
		t.Fatalf("unexpected captured names: %#v", captured)
	}

	if captured.Status != db.PatientNew || captured.DoctorID != doctorID || captured.Gender != clinical.GenderFemale {
		t.Fatalf("unexpected captured input: %#v", captured)
	}
}

func TestUpdatePatientOutOfScope(t *testing.T) {
	originalUpdatePatientFn := updatePatientFn
	updatePatientFn = func(context.Context, db.Scope, uuid.UUID, db.UpdatePatientInput) error {
		return db.ErrPatientNotFound
	}

	t.Cleanup(func() {
		updatePatientFn = originalUpdatePatientFn
	})

	s := newTestSession()
	setDoctorSession(s, uuid.New())
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, "/patients/"+uuid.NewString()+"/edit", url.Values{
		"name":       {"佐藤 花子"},
		"gender":     {"female"},
		"birth_date": {"1980-04-01"},
		"doctor_id":  {uuid.NewString()},
		"status":     {"active"},
	}, nil)

	assertRedirect(t, rec, "/patients")
	assertFlash(t, s, FlashError, "患者が見つかりません")
}

func newResultsFixture(t *testing.T) (*db.PatientSummary, clinical.TestItem, clinical.TestResult) {
	t.Helper()

	patient := newTestPatient()
	item := clinical.TestItem{ID: uuid.New(), ItemCode: "HGB", ItemName: "ヘモグロビン", Category: "血液"}
	existing := clinical.TestResult{
		ID:          uuid.New(),
		PatientID:   patient.ID,
		ItemID:      item.ID,
		TestDate:    mustParseDate(t, "2024-01-10"),
		ResultValue: "12.0",
	}

	stubPatient(t, patient, &db.PatientSnapshot{
		Items:   []clinical.TestItem{item},
		Results: []clinical.TestResult{existing},
	})

	return patient, item, existing
}

func TestSaveResultsOtherDoctorCannotWrite(t *testing.T) {
	patient, item, _ := newResultsFixture(t)

	originalApplyPlanFn := applyPlanFn
	applyPlanFn = func(context.Context, clinical.ResultWriter, uuid.UUID, *clinical.Plan) error {
		return errTestShouldNotBeCalled
	}

	t.Cleanup(func() {
		applyPlanFn = originalApplyPlanFn
	})

	s := newTestSession()
	setDoctorSession(s, uuid.New())
	f := newMutatingHandlersTestApp(s)
	form := url.Values{}
	form.Set("kind", "lab")
	form.Set("date", "2024-01-10")
	form.Set(resultValuePrefix+item.ID.String(), "13")

	rec := performFormPOST(t, f, patientPath(patient.ID)+"/results/edit", form, nil)

	assertRedirect(t, rec, "/patients")
	assertFlash(t, s, FlashError, "患者が見つかりません")
}

func TestSaveResultsRejectsNonNumericValue(t *testing.T) {
	patient, item, _ := newResultsFixture(t)

	originalApplyPlanFn := applyPlanFn
	applyPlanFn = func(context.Context, clinical.ResultWriter, uuid.UUID, *clinical.Plan) error {
		return errTestShouldNotBeCalled
	}

	t.Cleanup(func() {
		applyPlanFn = originalApplyPlanFn
	})

	form := url.Values{}
	form.Set("kind", "lab")
	form.Set("date", "2024-01-10")
	form.Set(resultValuePrefix+item.ID.String(), "high")

	s := newTestSession()
	setDoctorSession(s, patient.DoctorID)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, patientPath(patient.ID)+"/results/edit", form, nil)

	assertRedirect(t, rec, patientPath(patient.ID)+"/results/edit?date=2024-01-10&kind=lab")
	assertFlash(t, s, FlashError, "ヘモグロビン の値「high」は数値ではありません")
}

func TestSaveResultsAppliesReconciledPlan(t *testing.T) {
	patient, item, existing := newResultsFixture(t)

	originalApplyPlanFn := applyPlanFn

	var captured *clinical.Plan

	applyPlanFn = func(_ context.Context, w clinical.ResultWriter, patientID uuid.UUID, plan *clinical.Plan) error {
		if w == nil || patientID != patient.ID {
			return errTestBoom
		}
		captured = plan
		return nil
	}

	t.Cleanup(func() {
		applyPlanFn = originalApplyPlanFn
	})

	form := url.Values{}
	form.Set("kind", "lab")
	form.Set("date", "2024-01-10")
	form.Set(resultValuePrefix+item.ID.String(), " 13.1 ")

	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, patientPath(patient.ID)+"/results/edit", form, nil)

	assertRedirect(t, rec, patientPath(patient.ID)+"/results?kind=lab")
	assertFlash(t, s, FlashSuccess, "検査結果を保存しました")

	if captured == nil || len(captured.ToUpdate) != 1 || len(captured.ToCreate) != 0 || len(captured.ToDelete) != 0 {
		t.Fatalf("unexpected plan: %#v", captured)
	}

	if captured.ToUpdate[0].ResultID != existing.ID || captured.ToUpdate[0].Value != "13.1" {
		t.Fatalf("unexpected update op: %#v", captured.ToUpdate[0])
	}
}

func TestSaveResultsUnchangedValueSkipsWrites(t *testing.T) {
	patient, item, _ := newResultsFixture(t)

	originalApplyPlanFn := applyPlanFn
	applyPlanFn = func(context.Context, clinical.ResultWriter, uuid.UUID, *clinical.Plan) error {
		return errTestShouldNotBeCalled
	}

	t.Cleanup(func() {
		applyPlanFn = originalApplyPlanFn
	})

	form := url.Values{}
	form.Set("kind", "lab")
	form.Set("date", "2024-01-10")
	form.Set(resultValuePrefix+item.ID.String(), " 12.0 ")

	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, patientPath(patient.ID)+"/results/edit", form, nil)

	assertRedirect(t, rec, patientPath(patient.ID)+"/results?kind=lab")
	assertFlash(t, s, FlashSuccess, "変更はありません")
}

func TestSaveResultsNewDateKeepsStoredResults(t *testing.T) {
	patient := newTestPatient()
	hgb := clinical.TestItem{ID: uuid.New(), ItemCode: "HGB", ItemName: "ヘモグロビン", Category: "血液", DisplayOrder: 1}
	ast := clinical.TestItem{ID: uuid.New(), ItemCode: "AST", ItemName: "AST", Category: "肝機能", DisplayOrder: 2}
	stored := clinical.TestResult{
		ID:          uuid.New(),
		PatientID:   patient.ID,
		ItemID:      hgb.ID,
		TestDate:    mustParseDate(t, "2024-01-10"),
		ResultValue: "12.0",
	}

	stubPatient(t, patient, &db.PatientSnapshot{
		Items:   []clinical.TestItem{hgb, ast},
		Results: []clinical.TestResult{stored},
	})

	originalApplyPlanFn := applyPlanFn

	var captured *clinical.Plan

	applyPlanFn = func(_ context.Context, _ clinical.ResultWriter, _ uuid.UUID, plan *clinical.Plan) error {
		captured = plan
		return nil
	}

	t.Cleanup(func() {
		applyPlanFn = originalApplyPlanFn
	})

	form := url.Values{}
	form.Set("kind", "lab")
	form.Set("mode", "new")
	form.Set("date", "2024-01-10")
	form.Set(resultValuePrefix+hgb.ID.String(), "")
	form.Set(resultValuePrefix+ast.ID.String(), "30")

	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, patientPath(patient.ID)+"/results/edit", form, nil)

	assertRedirect(t, rec, patientPath(patient.ID)+"/results?kind=lab")
	assertFlash(t, s, FlashSuccess, "検査結果を保存しました")

	if captured == nil {
		t.Fatal("expected plan to be applied")
	}

	if len(captured.ToDelete) != 0 {
		t.Fatalf("expected stored result to be kept, got deletes %+v", captured.ToDelete)
	}

	if len(captured.ToCreate) != 1 || captured.ToCreate[0].ItemID != ast.ID || captured.ToCreate[0].Value != "30" {
		t.Fatalf("expected create of AST=30, got %+v", captured.ToCreate)
	}
}

func TestSaveResultsNewDateOnlyBlanksIsNoop(t *testing.T) {
	patient, item, _ := newResultsFixture(t)

	originalApplyPlanFn := applyPlanFn
	applyPlanFn = func(context.Context, clinical.ResultWriter, uuid.UUID, *clinical.Plan) error {
		return errTestShouldNotBeCalled
	}

	t.Cleanup(func() {
		applyPlanFn = originalApplyPlanFn
	})

	form := url.Values{}
	form.Set("kind", "lab")
	form.Set("mode", "new")
	form.Set("date", "2024-01-10")
	form.Set(resultValuePrefix+item.ID.String(), "")

	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, patientPath(patient.ID)+"/results/edit", form, nil)

	assertRedirect(t, rec, patientPath(patient.ID)+"/results?kind=lab")
	assertFlash(t, s, FlashSuccess, "変更はありません")
}

func TestSaveResultsNewDateErrorReturnsToNewForm(t *testing.T) {
	patient, item, _ := newResultsFixture(t)

	form := url.Values{}
	form.Set("kind", "lab")
	form.Set("mode", "new")
	form.Set("date", "2024-02-01")
	form.Set(resultValuePrefix+item.ID.String(), "high")

	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, patientPath(patient.ID)+"/results/edit", form, nil)

	assertRedirect(t, rec, patientPath(patient.ID)+"/results/edit?kind=lab")
	assertFlash(t, s, FlashError, "ヘモグロビン の値「high」は数値ではありません")
}

func TestSaveResultsPartialFailureWarns(t *testing.T) {
	patient, item, existing := newResultsFixture(t)

	originalApplyPlanFn := applyPlanFn
	applyPlanFn = func(context.Context, clinical.ResultWriter, uuid.UUID, *clinical.Plan) error {
		return &clinical.PartialWriteFailure{
			Failed: []clinical.FailedWrite{{
				Kind:     clinical.WriteDelete,
				ResultID: existing.ID,
				Err:      db.ErrTestResultNotFound,
			}},
		}
	}

	t.Cleanup(func() {
		applyPlanFn = originalApplyPlanFn
	})

	form := url.Values{}
	form.Set("kind", "lab")
	form.Set("date", "2024-01-10")
	form.Set(resultValuePrefix+item.ID.String(), "")

	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, patientPath(patient.ID)+"/results/edit", form, nil)

	assertRedirect(t, rec, patientPath(patient.ID)+"/results?kind=lab")
	assertFlash(t, s, FlashWarning, "一部の検査結果を保存できませんでした。内容を確認してください")
}

func TestCreateMedicationEndBeforeStart(t *testing.T) {
	patient := newTestPatient()
	stubPatient(t, patient, &db.PatientSnapshot{})

	originalCreateMedicationFn := createMedicationFn
	createMedicationFn = func(context.Context, uuid.UUID, *uuid.UUID, db.MedicationInput) (uuid.UUID, error) {
		return uuid.Nil, errTestShouldNotBeCalled
	}

	t.Cleanup(func() {
		createMedicationFn = originalCreateMedicationFn
	})

	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, medicationsPath(patient.ID)+"/new", url.Values{
		"medication_name": {"アムロジピン"},
		"start_date":      {"2024-05-01"},
		"end_date":        {"2024-04-30"},
	}, nil)

	assertRedirect(t, rec, medicationsPath(patient.ID))
	assertFlash(t, s, FlashError, "終了日は開始日以降にしてください")
}

func TestCreateMedicationOngoing(t *testing.T) {
	patient := newTestPatient()
	stubPatient(t, patient, &db.PatientSnapshot{})

	originalCreateMedicationFn := createMedicationFn

	var captured db.MedicationInput

	createMedicationFn = func(_ context.Context, patientID uuid.UUID, createdBy *uuid.UUID, input db.MedicationInput) (uuid.UUID, error) {
		if patientID != patient.ID || createdBy == nil {
			return uuid.Nil, errTestBoom
		}
		captured = input
		return uuid.New(), nil
	}

	t.Cleanup(func() {
		createMedicationFn = originalCreateMedicationFn
	})

	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, medicationsPath(patient.ID)+"/new", url.Values{
		"medication_name": {" アムロジピン "},
		"start_date":      {"2024-05-01"},
		"end_date":        {""},
	}, nil)

	assertRedirect(t, rec, medicationsPath(patient.ID))
	assertFlash(t, s, FlashSuccess, "服薬記録を登録しました")

	if captured.MedicationName != "アムロジピン" || captured.EndDate != nil {
		t.Fatalf("unexpected captured medication: %#v", captured)
	}
}

func TestCreateTestItemRejectsNonNumericBound(t *testing.T) {
	originalCreateTestItemFn := createTestItemFn
	createTestItemFn = func(context.Context, db.TestItemInput) (uuid.UUID, error) {
		return uuid.Nil, errTestShouldNotBeCalled
	}

	t.Cleanup(func() {
		createTestItemFn = originalCreateTestItemFn
	})

	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, "/test-items/new", url.Values{
		"item_code":     {"HGB"},
		"item_name":     {"ヘモグロビン"},
		"category":      {"血液"},
		"reference_min": {"low"},
	}, nil)

	assertRedirect(t, rec, "/test-items/new")
	assertFlash(t, s, FlashError, "基準値は数値で入力してください")
}

func TestCreateTestItemSuccess(t *testing.T) {
	originalCreateTestItemFn := createTestItemFn

	var captured db.TestItemInput

	createTestItemFn = func(_ context.Context, input db.TestItemInput) (uuid.UUID, error) {
		captured = input
		return uuid.New(), nil
	}

	t.Cleanup(func() {
		createTestItemFn = originalCreateTestItemFn
	})

	s := newTestSession()
	setAdminSession(s)
	f := newMutatingHandlersTestApp(s)
	rec := performFormPOST(t, f, "/test-items/new", url.Values{
		"item_code":          {" HGB "},
		"item_name":          {"ヘモグロビン"},
		"category":           {"血液"},
		"unit":               {"g/dL"},
		"reference_min_male": {"13.0"},
		"reference_max_male": {"17.0"},
		"display_order":      {"20"},
	}, nil)

	assertRedirect(t, rec, "/test-items")
	assertFlash(t, s, FlashSuccess, "検査項目を登録しました")

	if captured.ItemCode != "HGB" || captured.DisplayOrder != 20 {
		t.Fatalf("unexpected captured item: %#v", captured)
	}

	if captured.ReferenceMinMale == nil || *captured.ReferenceMinMale != 13 || captured.ReferenceMin != nil {
		t.Fatalf("unexpected captured bounds: %#v", captured)
	}
}
