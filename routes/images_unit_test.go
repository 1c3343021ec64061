// SPDX-FileCopyrightText: 2025 ENO0123
// SPDX-License-Identifier: Apache-2.0

package routes

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/blobstore"
	"github.com/ENO0123/hyoe-medical-records-system/db"
)

func newImagesTestApp(s session.Session, store blobstore.Store, signer *ImageSigner) *flamego.Flame {
	f := flamego.New()
	f.Use(func(c flamego.Context) {
		c.MapTo(s, (*session.Session)(nil))
		c.MapTo(store, (*blobstore.Store)(nil))
		c.Map(signer)
		c.Next()
	})

	f.Post("/patients/{id}/images", UploadImage)
	f.Post("/patients/{id}/images/{image_id}/delete", DeleteImage)
	f.Get("/images/{token}", ServeImage)

	return f
}

func performImageUpload(
	t *testing.T,
	f *flamego.Flame,
	path string,
	fields map[string]string,
	contentType string,
	content []byte,
) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer

	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="xray.png"`)
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}

	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write part: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, req)

	return rec
}

// stubImageDB keeps image metadata in a map for the duration of a test.
func stubImageDB(t *testing.T) map[uuid.UUID]db.TestResultImage {
	t.Helper()

	images := make(map[uuid.UUID]db.TestResultImage)

	originalCreateImageFn := createImageFn
	originalGetImageFn := getImageFn
	originalDeleteImageFn := deleteImageFn

	createImageFn = func(_ context.Context, input db.CreateImageInput) (uuid.UUID, error) {
		id := uuid.New()
		images[id] = db.TestResultImage{
			ID:        id,
			PatientID: input.PatientID,
			ItemID:    input.ItemID,
			TestDate:  input.TestDate,
			BlobKey:   input.BlobKey,
			FileName:  input.FileName,
			FileSize:  input.FileSize,
			MimeType:  input.MimeType,
			CreatedAt: time.Now(),
		}
		return id, nil
	}

	getImageFn = func(_ context.Context, patientID, id uuid.UUID) (*db.TestResultImage, error) {
		img, ok := images[id]
		if !ok || img.PatientID != patientID {
			return nil, db.ErrImageNotFound
		}
		return &img, nil
	}

	deleteImageFn = func(_ context.Context, patientID, id uuid.UUID) error {
		img, ok := images[id]
		if !ok || img.PatientID != patientID {
			return db.ErrImageNotFound
		}
		delete(images, id)
		return nil
	}

	t.Cleanup(func() {
		createImageFn = originalCreateImageFn
		getImageFn = originalGetImageFn
		deleteImageFn = originalDeleteImageFn
	})

	return images
}

func mustImageSigner(t *testing.T) *ImageSigner {
	t.Helper()

	signer, err := NewImageSigner("test-secret")
	if err != nil {
		t.Fatalf("NewImageSigner failed: %v", err)
	}

	return signer
}

func TestUploadServeAndDeleteImage(t *testing.T) {
	patient := newTestPatient()
	stubPatient(t, patient, &db.PatientSnapshot{})
	images := stubImageDB(t)

	store := blobstore.NewMemoryStore()
	signer := mustImageSigner(t)
	itemID := uuid.New()

	s := newTestSession()
	setAdminSession(s)
	f := newImagesTestApp(s, store, signer)

	content := []byte("\x89PNG fake image")
	rec := performImageUpload(t, f, patientPath(patient.ID)+"/images", map[string]string{
		"item": itemID.String(),
		"date": "2024-01-10",
	}, "image/png", content)

	cellPath := imagesURL(patient.ID, itemID, "2024-01-10")
	assertRedirect(t, rec, cellPath)
	assertFlash(t, s, FlashSuccess, "画像をアップロードしました")

	if store.Len() != 1 || len(images) != 1 {
		t.Fatalf("expected one stored blob and record, got %d blobs and %d records", store.Len(), len(images))
	}

	var img db.TestResultImage
	for _, v := range images {
		img = v
	}

	if img.FileName != "xray.png" || img.FileSize != int64(len(content)) || img.MimeType != "image/png" {
		t.Fatalf("unexpected image metadata: %#v", img)
	}

	token, err := signer.Sign(patient.ID, img.ID)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	serveRec := httptest.NewRecorder()
	f.ServeHTTP(serveRec, httptest.NewRequest(http.MethodGet, "/images/"+token, nil))

	if serveRec.Code != http.StatusOK {
		t.Fatalf("expected 200 serving image, got %d", serveRec.Code)
	}

	if got := serveRec.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("unexpected Content-Type %q", got)
	}

	served, _ := io.ReadAll(serveRec.Body)
	if !bytes.Equal(served, content) {
		t.Fatalf("served content mismatch")
	}

	s.flash = nil
	delRec := performFormPOST(t, f, patientPath(patient.ID)+"/images/"+img.ID.String()+"/delete", nil, nil)

	assertRedirect(t, delRec, cellPath)
	assertFlash(t, s, FlashSuccess, "画像を削除しました")

	if store.Len() != 0 || len(images) != 0 {
		t.Fatalf("expected blob and record removed, got %d blobs and %d records", store.Len(), len(images))
	}
}

func TestUploadImageRejectsDisallowedType(t *testing.T) {
	patient := newTestPatient()
	stubPatient(t, patient, &db.PatientSnapshot{})
	images := stubImageDB(t)

	store := blobstore.NewMemoryStore()

	s := newTestSession()
	setAdminSession(s)
	f := newImagesTestApp(s, store, mustImageSigner(t))

	itemID := uuid.New()
	rec := performImageUpload(t, f, patientPath(patient.ID)+"/images", map[string]string{
		"item": itemID.String(),
		"date": "2024-01-10",
	}, "application/pdf", []byte("%PDF-1.7"))

	assertRedirect(t, rec, imagesURL(patient.ID, itemID, "2024-01-10"))
	assertFlash(t, s, FlashError, "PNG・JPEG・GIF・WebP形式の画像のみアップロードできます")

	if store.Len() != 0 || len(images) != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestDeleteImageRemovesMetadataWhenBlobMissing(t *testing.T) {
	patient := newTestPatient()
	stubPatient(t, patient, &db.PatientSnapshot{})
	images := stubImageDB(t)

	id, err := createImageFn(context.Background(), db.CreateImageInput{
		PatientID: patient.ID,
		ItemID:    uuid.New(),
		TestDate:  mustParseDate(t, "2024-01-10"),
		BlobKey:   blobstore.NewImageKey(patient.ID),
		FileName:  "lost.png",
		FileSize:  10,
		MimeType:  "image/png",
	})
	if err != nil {
		t.Fatalf("createImageFn failed: %v", err)
	}

	s := newTestSession()
	setAdminSession(s)
	f := newImagesTestApp(s, blobstore.NewMemoryStore(), mustImageSigner(t))

	rec := performFormPOST(t, f, patientPath(patient.ID)+"/images/"+id.String()+"/delete", nil, nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}

	assertFlash(t, s, FlashSuccess, "画像を削除しました")

	if len(images) != 0 {
		t.Fatalf("expected metadata removed even without blob")
	}
}

func TestServeImageRejectsOutOfScopeToken(t *testing.T) {
	patient := newTestPatient()
	stubPatient(t, patient, &db.PatientSnapshot{})
	stubImageDB(t)

	signer := mustImageSigner(t)

	token, err := signer.Sign(patient.ID, uuid.New())
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	s := newTestSession()
	setDoctorSession(s, uuid.New())
	f := newImagesTestApp(s, blobstore.NewMemoryStore(), signer)

	rec := httptest.NewRecorder()
	f.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/"+token, nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for out-of-scope token, got %d", rec.Code)
	}

	garbage := httptest.NewRecorder()
	f.ServeHTTP(garbage, httptest.NewRequest(http.MethodGet, "/images/"+strings.Repeat("x", 20), nil))

	if garbage.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for invalid token, got %d", garbage.Code)
	}
}
