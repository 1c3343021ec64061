/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/blobstore"
	"github.com/ENO0123/hyoe-medical-records-system/clinical"
	"github.com/ENO0123/hyoe-medical-records-system/db"
)

// multipart overhead allowed on top of the image itself
const uploadFormOverhead = 1 << 20

var (
	listImagesFn  = db.ListImages
	getImageFn    = db.GetImage
	createImageFn = db.CreateImage
	deleteImageFn = db.DeleteImage
)

type imageView struct {
	Image db.TestResultImage
	URL   string
}

// imageCell is the (item, date) cell an image belongs to.
type imageCell struct {
	ItemID uuid.UUID
	Date   string
}

func parseImageCell(itemRaw, dateRaw string) (imageCell, error) {
	itemID, err := uuid.Parse(strings.TrimSpace(itemRaw))
	if err != nil {
		return imageCell{}, errInvalidID
	}

	date, err := clinical.ParseDate(dateRaw)
	if err != nil {
		return imageCell{}, err
	}

	return imageCell{ItemID: itemID, Date: clinical.DateKey(date)}, nil
}

func (cell imageCell) path(patientID uuid.UUID) string {
	return imagesURL(patientID, cell.ItemID, cell.Date)
}

func imagingResultsPath(patientID uuid.UUID) string {
	return resultsView{PatientID: patientID, Kind: clinical.KindImaging}.URL()
}

// ListImages renders the images of one imaging cell with an upload form.
func ListImages(c flamego.Context, s session.Session, signer *ImageSigner, t template.Template, data template.Data) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	cell, err := parseImageCell(c.Query("item"), c.Query("date"))
	if err != nil {
		SetErrorFlash(s, "検査項目または日付が正しくありません")
		c.Redirect(imagingResultsPath(patient.ID), http.StatusSeeOther)

		return
	}

	ctx := c.Request().Context()

	item, err := getTestItemFn(ctx, cell.ItemID)
	if err != nil {
		if !errors.Is(err, db.ErrTestItemNotFound) {
			logger.Error("Error fetching test item", "item_id", cell.ItemID, "error", err)
		}
		SetErrorFlash(s, "検査項目が見つかりません")
		c.Redirect(imagingResultsPath(patient.ID), http.StatusSeeOther)

		return
	}

	date, _ := clinical.ParseDate(cell.Date)

	images, err := listImagesFn(ctx, patient.ID, cell.ItemID, date)
	if err != nil {
		logger.Error("Error fetching images", "patient_id", patient.ID, "item_id", cell.ItemID, "error", err)
		data["Error"] = "画像の取得に失敗しました"
	}

	views := make([]imageView, 0, len(images))
	for _, img := range images {
		token, err := signer.Sign(patient.ID, img.ID)
		if err != nil {
			logger.Error("Error signing image token", "image_id", img.ID, "error", err)
			continue
		}
		views = append(views, imageView{Image: img, URL: "/images/" + token})
	}

	data["IsPatients"] = true
	data["Patient"] = patient
	data["Item"] = item
	data["Date"] = cell.Date
	data["DateLabel"] = clinical.DisplayDate(cell.Date)
	data["Images"] = views
	data["MaxSizeMB"] = blobstore.MaxImageSize >> 20
	data["BackURL"] = imagingResultsPath(patient.ID)
	data["Breadcrumbs"] = patientBreadcrumbs(patient, item.ItemName+" "+clinical.DisplayDate(cell.Date))

	t.HTML(http.StatusOK, "images")
}

// UploadImage stores an uploaded image in the blob store and records its
// metadata.
func UploadImage(c flamego.Context, s session.Session, store blobstore.Store) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	req := c.Request().Request
	req.Body = http.MaxBytesReader(c.ResponseWriter(), req.Body, blobstore.MaxImageSize+uploadFormOverhead)

	if err := req.ParseMultipartForm(blobstore.MaxImageSize + uploadFormOverhead); err != nil {
		SetErrorFlash(s, "ファイルサイズは10MB以下にしてください")
		c.Redirect(imagingResultsPath(patient.ID), http.StatusSeeOther)

		return
	}

	cell, err := parseImageCell(req.FormValue("item"), req.FormValue("date"))
	if err != nil {
		SetErrorFlash(s, "検査項目または日付が正しくありません")
		c.Redirect(imagingResultsPath(patient.ID), http.StatusSeeOther)

		return
	}

	back := cell.path(patient.ID)

	file, header, err := req.FormFile("image")
	if err != nil {
		SetErrorFlash(s, "ファイルを選択してください")
		c.Redirect(back, http.StatusSeeOther)

		return
	}
	defer func() {
		_ = file.Close()
	}()

	contentType := header.Header.Get("Content-Type")
	if err := blobstore.ValidateImage(contentType, header.Size); err != nil {
		switch {
		case errors.Is(err, blobstore.ErrFileTooLarge):
			SetErrorFlash(s, "ファイルサイズは10MB以下にしてください")
		case errors.Is(err, blobstore.ErrEmptyFile):
			SetErrorFlash(s, "ファイルが空です")
		default:
			SetErrorFlash(s, "PNG・JPEG・GIF・WebP形式の画像のみアップロードできます")
		}
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	ctx := c.Request().Context()
	key := blobstore.NewImageKey(patient.ID)

	size, err := store.Put(ctx, key, file)
	if err != nil {
		logger.Error("Error storing image", "patient_id", patient.ID, "key", key, "error", err)
		SetErrorFlash(s, "画像の保存に失敗しました")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	date, _ := clinical.ParseDate(cell.Date)

	_, err = createImageFn(ctx, db.CreateImageInput{
		PatientID: patient.ID,
		ItemID:    cell.ItemID,
		TestDate:  date,
		BlobKey:   key,
		FileName:  filepath.Base(header.Filename),
		FileSize:  size,
		MimeType:  contentType,
		CreatedBy: sessionUserUUID(s),
	})
	if err != nil {
		logger.Error("Error recording image", "patient_id", patient.ID, "key", key, "error", err)
		if delErr := store.Delete(ctx, key); delErr != nil {
			logger.Warn("Failed to remove orphaned blob", "key", key, "error", delErr)
		}
		SetErrorFlash(s, "画像の保存に失敗しました")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "画像をアップロードしました")
	c.Redirect(back, http.StatusSeeOther)
}

// ServeImage streams an image addressed by a signed token. The token must
// name a patient visible to the session user.
func ServeImage(c flamego.Context, s session.Session, signer *ImageSigner, store blobstore.Store) {
	patientID, imageID, err := signer.Verify(c.Param("token"))
	if err != nil {
		logAccessDenied(c, s, "invalid_image_token", http.StatusNotFound, "", "error", err)
		c.ResponseWriter().WriteHeader(http.StatusNotFound)

		return
	}

	ctx := c.Request().Context()

	if _, err := getPatientFn(ctx, sessionScope(s), patientID); err != nil {
		if errors.Is(err, db.ErrPatientNotFound) {
			logAccessDenied(c, s, "patient_out_of_scope", http.StatusNotFound, "", "patient_id", patientID)
		} else {
			logger.Error("Error fetching patient", "patient_id", patientID, "error", err)
		}
		c.ResponseWriter().WriteHeader(http.StatusNotFound)

		return
	}

	img, err := getImageFn(ctx, patientID, imageID)
	if err != nil {
		if !errors.Is(err, db.ErrImageNotFound) {
			logger.Error("Error fetching image", "image_id", imageID, "error", err)
		}
		c.ResponseWriter().WriteHeader(http.StatusNotFound)

		return
	}

	body, err := store.Open(ctx, img.BlobKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			logger.Warn("Image blob missing", "image_id", imageID, "key", img.BlobKey)
			c.ResponseWriter().WriteHeader(http.StatusNotFound)
		} else {
			logger.Error("Error opening image", "image_id", imageID, "error", err)
			c.ResponseWriter().WriteHeader(http.StatusServiceUnavailable)
		}

		return
	}
	defer func() {
		_ = body.Close()
	}()

	header := c.ResponseWriter().Header()
	header.Set("Content-Type", img.MimeType)
	header.Set("Content-Length", strconv.FormatInt(img.FileSize, 10))
	header.Set("Content-Disposition", "inline; filename*=UTF-8''"+url.PathEscape(img.FileName))
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set("Cache-Control", "private, max-age=3600")
	c.ResponseWriter().WriteHeader(http.StatusOK)

	if _, err := io.Copy(c.ResponseWriter(), body); err != nil {
		logger.Warn("Error streaming image", "image_id", imageID, "error", err)
	}
}

// DeleteImage removes the blob of an image, then its metadata. The
// metadata is removed even when the blob cannot be deleted.
func DeleteImage(c flamego.Context, s session.Session, store blobstore.Store) {
	patient, ok := loadPatient(c, s)
	if !ok {
		return
	}

	imageID, err := parseIDParam(c, "image_id")
	if err != nil {
		SetErrorFlash(s, "画像が見つかりません")
		c.Redirect(imagingResultsPath(patient.ID), http.StatusSeeOther)

		return
	}

	ctx := c.Request().Context()

	img, err := getImageFn(ctx, patient.ID, imageID)
	if err != nil {
		if !errors.Is(err, db.ErrImageNotFound) {
			logger.Error("Error fetching image", "image_id", imageID, "error", err)
		}
		SetErrorFlash(s, "画像が見つかりません")
		c.Redirect(imagingResultsPath(patient.ID), http.StatusSeeOther)

		return
	}

	back := imagesURL(patient.ID, img.ItemID, clinical.DateKey(img.TestDate))

	if err := store.Delete(ctx, img.BlobKey); err != nil && !errors.Is(err, blobstore.ErrBlobNotFound) {
		logger.Warn("Failed to delete image blob", "image_id", imageID, "key", img.BlobKey, "error", err)
	}

	if err := deleteImageFn(ctx, patient.ID, imageID); err != nil {
		if !errors.Is(err, db.ErrImageNotFound) {
			logger.Error("Error deleting image", "image_id", imageID, "error", err)
		}
		SetErrorFlash(s, "画像の削除に失敗しました")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "画像を削除しました")
	c.Redirect(back, http.StatusSeeOther)
}
