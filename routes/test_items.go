/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
	"github.com/ENO0123/hyoe-medical-records-system/db"
)

var (
	listTestItemsFn           = db.ListTestItems
	listTestItemsByCategoryFn = db.ListTestItemsByCategory
	getTestItemFn             = db.GetTestItem
	createTestItemFn          = db.CreateTestItem
	updateTestItemFn          = db.UpdateTestItem
	deleteTestItemFn          = db.DeleteTestItem
)

func testItemsBreadcrumb(isCurrent bool) BreadcrumbItem {
	return BreadcrumbItem{Name: "検査項目", URL: "/test-items", IsCurrent: isCurrent}
}

// parseTestItemForm reads the test item form. The returned message is empty
// when the form is valid.
func parseTestItemForm(form url.Values) (db.TestItemInput, string) {
	input := db.TestItemInput{
		ItemCode: strings.TrimSpace(form.Get("item_code")),
		ItemName: strings.TrimSpace(form.Get("item_name")),
		Category: strings.TrimSpace(form.Get("category")),
		Unit:     strings.TrimSpace(form.Get("unit")),
		Notes:    getOptionalString(form.Get("notes")),
	}

	if input.ItemCode == "" {
		return input, "項目コードは必須です"
	}

	if input.ItemName == "" {
		return input, "項目名は必須です"
	}

	if input.Category != "" && !clinical.ValidCategory(input.Category) {
		return input, "カテゴリが正しくありません"
	}

	bounds := []struct {
		field string
		dst   **float64
	}{
		{"reference_min", &input.ReferenceMin},
		{"reference_max", &input.ReferenceMax},
		{"reference_min_male", &input.ReferenceMinMale},
		{"reference_max_male", &input.ReferenceMaxMale},
		{"reference_min_female", &input.ReferenceMinFemale},
		{"reference_max_female", &input.ReferenceMaxFemale},
	}
	for _, b := range bounds {
		v, err := parseOptionalFloat(form.Get(b.field))
		if err != nil {
			return input, "基準値は数値で入力してください"
		}
		*b.dst = v
	}

	if order := strings.TrimSpace(form.Get("display_order")); order != "" {
		n, err := strconv.Atoi(order)
		if err != nil {
			return input, "表示順は整数で入力してください"
		}
		input.DisplayOrder = n
	}

	return input, ""
}

// ListTestItems displays the catalog, optionally restricted to one category.
func ListTestItems(c flamego.Context, t template.Template, data template.Data) {
	data["IsTestItems"] = true
	data["Breadcrumbs"] = []BreadcrumbItem{testItemsBreadcrumb(true)}
	data["Categories"] = clinical.Categories

	category := strings.TrimSpace(c.Query("category"))
	data["Category"] = category

	var (
		items []clinical.TestItem
		err   error
	)

	ctx := c.Request().Context()
	if category != "" {
		items, err = listTestItemsByCategoryFn(ctx, category)
	} else {
		items, err = listTestItemsFn(ctx)
	}

	if err != nil {
		logger.Error("Error fetching test items", "category", category, "error", err)
		data["Error"] = "検査項目の取得に失敗しました"
	} else {
		data["Items"] = items
	}

	t.HTML(http.StatusOK, "test_items")
}

// NewTestItemForm renders the add test item form
func NewTestItemForm(t template.Template, data template.Data) {
	data["IsTestItems"] = true
	data["Categories"] = clinical.Categories
	data["Bounds"] = map[string]string{}
	data["Breadcrumbs"] = []BreadcrumbItem{
		testItemsBreadcrumb(false),
		{Name: "新規登録", IsCurrent: true},
	}

	t.HTML(http.StatusOK, "test_item_form")
}

// CreateTestItem handles the add test item form.
func CreateTestItem(c flamego.Context, s session.Session) {
	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect("/test-items/new", http.StatusSeeOther)

		return
	}

	input, msg := parseTestItemForm(c.Request().Form)
	if msg != "" {
		SetErrorFlash(s, msg)
		c.Redirect("/test-items/new", http.StatusSeeOther)

		return
	}

	if _, err := createTestItemFn(c.Request().Context(), input); err != nil {
		logger.Error("Error creating test item", "item_code", input.ItemCode, "error", err)
		SetErrorFlash(s, "検査項目の登録に失敗しました")
		c.Redirect("/test-items/new", http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "検査項目を登録しました")
	c.Redirect("/test-items", http.StatusSeeOther)
}

// EditTestItemForm renders the edit test item form
func EditTestItemForm(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "検査項目が見つかりません")
		c.Redirect("/test-items", http.StatusSeeOther)

		return
	}

	item, err := getTestItemFn(c.Request().Context(), id)
	if err != nil {
		if !errors.Is(err, db.ErrTestItemNotFound) {
			logger.Error("Error fetching test item", "item_id", id, "error", err)
		}
		SetErrorFlash(s, "検査項目が見つかりません")
		c.Redirect("/test-items", http.StatusSeeOther)

		return
	}

	data["IsTestItems"] = true
	data["Item"] = item
	data["Categories"] = clinical.Categories
	data["Bounds"] = map[string]string{
		"reference_min":        formatOptionalFloat(item.ReferenceMin),
		"reference_max":        formatOptionalFloat(item.ReferenceMax),
		"reference_min_male":   formatOptionalFloat(item.ReferenceMinMale),
		"reference_max_male":   formatOptionalFloat(item.ReferenceMaxMale),
		"reference_min_female": formatOptionalFloat(item.ReferenceMinFemale),
		"reference_max_female": formatOptionalFloat(item.ReferenceMaxFemale),
	}
	data["Breadcrumbs"] = []BreadcrumbItem{
		testItemsBreadcrumb(false),
		{Name: item.ItemName, IsCurrent: true},
	}

	t.HTML(http.StatusOK, "test_item_form")
}

// UpdateTestItem handles the edit test item form.
func UpdateTestItem(c flamego.Context, s session.Session) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "検査項目が見つかりません")
		c.Redirect("/test-items", http.StatusSeeOther)

		return
	}

	editPath := "/test-items/" + id.String() + "/edit"

	if err := c.Request().ParseForm(); err != nil {
		SetErrorFlash(s, "フォームを読み取れませんでした")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	input, msg := parseTestItemForm(c.Request().Form)
	if msg != "" {
		SetErrorFlash(s, msg)
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	if err := updateTestItemFn(c.Request().Context(), id, input); err != nil {
		logger.Error("Error updating test item", "item_id", id, "error", err)
		SetErrorFlash(s, "検査項目の更新に失敗しました")
		c.Redirect(editPath, http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "検査項目を更新しました")
	c.Redirect("/test-items", http.StatusSeeOther)
}

// DeleteTestItem removes a test item that has no stored results.
func DeleteTestItem(c flamego.Context, s session.Session) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		SetErrorFlash(s, "検査項目が見つかりません")
		c.Redirect("/test-items", http.StatusSeeOther)

		return
	}

	if err := deleteTestItemFn(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, db.ErrTestItemInUse):
			SetErrorFlash(s, "検査結果が登録されているため削除できません")
		case errors.Is(err, db.ErrTestItemNotFound):
			SetErrorFlash(s, "検査項目が見つかりません")
		default:
			logger.Error("Error deleting test item", "item_id", id, "error", err)
			SetErrorFlash(s, "検査項目の削除に失敗しました")
		}
		c.Redirect("/test-items", http.StatusSeeOther)

		return
	}

	SetSuccessFlash(s, "検査項目を削除しました")
	c.Redirect("/test-items", http.StatusSeeOther)
}
