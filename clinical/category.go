/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package clinical

import (
	"slices"
	"strings"
)

// ItemKind is the top-level grouping of a test item.
type ItemKind int

const (
	KindLabResult ItemKind = iota
	KindPhysical
	KindImaging
)

func (k ItemKind) String() string {
	switch k {
	case KindPhysical:
		return "physical"
	case KindImaging:
		return "imaging"
	default:
		return "lab"
	}
}

// Label returns the Japanese tab label for the kind.
func (k ItemKind) Label() string {
	switch k {
	case KindPhysical:
		return "身体測定"
	case KindImaging:
		return "画像"
	default:
		return "検査結果"
	}
}

// ParseItemKind parses the value produced by String.
func ParseItemKind(s string) (ItemKind, bool) {
	switch strings.TrimSpace(s) {
	case "physical":
		return KindPhysical, true
	case "imaging":
		return KindImaging, true
	case "lab":
		return KindLabResult, true
	}

	return KindLabResult, false
}

// ItemKinds lists the kinds in tab order.
func ItemKinds() []ItemKind {
	return []ItemKind{KindPhysical, KindLabResult, KindImaging}
}

// Items are grouped by exact name. Order matters for physicalItemNames: it
// is the order trend charts offer items in.
var physicalItemNames = []string{
	"身長",
	"体重",
	"BMI",
	"腹囲",
	"体脂肪率",
	"除脂肪率",
	"基礎代謝量",
}

var imagingItemNames = map[string]struct{}{
	"甲状腺エコー":       {},
	"安静時心電図":       {},
	"胸部X線":         {},
	"CTR(心胸郭比)":    {},
	"胸部CT":         {},
	"腹部エコー（肝臓所見）":  {},
	"腹部エコー（胆嚢所見）":  {},
	"腹部エコー（すい臓所見）": {},
	"腹部エコー（腎臓所見）":  {},
	"腹部エコー（脾臓所見）":  {},
	"腹部エコー（腹部大動脈）": {},
	"経腟エコー（子宮）":    {},
	"経腟エコー（卵巣）":    {},
	"骨盤MRI":        {},
	"マンモグラフィー右":    {},
	"マンモグラフィー左":    {},
	"乳腺エコー右":       {},
	"乳腺エコー左":       {},
}

// KindOf classifies an item by its name.
func KindOf(itemName string) ItemKind {
	for _, name := range physicalItemNames {
		if name == itemName {
			return KindPhysical
		}
	}

	if _, ok := imagingItemNames[itemName]; ok {
		return KindImaging
	}

	return KindLabResult
}

// PhysicalRank returns the position of a physical item in the canonical
// list, or -1 for other items.
func PhysicalRank(itemName string) int {
	for i, name := range physicalItemNames {
		if name == itemName {
			return i
		}
	}

	return -1
}

// UncategorizedLabel is the band label for items without a category.
const UncategorizedLabel = "その他"

// Categories lists every category a catalog item may carry.
var Categories = []string{
	"身体", "脳・血管", "肺機能", "血圧", "血液", "脂質代謝", "糖代謝",
	"腎・尿路系", "肝胆膵", "内分泌", "口腔", "診察", "循環器", "呼吸器",
	"消化器", "生殖器", "乳がん", "腫瘍マーカー", "感染症・免疫", "糖尿",
	"貧血", "尿", "身長体重", "肝機能", "腎機能", "視力聴力", "画像検査",
	UncategorizedLabel,
}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}

	return false
}

var categoryPriority = []string{
	"身体",
	"脳・血管",
	"肺機能",
	"血圧",
	"血液",
	"脂質代謝",
	"糖代謝",
	"腎・尿路系",
	"肝胆膵",
	"内分泌",
	"口腔",
	"診察",
	"循環器",
	"呼吸器",
	"消化器",
	"生殖器",
	"乳がん",
	"腫瘍マーカー",
	"感染症・免疫",
}

// CategoryLabel returns the band label for a stored category.
func CategoryLabel(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return UncategorizedLabel
	}

	return category
}

func categoryRank(category string) int {
	for i, c := range categoryPriority {
		if c == category {
			return i
		}
	}

	return len(categoryPriority)
}

// CompareCategories orders categories by their position in the priority
// list. Categories outside the list sort after it, alphabetically.
func CompareCategories(a, b string) int {
	ra, rb := categoryRank(a), categoryRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	return strings.Compare(a, b)
}

// SubCategories returns the distinct category labels of items of the given
// kind, ordered by CompareCategories.
func SubCategories(items []TestItem, kind ItemKind) []string {
	seen := make(map[string]struct{})

	var out []string

	for _, item := range items {
		if item.Kind() != kind {
			continue
		}

		label := CategoryLabel(item.Category)
		if _, ok := seen[label]; ok {
			continue
		}

		seen[label] = struct{}{}
		out = append(out, label)
	}

	slices.SortFunc(out, CompareCategories)

	return out
}
