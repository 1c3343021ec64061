/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"
)

// CatalogItem is a test item definition synced into the catalog.
type CatalogItem struct {
	Code      string
	Name      string
	Category  string
	Unit      string
	Min       *float64
	Max       *float64
	MinMale   *float64
	MaxMale   *float64
	MinFemale *float64
	MaxFemale *float64
	Order     int
}

// ptr is a helper to create pointers to float64 literals
func ptr(f float64) *float64 {
	return &f
}

// DefaultCatalog returns the built-in test item catalog. Items are keyed by
// code; syncing overwrites the stored definition of each code.
func DefaultCatalog() []CatalogItem {
	return []CatalogItem{
		{Code: "HEIGHT", Name: "身長", Category: "身体", Unit: "cm", Order: 1},
		{Code: "WEIGHT", Name: "体重", Category: "身体", Unit: "kg", Order: 2},
		{Code: "BMI", Name: "BMI", Category: "身体", Min: ptr(18.5), Max: ptr(24.9), Order: 3},
		{Code: "WAIST", Name: "腹囲", Category: "身体", Unit: "cm", Order: 4},
		{Code: "BODY_FAT", Name: "体脂肪率", Category: "身体", Unit: "%", Order: 5},
		{Code: "LEAN_BODY_MASS", Name: "除脂肪率", Category: "身体", Unit: "kg", Order: 6},
		{Code: "BMR", Name: "基礎代謝量", Category: "身体", Unit: "kcal/day", Order: 7},
		{Code: "VISION_NAKED_R", Name: "視力裸眼 (右)", Category: "身体", Order: 8},
		{Code: "VISION_NAKED_L", Name: "視力裸眼 (左)", Category: "身体", Order: 9},
		{Code: "VISION_CORRECTED_R", Name: "視力矯正 (右)", Category: "身体", Order: 10},
		{Code: "VISION_CORRECTED_L", Name: "視力矯正 (左)", Category: "身体", Order: 11},
		{Code: "HEARING_4K_R", Name: "聴力 (4000Hz,右)", Category: "身体", Order: 12},
		{Code: "HEARING_4K_L", Name: "聴力 (4000Hz,左)", Category: "身体", Order: 13},
		{Code: "HEARING_1K_R", Name: "聴力 (1000Hz,右)", Category: "身体", Order: 14},
		{Code: "HEARING_1K_L", Name: "聴力 (1000Hz,左)", Category: "身体", Order: 15},
		{Code: "IOP_R", Name: "眼圧 (右)", Category: "身体", Order: 16},
		{Code: "IOP_L", Name: "眼圧 (左)", Category: "身体", Order: 17},
		{Code: "IOP_CORRECTED_R", Name: "修正眼圧 (右)", Category: "身体", Order: 18},
		{Code: "IOP_CORRECTED_L", Name: "修正眼圧 (左)", Category: "身体", Order: 19},
		{Code: "Z_SCORE", Name: "同年齢比較(Z値)", Category: "身体", Unit: "%", Order: 20},
		{Code: "YAM_T_SCORE", Name: "若年比較(YAM,t値)", Category: "身体", Unit: "%", Order: 21},
		{Code: "CAROTID_ECHO", Name: "頸動脈エコー", Category: "脳・血管", Order: 30},
		{Code: "HEAD_MRI_MRA", Name: "頭部MRI/MRA", Category: "脳・血管", Order: 31},
		{Code: "ODI", Name: "血中酸素ウェルネス低下指数(ODI)", Category: "脳・血管", Unit: "回", Order: 32},
		{Code: "SLEEP_STABILITY", Name: "睡眠の安定度", Category: "脳・血管", Unit: "%", Order: 33},
		{Code: "VC", Name: "肺活量", Category: "肺機能", Unit: "L", Order: 40},
		{Code: "%VC", Name: "%肺活量(%VC)", Category: "肺機能", Unit: "%", Order: 41},
		{Code: "FEV1", Name: "1秒量(FEV1)", Category: "肺機能", Unit: "L", Order: 42},
		{Code: "%FEV1", Name: "%1秒量(%FEV1)", Category: "肺機能", Unit: "%", Order: 43},
		{Code: "FEV1%", Name: "1秒率(FEV1%)", Category: "肺機能", Unit: "%", Order: 44},
		{Code: "FVC", Name: "努力性肺活量(FVC)", Category: "肺機能", Unit: "L", Order: 45},
		{Code: "PEF", Name: "ピークフロー", Category: "肺機能", Unit: "L/sec", Order: 46},
		{Code: "PRED_VC", Name: "予測肺活量", Category: "肺機能", Unit: "L", Order: 47},
		{Code: "KL6", Name: "KL-6", Category: "肺機能", Order: 48},
		{Code: "SBP", Name: "収縮期血圧", Category: "血圧", Unit: "mmHg", Min: ptr(90), Max: ptr(139), Order: 50},
		{Code: "DBP", Name: "拡張期血圧", Category: "血圧", Unit: "mmHg", Min: ptr(60), Max: ptr(89), Order: 51},
		{Code: "RBC", Name: "赤血球数", Category: "血液", Unit: "x10^6/µL", MinMale: ptr(435), MaxMale: ptr(555), MinFemale: ptr(386), MaxFemale: ptr(492), Order: 60},
		{Code: "HGB", Name: "Hb", Category: "血液", Unit: "g/dL", Min: ptr(13.7), Max: ptr(16.8), MinMale: ptr(13.7), MaxMale: ptr(16.8), MinFemale: ptr(11.6), MaxFemale: ptr(14.8), Order: 61},
		{Code: "HCT", Name: "Ht", Category: "血液", Unit: "%", Min: ptr(40.7), Max: ptr(50.1), MinMale: ptr(40.7), MaxMale: ptr(50.1), MinFemale: ptr(35.1), MaxFemale: ptr(44.4), Order: 62},
		{Code: "FE", Name: "鉄", Category: "血液", Unit: "µg/dL", Order: 63},
		{Code: "FERRITIN", Name: "フェリチン", Category: "血液", Unit: "ng/mL", Min: ptr(25), Max: ptr(280), MinMale: ptr(25), MaxMale: ptr(280), MinFemale: ptr(10), MaxFemale: ptr(120), Order: 64},
		{Code: "RETIC", Name: "網状赤血球", Category: "血液", Unit: "‰", Min: ptr(3.6), Max: ptr(20.6), MinMale: ptr(3.6), MaxMale: ptr(20.6), MinFemale: ptr(3.6), MaxFemale: ptr(22.0), Order: 65},
		{Code: "LDH", Name: "LDH", Category: "血液", Unit: "U/L", Min: ptr(120), Max: ptr(240), MinMale: ptr(120), MaxMale: ptr(240), MinFemale: ptr(120), MaxFemale: ptr(240), Order: 66},
		{Code: "WBC", Name: "白血球数", Category: "血液", Unit: "x10^3/µL", Min: ptr(3.3), Max: ptr(8.6), MinMale: ptr(3.3), MaxMale: ptr(8.6), MinFemale: ptr(3.3), MaxFemale: ptr(8.6), Order: 67},
		{Code: "NEUTROPHIL", Name: "好中球", Category: "血液", Unit: "%", Min: ptr(45.2), Max: ptr(68.8), MinMale: ptr(45.2), MaxMale: ptr(68.8), MinFemale: ptr(49.7), MaxFemale: ptr(72.7), Order: 68},
		{Code: "LYMPHOCYTE", Name: "リンパ球", Category: "血液", Unit: "%", Min: ptr(26.8), Max: ptr(43.8), MinMale: ptr(26.8), MaxMale: ptr(43.8), MinFemale: ptr(24.5), MaxFemale: ptr(38.9), Order: 69},
		{Code: "MONOCYTE", Name: "単球", Category: "血液", Unit: "%", Min: ptr(2.7), Max: ptr(7.9), MinMale: ptr(2.7), MaxMale: ptr(7.9), MinFemale: ptr(1.7), MaxFemale: ptr(8.7), Order: 70},
		{Code: "EOSINOPHIL", Name: "好酸球", Category: "血液", Unit: "%", Min: ptr(0.0), Max: ptr(10.0), MinMale: ptr(0.0), MaxMale: ptr(10.0), MinFemale: ptr(0.0), MaxFemale: ptr(5.0), Order: 71},
		{Code: "BASOPHIL", Name: "好塩基球", Category: "血液", Unit: "%", Min: ptr(0.0), Max: ptr(5.0), MinMale: ptr(0.0), MaxMale: ptr(5.0), MinFemale: ptr(0.0), MaxFemale: ptr(3.0), Order: 72},
		{Code: "PLT", Name: "血小板数", Category: "血液", Unit: "x10^4/µL", Min: ptr(15.8), Max: ptr(34.8), Order: 73},
		{Code: "MCV", Name: "MCV", Category: "血液", Unit: "fL", Min: ptr(83.6), Max: ptr(98.2), Order: 74},
		{Code: "MCH", Name: "MCH", Category: "血液", Unit: "pg", Min: ptr(27.5), Max: ptr(33.2), Order: 75},
		{Code: "MCHC", Name: "MCHC", Category: "血液", Unit: "%", Min: ptr(31.7), Max: ptr(35.3), Order: 76},
		{Code: "TIBC", Name: "総鉄結合能(TIBC)", Category: "血液", Unit: "μg/dL", Order: 77},
		{Code: "UIBC", Name: "不飽和鉄結合能(UIBC)", Category: "血液", Unit: "μg/dL", Order: 78},
		{Code: "ABO", Name: "ABO", Category: "血液", Order: 79},
		{Code: "RH", Name: "RH", Category: "血液", Order: 80},
		{Code: "TC", Name: "総コレステロール", Category: "脂質代謝", Unit: "mg/dL", Min: ptr(120), Max: ptr(219), Order: 90},
		{Code: "HDL", Name: "HDLコレステロール", Category: "脂質代謝", Unit: "mg/dL", Min: ptr(40), Max: ptr(119), Order: 91},
		{Code: "LDL", Name: "LDLコレステロール", Category: "脂質代謝", Unit: "mg/dL", Min: ptr(60), Max: ptr(139), Order: 92},
		{Code: "L_H_RATIO", Name: "L/H比", Category: "脂質代謝", Order: 93},
		{Code: "NON_HDL", Name: "non-HDLコレステロール", Category: "脂質代謝", Unit: "mg/dL", Order: 94},
		{Code: "SD_LDL", Name: "sd-LDL", Category: "脂質代謝", Unit: "mg/dL", Order: 95},
		{Code: "TG", Name: "空腹時中性脂肪", Category: "脂質代謝", Unit: "mg/dL", Min: ptr(30), Max: ptr(149), Order: 96},
		{Code: "NT_PROBNP", Name: "NT-proBNP", Category: "脂質代謝", Order: 97},
		{Code: "GLU", Name: "空腹時血糖", Category: "糖代謝", Unit: "mg/dL", Min: ptr(70), Max: ptr(109), Order: 100},
		{Code: "HBA1C", Name: "HbA1c", Category: "糖代謝", Unit: "%", Min: ptr(4.6), Max: ptr(6.2), Order: 101},
		{Code: "1_5_AG", Name: "1,5-AG", Category: "糖代謝", Unit: "µg/mL", Order: 102},
		{Code: "GA", Name: "グリコアルブミン", Category: "糖代謝", Unit: "%", Order: 103},
		{Code: "GLU_2H", Name: "食後2時間血糖", Category: "糖代謝", Unit: "mg/dL", Order: 104},
		{Code: "U_PRO", Name: "尿蛋白", Category: "腎・尿路系", Order: 110},
		{Code: "U_BLD", Name: "尿潜血", Category: "腎・尿路系", Order: 111},
		{Code: "U_GLU", Name: "尿糖", Category: "腎・尿路系", Order: 112},
		{Code: "U_UBG", Name: "尿中ウロビリノーゲン", Category: "腎・尿路系", Order: 113},
		{Code: "U_PH", Name: "尿pH", Category: "腎・尿路系", Min: ptr(4.6), Max: ptr(7.5), Order: 114},
		{Code: "U_SG", Name: "尿比重", Category: "腎・尿路系", Min: ptr(1.006), Max: ptr(1.022), Order: 115},
		{Code: "UA", Name: "尿酸", Category: "腎・尿路系", Unit: "mg/dL", Min: ptr(3.0), Max: ptr(7.0), MinMale: ptr(3.0), MaxMale: ptr(7.0), MinFemale: ptr(2.5), MaxFemale: ptr(7.0), Order: 116},
		{Code: "BUN", Name: "尿素窒素", Category: "腎・尿路系", Unit: "mg/dL", Min: ptr(8), Max: ptr(20), MinMale: ptr(8), MaxMale: ptr(20), MinFemale: ptr(8), MaxFemale: ptr(20), Order: 117},
		{Code: "CRE", Name: "クレアチニン", Category: "腎・尿路系", Unit: "mg/dL", Min: ptr(0.6), Max: ptr(1.2), MinMale: ptr(0.6), MaxMale: ptr(1.2), MinFemale: ptr(0.4), MaxFemale: ptr(1.0), Order: 118},
		{Code: "EGFR", Name: "eGFR", Category: "腎・尿路系", Unit: "mL/min/1.73m2", Min: ptr(60), Order: 119},
		{Code: "NA", Name: "Na", Category: "腎・尿路系", Unit: "mEq/L", Min: ptr(138), Max: ptr(146), Order: 120},
		{Code: "K", Name: "K", Category: "腎・尿路系", Unit: "mEq/L", Min: ptr(3.6), Max: ptr(5.0), Order: 121},
		{Code: "CL", Name: "Cl", Category: "腎・尿路系", Unit: "mEq/L", Min: ptr(98), Max: ptr(110), Order: 122},
		{Code: "U_ALB", Name: "尿中アルブミン", Category: "腎・尿路系", Unit: "mg/gCre", Order: 123},
		{Code: "U_WBC", Name: "白血球（尿沈渣）", Category: "腎・尿路系", Order: 124},
		{Code: "U_RBC", Name: "赤血球（尿沈渣）", Category: "腎・尿路系", Order: 125},
		{Code: "U_SQUAMOUS", Name: "扁平上皮（尿沈渣）", Category: "腎・尿路系", Order: 126},
		{Code: "U_TRANSITIONAL", Name: "尿路上皮（尿沈渣）", Category: "腎・尿路系", Order: 127},
		{Code: "U_CAST", Name: "円柱（尿沈渣）", Category: "腎・尿路系", Order: 128},
		{Code: "U_BACTERIA", Name: "細菌（尿沈渣）", Category: "腎・尿路系", Order: 129},
		{Code: "L_FABP", Name: "L-FABP", Category: "腎・尿路系", Unit: "μg/gCre", Order: 130},
		{Code: "AST", Name: "AST", Category: "肝胆膵", Unit: "U/L", Min: ptr(10), Max: ptr(40), Order: 140},
		{Code: "ALT", Name: "ALT", Category: "肝胆膵", Unit: "U/L", Min: ptr(5), Max: ptr(45), Order: 141},
		{Code: "GGT", Name: "γ-GTP", Category: "肝胆膵", Unit: "U/L", Min: ptr(0), Max: ptr(79), MinMale: ptr(0), MaxMale: ptr(79), MinFemale: ptr(0), MaxFemale: ptr(48), Order: 142},
		{Code: "T_BIL", Name: "総ビリルビン", Category: "肝胆膵", Unit: "mg/dL", Min: ptr(0.2), Max: ptr(1.2), Order: 143},
		{Code: "D_BIL", Name: "直接ビリルビン", Category: "肝胆膵", Unit: "mg/dL", Min: ptr(0.0), Max: ptr(0.4), Order: 144},
		{Code: "I_BIL", Name: "間接ビリルビン", Category: "肝胆膵", Unit: "mg/dL", Order: 145},
		{Code: "CPK", Name: "CPK", Category: "肝胆膵", Unit: "U/L", Min: ptr(40), Max: ptr(200), MinMale: ptr(40), MaxMale: ptr(200), MinFemale: ptr(30), MaxFemale: ptr(120), Order: 146},
		{Code: "CHE", Name: "Ch-E", Category: "肝胆膵", Unit: "U/L", Min: ptr(234), Max: ptr(494), MinMale: ptr(234), MaxMale: ptr(494), MinFemale: ptr(196), MaxFemale: ptr(452), Order: 147},
		{Code: "TP", Name: "総蛋白", Category: "肝胆膵", Unit: "g/dL", Min: ptr(6.6), Max: ptr(8.1), Order: 148},
		{Code: "A_G_RATIO", Name: "A/G比", Category: "肝胆膵", Min: ptr(1.1), Max: ptr(2.0), Order: 149},
		{Code: "ALB", Name: "アルブミン量", Category: "肝胆膵", Unit: "g/dL", Min: ptr(3.8), Max: ptr(5.3), Order: 150},
		{Code: "AMY", Name: "アミラーゼ", Category: "肝胆膵", Unit: "U/L", Min: ptr(37), Max: ptr(125), Order: 151},
		{Code: "HBS_AG", Name: "HBs抗原", Category: "肝胆膵", Unit: "定性", Order: 152},
		{Code: "HCV_AB", Name: "HCV抗体", Category: "肝胆膵", Order: 153},
		{Code: "LDH2", Name: "LDH", Category: "肝胆膵", Unit: "U/L", Min: ptr(120), Max: ptr(240), Order: 154},
		{Code: "ALP", Name: "ALP", Category: "肝胆膵", Unit: "U/L", Min: ptr(100), Max: ptr(340), Order: 155},
		{Code: "CERULOPLASMIN", Name: "セルロプラスミン", Category: "肝胆膵", Unit: "mg/dL", Min: ptr(20), Max: ptr(35), Order: 156},
		{Code: "PROT_ALB", Name: "蛋白分画(アルブミン)", Category: "肝胆膵", Unit: "%", Order: 157},
		{Code: "PROT_A1", Name: "蛋白分画(α1)", Category: "肝胆膵", Unit: "%", Order: 158},
		{Code: "PROT_A2", Name: "蛋白分画(α2)", Category: "肝胆膵", Unit: "%", Order: 159},
		{Code: "PROT_B1", Name: "蛋白分画(β1)", Category: "肝胆膵", Unit: "%", Order: 160},
		{Code: "PROT_B2", Name: "蛋白分画(β2)", Category: "肝胆膵", Unit: "%", Order: 161},
		{Code: "PROT_G", Name: "蛋白分画(γ)", Category: "肝胆膵", Unit: "%", Order: 162},
		{Code: "FIB4", Name: "FIB-4 index", Category: "肝胆膵", Order: 163},
		{Code: "ZN", Name: "亜鉛", Category: "肝胆膵", Unit: "μg/dL", Min: ptr(65), Max: ptr(110), Order: 164},
		{Code: "MG", Name: "マグネシウム", Category: "肝胆膵", Unit: "mg/dL", Min: ptr(1.8), Max: ptr(2.4), Order: 165},
		{Code: "CU", Name: "血清銅", Category: "肝胆膵", Unit: "μg/dL", Min: ptr(70), Max: ptr(130), MinMale: ptr(70), MaxMale: ptr(130), MinFemale: ptr(80), MaxFemale: ptr(130), Order: 166},
		{Code: "IP", Name: "無機リン", Category: "肝胆膵", Unit: "mg/dL", Min: ptr(2.5), Max: ptr(4.5), Order: 167},
		{Code: "25OHVD", Name: "25OHVD", Category: "肝胆膵", Unit: "μg/mL", Min: ptr(30), Order: 168},
		{Code: "1_25_OH2VD", Name: "1,25(OH)2VD", Category: "肝胆膵", Unit: "PG/mL", Min: ptr(20), Max: ptr(60), Order: 169},
		{Code: "PL", Name: "リン脂質", Category: "内分泌", Unit: "mg/dL", Min: ptr(150), Max: ptr(300), Order: 170},
		{Code: "HOMOCYSTEINE", Name: "総ホモシステイン", Category: "内分泌", Unit: "nmol/mL", Min: ptr(5.0), Max: ptr(15.0), Order: 171},
		{Code: "FFA", Name: "遊離脂肪酸", Category: "内分泌", Unit: "μEq/L", Min: ptr(150), Max: ptr(650), Order: 172},
		{Code: "CA", Name: "カルシウム", Category: "内分泌", Unit: "mg/dL", Min: ptr(8.5), Max: ptr(10.5), Order: 173},
		{Code: "TSH", Name: "TSH", Category: "内分泌", Unit: "μIU/mL", Min: ptr(0.35), Max: ptr(4.94), Order: 174},
		{Code: "FT3", Name: "遊離T3", Category: "内分泌", Unit: "pg/mL", Min: ptr(1.71), Max: ptr(3.71), Order: 175},
		{Code: "FT4", Name: "遊離T4", Category: "内分泌", Unit: "ng/dL", Min: ptr(0.70), Max: ptr(1.48), Order: 176},
		{Code: "THYROID_ECHO", Name: "甲状腺エコー", Category: "内分泌", Order: 177},
		{Code: "CARIES", Name: "齲歯本数", Category: "口腔", Order: 180},
		{Code: "C0", Name: "C0", Category: "口腔", Order: 181},
		{Code: "C1", Name: "C1", Category: "口腔", Order: 182},
		{Code: "C2", Name: "C2", Category: "口腔", Order: 183},
		{Code: "C3", Name: "C3", Category: "口腔", Order: 184},
		{Code: "C4", Name: "C4", Category: "口腔", Order: 185},
		{Code: "MOBILE_TEETH", Name: "動揺歯数", Category: "口腔", Order: 186},
		{Code: "CALCULUS_TEETH", Name: "歯石歯数", Category: "口腔", Order: 187},
		{Code: "HEALTHY_TEETH", Name: "健全歯数", Category: "口腔", Order: 188},
		{Code: "PERIODONTAL_3", Name: "歯周ポケットの深さが3以上の歯数", Category: "口腔", Order: 189},
		{Code: "EXAM_FINDINGS", Name: "診察所見", Category: "診察", Order: 190},
		{Code: "FUNDUS_FINDINGS", Name: "眼底（所見）", Category: "循環器", Order: 200},
		{Code: "FUNDUS_KW_R", Name: "眼底（K-W）右", Category: "循環器", Order: 201},
		{Code: "FUNDUS_KW_L", Name: "眼底（K-W）左", Category: "循環器", Order: 202},
		{Code: "FUNDUS_S_S_R", Name: "眼底（Scheie S）右", Category: "循環器", Order: 203},
		{Code: "FUNDUS_S_S_L", Name: "眼底（Scheie S）左", Category: "循環器", Order: 204},
		{Code: "FUNDUS_S_H_R", Name: "眼底（Scheie H）右", Category: "循環器", Order: 205},
		{Code: "FUNDUS_S_H_L", Name: "眼底（Scheie H）左", Category: "循環器", Order: 206},
		{Code: "ECG", Name: "安静時心電図", Category: "循環器", Order: 207},
		{Code: "HR", Name: "心拍数", Category: "循環器", Unit: "/min", Order: 208},
		{Code: "CHEST_XRAY", Name: "胸部X線", Category: "呼吸器", Order: 210},
		{Code: "CTR", Name: "CTR(心胸郭比)", Category: "呼吸器", Order: 211},
		{Code: "CHEST_CT", Name: "胸部CT", Category: "呼吸器", Order: 212},
		{Code: "ABD_ECHO_LIVER", Name: "腹部エコー（肝臓所見）", Category: "消化器", Order: 220},
		{Code: "ABD_ECHO_GB", Name: "腹部エコー（胆嚢所見）", Category: "消化器", Order: 221},
		{Code: "ABD_ECHO_PANCREAS", Name: "腹部エコー（すい臓所見）", Category: "消化器", Order: 222},
		{Code: "ABD_ECHO_KIDNEY", Name: "腹部エコー（腎臓所見）", Category: "消化器", Order: 223},
		{Code: "ABD_ECHO_SPLEEN", Name: "腹部エコー（脾臓所見）", Category: "消化器", Order: 224},
		{Code: "ABD_ECHO_AORTA", Name: "腹部エコー（腹部大動脈）", Category: "消化器", Order: 225},
		{Code: "EGD", Name: "上部内視鏡所見", Category: "消化器", Order: 226},
		{Code: "COLONOSCOPY", Name: "下部内視鏡所見", Category: "消化器", Order: 227},
		{Code: "UGI", Name: "胃バリウム", Category: "消化器", Order: 228},
		{Code: "FOBT1", Name: "便潜血(1回目)", Category: "消化器", Order: 229},
		{Code: "FOBT2", Name: "便潜血(2回目)", Category: "消化器", Order: 230},
		{Code: "PG1", Name: "ペプシノーゲンⅠ", Category: "消化器", Order: 231},
		{Code: "PG2", Name: "ペプシノーゲンⅡ", Category: "消化器", Order: 232},
		{Code: "PG_RATIO", Name: "ペプシノーゲン比", Category: "消化器", Order: 233},
		{Code: "HP_AB", Name: "血清ピロリ抗体", Category: "消化器", Order: 234},
		{Code: "CERVICAL_CYTOLOGY", Name: "子宮頸部細胞診", Category: "生殖器", Order: 240},
		{Code: "HPV16", Name: "HPV16", Category: "生殖器", Order: 241},
		{Code: "HPV18", Name: "HPV18", Category: "生殖器", Order: 242},
		{Code: "HPV_OTHER", Name: "HPVその他ハイリスクグループ", Category: "生殖器", Order: 243},
		{Code: "TV_ECHO_UTERUS", Name: "経腟エコー（子宮）", Category: "生殖器", Order: 244},
		{Code: "TV_ECHO_OVARY", Name: "経腟エコー（卵巣）", Category: "生殖器", Order: 245},
		{Code: "PELVIC_MRI", Name: "骨盤MRI", Category: "生殖器", Order: 246},
		{Code: "MAMMO_R", Name: "マンモグラフィー右", Category: "乳がん", Order: 250},
		{Code: "MAMMO_L", Name: "マンモグラフィー左", Category: "乳がん", Order: 251},
		{Code: "BREAST_ECHO_R", Name: "乳腺エコー右", Category: "乳がん", Order: 252},
		{Code: "BREAST_ECHO_L", Name: "乳腺エコー左", Category: "乳がん", Order: 253},
		{Code: "CEA", Name: "CEA", Category: "腫瘍マーカー", Unit: "ng/mL", Max: ptr(5.0), Order: 260},
		{Code: "CA199", Name: "CA19-9", Category: "腫瘍マーカー", Unit: "U/mL", Max: ptr(37.0), Order: 261},
		{Code: "PSA", Name: "PSA (男性)", Category: "腫瘍マーカー", Unit: "ng/mL", Max: ptr(2.700), Order: 262},
		{Code: "CA125", Name: "CA125 (女性)", Category: "腫瘍マーカー", Unit: "U/mL", Max: ptr(35.0), Order: 263},
		{Code: "AFP", Name: "AFP", Category: "腫瘍マーカー", Unit: "ng/mL", Max: ptr(10.0), Order: 264},
		{Code: "SCC", Name: "SCC抗原", Category: "腫瘍マーカー", Unit: "ng/mL", Max: ptr(1.5), Order: 265},
		{Code: "CYFRA", Name: "CYFRA", Category: "腫瘍マーカー", Unit: "ng/mL", Max: ptr(2.2), Order: 266},
		{Code: "CRP", Name: "CRP", Category: "感染症・免疫", Unit: "mg/dL", Max: ptr(0.3), Order: 270},
		{Code: "ESR", Name: "赤沈", Category: "感染症・免疫", Unit: "mm/1h", Min: ptr(2), Max: ptr(10), MinMale: ptr(2), MaxMale: ptr(10), MinFemale: ptr(3), MaxFemale: ptr(15), Order: 271},
		{Code: "RF", Name: "RF", Category: "感染症・免疫", Unit: "IU/mL", Max: ptr(15), Order: 272},
		{Code: "ANA", Name: "抗核抗体", Category: "感染症・免疫", Unit: "倍", Max: ptr(40), Order: 273},
		{Code: "MPO_ANCA", Name: "MPO-ANCA", Category: "感染症・免疫", Unit: "U/mL", Order: 274},
		{Code: "PR3_ANCA", Name: "PR3-ANCA", Category: "感染症・免疫", Unit: "U/mL", Order: 275},
		{Code: "CCP_AB", Name: "抗CCP抗体", Category: "感染症・免疫", Unit: "U/mL", Order: 276},
		{Code: "HIV_AB", Name: "HIV抗体", Category: "感染症・免疫", Order: 277},
		{Code: "TP_AB", Name: "TP抗体", Category: "感染症・免疫", Unit: "定性", Order: 278},
		{Code: "RPR", Name: "RPR", Category: "感染症・免疫", Unit: "定性", Order: 279},
		{Code: "SYPHILIS_AB", Name: "梅毒抗体", Category: "感染症・免疫", Order: 280},
		{Code: "HBC_AB", Name: "HBc抗体", Category: "感染症・免疫", Order: 281},
		{Code: "HCV_AB2", Name: "HCV抗体", Category: "感染症・免疫", Order: 282},
		{Code: "CMV_AB", Name: "サイトメガロウイルス抗体", Category: "感染症・免疫", Order: 283},
		{Code: "EBV_AB", Name: "EBウイルス抗体", Category: "感染症・免疫", Order: 284},
		{Code: "MYCOPLASMA_AB", Name: "マイコプラズマ抗体", Category: "感染症・免疫", Order: 285},
		{Code: "CHLAMYDIA_AB", Name: "クラミジア抗体", Category: "感染症・免疫", Order: 286},
		{Code: "INFLUENZA_AB", Name: "インフルエンザ抗体", Category: "感染症・免疫", Order: 287},
		{Code: "MEASLES_AB", Name: "麻疹抗体(EIA法-IgG)", Category: "感染症・免疫", Order: 288},
		{Code: "MEASLES_AB_RESULT", Name: "麻疹抗体(EIA-IgG)判定", Category: "感染症・免疫", Order: 289},
		{Code: "RUBELLA_AB", Name: "風疹抗体 (EIA法-IgG)", Category: "感染症・免疫", Order: 290},
		{Code: "RUBELLA_AB_RESULT", Name: "風疹抗体 (EIA法-IgG)判定", Category: "感染症・免疫", Order: 291},
		{Code: "VARICELLA_AB", Name: "水痘抗体(EIA法-IgG)", Category: "感染症・免疫", Order: 292},
		{Code: "VARICELLA_AB_RESULT", Name: "水痘抗体(EIA法-IgG)判定", Category: "感染症・免疫", Order: 293},
		{Code: "MUMPS_AB", Name: "ムンプス抗体(EIA法-IgG)", Category: "感染症・免疫", Order: 294},
		{Code: "MUMPS_AB2", Name: "ムンプス抗体(EIA法-IgG)", Category: "感染症・免疫", Order: 295},
		{Code: "ASO", Name: "ASO", Category: "感染症・免疫", Unit: "IU/mL", Order: 296},
		{Code: "ASK", Name: "ASK", Category: "感染症・免疫", Unit: "IU/mL", Order: 297},
		{Code: "COMPLEMENT_C3", Name: "C3", Category: "感染症・免疫", Unit: "mg/dL", Order: 298},
		{Code: "COMPLEMENT_C4", Name: "C4", Category: "感染症・免疫", Unit: "mg/dL", Order: 299},
		{Code: "CH50", Name: "CH50", Category: "感染症・免疫", Unit: "U/mL", Order: 300},
		{Code: "IGA", Name: "IgA", Category: "感染症・免疫", Unit: "mg/dL", Order: 301},
		{Code: "IGG", Name: "IgG", Category: "感染症・免疫", Unit: "mg/dL", Order: 302},
		{Code: "IGM", Name: "IgM", Category: "感染症・免疫", Unit: "mg/dL", Order: 303},
		{Code: "IGE", Name: "IgE", Category: "感染症・免疫", Unit: "IU/mL", Order: 304},
		{Code: "T_CELL", Name: "T-cell", Category: "感染症・免疫", Unit: "%", Order: 305},
		{Code: "B_CELL", Name: "B-cell", Category: "感染症・免疫", Unit: "%", Order: 306},
		{Code: "NK_CELL", Name: "NK細胞", Category: "感染症・免疫", Unit: "%", Order: 307},
	}
}

// SyncTestItemCatalog upserts every item of the built-in catalog. Items
// created by users and not present in the catalog are left untouched.
func SyncTestItemCatalog(ctx context.Context) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		INSERT INTO test_items (
			item_code, item_name, category, unit,
			reference_min, reference_max,
			reference_min_male, reference_max_male,
			reference_min_female, reference_max_female,
			display_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (item_code) DO UPDATE SET
			item_name = EXCLUDED.item_name,
			category = EXCLUDED.category,
			unit = EXCLUDED.unit,
			reference_min = EXCLUDED.reference_min,
			reference_max = EXCLUDED.reference_max,
			reference_min_male = EXCLUDED.reference_min_male,
			reference_max_male = EXCLUDED.reference_max_male,
			reference_min_female = EXCLUDED.reference_min_female,
			reference_max_female = EXCLUDED.reference_max_female,
			display_order = EXCLUDED.display_order,
			updated_at = now()
	`

	catalog := DefaultCatalog()
	for _, item := range catalog {
		_, err := tx.Exec(ctx, query,
			item.Code, item.Name, item.Category, item.Unit,
			item.Min, item.Max,
			item.MinMale, item.MaxMale,
			item.MinFemale, item.MaxFemale,
			item.Order,
		)
		if err != nil {
			return fmt.Errorf("failed to sync test item %s: %w", item.Code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit catalog sync: %w", err)
	}

	invalidateCatalog()
	logger.Info("Synced test item catalog", "items", len(catalog))

	return nil
}
