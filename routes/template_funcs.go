/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

// TemplateFuncs returns the helpers available to every page template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"date":        formatDisplayDate,
		"isoDate":     formatISODate,
		"dateTime":    formatDateTime,
		"num":         formatNumber,
		"statusClass": statusClass,
		"fileSize":    formatFileSize,
	}
}

func timeValue(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}

		return *t, !t.IsZero()
	}

	return time.Time{}, false
}

func formatDisplayDate(v any) string {
	t, ok := timeValue(v)
	if !ok {
		return ""
	}

	return t.Format("2006.01.02")
}

func formatISODate(v any) string {
	t, ok := timeValue(v)
	if !ok {
		return ""
	}

	return clinical.DateKey(t)
}

func formatDateTime(v any) string {
	t, ok := timeValue(v)
	if !ok {
		return ""
	}

	return t.Local().Format("2006.01.02 15:04")
}

func formatNumber(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case *float64:
		return formatOptionalFloat(n)
	case int:
		return strconv.Itoa(n)
	}

	return ""
}

func statusClass(s clinical.Status) string {
	switch s {
	case clinical.StatusBelowRange:
		return "value-low"
	case clinical.StatusAboveRange:
		return "value-high"
	case clinical.StatusNormal:
		return "value-normal"
	}

	return ""
}

func formatFileSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}

	return fmt.Sprintf("%d B", n)
}
