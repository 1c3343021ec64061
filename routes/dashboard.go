/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"net/http"
	"time"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/ENO0123/hyoe-medical-records-system/db"
)

const dashboardAbnormalLimit = 20

var (
	getDashboardStatsFn   = db.GetDashboardStats
	listAbnormalResultsFn = db.ListAbnormalResults
)

// Dashboard renders the landing page with patient statistics and the most
// recent out-of-range results.
func Dashboard(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	data["IsDashboard"] = true

	ctx := c.Request().Context()
	scope := sessionScope(s)

	stats, err := getDashboardStatsFn(ctx, scope, time.Now())
	if err != nil {
		logger.Error("Error fetching dashboard stats", "error", err)
		data["Error"] = "統計情報の取得に失敗しました"
	} else {
		data["Stats"] = stats
	}

	abnormal, err := listAbnormalResultsFn(ctx, scope)
	if err != nil {
		logger.Error("Error fetching abnormal results", "error", err)
		data["Error"] = "異常値の取得に失敗しました"
	} else {
		data["AbnormalTotal"] = len(abnormal)
		if len(abnormal) > dashboardAbnormalLimit {
			abnormal = abnormal[:dashboardAbnormalLimit]
		}
		data["Abnormal"] = abnormal
	}

	t.HTML(http.StatusOK, "dashboard")
}
