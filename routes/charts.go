/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"bytes"
	htmltemplate "html/template"
	"net/http"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

type trendPoint struct {
	Date  string
	Value float64
}

// trendPoints returns the numeric results of one item in date order, one
// point per date. The last stored value of a date wins.
func trendPoints(results []clinical.TestResult, itemID uuid.UUID) []trendPoint {
	byDate := make(map[string]float64)

	var dates []string

	for _, res := range results {
		if res.ItemID != itemID {
			continue
		}

		v, ok := clinical.ParseValue(res.ResultValue)
		if !ok {
			continue
		}

		key := clinical.DateKey(res.TestDate)
		if _, seen := byDate[key]; !seen {
			dates = append(dates, key)
		}
		byDate[key] = v
	}

	sel := clinical.SelectDates(dates...)
	points := make([]trendPoint, 0, len(dates))

	for _, d := range sel.Keys() {
		points = append(points, trendPoint{Date: d, Value: byDate[d]})
	}

	return points
}

// renderTrendChart draws a line chart of points with the reference range
// as dashed mark lines. It returns an empty string when there is no data.
func renderTrendChart(item clinical.TestItem, bounds clinical.Bounds, points []trendPoint) (string, error) {
	if len(points) == 0 {
		return "", nil
	}

	xAxis := make([]string, 0, len(points))
	yData := make([]opts.LineData, 0, len(points))

	dataMin, dataMax := points[0].Value, points[0].Value
	for _, p := range points {
		xAxis = append(xAxis, clinical.DisplayDate(p.Date))
		yData = append(yData, opts.LineData{Value: p.Value})

		dataMin = min(dataMin, p.Value)
		dataMax = max(dataMax, p.Value)
	}

	var yAxisMin, yAxisMax interface{}

	if bounds.Min != nil && bounds.Max != nil {
		padding := (*bounds.Max - *bounds.Min) * 0.1
		yAxisMin = min(*bounds.Min-padding, dataMin)
		yAxisMax = max(*bounds.Max+padding, dataMax)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: item.ItemName,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: item.Unit,
			Min:  yAxisMin,
			Max:  yAxisMax,
		}),
	)

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{
			ShowSymbol: opts.Bool(true),
		}),
	}

	var markLineItems []interface{}
	if bounds.Min != nil {
		markLineItems = append(markLineItems, opts.MarkLineNameYAxisItem{Name: "下限", YAxis: *bounds.Min})
	}
	if bounds.Max != nil {
		markLineItems = append(markLineItems, opts.MarkLineNameYAxisItem{Name: "上限", YAxis: *bounds.Max})
	}

	if len(markLineItems) > 0 {
		seriesOpts = append(seriesOpts, func(s *charts.SingleSeries) {
			s.MarkLines = &opts.MarkLines{
				Data: markLineItems,
				MarkLineStyle: opts.MarkLineStyle{
					Symbol: []string{"none", "none"},
					LineStyle: &opts.LineStyle{
						Color: "rgba(128, 128, 128, 0.6)",
						Type:  "dashed",
						Width: 1.5,
					},
				},
			}
		})
	}

	line.SetXAxis(xAxis).
		AddSeries(item.ItemName, yData).
		SetSeriesOptions(seriesOpts...)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// PhysicalChart renders the trend of one physical measurement.
func PhysicalChart(c flamego.Context, s session.Session, t template.Template, data template.Data) {
	snap, ok := loadSnapshot(c, s)
	if !ok {
		return
	}

	patient := snap.Patient
	back := resultsView{PatientID: patient.ID, Kind: clinical.KindPhysical}.URL()

	itemID, err := parseIDParam(c, "item_id")
	if err != nil {
		SetErrorFlash(s, "検査項目が見つかりません")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	var item *clinical.TestItem
	for i := range snap.Items {
		if snap.Items[i].ID == itemID {
			item = &snap.Items[i]
			break
		}
	}

	if item == nil {
		SetErrorFlash(s, "検査項目が見つかりません")
		c.Redirect(back, http.StatusSeeOther)

		return
	}

	bounds := clinical.ResolveRange(*item, patient.Gender)

	chart, err := renderTrendChart(*item, bounds, trendPoints(snap.Results, itemID))
	if err != nil {
		logger.Error("Error rendering chart", "item_id", itemID, "error", err)
		data["Error"] = "グラフの描画に失敗しました"
	}

	data["IsPatients"] = true
	data["Patient"] = patient
	data["Item"] = item
	data["Bounds"] = bounds
	data["Chart"] = htmltemplate.HTML(chart)
	data["BackURL"] = back
	data["Breadcrumbs"] = patientBreadcrumbs(patient, item.ItemName+" の推移")

	t.HTML(http.StatusOK, "chart")
}
