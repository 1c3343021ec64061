/*
 * Copyright 2025 ENO0123
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ENO0123/hyoe-medical-records-system/clinical"
)

// recentVisitWindow is how far back the dashboard counts visits.
const recentVisitWindow = 30 * 24 * time.Hour

// AbnormalResult is an out-of-range result with the patient it belongs to.
type AbnormalResult struct {
	clinical.Finding
	PatientID   uuid.UUID
	PatientCode string
	PatientName string
}

// ListAbnormalResults scans every result visible in the scope and returns
// those outside the reference range for the patient's gender, newest
// first.
func ListAbnormalResults(ctx context.Context, scope Scope) ([]AbnormalResult, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	items, err := CachedTestItems(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `
		SELECT `+testResultColumns+`, p.gender, p.patient_code, p.name
		FROM test_results r
		JOIN patients p ON p.id = r.patient_id
		WHERE ($1::uuid IS NULL OR p.doctor_id = $1)
		ORDER BY r.patient_id, r.test_date
	`, scope.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for abnormal scan: %w", err)
	}
	defer rows.Close()

	type patientResults struct {
		gender  clinical.Gender
		code    string
		name    string
		results []clinical.TestResult
	}

	var order []uuid.UUID
	byPatient := make(map[uuid.UUID]*patientResults)

	for rows.Next() {
		var (
			r                        clinical.TestResult
			gender                   clinical.Gender
			patientCode, patientName string
		)

		err := rows.Scan(
			&r.ID, &r.PatientID, &r.ItemID, &r.VisitID, &r.TestDate, &r.ResultValue,
			&r.ResultComment, &r.AdditionalComment, &r.CreatedAt, &r.UpdatedAt,
			&gender, &patientCode, &patientName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test result: %w", err)
		}

		pr, ok := byPatient[r.PatientID]
		if !ok {
			pr = &patientResults{gender: gender, code: patientCode, name: patientName}
			byPatient[r.PatientID] = pr
			order = append(order, r.PatientID)
		}
		pr.results = append(pr.results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating test results: %w", err)
	}

	var abnormal []AbnormalResult
	for _, id := range order {
		pr := byPatient[id]
		for _, f := range clinical.FindAbnormal(items, pr.results, pr.gender) {
			abnormal = append(abnormal, AbnormalResult{
				Finding:     f,
				PatientID:   id,
				PatientCode: pr.code,
				PatientName: pr.name,
			})
		}
	}

	slices.SortStableFunc(abnormal, func(a, b AbnormalResult) int {
		return b.Result.TestDate.Compare(a.Result.TestDate)
	})

	return abnormal, nil
}

// GetDashboardStats counts the patients, recent visits and abnormal results
// visible in the scope.
func GetDashboardStats(ctx context.Context, scope Scope, now time.Time) (*DashboardStats, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	var stats DashboardStats

	err := pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM patients p WHERE ($1::uuid IS NULL OR p.doctor_id = $1)),
			(SELECT count(*) FROM visits v JOIN patients p ON p.id = v.patient_id
			 WHERE ($1::uuid IS NULL OR p.doctor_id = $1) AND v.visit_date >= $2)
	`, scope.DoctorID, clinical.DateOf(now.Add(-recentVisitWindow))).Scan(&stats.PatientCount, &stats.RecentVisits)
	if err != nil {
		return nil, fmt.Errorf("failed to count dashboard stats: %w", err)
	}

	abnormal, err := ListAbnormalResults(ctx, scope)
	if err != nil {
		return nil, err
	}

	stats.AbnormalCount = len(abnormal)

	return &stats, nil
}
