// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package repository

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/sambio/activityengine/pkg/schema"
)

// SourceRepository wraps the three raw source tables named in the
// sinks/sources note: gate_events, meal_transactions, equipment_logs,
// plus the optional attendance_claims table. All four load methods
// return rows ordered by (employee_id, timestamp) so callers can feed
// them straight to sequencebuilder without a second sort.
type SourceRepository struct {
	DB *sqlx.DB
}

// NewSourceRepository builds a SourceRepository against db. Queries are
// built with squirrel's '?' placeholder style and rebound per-driver at
// execution time via sqlx.DB.Rebind, so the same builder serves both
// sqlite3 and mysql.
func NewSourceRepository(db *sqlx.DB) *SourceRepository {
	return &SourceRepository{DB: db}
}

func (s *SourceRepository) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// LoadGateEvents returns every gate_events row for employeeID within
// [from, to), the half-open range BatchAnalyzer's preload uses for the
// whole batch date range plus its night-shift lookahead.
func (s *SourceRepository) LoadGateEvents(employeeID string, from, to time.Time) ([]schema.GateEvent, error) {
	query, args, err := s.builder().
		Select("employee_id", "timestamp", "location_code", "location_name", "direction").
		From("gate_events").
		Where(sq.Eq{"employee_id": employeeID}).
		Where(sq.GtOrEq{"timestamp": from}).
		Where(sq.Lt{"timestamp": to}).
		OrderBy("timestamp ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: build gate_events query: %w", err)
	}

	var rows []schema.GateEvent
	if err := s.DB.Select(&rows, s.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("repository: load gate_events for %s: %w", employeeID, err)
	}
	return rows, nil
}

// LoadMealTransactions returns every meal_transactions row for
// employeeID within [from, to).
func (s *SourceRepository) LoadMealTransactions(employeeID string, from, to time.Time) ([]schema.MealTransaction, error) {
	query, args, err := s.builder().
		Select("employee_id", "purchase_time", "serving_counter", "restaurant_name", "takeout_flag", "meal_category").
		From("meal_transactions").
		Where(sq.Eq{"employee_id": employeeID}).
		Where(sq.GtOrEq{"purchase_time": from}).
		Where(sq.Lt{"purchase_time": to}).
		OrderBy("purchase_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: build meal_transactions query: %w", err)
	}

	var rows []schema.MealTransaction
	if err := s.DB.Select(&rows, s.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("repository: load meal_transactions for %s: %w", employeeID, err)
	}
	return rows, nil
}

// LoadEquipmentLogs returns every equipment_logs row for employeeID
// within [from, to).
func (s *SourceRepository) LoadEquipmentLogs(employeeID string, from, to time.Time) ([]schema.EquipmentLogEntry, error) {
	query, args, err := s.builder().
		Select("employee_id", "timestamp", "activity_type", "equipment_id", "duration_minutes").
		From("equipment_logs").
		Where(sq.Eq{"employee_id": employeeID}).
		Where(sq.GtOrEq{"timestamp": from}).
		Where(sq.Lt{"timestamp": to}).
		OrderBy("timestamp ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: build equipment_logs query: %w", err)
	}

	var rows []schema.EquipmentLogEntry
	if err := s.DB.Select(&rows, s.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("repository: load equipment_logs for %s: %w", employeeID, err)
	}
	return rows, nil
}

// LoadAttendanceClaims returns every attendance_claims row for
// employeeID with work_date in [fromDate, toDate], both facility-local
// calendar dates (YYYY-MM-DD). Used by BatchAnalyzer's claim_filter
// policy and DailyMetrics.ClaimedHours.
func (s *SourceRepository) LoadAttendanceClaims(employeeID, fromDate, toDate string) ([]schema.AttendanceClaim, error) {
	query, args, err := s.builder().
		Select("employee_id", "work_date", "claimed_hours").
		From("attendance_claims").
		Where(sq.Eq{"employee_id": employeeID}).
		Where(sq.GtOrEq{"work_date": fromDate}).
		Where(sq.LtOrEq{"work_date": toDate}).
		OrderBy("work_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: build attendance_claims query: %w", err)
	}

	var rows []schema.AttendanceClaim
	if err := s.DB.Select(&rows, s.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("repository: load attendance_claims for %s: %w", employeeID, err)
	}
	return rows, nil
}

// EmployeesByOrg returns every employee_id whose directory row matches
// scope/orgID (center_id, team_id, or group_id, per scope).
func (s *SourceRepository) EmployeesByOrg(scope schema.OrgScope, orgID string) ([]string, error) {
	column := "center_id"
	switch scope {
	case schema.ScopeTeam:
		column = "team_id"
	case schema.ScopeGroup:
		column = "group_id"
	}

	query, args, err := s.builder().
		Select("DISTINCT employee_id").
		From("employee_org_membership").
		Where(sq.Eq{column: orgID}).
		OrderBy("employee_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: build employee_org_membership query: %w", err)
	}

	var ids []string
	if err := s.DB.Select(&ids, s.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("repository: load employees for %s=%s: %w", scope, orgID, err)
	}
	return ids, nil
}

// OrgMembershipFor returns the directory row for employeeID, used by
// aggregate recompute to know which (org_scope, org_id) rows an
// employee's DailyMetrics feeds into.
func (s *SourceRepository) OrgMembershipFor(employeeID string) (schema.EmployeeOrgMembership, error) {
	query, args, err := s.builder().
		Select("employee_id", "center_id", "team_id", "group_id").
		From("employee_org_membership").
		Where(sq.Eq{"employee_id": employeeID}).
		ToSql()
	if err != nil {
		return schema.EmployeeOrgMembership{}, fmt.Errorf("repository: build org membership query: %w", err)
	}

	var row schema.EmployeeOrgMembership
	if err := s.DB.Get(&row, s.DB.Rebind(query), args...); err != nil {
		return schema.EmployeeOrgMembership{}, fmt.Errorf("repository: load org membership for %s: %w", employeeID, err)
	}
	return row, nil
}

// DistinctEmployeeIDs returns every employee_id appearing in
// gate_events within [from, to), the universe BatchAnalyzer resolves a
// "whole" scope against.
func (s *SourceRepository) DistinctEmployeeIDs(from, to time.Time) ([]string, error) {
	query, args, err := s.builder().
		Select("DISTINCT employee_id").
		From("gate_events").
		Where(sq.GtOrEq{"timestamp": from}).
		Where(sq.Lt{"timestamp": to}).
		OrderBy("employee_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: build distinct employee query: %w", err)
	}

	var ids []string
	if err := s.DB.Select(&ids, s.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("repository: load distinct employee_ids: %w", err)
	}
	return ids, nil
}
