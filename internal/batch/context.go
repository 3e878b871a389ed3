// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package batch implements BatchAnalyzer: it resolves a date-range and
// scope into (employee, date) work items, preloads every source stream
// once, dispatches items across a worker pool, derives and persists
// DailyMetrics, and recomputes OrgDailyAggregate rows once all items
// settle.
package batch

import (
	"time"

	"github.com/sambio/activityengine/internal/classifier"
	"github.com/sambio/activityengine/internal/equipmentsource"
	"github.com/sambio/activityengine/internal/mealsource"
	"github.com/sambio/activityengine/internal/sequencebuilder"
	"github.com/sambio/activityengine/internal/tagmapper"
	"github.com/sambio/activityengine/pkg/schema"
)

// BatchContext bundles every read-only collaborator a worker needs:
// the rule table (via Classifier), the keyword/override tables (via
// Mapper), the meal windows, the time zone, and the preloaded source
// indexes. It is constructed once at startup by NewBatchContext;
// RunBatch installs each batch's preloaded indexes before its workers
// start, and workers never mutate it, so it needs no locking beyond
// what Mapper/Classifier already provide for hot-reload.
type BatchContext struct {
	Mapper     *tagmapper.Mapper
	Meals      *mealsource.Source
	Equipment  *equipmentsource.Source
	Sequence   *sequencebuilder.Builder
	Classifier *classifier.Classifier

	Location *time.Location

	ProcessingVersion string

	data *preloadedData
}

// ScopeKind is one of the scope_spec variants in the invocation
// surface: whole organization, an org-node subtree rooted at a center/
// team/group, or an explicit employee list.
type ScopeKind string

const (
	ScopeWhole     ScopeKind = "whole"
	ScopeCenterID  ScopeKind = "center"
	ScopeTeamID    ScopeKind = "team"
	ScopeGroupID   ScopeKind = "group"
	ScopeEmployees ScopeKind = "employees"
)

// ScopeSpec selects the employee population a batch covers.
type ScopeSpec struct {
	Kind      ScopeKind
	OrgID     string   // set when Kind is center/team/group
	Employees []string // set when Kind is employees
}

// BatchRequest is runBatch's parameter set: a [StartDate, EndDate]
// inclusive facility-local date range, a scope, and the optional
// claim-filter policy that restricts work items to employees with a
// positive claimed-hours row for that date.
type BatchRequest struct {
	StartDate   string // YYYY-MM-DD, facility-local
	EndDate     string // YYYY-MM-DD, facility-local, inclusive
	Scope       ScopeSpec
	ClaimFilter bool
}

// NewBatchContext builds the read-only collaborator set from cfg: the
// tag mapper (with its overrides/keyword tables loaded), the meal and
// equipment sources, the sequence builder, and the classifier (with its
// rule table loaded). Watch-enabled collaborators are left unwatched
// here; callers running as a long-lived service call WatchAll after
// construction.
func NewBatchContext(cfg schema.ProgramConfig) (*BatchContext, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, ConfigError("invalid time zone %q: %v", cfg.TimeZone, err)
	}

	mapper := tagmapper.New()
	if err := mapper.LoadOverrides(cfg.TagTablePath); err != nil {
		return nil, ConfigError("load location overrides: %v", err)
	}
	if err := mapper.LoadKeywordConfig(cfg.KeywordConfigPath); err != nil {
		return nil, ConfigError("load keyword config: %v", err)
	}

	classify := classifier.New(cfg.MealWindows)
	if err := classify.LoadRuleTable(cfg.RuleTablePath); err != nil {
		return nil, ConfigError("load rule table: %v", err)
	}

	minGap := time.Duration(cfg.MinEventGapMinutes * float64(time.Minute))
	maxGap := time.Duration(cfg.MaxEventGapMinutes * float64(time.Minute))

	return &BatchContext{
		Mapper:            mapper,
		Meals:             mealsource.New(cfg.MealWindows),
		Equipment:         equipmentsource.New(),
		Sequence:          sequencebuilder.New(mapper, minGap, maxGap),
		Classifier:        classify,
		Location:          loc,
		ProcessingVersion: cfg.RuleTablePath,
	}, nil
}

// WatchAll registers hot-reload listeners for every collaborator that
// loaded its configuration from a file, for long-lived service mode.
func (c *BatchContext) WatchAll() {
	c.Mapper.Watch()
	c.Classifier.Watch()
}
