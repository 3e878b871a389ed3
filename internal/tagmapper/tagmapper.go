// Copyright (C) 2023 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tagmapper implements the rule-driven mapping from a gate
// event's raw location to a canonical tag.
package tagmapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/sambio/activityengine/internal/util"
	"github.com/sambio/activityengine/pkg/log"
	"github.com/sambio/activityengine/pkg/schema"
)

// keywordGroup is a compiled KeywordRule: the keyword list plus an
// optional regex tie-breaker evaluated before falling back to plain
// substring matching.
type keywordGroup struct {
	tag      schema.Tag
	keywords []string
	pattern  *regexp.Regexp
}

// Mapper is a pure function from (location_code, location_name) to a
// canonical tag. It is safe for concurrent read use by multiple workers
// once built; EventCallback swaps its internal tables under a lock so a
// hot reload never blocks a classification in progress for more than the
// swap itself.
type Mapper struct {
	mu sync.RWMutex

	overrides map[string]schema.LocationMapping // keyed by location_code

	gateKeywords     []string
	meetingGroup     keywordGroup
	trainingGroup    keywordGroup
	prepGroup        keywordGroup
	restGroup        keywordGroup
	welfareGroup     keywordGroup
	cafeteriaGroup   keywordGroup
	corridorGroup    keywordGroup

	overridesPath string
	keywordsPath  string
}

// defaultKeywordSets is the shipped keyword configuration, covering the
// keyword families named in steps 2-5 of the mapping rules. Operators
// override it via KeywordConfigPath.
var defaultKeywordSets = []schema.KeywordRule{
	{Keywords: []string{"gate", "entry", "checkpoint"}, Tag: schema.TagEntryGate, Note: "gate/entry marker, direction resolved separately"},
	{Keywords: []string{"meeting", "conference"}, Tag: schema.TagMeeting},
	{Keywords: []string{"training", "classroom", "education"}, Tag: schema.TagTraining},
	{Keywords: []string{"locker", "gowning", "prep"}, Tag: schema.TagPrep},
	{Keywords: []string{"rest", "lounge", "break"}, Tag: schema.TagRest},
	{Keywords: []string{"medical", "clinic", "fitness", "cafe"}, Tag: schema.TagWelfare},
	{Keywords: []string{"cafeteria", "dining"}, Tag: schema.TagMealDineIn},
	{Keywords: []string{"corridor", "bridge", "elevator", "stairs"}, Tag: schema.TagCorridor},
}

// New builds a Mapper with no overrides and the shipped keyword
// defaults. Use LoadKeywordConfig/LoadOverrides to load operator files,
// then Watch to hot-reload on change.
func New() *Mapper {
	m := &Mapper{overrides: make(map[string]schema.LocationMapping)}
	m.setKeywordSets(defaultKeywordSets)
	return m
}

func (m *Mapper) setKeywordSets(rules []schema.KeywordRule) {
	groups := map[schema.Tag]keywordGroup{}
	gate := []string{}
	for _, r := range rules {
		g := keywordGroup{tag: r.Tag, keywords: lower(r.Keywords)}
		if r.Pattern != "" {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				log.Warnf("tagmapper: skipping invalid pattern %q for tag %s: %v", r.Pattern, r.Tag, err)
			} else {
				g.pattern = re
			}
		}
		if r.Tag == schema.TagEntryGate {
			gate = append(gate, g.keywords...)
		}
		groups[r.Tag] = g
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gateKeywords = gate
	m.meetingGroup = groups[schema.TagMeeting]
	m.trainingGroup = groups[schema.TagTraining]
	m.prepGroup = groups[schema.TagPrep]
	m.restGroup = groups[schema.TagRest]
	m.welfareGroup = groups[schema.TagWelfare]
	m.cafeteriaGroup = groups[schema.TagMealDineIn]
	m.corridorGroup = groups[schema.TagCorridor]
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsAny(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(h, n) {
			return true
		}
	}
	return false
}

// LoadOverrides replaces the override table from the JSON document at
// path (an array of schema.LocationMapping). Called once at batch start;
// also the target of a hot reload when path is watched.
func (m *Mapper) LoadOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("tagmapper: read overrides %q: %w", path, err)
	}

	var rows []schema.LocationMapping
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&rows); err != nil {
		return fmt.Errorf("tagmapper: decode overrides %q: %w", path, err)
	}

	table := make(map[string]schema.LocationMapping, len(rows))
	for _, r := range rows {
		table[overrideKey(r.LocationCode, r.LocationName)] = r
	}

	m.mu.Lock()
	m.overrides = table
	m.overridesPath = path
	m.mu.Unlock()
	return nil
}

// LoadKeywordConfig replaces the keyword tables from the JSON document at
// path (an array of schema.KeywordRule). A missing file keeps the
// shipped defaults.
func (m *Mapper) LoadKeywordConfig(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("tagmapper: read keyword config %q: %w", path, err)
	}

	var rules []schema.KeywordRule
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&rules); err != nil {
		return fmt.Errorf("tagmapper: decode keyword config %q: %w", path, err)
	}

	m.setKeywordSets(rules)
	m.mu.Lock()
	m.keywordsPath = path
	m.mu.Unlock()
	return nil
}

func overrideKey(code, name string) string {
	return code + "\x00" + name
}

// Watch registers the mapper for fsnotify-driven reload of both its
// overrides and keyword config files.
func (m *Mapper) Watch() {
	if m.overridesPath != "" {
		util.AddListener(m.overridesPath, overridesListener{m})
	}
	if m.keywordsPath != "" {
		util.AddListener(m.keywordsPath, keywordsListener{m})
	}
}

type overridesListener struct{ m *Mapper }

func (l overridesListener) EventMatch(s string) bool { return strings.Contains(s, l.m.overridesPath) }
func (l overridesListener) EventCallback() {
	if err := l.m.LoadOverrides(l.m.overridesPath); err != nil {
		log.Errorf("tagmapper: reload overrides: %v", err)
	}
}

type keywordsListener struct{ m *Mapper }

func (l keywordsListener) EventMatch(s string) bool { return strings.Contains(s, l.m.keywordsPath) }
func (l keywordsListener) EventCallback() {
	if err := l.m.LoadKeywordConfig(l.m.keywordsPath); err != nil {
		log.Errorf("tagmapper: reload keyword config: %v", err)
	}
}

// Map implements the priority-ordered mapping rules, first match wins.
// It always returns a member of the canonical tag alphabet; unmatched
// locations fall back to TagMainArea (logged at debug level, not an
// error).
func (m *Mapper) Map(locationCode, locationName string, direction schema.Direction) schema.Tag {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if row, ok := m.overrides[overrideKey(locationCode, locationName)]; ok {
		return row.Tag
	}

	probe := locationCode + " " + locationName

	if containsAny(probe, m.gateKeywords) {
		switch direction {
		case schema.DirectionEntry:
			return schema.TagEntryGate
		case schema.DirectionExit:
			return schema.TagExitGate
		}
	}

	switch {
	case matchGroup(probe, m.meetingGroup):
		return schema.TagMeeting
	case matchGroup(probe, m.trainingGroup):
		return schema.TagTraining
	case matchGroup(probe, m.prepGroup):
		return schema.TagPrep
	case matchGroup(probe, m.restGroup):
		return schema.TagRest
	case matchGroup(probe, m.cafeteriaGroup):
		return schema.TagMealDineIn
	case matchGroup(probe, m.welfareGroup):
		return schema.TagWelfare
	case matchGroup(probe, m.corridorGroup):
		return schema.TagCorridor
	}

	log.Debugf("tagmapper: no rule matched location %q/%q, falling back to G1", locationCode, locationName)
	return schema.TagMainArea
}

func matchGroup(probe string, g keywordGroup) bool {
	if g.pattern != nil && g.pattern.MatchString(probe) {
		return true
	}
	return containsAny(probe, g.keywords)
}
