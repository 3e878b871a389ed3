// Copyright (C) 2023 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package classifier implements the priority-ordered rule table that
// turns a tagged, durationed event sequence into an activity timeline.
package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/sambio/activityengine/internal/util"
	"github.com/sambio/activityengine/pkg/errs"
	"github.com/sambio/activityengine/pkg/log"
	"github.com/sambio/activityengine/pkg/schema"
)

const (
	shortEventThreshold    = 2 * time.Minute
	longWorkThreshold      = 120 * time.Minute
	oTagLookaround         = 30 * time.Minute
	tailgatingMinRun       = 3
	tailgatingMinSpan      = 30 * time.Minute
	confirmedWorkBaseConf  = 0.98
	unconfirmedCap         = 0.99
)

var tSeriesTags = map[schema.Tag]bool{
	schema.TagCorridor:  true,
	schema.TagEntryGate: true,
	schema.TagExitGate:  true,
}

type compiledRule struct {
	schema.RuleRow
	guard *vm.Program
}

// Classifier holds the priority-ordered rule table and meal windows.
// Reads are lock-protected so a hot reload never races a worker's
// Classify call.
type Classifier struct {
	mu          sync.RWMutex
	rules       []compiledRule
	mealWindows schema.MealWindowConfig
	rulesPath   string
}

// New builds a Classifier with the shipped default rule table and the
// given meal windows (used both for the M1 meal-by-window resolution and
// any guard expression referencing them).
func New(mealWindows schema.MealWindowConfig) *Classifier {
	c := &Classifier{mealWindows: mealWindows}
	c.setRules(defaultRuleTable())
	return c
}

func (c *Classifier) setRules(rows []schema.RuleRow) {
	compiled := make([]compiledRule, 0, len(rows))
	for _, r := range rows {
		cr := compiledRule{RuleRow: r}
		if r.Guard != "" {
			prog, err := expr.Compile(r.Guard, expr.AsBool())
			if err != nil {
				log.Warnf("classifier: skipping rule with invalid guard %q: %v", r.Guard, err)
			} else {
				cr.guard = prog
			}
		}
		compiled = append(compiled, cr)
	}

	c.mu.Lock()
	c.rules = compiled
	c.mu.Unlock()
}

// LoadRuleTable replaces the rule table from the JSON document at path.
// A missing file keeps the current (default) table.
func (c *Classifier) LoadRuleTable(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("classifier: read rule table %q: %w", path, err)
	}

	var rows []schema.RuleRow
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&rows); err != nil {
		return fmt.Errorf("classifier: decode rule table %q: %w", path, err)
	}

	c.setRules(rows)
	c.mu.Lock()
	c.rulesPath = path
	c.mu.Unlock()
	return nil
}

// Watch registers the classifier for fsnotify-driven rule table reload.
func (c *Classifier) Watch() {
	if c.rulesPath != "" {
		util.AddListener(c.rulesPath, ruleTableListener{c})
	}
}

type ruleTableListener struct{ c *Classifier }

func (l ruleTableListener) EventMatch(s string) bool { return strings.Contains(s, l.c.rulesPath) }
func (l ruleTableListener) EventCallback() {
	if err := l.c.LoadRuleTable(l.c.rulesPath); err != nil {
		log.Errorf("classifier: reload rule table: %v", err)
	}
}

// Classify turns a durationed sequence into a classified timeline.
// Empty input yields empty output. A non-chronological input sequence
// is a precondition violation of SequenceBuilder's contract and yields
// ErrInputOrder.
func (c *Classifier) Classify(events []schema.SequenceEvent) ([]schema.ClassifiedEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			return nil, fmt.Errorf("%w: classifier input not sorted at index %d", errs.ErrInputOrder, i)
		}
	}

	c.mu.RLock()
	rules := c.rules
	mealWindows := c.mealWindows
	c.mu.RUnlock()

	out := make([]schema.ClassifiedEvent, len(events))
	for i, e := range events {
		var prevTag schema.Tag
		if i > 0 {
			prevTag = events[i-1].Tag
		}
		state, conf := classifyOne(rules, mealWindows, prevTag, e)
		out[i] = schema.ClassifiedEvent{SequenceEvent: e, State: state, Confidence: conf}
	}

	applyShortEventPenalty(out)
	applyUnconfirmedLongWorkPenalty(out)
	applyTailgatingDetection(out)
	applyConfirmedWorkBoost(out)

	return out, nil
}

// classifyOne resolves a single event's state/confidence. O and meal
// tags are elevated ahead of the configurable table, matching the meal
// window override and confirmed-work dominance.
func classifyOne(rules []compiledRule, mealWindows schema.MealWindowConfig, prevTag schema.Tag, e schema.SequenceEvent) (schema.ActivityState, float64) {
	switch e.Tag {
	case schema.TagConfirmed:
		return schema.StateWorkConfirmed, confirmedWorkBaseConf
	case schema.TagMealDineIn:
		return resolveMealState(e.Timestamp, mealWindows), 1.0
	case schema.TagMealTakeOut:
		return schema.StateTransit, 1.0
	}

	env := map[string]any{
		"prevTag":  string(prevTag),
		"curTag":   string(e.Tag),
		"duration": e.DurationMinutes,
		"hour":     e.Timestamp.Hour(),
		"minute":   e.Timestamp.Minute(),
	}

	for _, r := range rules {
		if r.FromTag != "" && r.FromTag != prevTag {
			continue
		}
		if r.ToTag != "" && r.ToTag != e.Tag {
			continue
		}
		if r.TimeWindow != nil && !inClockWindow(e.Timestamp, *r.TimeWindow) {
			continue
		}
		if r.DurationWindow != nil && !inDurationWindow(e.DurationMinutes, *r.DurationWindow) {
			continue
		}
		if r.guard != nil {
			ok, err := expr.Run(r.guard, env)
			if err != nil {
				log.Errorf("classifier: guard evaluation failed for rule %q: %v", r.Note, err)
				continue
			}
			if b, isBool := ok.(bool); !isBool || !b {
				continue
			}
		}
		return r.State, r.BaseConfidence
	}

	return schema.StateUnknown, 0.5
}

func resolveMealState(t time.Time, w schema.MealWindowConfig) schema.ActivityState {
	switch {
	case inClockWindow(t, w.Breakfast):
		return schema.StateBreakfast
	case inClockWindow(t, w.Dinner):
		return schema.StateDinner
	case inClockWindow(t, w.Midnight):
		return schema.StateMidnightMeal
	case inClockWindow(t, w.Lunch):
		return schema.StateLunch
	default:
		return schema.StateLunch
	}
}

func inClockWindow(t time.Time, w schema.TimeWindow) bool {
	start, ok1 := parseClock(w.Start)
	end, ok2 := parseClock(w.End)
	if !ok1 || !ok2 {
		return false
	}
	cur := t.Hour()*60 + t.Minute()
	if start <= end {
		return cur >= start && cur <= end
	}
	return cur >= start || cur <= end
}

func parseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func inDurationWindow(minutes float64, w schema.DurationWindow) bool {
	if minutes < w.MinMinutes {
		return false
	}
	if w.MaxMinutes > 0 && minutes > w.MaxMinutes {
		return false
	}
	return true
}

func applyShortEventPenalty(events []schema.ClassifiedEvent) {
	for i := range events {
		if time.Duration(events[i].DurationMinutes*float64(time.Minute)) < shortEventThreshold {
			events[i].Confidence *= 0.8
		}
	}
}

func applyUnconfirmedLongWorkPenalty(events []schema.ClassifiedEvent) {
	for i := range events {
		e := &events[i]
		dur := time.Duration(e.DurationMinutes * float64(time.Minute))
		if dur <= longWorkThreshold || !e.State.IsWorkTime() {
			continue
		}
		if hasConfirmedWorkNearby(events, i, oTagLookaround) {
			continue
		}
		e.Confidence *= 0.7
		e.Anomaly = schema.AnomalyUnconfirmedLongWork
	}
}

func hasConfirmedWorkNearby(events []schema.ClassifiedEvent, i int, within time.Duration) bool {
	t := events[i].Timestamp
	for j := range events {
		if events[j].Tag != schema.TagConfirmed {
			continue
		}
		if absDuration(events[j].Timestamp.Sub(t)) <= within {
			return true
		}
	}
	return false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func applyTailgatingDetection(events []schema.ClassifiedEvent) {
	i := 0
	for i < len(events) {
		if !tSeriesTags[events[i].Tag] {
			i++
			continue
		}
		j := i
		for j+1 < len(events) && events[j+1].Tag == events[i].Tag {
			j++
		}
		runLen := j - i + 1
		span := events[j].Timestamp.Sub(events[i].Timestamp)
		if runLen >= tailgatingMinRun && span > tailgatingMinSpan {
			for k := i; k <= j; k++ {
				events[k].Anomaly = schema.AnomalyTailgating
				events[k].Confidence *= 0.5
			}
		}
		i = j + 1
	}
}

func applyConfirmedWorkBoost(events []schema.ClassifiedEvent) {
	for i := range events {
		e := &events[i]
		if !e.State.IsWorkTime() {
			continue
		}
		if hasRecentConfirmedWorkBefore(events, i, oTagLookaround) {
			e.Confidence *= 1.1
			if e.Confidence > unconfirmedCap {
				e.Confidence = unconfirmedCap
			}
		}
	}
}

func hasRecentConfirmedWorkBefore(events []schema.ClassifiedEvent, i int, within time.Duration) bool {
	t := events[i].Timestamp
	for j := range events {
		if events[j].Tag != schema.TagConfirmed {
			continue
		}
		diff := t.Sub(events[j].Timestamp)
		if diff >= 0 && diff <= within {
			return true
		}
	}
	return false
}
