// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package batch

import (
	"errors"
	"fmt"

	"github.com/sambio/activityengine/pkg/errs"
)

func isErr(err, target error) bool { return errors.Is(err, target) }

// ErrorKind names one of the error categories a work item or the batch
// itself can fail with, mirroring the propagation policy: Config and
// Preload are fatal, the rest are per-item.
type ErrorKind string

const (
	KindConfig         ErrorKind = "config_error"
	KindPreload        ErrorKind = "preload_error"
	KindInputOrder     ErrorKind = "input_order_error"
	KindClassification ErrorKind = "classification_error"
	KindPersistence    ErrorKind = "persistence_error"
	KindCancelled      ErrorKind = "cancelled"
)

// ConfigError wraps errs.ErrConfig with context identifying what was
// missing or malformed.
func ConfigError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errs.ErrConfig}, args...)...)
}

// PreloadError wraps errs.ErrPreload with context identifying which
// source read failed.
func PreloadError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errs.ErrPreload}, args...)...)
}

// classify maps a pipeline error to the ErrorKind the BatchReport
// records against a failed item.
func classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case isErr(err, errs.ErrInputOrder):
		return KindInputOrder
	case isErr(err, errs.ErrClassification):
		return KindClassification
	case isErr(err, errs.ErrPersistence):
		return KindPersistence
	case isErr(err, errs.ErrCancelled):
		return KindCancelled
	default:
		return KindClassification
	}
}
