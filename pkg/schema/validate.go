// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/sambio/activityengine/pkg/log"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Kind selects which embedded schema document Validate checks against.
type Kind int

const (
	ProgramConfigKind Kind = iota + 1
	RuleTableKind
	KeywordConfigKind
)

//go:embed schemas/*
var schemaFiles embed.FS

func Load(s string) (io.ReadCloser, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	return schemaFiles.Open(u.Path)
}

func init() {
	jsonschema.Loaders["embedFS"] = Load
}

// Validate decodes r as JSON and checks it against the schema named by
// k, returning the first validation error encountered.
func Validate(k Kind, r io.Reader) (err error) {
	var s *jsonschema.Schema

	switch k {
	case ProgramConfigKind:
		s, err = jsonschema.Compile("embedFS://schemas/program-config.schema.json")
	case RuleTableKind:
		s, err = jsonschema.Compile("embedFS://schemas/rule-table.schema.json")
	case KeywordConfigKind:
		s, err = jsonschema.Compile("embedFS://schemas/keyword-config.schema.json")
	default:
		return fmt.Errorf("unknown schema kind %d", k)
	}

	if err != nil {
		return err
	}

	var v interface{}
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		log.Errorf("schema.Validate() - failed to decode: %v", err)
		return err
	}

	if err = s.Validate(v); err != nil {
		return fmt.Errorf("%#v", err)
	}

	return nil
}
