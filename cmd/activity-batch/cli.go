// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import "flag"

var (
	flagMigrateDB, flagServer, flagLogDateTime bool
	flagConfigFile, flagLogLevel               string
	flagStartDate, flagEndDate                 string
	flagScopeKind, flagOrgID, flagEmployees     string
	flagClaimFilter                             bool
)

func cliInit() {
	flag.BoolVar(&flagServer, "server", false, "Start the HTTP API and scheduler; ignored when -start-date runs a one-shot batch, which exits when done")
	flag.BoolVar(&flagMigrateDB, "migrate-db", false, "Apply pending schema migrations and exit")
	flag.BoolVar(&flagLogDateTime, "logdate", false, "Add date and time to log messages")
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Path to `config.json`")
	flag.StringVar(&flagLogLevel, "loglevel", "info", "Logging level: `[debug, info, warn, err, crit]`")

	flag.StringVar(&flagStartDate, "start-date", "", "Run a one-shot batch: first facility-local date (YYYY-MM-DD)")
	flag.StringVar(&flagEndDate, "end-date", "", "Run a one-shot batch: last facility-local date (YYYY-MM-DD), inclusive")
	flag.StringVar(&flagScopeKind, "scope", "whole", "One-shot batch scope: `[whole, center, team, group, employees]`")
	flag.StringVar(&flagOrgID, "org-id", "", "Org id for -scope=center/team/group")
	flag.StringVar(&flagEmployees, "employees", "", "Comma-separated employee id list for -scope=employees")
	flag.BoolVar(&flagClaimFilter, "claim-filter", false, "Restrict the one-shot batch to employees with a positive claimed-hours row")
	flag.Parse()
}
