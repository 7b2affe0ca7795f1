// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package puppetdb

import "time"

// Node is a record of the PuppetDB v4 nodes endpoint.
type Node struct {
	Certname           string     `json:"certname"`
	Deactivated        *time.Time `json:"deactivated"`
	Expired            *time.Time `json:"expired"`
	CatalogTimestamp   *time.Time `json:"catalog_timestamp"`
	FactsTimestamp     *time.Time `json:"facts_timestamp"`
	ReportTimestamp    *time.Time `json:"report_timestamp"`
	CatalogEnvironment string     `json:"catalog_environment"`
	FactsEnvironment   string     `json:"facts_environment"`
	ReportEnvironment  string     `json:"report_environment"`
	LatestReportStatus string     `json:"latest_report_status"`
}

// Fact is a record of the PuppetDB v4 facts endpoint.
//
// Value is the decoded JSON value of the fact. Numbers are kept as
// json.Number so large integers survive decoding.
type Fact struct {
	Certname    string      `json:"certname"`
	Name        string      `json:"name"`
	Value       interface{} `json:"value"`
	Environment string      `json:"environment"`
}

// Nodes is a slice of Node(s).
type Nodes []Node

// Facts is a slice of Fact(s).
type Facts []Fact
