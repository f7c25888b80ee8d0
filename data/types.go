// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package data

// Period classifies a reporting period by the filing form it came from.
type Period string

const (
	PeriodAnnual    Period = "annual"
	PeriodQuarterly Period = "quarterly"
)

// Source tags recorded in the provenance column of persisted rows
const (
	SourceEdgar = "sec-edgar"
	SourceEodhd = "eodhd"
)

// RunStatus summarizes how a sync run finished.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunPartial RunStatus = "partial"
	RunFailed  RunStatus = "failed"
)
