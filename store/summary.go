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
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const healthWindow = 30 * 24 * time.Hour

// HealthSummary returns a markdown report of recent sync activity and
// scheduled job outcomes
func (myStore *Store) HealthSummary(ctx context.Context, numRuns, numJobs int) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString("# Sync health\n\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Last 30 days\n\n"); err != nil {
		return "", err
	}

	health, err := myStore.RunHealth(ctx, healthWindow)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Runs: %d\n", health.TotalRuns)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Failed: %d\n", health.FailedRuns)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Partial: %d\n", health.PartialRuns)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Rows Written: %d\n\n", health.RowsWritten)); err != nil {
		return "", err
	}

	if health.LastSuccess == nil {
		if _, err := builder.WriteString("Last Clean Run: Never\n\n"); err != nil {
			return "", err
		}
	} else {
		age := timeago.English.Format(*health.LastSuccess)
		if _, err := builder.WriteString(fmt.Sprintf("Last Clean Run: %s (%s)\n\n",
			age, health.LastSuccess.Local().Format("01/02/2006"))); err != nil {
			return "", err
		}
	}

	// Run history
	if _, err := builder.WriteString("## Recent runs\n\n"); err != nil {
		return "", err
	}

	runs, err := myStore.RecentRuns(ctx, numRuns)
	if err != nil {
		return "", err
	}

	for _, run := range runs {
		mode := ""
		if run.DryRun {
			mode = " (dry-run)"
		}

		if _, err := builder.WriteString(p.Sprintf("  * %s %s%s: %d processed, %d failed, %d rows in %s, %s\n",
			run.Status, run.Source, mode, run.Processed, run.Failed, run.RowsWritten,
			run.Duration().Round(time.Second), timeago.English.Format(run.StartedAt))); err != nil {
			return "", err
		}
	}

	// Scheduled jobs
	if _, err := builder.WriteString("\n## Scheduled jobs\n\n"); err != nil {
		return "", err
	}

	jobRuns, err := myStore.CronJobRuns(ctx, numJobs)
	if errors.Is(err, ErrNoCronHistory) {
		if _, err := builder.WriteString("pg_cron is not installed; no scheduled job history available\n"); err != nil {
			return "", err
		}

		return builder.String(), nil
	}
	if err != nil {
		return "", err
	}

	for _, jobRun := range jobRuns {
		jobName := "(unnamed)"
		if jobRun.JobName != nil {
			jobName = *jobRun.JobName
		}

		if _, err := builder.WriteString(p.Sprintf("  * %s %s, %s\n", jobRun.Status, jobName,
			timeago.English.Format(jobRun.StartTime))); err != nil {
			return "", err
		}

		if jobRun.Status != "succeeded" && jobRun.ReturnMessage != "" {
			if _, err := builder.WriteString(p.Sprintf("    * %s\n", jobRun.ReturnMessage)); err != nil {
				return "", err
			}
		}
	}

	return builder.String(), nil
}
