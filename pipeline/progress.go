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
package pipeline

// completionLog tracks which candidates have finished. The progress cursor
// may only cover the contiguous completed prefix of the candidate list; when
// workers finish out of order the frontier waits on the slowest straggler.
type completionLog struct {
	done     []bool
	frontier int
}

func newCompletionLog(size int) *completionLog {
	return &completionLog{done: make([]bool, size)}
}

// Mark records that the candidate at idx finished and returns the new
// completed prefix length.
func (clog *completionLog) Mark(idx int) int {
	clog.done[idx] = true
	for clog.frontier < len(clog.done) && clog.done[clog.frontier] {
		clog.frontier++
	}

	return clog.frontier
}
