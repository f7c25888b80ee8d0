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

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("completionLog", func() {
	It("advances one step per completion when candidates finish in order", func() {
		clog := newCompletionLog(3)

		Expect(clog.Mark(0)).To(Equal(1))
		Expect(clog.Mark(1)).To(Equal(2))
		Expect(clog.Mark(2)).To(Equal(3))
	})

	It("holds the frontier until the earliest unfinished candidate completes", func() {
		clog := newCompletionLog(4)

		Expect(clog.Mark(1)).To(Equal(0))
		Expect(clog.Mark(2)).To(Equal(0))
		Expect(clog.Mark(0)).To(Equal(3))
		Expect(clog.Mark(3)).To(Equal(4))
	})
})
