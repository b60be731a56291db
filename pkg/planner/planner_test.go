/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package planner_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/awslabs/node-condition-tainter/pkg/apis/taint"
	"github.com/awslabs/node-condition-tainter/pkg/planner"
)

var now = time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)

var _ = Describe("Plan", func() {
	memoryPressure := taint.Taint{Key: "pressure", Value: "memory", Effect: taint.NoExecute}
	externalTaint := taint.Taint{Key: "cloud-vendor/maintenance", Value: "", Effect: taint.NoSchedule}

	It("adds a newly desired taint and stamps TimeAdded on a NoExecute effect", func() {
		desired := taint.NewSet(memoryPressure)
		managed := desired.Keys()

		result := planner.Plan(nil, desired, managed, now)

		Expect(result.NoOp).To(BeFalse())
		Expect(result.Taint).To(HaveLen(1))
		Expect(result.Taint[0].Equal(memoryPressure)).To(BeTrue())
		Expect(result.Taint[0].TimeAdded).NotTo(BeNil())
		Expect(result.Taint[0].TimeAdded.Time).To(Equal(now))
	})

	It("is a no-op once the desired taint is already present and conditions are unchanged", func() {
		stamp := time.Date(2026, 8, 3, 11, 0, 0, 0, time.UTC)
		current := []taint.Taint{memoryPressure.WithTimeAdded(stamp)}
		desired := taint.NewSet(memoryPressure)
		managed := desired.Keys()

		result := planner.Plan(current, desired, managed, now)

		Expect(result.NoOp).To(BeTrue())
	})

	It("preserves a taint outside the managed universe untouched", func() {
		current := []taint.Taint{memoryPressure, externalTaint}
		desired := taint.Set{}
		managed := taint.NewSet(memoryPressure).Keys()

		result := planner.Plan(current, desired, managed, now)

		Expect(result.NoOp).To(BeFalse())
		Expect(result.Taint).To(HaveLen(1))
		Expect(result.Taint[0]).To(Equal(externalTaint))
	})

	It("removes a managed taint once its rule stops matching, keeping unmanaged taints", func() {
		stamp := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
		current := []taint.Taint{memoryPressure.WithTimeAdded(stamp), externalTaint}
		desired := taint.Set{}
		managed := taint.NewSet(memoryPressure).Keys()

		result := planner.Plan(current, desired, managed, now)

		Expect(result.NoOp).To(BeFalse())
		Expect(result.Taint).To(HaveLen(1))
		Expect(result.Taint[0]).To(Equal(externalTaint))
	})

	It("never writes TimeAdded for NoSchedule or PreferNoSchedule taints", func() {
		noSchedule := taint.Taint{Key: "k", Value: "v", Effect: taint.NoSchedule}
		desired := taint.NewSet(noSchedule)
		managed := desired.Keys()

		result := planner.Plan(nil, desired, managed, now)

		Expect(result.Taint[0].TimeAdded).To(BeNil())
	})

	It("leaves a persisting taint's TimeAdded unchanged across calls", func() {
		stamp := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
		current := []taint.Taint{memoryPressure.WithTimeAdded(stamp)}
		desired := taint.NewSet(memoryPressure)
		managed := desired.Keys()

		result := planner.Plan(current, desired, managed, now.Add(time.Hour))

		Expect(result.NoOp).To(BeTrue())
	})
})
