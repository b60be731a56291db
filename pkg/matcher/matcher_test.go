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

package matcher_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/awslabs/node-condition-tainter/pkg/apis/condition"
	"github.com/awslabs/node-condition-tainter/pkg/apis/taint"
	"github.com/awslabs/node-condition-tainter/pkg/matcher"
)

func mustPredicate(conditionType, pattern string) condition.Predicate {
	p, err := condition.CompilePredicate(conditionType, pattern)
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("Evaluate", func() {
	memoryPressure := taint.Taint{Key: "pressure", Value: "memory", Effect: taint.NoExecute}

	It("includes a rule's taint only when every predicate is satisfied", func() {
		rule := matcher.Rule{
			Taint: memoryPressure,
			Predicates: []condition.Predicate{
				mustPredicate("NetworkInterfaceCard", "Kaput|Ruined"),
				mustPredicate("PrivateLink", "severed"),
			},
		}

		Expect(matcher.Evaluate([]matcher.Rule{rule}, []condition.Condition{
			{Type: "NetworkInterfaceCard", Status: "Kaput"},
		})).To(BeEmpty())

		Expect(matcher.Evaluate([]matcher.Rule{rule}, []condition.Condition{
			{Type: "NetworkInterfaceCard", Status: "Kaput"},
			{Type: "PrivateLink", Status: "severed"},
		})).To(HaveKey(memoryPressure.EquivalenceKey()))
	})

	It("returns no managed taints when conditions are empty", func() {
		rule := matcher.Rule{
			Taint:      memoryPressure,
			Predicates: []condition.Predicate{mustPredicate("NetworkInterfaceCard", "Kaput")},
		}
		Expect(matcher.Evaluate([]matcher.Rule{rule}, nil)).To(BeEmpty())
	})

	It("contributes a taint once even when multiple rules agree on it", func() {
		ruleA := matcher.Rule{Taint: memoryPressure, Predicates: []condition.Predicate{mustPredicate("A", "bad")}}
		ruleB := matcher.Rule{Taint: memoryPressure, Predicates: []condition.Predicate{mustPredicate("B", "bad")}}
		observed := []condition.Condition{{Type: "A", Status: "bad"}, {Type: "B", Status: "bad"}}

		desired := matcher.Evaluate([]matcher.Rule{ruleA, ruleB}, observed)
		Expect(desired.List()).To(HaveLen(1))
	})

	It("never produces a desired set outside the managed universe", func() {
		rules := []matcher.Rule{
			{Taint: memoryPressure, Predicates: []condition.Predicate{mustPredicate("NIC", "Kaput")}},
			{Taint: taint.Taint{Key: "net", Value: "down", Effect: taint.NoSchedule}, Predicates: []condition.Predicate{mustPredicate("Link", "severed")}},
		}
		observed := []condition.Condition{{Type: "NIC", Status: "Kaput"}, {Type: "Link", Status: "severed"}}

		managed := matcher.ManagedUniverse(rules)
		for _, t := range matcher.Evaluate(rules, observed).List() {
			Expect(managed.Has(t)).To(BeTrue())
		}
	})
})

var _ = Describe("ManagedUniverse", func() {
	It("includes a rule's taint whether or not it currently matches", func() {
		rule := matcher.Rule{
			Taint:      taint.Taint{Key: "pressure", Value: "memory", Effect: taint.NoExecute},
			Predicates: []condition.Predicate{mustPredicate("NIC", "Kaput")},
		}
		universe := matcher.ManagedUniverse([]matcher.Rule{rule})
		Expect(universe.Has(rule.Taint)).To(BeTrue())
	})
})
