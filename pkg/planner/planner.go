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

// Package planner computes the minimal taint-list mutation (or none) that
// converges a node's current taints toward a desired set.
package planner

import (
	"time"

	"github.com/samber/lo"

	"github.com/awslabs/node-condition-tainter/pkg/apis/taint"
)

// Result is either NoOp or carries the full taint list to write.
type Result struct {
	NoOp  bool
	Taint []taint.Taint
}

// Plan computes output = (C∩D) ∪ (D\C) ∪ (C\managed_universe): kept current
// taints, newly desired taints, and unmanaged current taints left alone.
//
// C (current) is only ever read from, never mutated: taints the planner
// decides to keep are copied verbatim out of current so their original
// TimeAdded survives. now is only consulted for taints newly added this
// call.
func Plan(current []taint.Taint, desired taint.Set, managed taint.KeySet, now time.Time) Result {
	currentByKey := make(map[string]taint.Taint, len(current))
	for _, t := range current {
		currentByKey[t.EquivalenceKey()] = t
	}

	// D \ C: desired taints the node doesn't carry yet.
	toAdd := lo.FilterMap(desired.List(), func(t taint.Taint, _ int) (taint.Taint, bool) {
		_, alreadyPresent := currentByKey[t.EquivalenceKey()]
		return t.WithTimeAdded(now), !alreadyPresent
	})

	// C ∩ D and C \ managed_universe: every current taint the planner keeps,
	// copied verbatim so TimeAdded is preserved. A current taint is dropped
	// only when it's managed and no longer desired.
	kept := lo.Filter(current, func(t taint.Taint, _ int) bool {
		return !managed.Has(t) || desired.Has(t)
	})

	out := make([]taint.Taint, 0, len(kept)+len(toAdd))
	out = append(out, kept...)
	out = append(out, toAdd...)

	if len(toAdd) == 0 && len(kept) == len(current) {
		return Result{NoOp: true}
	}
	return Result{Taint: out}
}
