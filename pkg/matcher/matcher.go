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

// Package matcher evaluates matcher rules against a node's observed
// conditions to produce the desired taint set. It is pure: no shared
// mutable state, safe for concurrent callers.
package matcher

import (
	"github.com/awslabs/node-condition-tainter/pkg/apis/condition"
	"github.com/awslabs/node-condition-tainter/pkg/apis/taint"
)

// Rule is a taint plus the non-empty list of predicates that must all be
// satisfied (logical AND) for the taint to be desired.
type Rule struct {
	Taint      taint.Taint
	Predicates []condition.Predicate
}

// Evaluate includes a rule's taint in the output iff every one of its
// predicates is satisfied by at least one observed condition. Rules are
// independent; a taint satisfied by more than one rule contributes once.
func Evaluate(rules []Rule, observed []condition.Condition) taint.Set {
	desired := taint.Set{}
	for _, rule := range rules {
		if ruleSatisfied(rule, observed) {
			key := rule.Taint.EquivalenceKey()
			if _, ok := desired[key]; !ok {
				desired[key] = rule.Taint
			}
		}
	}
	return desired
}

func ruleSatisfied(rule Rule, observed []condition.Condition) bool {
	for _, predicate := range rule.Predicates {
		if !predicate.AnySatisfies(observed) {
			return false
		}
	}
	return true
}

// ManagedUniverse returns the set of taint keys the controller is
// authorized to add or remove: the union of every configured rule's
// taint. It is independent of the rule's predicates —
// a taint is managed whether or not its rule currently matches.
func ManagedUniverse(rules []Rule) taint.KeySet {
	universe := make(taint.KeySet, len(rules))
	for _, rule := range rules {
		universe[rule.Taint.EquivalenceKey()] = struct{}{}
	}
	return universe
}
