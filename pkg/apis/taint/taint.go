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

// Package taint holds the controller's internal taint value type and the
// equivalence relation used throughout reconciliation. corev1.Taint is only
// crossed at the cluster-API boundary in pkg/controllers/node.
package taint

import (
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Taint is the (key, value, effect) triple plus an optional TimeAdded, as
// spec'd: TimeAdded is excluded from equivalence and is only ever stamped
// once, by whichever reconcile first wrote the taint.
type Taint struct {
	Key       string
	Value     string
	Effect    Effect
	TimeAdded *metav1.Time
}

// EquivalenceKey is the canonical identity used for set membership: key, value and
// effect; TimeAdded is excluded.
func (t Taint) EquivalenceKey() string {
	return fmt.Sprintf("%s=%s:%s", t.Key, t.Value, t.Effect)
}

// Equal reports key, value and effect pairwise equal, TimeAdded ignored.
func (t Taint) Equal(other Taint) bool {
	return t.EquivalenceKey() == other.EquivalenceKey()
}

// WithTimeAdded returns a copy of t stamped with now if t.Effect is
// NoExecute, and an unmodified copy otherwise. NoSchedule and
// PreferNoSchedule taints never carry a TimeAdded.
func (t Taint) WithTimeAdded(now time.Time) Taint {
	if t.Effect != NoExecute {
		return t
	}
	stamp := metav1.NewTime(now)
	t.TimeAdded = &stamp
	return t
}

// Set is a taint multiset collapsed by equivalence key: at most one Taint
// per EquivalenceKey. Order is insignificant and not preserved.
type Set map[string]Taint

// NewSet builds a Set from a slice, later taints overwriting earlier
// equivalent ones.
func NewSet(taints ...Taint) Set {
	s := make(Set, len(taints))
	for _, t := range taints {
		s[t.EquivalenceKey()] = t
	}
	return s
}

func (s Set) Has(t Taint) bool {
	_, ok := s[t.EquivalenceKey()]
	return ok
}

func (s Set) List() []Taint {
	out := make([]Taint, 0, len(s))
	for _, t := range s {
		out = append(out, t)
	}
	return out
}

// KeySet is the set of EquivalenceKeys underlying a Set, used by the patch
// planner to test managed-universe membership without carrying the full
// Taint value around.
type KeySet map[string]struct{}

func (s Set) Keys() KeySet {
	ks := make(KeySet, len(s))
	for k := range s {
		ks[k] = struct{}{}
	}
	return ks
}

func (ks KeySet) Has(t Taint) bool {
	_, ok := ks[t.EquivalenceKey()]
	return ok
}
