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

// Package node hosts the event pipeline and reconciler: a shared informer
// over corev1.Node feeding a per-key rate-limiting work queue.
package node

import (
	corev1 "k8s.io/api/core/v1"

	"github.com/awslabs/node-condition-tainter/pkg/apis/condition"
	"github.com/awslabs/node-condition-tainter/pkg/apis/taint"
)

// View is the slim (name, resourceVersion, taints, conditions) projection
// of a Node. A new View replaces the previous one on every event; nothing
// here is ever mutated in place.
type View struct {
	Name            string
	ResourceVersion string
	Taints          []taint.Taint
	Conditions      []condition.Condition
}

func viewFromNode(n *corev1.Node) View {
	return View{
		Name:            n.Name,
		ResourceVersion: n.ResourceVersion,
		Taints:          taintsFromAPI(n.Spec.Taints),
		Conditions:      conditionsFromAPI(n.Status.Conditions),
	}
}

func taintsFromAPI(in []corev1.Taint) []taint.Taint {
	out := make([]taint.Taint, 0, len(in))
	for _, t := range in {
		out = append(out, taint.Taint{
			Key:       t.Key,
			Value:     t.Value,
			Effect:    taint.Effect(t.Effect),
			TimeAdded: t.TimeAdded,
		})
	}
	return out
}

func taintsToAPI(in []taint.Taint) []corev1.Taint {
	out := make([]corev1.Taint, 0, len(in))
	for _, t := range in {
		out = append(out, corev1.Taint{
			Key:       t.Key,
			Value:     t.Value,
			Effect:    corev1.TaintEffect(t.Effect),
			TimeAdded: t.TimeAdded,
		})
	}
	return out
}

func conditionsFromAPI(in []corev1.NodeCondition) []condition.Condition {
	out := make([]condition.Condition, 0, len(in))
	for _, c := range in {
		out = append(out, condition.Condition{
			Type:   string(c.Type),
			Status: string(c.Status),
		})
	}
	return out
}
