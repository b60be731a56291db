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

package node

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/awslabs/node-condition-tainter/pkg/matcher"
	"github.com/awslabs/node-condition-tainter/pkg/metrics"
	"github.com/awslabs/node-condition-tainter/pkg/planner"
)

// reconcile converges a single node by name. The returned string is one
// of metrics.Result*, used both for the metric and to tell the caller in
// processNextItem how to requeue.
func (c *Controller) reconcile(ctx context.Context, name string) (string, error) {
	obj, exists, err := c.informer.GetStore().GetByKey(name)
	if err != nil {
		return metrics.ResultError, fmt.Errorf("reading node %q from cache: %w", name, err)
	}
	if !exists {
		// Node deleted: nothing to converge.
		return metrics.ResultNoOp, nil
	}

	cached := obj.(*corev1.Node)
	view := viewFromNode(cached)

	desired := matcher.Evaluate(c.rules, view.Conditions)
	plan := planner.Plan(view.Taints, desired, c.managedUniverse, c.clock.Now().UTC())

	logger := c.logger.With(zap.String("node", name))

	if plan.NoOp {
		logger.Debug("node already converged, no update needed")
		return metrics.ResultNoOp, nil
	}

	logger.Info("applying taint update",
		zap.Int("desired_taint_count", len(desired)),
		zap.Int("new_taint_count", len(plan.Taint)),
	)

	// Carry the entire computed taint list on top of the cached node
	// object: every other field travels unchanged, only Spec.Taints and the
	// resourceVersion matter for this update.
	updated := cached.DeepCopy()
	updated.Spec.Taints = taintsToAPI(plan.Taint)

	_, err = c.kubeClient.CoreV1().Nodes().Update(ctx, updated, metav1.UpdateOptions{})

	switch {
	case err == nil:
		logger.Info("successfully updated node taints")
		return metrics.ResultApplied, nil
	case apierrors.IsConflict(err):
		// The object changed underneath us. Drop this attempt and let the
		// caller re-enqueue immediately; the informer will have the fresher
		// resourceVersion by the time it runs again.
		logger.Info("update conflicted with a newer resourceVersion, re-enqueuing")
		return metrics.ResultConflict, nil
	case apierrors.IsNotFound(err), apierrors.IsForbidden(err):
		logger.Warn("update permanently rejected, dropping", zap.Error(err))
		return metrics.ResultDropped, nil
	default:
		return metrics.ResultError, fmt.Errorf("updating node %q: %w", name, err)
	}
}
