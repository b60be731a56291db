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
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/cache"
	"k8s.io/client-go/util/workqueue"
	"k8s.io/utils/clock"

	"go.uber.org/zap"

	"github.com/awslabs/node-condition-tainter/pkg/health"
	"github.com/awslabs/node-condition-tainter/pkg/matcher"
	"github.com/awslabs/node-condition-tainter/pkg/metrics"
)

// resyncPeriod is the default periodic full-cache replay; resync is
// mandatory so a missed or dropped watch event is never permanent.
const resyncPeriod = 10 * time.Minute

// backoffBase and backoffCap implement transient-failure backoff:
// exponential from 1s, doubling, capped at 30s.
const (
	backoffBase = 1 * time.Second
	backoffCap  = 30 * time.Second
)

// Controller binds the node watch stream to the reconciler. It owns the
// informer's cache; the reconciler only ever reads from it.
type Controller struct {
	kubeClient kubernetes.Interface
	informer   cache.SharedIndexInformer
	queue      workqueue.TypedRateLimitingInterface[string]

	rules           []matcher.Rule
	managedUniverse map[string]struct{}

	clock      clock.Clock
	logger     *zap.Logger
	watchState *health.WatchState

	workers int
}

// New constructs a Controller. rules and the derived managed universe are
// immutable for the process lifetime.
func New(kubeClient kubernetes.Interface, rules []matcher.Rule, workers int, clk clock.Clock, logger *zap.Logger, watchState *health.WatchState) *Controller {
	c := &Controller{
		kubeClient:      kubeClient,
		rules:           rules,
		managedUniverse: matcher.ManagedUniverse(rules),
		clock:           clk,
		logger:          logger,
		watchState:      watchState,
		workers:         workers,
	}

	c.informer = cache.NewSharedIndexInformer(
		&cache.ListWatch{
			ListFunc: func(options metav1.ListOptions) (runtime.Object, error) {
				options.FieldSelector = fields.Everything().String()
				return kubeClient.CoreV1().Nodes().List(context.Background(), options)
			},
			WatchFunc: func(options metav1.ListOptions) (watch.Interface, error) {
				options.FieldSelector = fields.Everything().String()
				return kubeClient.CoreV1().Nodes().Watch(context.Background(), options)
			},
		},
		&corev1.Node{},
		resyncPeriod,
		cache.Indexers{},
	)

	c.queue = workqueue.NewTypedRateLimitingQueue[string](
		workqueue.NewTypedItemExponentialFailureRateLimiter[string](backoffBase, backoffCap),
	)

	c.informer.AddEventHandler(cache.ResourceEventHandlerFuncs{
		AddFunc:    func(obj interface{}) { c.enqueueFromObj(obj) },
		UpdateFunc: func(_, obj interface{}) { c.enqueueFromObj(obj) },
		DeleteFunc: func(obj interface{}) { c.enqueueFromObj(obj) },
	})

	// The reflector backing the informer already re-lists from scratch and
	// backs off on its own; we only observe it here to drive the health
	// check's reconnect threshold.
	_ = c.informer.SetWatchErrorHandlerWithContext(func(_ context.Context, _ *cache.Reflector, err error) {
		if err != nil {
			watchState.ReconnectFailed()
			logger.Warn("watch reconnect failed", zap.Error(err))
		}
	})

	return c
}

func (c *Controller) enqueueFromObj(obj interface{}) {
	name, err := cache.DeletionHandlingMetaNamespaceKeyFunc(obj)
	if err != nil {
		c.logger.Error("failed to derive key for node event", zap.Error(err))
		return
	}
	c.watchState.ReconnectSucceeded()
	c.queue.Add(name)
	metrics.QueueDepth.Set(float64(c.queue.Len()))
}

// Run starts the informer and the worker pool, and blocks until ctx is
// cancelled and every worker has returned. On cancellation the queue is
// shut down immediately, so queued-but-not-yet-started items are discarded.
// A worker mid-reconcile is left to finish, and since it shares ctx its own
// network calls fail fast, so Run returns as soon as the caller's grace
// period (if any) allows.
func (c *Controller) Run(ctx context.Context) error {
	go c.informer.Run(ctx.Done())

	if !cache.WaitForCacheSync(ctx.Done(), c.informer.HasSynced) {
		return fmt.Errorf("timed out waiting for node cache to sync")
	}
	c.watchState.MarkSynced()

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.worker(ctx)
		}()
	}

	<-ctx.Done()
	c.queue.ShutDown()
	wg.Wait()
	return nil
}

func (c *Controller) worker(ctx context.Context) {
	for c.processNextItem(ctx) {
	}
}

func (c *Controller) processNextItem(ctx context.Context) bool {
	name, shutdown := c.queue.Get()
	if shutdown {
		return false
	}
	defer c.queue.Done(name)
	defer func() { metrics.QueueDepth.Set(float64(c.queue.Len())) }()

	start := c.clock.Now()
	result, err := c.reconcile(ctx, name)
	metrics.ReconcileDuration.Observe(c.clock.Since(start).Seconds())
	metrics.ReconcilesTotal.WithLabelValues(result).Inc()

	switch {
	case err != nil:
		c.queue.AddRateLimited(name)
	case result == metrics.ResultConflict:
		// Conflicts are re-enqueued immediately, with no backoff: Forget
		// resets the rate limiter's state for the name, and Add puts it back
		// without delay. Every conflict is handled this way; there is no cap
		// on consecutive immediate retries.
		c.queue.Forget(name)
		c.queue.Add(name)
	default:
		c.queue.Forget(name)
	}
	return true
}
