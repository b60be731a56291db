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

// Package health serves the controller's /health and /metrics endpoints.
// /health reflects the watch state rather than always answering 200: it
// answers 503 until the informer has synced and again once watch
// reconnects have failed ReconnectThreshold times in a row.
package health

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	crmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

// ReconnectThreshold is the number of consecutive watch-reconnect failures
// after which the health check starts reporting unhealthy.
const ReconnectThreshold = 5

// WatchState tracks the informer's connectivity for the health check. It is
// safe for concurrent use: the informer's goroutines call
// ReconnectSucceeded/ReconnectFailed, the HTTP handler goroutine calls the
// check function used by NewServer.
type WatchState struct {
	synced              atomic.Bool
	consecutiveFailures atomic.Int32
}

func (w *WatchState) MarkSynced() {
	w.synced.Store(true)
}

func (w *WatchState) ReconnectSucceeded() {
	w.consecutiveFailures.Store(0)
}

func (w *WatchState) ReconnectFailed() {
	w.consecutiveFailures.Add(1)
}

func (w *WatchState) checker(_ *http.Request) error {
	if !w.synced.Load() {
		return fmt.Errorf("watch has not completed its initial sync")
	}
	if failures := w.consecutiveFailures.Load(); failures >= ReconnectThreshold {
		return fmt.Errorf("watch has failed to reconnect %d consecutive times", failures)
	}
	return nil
}

// NewServer builds the /health and /metrics http.Server, bound to addr
// ("host:port").
func NewServer(addr string, state *WatchState) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := state.checker(r); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	})
	mux.Handle("/metrics", promhttp.HandlerFor(crmetrics.Registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:    addr,
		Handler: mux,
	}
}

// Shutdown gracefully stops srv, honoring ctx's deadline.
func Shutdown(ctx context.Context, srv *http.Server) error {
	return srv.Shutdown(ctx)
}
