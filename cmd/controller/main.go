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

package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"
	"k8s.io/client-go/kubernetes"
	controllerruntime "sigs.k8s.io/controller-runtime"
	kclock "k8s.io/utils/clock"

	"github.com/awslabs/node-condition-tainter/pkg/config"
	"github.com/awslabs/node-condition-tainter/pkg/controllers/node"
	"github.com/awslabs/node-condition-tainter/pkg/health"
	"github.com/awslabs/node-condition-tainter/pkg/utils/log"
)

// shutdownGrace is how long in-flight reconciliations are given to finish
// after a shutdown signal before the process exits anyway.
const shutdownGrace = 15 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config-file", "", "path to the controller's TOML configuration file (required)")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines draining the reconcile queue")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "--config-file is required")
		return 1
	}

	settings, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %s\n", err)
		return 1
	}

	logger := log.Setup(settings.Log.MaxLevel)
	defer logger.Sync()

	restConfig := controllerruntime.GetConfigOrDie()
	kubeClient, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		logger.Error("failed to build Kubernetes client", zap.Error(err))
		return 2
	}

	watchState := &health.WatchState{}
	controller := node.New(kubeClient, settings.Rules, *workers, kclock.RealClock{}, logger, watchState)

	healthAddr := net.JoinHostPort(settings.Server.Host, settings.Server.Port)
	healthServer := health.NewServer(healthAddr, watchState)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting health and metrics server", zap.String("addr", healthAddr))
		if err := healthServer.ListenAndServe(); err != nil && ctx.Err() == nil {
			logger.Error("health server exited unexpectedly", zap.Error(err))
		}
	}()

	runErr := make(chan error, 1)
	go func() {
		logger.Info("starting node controller", zap.Int("workers", *workers))
		runErr <- controller.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, draining")
	case err := <-runErr:
		if err != nil {
			logger.Error("controller exited with error", zap.Error(err))
			return 2
		}
		return 0
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := health.Shutdown(shutdownCtx, healthServer); err != nil {
		logger.Warn("health server did not shut down cleanly", zap.Error(err))
	}

	select {
	case <-runErr:
		logger.Info("all workers drained, exiting")
	case <-shutdownCtx.Done():
		logger.Warn("timed out waiting for in-flight reconciliations to drain")
	}

	return 0
}
