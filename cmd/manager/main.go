// Copyright 2019 Hewlett Packard Enterprise Development LP

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/bluek8s/licensewatchdog/pkg/catalog"
	"github.com/bluek8s/licensewatchdog/pkg/config"
	"github.com/bluek8s/licensewatchdog/pkg/enforcement"
	"github.com/bluek8s/licensewatchdog/pkg/executor"
	"github.com/bluek8s/licensewatchdog/pkg/observer"
	"github.com/bluek8s/licensewatchdog/pkg/shared"
	"github.com/bluek8s/licensewatchdog/pkg/validator"
	"github.com/bluek8s/licensewatchdog/pkg/watchdog"
	"github.com/bluek8s/licensewatchdog/version"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/operator-framework/operator-sdk/pkg/leader"
	"github.com/operator-framework/operator-sdk/pkg/log/zap"
	sdkmetrics "github.com/operator-framework/operator-sdk/pkg/metrics"
	sdkVersion "github.com/operator-framework/operator-sdk/version"
	"github.com/spf13/pflag"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/tools/record"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

// Change below variables to serve metrics on different host or port.
var (
	metricsHost       = "0.0.0.0"
	metricsPort int32 = 8383
	leaderLock        = "license-watchdog-lock"
)
var log = logf.Log.WithName(shared.ComponentName)

func printVersion() {
	log.Info(fmt.Sprintf("Go Version: %s", runtime.Version()))
	log.Info(fmt.Sprintf("Go OS/Arch: %s/%s", runtime.GOOS, runtime.GOARCH))
	log.Info(fmt.Sprintf("Operator-sdk Version: %v", sdkVersion.Version))
	log.Info(fmt.Sprintf("License Watchdog Version: %v %s", version.Version, version.CommitSHA))
}

func main() {

	watchdogFlags := &config.Flags{}
	watchdogFlags.AddFlags(pflag.CommandLine)
	pflag.Int32Var(&metricsPort, "metrics-port", metricsPort, "port serving Prometheus metrics")
	pflag.StringVar(&leaderLock, "leader-lock", leaderLock, "name of the leader election ConfigMap")

	// Add the zap logger flag set to the CLI. The flag set must
	// be added before calling pflag.Parse().
	pflag.CommandLine.AddFlagSet(zap.FlagSet())

	// Add flags registered by imported packages (e.g. glog and
	// controller-runtime)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)

	pflag.Parse()

	// Use a zap logr.Logger implementation. If none of the zap
	// flags are configured (or if the zap flag set is not being
	// used), this defaults to a production zap logger.
	logf.SetLogger(zap.Logger())

	printVersion()

	watchdogConfig, configErr := watchdogFlags.Load()
	if configErr != nil {
		log.Error(configErr, "failed to load configuration")
		os.Exit(1)
	}
	registry, catalogErr := watchdogConfig.Catalog()
	if catalogErr != nil {
		log.Error(catalogErr, "failed to build resource registry")
		os.Exit(1)
	}
	strategy := watchdogConfig.EnforcementStrategy()

	instance := uuid.New().String()
	log = log.WithValues("instance", instance)
	if namespace, nsErr := shared.GetWatchdogNamespace(); nsErr == nil {
		log = log.WithValues("namespace", namespace)
	}

	cfg, cfgErr := ctrlconfig.GetConfig()
	if cfgErr != nil {
		log.Error(cfgErr, "failed to get cluster config")
		os.Exit(1)
	}
	client, clientErr := shared.NewClient(cfg)
	if clientErr != nil {
		log.Error(clientErr, "")
		os.Exit(1)
	}
	recorder := shared.NewEventRecorder(client.Clientset, instance)

	// Become the leader before proceeding, so only one watchdog
	// enforces at a time.
	ctx := context.TODO()
	leaderErr := leader.Become(ctx, leaderLock)
	if leaderErr != nil {
		log.Error(leaderErr, "")
		os.Exit(1)
	}

	mgr, mgrErr := manager.New(cfg, manager.Options{
		Namespace:          "",
		MetricsBindAddress: fmt.Sprintf("%s:%d", metricsHost, metricsPort),
	})
	if mgrErr != nil {
		log.Error(mgrErr, "")
		os.Exit(1)
	}

	log.Info("Registering Components.")

	licenseValidator, validatorErr := newValidator(log, watchdogConfig, client)
	if validatorErr != nil {
		log.Error(validatorErr, "failed to create license validator")
		os.Exit(1)
	}

	enforcer, enforcerErr := enforcement.New(strategy, enforcement.Options{
		Log:          log,
		Recorder:     recorder,
		Client:       executor.New(log, client.Clientset),
		Catalog:      registry,
		WriteTimeout: watchdogConfig.WriteTimeout(),
	})
	if enforcerErr != nil {
		log.Error(enforcerErr, "failed to create enforcer")
		os.Exit(1)
	}

	metrics, metricsErr := watchdog.NewMetrics(ctrlmetrics.Registry)
	if metricsErr != nil {
		log.Error(metricsErr, "failed to register metrics")
		os.Exit(1)
	}

	loop, loopErr := watchdog.New(watchdog.Options{
		Log:            log,
		Recorder:       recorder,
		Validator:      licenseValidator,
		Enforcer:       enforcer,
		SampleInterval: watchdogConfig.SampleInterval(),
		InitialDelay:   watchdogConfig.InitialDelay(),
		ReassertValid:  watchdogConfig.ReassertValid,
		Metrics:        metrics,
		Preflight: newPreflight(
			log,
			recorder,
			client,
			registry,
			strategy,
			watchdogConfig.WriteTimeout(),
		),
	})
	if loopErr != nil {
		log.Error(loopErr, "failed to create watchdog")
		os.Exit(1)
	}
	if addErr := mgr.Add(loop); addErr != nil {
		log.Error(addErr, "")
		os.Exit(1)
	}

	// Create Service object to expose the metrics port.
	servicePorts := []v1.ServicePort{
		{
			Port:       metricsPort,
			Name:       sdkmetrics.OperatorPortName,
			Protocol:   v1.ProtocolTCP,
			TargetPort: intstr.IntOrString{Type: intstr.Int, IntVal: metricsPort},
		},
	}
	_, serviceErr := sdkmetrics.CreateMetricsService(ctx, cfg, servicePorts)
	if serviceErr != nil {
		log.Info(serviceErr.Error())
	}

	log.Info("Starting the Cmd.")

	// Start the Cmd. The watchdog returning an error stops the manager.
	if mgrErr := mgr.Start(signals.SetupSignalHandler()); mgrErr != nil {
		log.Error(mgrErr, "Manager exited non-zero")
		os.Exit(1)
	}
}

// newValidator builds the configured license validator.
func newValidator(
	log logr.Logger,
	watchdogConfig *config.Config,
	client *shared.K8sClient,
) (validator.Validator, error) {

	settings := watchdogConfig.Validator
	switch settings.Type {
	case config.ValidatorTypeSecret:
		return validator.NewFuncValidator(
			log,
			validator.SecretCheck(
				client.Clientset,
				settings.Secret.Namespace,
				settings.Secret.Name,
				settings.Secret.Key,
			),
			watchdogConfig.ValidatorTimeout(),
		)
	default:
		return validator.NewHTTPValidator(log, validator.HTTPConfig{
			Host:    settings.Host,
			Port:    settings.Port,
			Path:    settings.Path,
			Secure:  settings.Secure,
			Timeout: watchdogConfig.ValidatorTimeout(),
		})
	}
}

func newPreflight(
	log logr.Logger,
	recorder record.EventRecorder,
	client *shared.K8sClient,
	registry *catalog.Catalog,
	strategy enforcement.Strategy,
	timeout time.Duration,
) *watchdog.Preflight {

	return watchdog.NewPreflight(log, recorder, observer.New(client.Clientset), registry, strategy, timeout)
}
