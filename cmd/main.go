/*
Copyright 2024.

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
	"flag"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
	"github.com/CHORUS-TRE/ide-operator/internal/controller"
	// +kubebuilder:scaffold:imports
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(amdevv1.AddToScheme(scheme))
	// +kubebuilder:scaffold:scheme
}

// newConfigFlagSet exposes every setting of the configuration file as a flag.
func newConfigFlagSet(config *controller.Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)

	fs.StringVar(&config.EditorImage, "editor-image", config.EditorImage, "Image (with version) of the web code editor.")
	fs.StringVar(&config.ShellServerImage, "shell-server-image", config.ShellServerImage, "Image of the SSH server of the remote shell.")
	fs.StringVar(&config.TerminalBridgeImage, "terminal-bridge-image", config.TerminalBridgeImage, "Image of the web terminal.")
	fs.StringVar(&config.NotebookImage, "notebook-image", config.NotebookImage, "Image of the notebook server.")
	fs.StringVar((*string)(&config.ImagePullPolicy), "image-pull-policy", string(config.ImagePullPolicy), "Pull policy of every container.")
	fs.StringVar(&config.SharedClaimName, "shared-claim-name", config.SharedClaimName, "Existing claim mounted read-only by every workspace.")
	fs.StringVar(&config.UserStorageClassName, "user-storage-class", config.UserStorageClassName, "Storage class of the per-user volume, empty for the default one.")
	fs.StringVar(&config.ProxyDomain, "proxy-domain", config.ProxyDomain, "Domain the apps are exposed under.")
	fs.StringVar(&config.ProxyDomainType, "proxy-domain-type", config.ProxyDomainType, "How apps are routed, \"path\" or \"subdomain\".")
	fs.StringVar(&config.ElevatedClusterRole, "elevated-cluster-role", config.ElevatedClusterRole, "Cluster role of administrators, architects and developers.")
	fs.StringVar(&config.RestrictedClusterRole, "restricted-cluster-role", config.RestrictedClusterRole, "Cluster role of coders.")
	fs.StringVar(&config.DefaultServiceAccountName, "default-service-account", config.DefaultServiceAccountName, "Service account of workspaces without a remote shell.")

	return fs
}

// loadConfigFile replaces config, bound to configFlags, with the defaults
// overlaid by the file at path, then applies again the config flags given
// on the parsed command line. Other flags are left alone.
func loadConfigFile(parsed, configFlags *pflag.FlagSet, path string, config *controller.Config) error {
	explicit := map[string]string{}
	configFlags.VisitAll(func(f *pflag.Flag) {
		if parsed.Changed(f.Name) {
			explicit[f.Name] = f.Value.String()
		}
	})

	*config = controller.DefaultConfig()
	if err := controller.LoadConfig(path, config); err != nil {
		return err
	}

	for name, value := range explicit {
		if err := configFlags.Set(name, value); err != nil {
			return fmt.Errorf("applying flag %q: %w", name, err)
		}
	}

	return nil
}

func main() {
	var (
		metricsAddr          string
		probeAddr            string
		enableLeaderElection bool
		configPath           string
		namespaces           []string
	)

	pflag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	pflag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	pflag.BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. "+
			"Enabling this will ensure there is only one active controller manager.")
	pflag.StringVar(&configPath, "config", "", "Path of a YAML configuration file. Flags take precedence over it.")
	pflag.StringSliceVar(&namespaces, "namespace", nil, "Namespace to watch, repeatable. All of them when empty.")

	config := controller.DefaultConfig()
	configFlags := newConfigFlagSet(&config)
	pflag.CommandLine.AddFlagSet(configFlags)

	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(flag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	if configPath != "" {
		// Defaults, then the file, then the flags given explicitly.
		if err := loadConfigFile(pflag.CommandLine, configFlags, configPath, &config); err != nil {
			setupLog.Error(err, "unable to load the configuration")
			os.Exit(1)
		}
	}

	if err := config.Validate(); err != nil {
		setupLog.Error(err, "invalid configuration")
		os.Exit(1)
	}

	cacheOptions := cache.Options{}
	if len(namespaces) > 0 {
		cacheOptions.DefaultNamespaces = map[string]cache.Config{}
		for _, namespace := range namespaces {
			cacheOptions.DefaultNamespaces[namespace] = cache.Config{}
		}
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: metricsAddr,
		},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "4c1d2a0e.amdev.cloriver.io",
		Cache:                  cacheOptions,
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	if err = (&controller.IdeConfigReconciler{
		Client:   mgr.GetClient(),
		Scheme:   mgr.GetScheme(),
		Recorder: mgr.GetEventRecorderFor("ideconfig-controller"),
		Config:   config,
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "IdeConfig")
		os.Exit(1)
	}

	if os.Getenv("ENABLE_WEBHOOKS") != "false" {
		if err = (&amdevv1.IdeConfig{}).SetupWebhookWithManager(mgr); err != nil {
			setupLog.Error(err, "unable to create webhook", "webhook", "IdeConfig")
			os.Exit(1)
		}
	}
	// +kubebuilder:scaffold:builder

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager",
		"proxyDomainType", config.ProxyDomainType,
		"sharedClaim", config.SharedClaimName,
	)
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}
