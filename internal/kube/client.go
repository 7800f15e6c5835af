package kube

import (
	"fmt"

	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	apiextensionsclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/klog/v2"

	"github.com/scc-digitalhub/custom-resource-manager/internal/config"
)

const userAgent = "custom-resource-manager"

// NewRESTConfig loads the cluster connection from the configured kubeconfig,
// the default loading rules or the in-cluster service account, in that order.
// client-go logging is routed through logger.
func NewRESTConfig(cfg *config.Config, logger *zap.Logger) (*rest.Config, error) {
	klog.SetLogger(zapr.NewLogger(logger.Named("client-go")))

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if cfg.Kubernetes.Kubeconfig != "" {
		rules.ExplicitPath = cfg.Kubernetes.Kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: cfg.Kubernetes.Context}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubernetes client config: %w", err)
	}

	restConfig.QPS = cfg.Kubernetes.QPS
	restConfig.Burst = cfg.Kubernetes.Burst
	restConfig.Timeout = cfg.Kubernetes.Timeout
	restConfig.UserAgent = userAgent

	logger.Info("Kubernetes client configured",
		zap.String("host", restConfig.Host),
		zap.Duration("timeout", restConfig.Timeout))

	return restConfig, nil
}

func NewDynamicClient(restConfig *rest.Config) (dynamic.Interface, error) {
	client, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}
	return client, nil
}

func NewAPIExtensionsClient(restConfig *rest.Config) (apiextensionsclientset.Interface, error) {
	client, err := apiextensionsclientset.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create apiextensions client: %w", err)
	}
	return client, nil
}
