package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.etcd.io/etcd/client/pkg/v3/transport"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/scc-digitalhub/custom-resource-manager/internal/api/handlers"
	"github.com/scc-digitalhub/custom-resource-manager/internal/api/middleware"
	"github.com/scc-digitalhub/custom-resource-manager/internal/api/server"
	"github.com/scc-digitalhub/custom-resource-manager/internal/auth"
	"github.com/scc-digitalhub/custom-resource-manager/internal/config"
	"github.com/scc-digitalhub/custom-resource-manager/internal/kube"
	"github.com/scc-digitalhub/custom-resource-manager/internal/lib"
	"github.com/scc-digitalhub/custom-resource-manager/internal/repository"
	"github.com/scc-digitalhub/custom-resource-manager/internal/service"
	"github.com/scc-digitalhub/custom-resource-manager/pkg/validation"
)

// CommonModule provides shared dependencies for both the API server and the schema import tool
var CommonModule = fx.Options(
	fx.Provide(
		config.Load,
		NewLogger,
		NewETCDClient,
		validator.New,
		validation.NewValidator,
		kube.NewRESTConfig,
		kube.NewDynamicClient,
		kube.NewAPIExtensionsClient,
		kube.NewObjectStore,
		kube.NewCRDMetadataStore,
		auth.NewStaticAuthorizer,
		repository.NewClientWrapper,
		repository.NewSchemaRepository,
		service.NewSchemaService,
		service.NewCustomResourceService,
		service.NewCRDService,
	),
)

// APIModule provides dependencies specific to the API server
var APIModule = fx.Options(
	CommonModule,
	fx.Provide(
		NewMetricsRegistry,
		NewMetrics,
		handlers.NewResourceHandler,
		handlers.NewSchemaHandler,
		handlers.NewCRDHandler,
		server.NewRouter,
		server.NewServer,
	),
)

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Logging.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.Level = zap.NewAtomicLevelAt(parseLogLevel(cfg.Logging.Level))
	zapConfig.Encoding = cfg.Logging.Format
	zapConfig.DisableCaller = !cfg.Logging.EnableCaller
	zapConfig.DisableStacktrace = !cfg.Logging.EnableStacktrace
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	return zapConfig.Build()
}

func NewETCDClient(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*clientv3.Client, error) {
	etcdConfig := clientv3.Config{
		Endpoints:            cfg.ETCD.Endpoints,
		DialTimeout:          cfg.ETCD.DialTimeout,
		DialKeepAliveTime:    cfg.ETCD.DialKeepAliveTime,
		DialKeepAliveTimeout: cfg.ETCD.DialKeepAliveTimeout,
		MaxCallSendMsgSize:   cfg.ETCD.MaxCallSendMsgSize,
		MaxCallRecvMsgSize:   cfg.ETCD.MaxCallRecvMsgSize,
		Username:             cfg.ETCD.Username,
		Password:             cfg.ETCD.Password,
		Logger:               logger.Named("etcd"),
	}

	if cfg.ETCD.TLS.Enabled {
		tlsConfig, err := createTLSConfig(cfg.ETCD.TLS)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		etcdConfig.TLS = tlsConfig
	}

	client, err := clientv3.New(etcdConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return waitForETCD(ctx, client, cfg.ETCD.Prefix, logger)
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}

// waitForETCD blocks until the schema prefix can be read.
func waitForETCD(ctx context.Context, client *clientv3.Client, prefix string, logger *zap.Logger) error {
	backoff := lib.NewBackoffManager(lib.BackoffConfig{
		InitialBackoff:    200 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2,
	})

	err := lib.WaitUntil(ctx, backoff, func(ctx context.Context) error {
		_, err := client.Get(ctx, prefix, clientv3.WithPrefix(), clientv3.WithCountOnly())
		return err
	}, func(err error, delay time.Duration) {
		logger.Warn("Schema store not reachable yet",
			zap.Strings("endpoints", client.Endpoints()),
			zap.Duration("retryIn", delay),
			zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("schema store unreachable: %w", err)
	}
	return nil
}

func createTLSConfig(tlsCfg config.TLSConfig) (*tls.Config, error) {
	info := transport.TLSInfo{
		CertFile:           tlsCfg.CertFile,
		KeyFile:            tlsCfg.KeyFile,
		TrustedCAFile:      tlsCfg.CAFile,
		InsecureSkipVerify: tlsCfg.InsecureSkipVerify,
	}
	return info.ClientConfig()
}

// NewMetricsRegistry returns a registry carrying the Go runtime and process collectors.
func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func NewMetrics(registry *prometheus.Registry) (*middleware.Metrics, error) {
	return middleware.NewMetrics(registry)
}

func parseLogLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
