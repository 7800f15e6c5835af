package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Server     ServerConfig     `envPrefix:"SERVER_"`
	ETCD       ETCDConfig       `envPrefix:"ETCD_"`
	Kubernetes KubernetesConfig `envPrefix:"KUBERNETES_"`
	Auth       AuthConfig       `envPrefix:"AUTH_"`
	API        APIConfig        `envPrefix:"API_"`
	Logging    LoggingConfig    `envPrefix:"LOGGING_"`
}

type ServerConfig struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:","`
}

// ETCDConfig configures the schema store.
type ETCDConfig struct {
	Endpoints            []string      `env:"ENDPOINTS" envDefault:"localhost:2379" envSeparator:","`
	DialTimeout          time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	DialKeepAliveTime    time.Duration `env:"DIAL_KEEP_ALIVE_TIME" envDefault:"30s"`
	DialKeepAliveTimeout time.Duration `env:"DIAL_KEEP_ALIVE_TIMEOUT" envDefault:"5s"`
	MaxCallSendMsgSize   int           `env:"MAX_CALL_SEND_MSG_SIZE" envDefault:"2097152"`
	MaxCallRecvMsgSize   int           `env:"MAX_CALL_RECV_MSG_SIZE" envDefault:"4194304"`
	Username             string        `env:"USERNAME"`
	Password             string        `env:"PASSWORD"`
	Prefix               string        `env:"PREFIX" envDefault:"/schema"`
	TLS                  TLSConfig     `envPrefix:"TLS_"`
}

type TLSConfig struct {
	Enabled            bool   `env:"ENABLED" envDefault:"false"`
	CAFile             string `env:"CA_FILE"`
	CertFile           string `env:"CERT_FILE"`
	KeyFile            string `env:"KEY_FILE"`
	InsecureSkipVerify bool   `env:"INSECURE_SKIP_VERIFY" envDefault:"false"`
}

// KubernetesConfig configures the dynamic object store and CRD metadata clients.
// An empty Kubeconfig falls back to the default loading rules, then to the
// in-cluster service account.
type KubernetesConfig struct {
	Kubeconfig string        `env:"KUBECONFIG"`
	Context    string        `env:"CONTEXT"`
	QPS        float32       `env:"QPS" envDefault:"20"`
	Burst      int           `env:"BURST" envDefault:"40"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type AuthConfig struct {
	AllowedKinds []string `env:"ALLOWED_KINDS" envSeparator:","`
}

type APIConfig struct {
	DefaultNamespace string `env:"DEFAULT_NAMESPACE" envDefault:"default"`
	DefaultPageSize  int    `env:"DEFAULT_PAGE_SIZE" envDefault:"20"`
	MaxPageSize      int    `env:"MAX_PAGE_SIZE" envDefault:"500"`
}

type LoggingConfig struct {
	Level            string `env:"LEVEL" envDefault:"info"`
	Format           string `env:"FORMAT" envDefault:"json"`
	EnableCaller     bool   `env:"ENABLE_CALLER" envDefault:"true"`
	EnableStacktrace bool   `env:"ENABLE_STACKTRACE" envDefault:"false"`
	Development      bool   `env:"DEVELOPMENT" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
