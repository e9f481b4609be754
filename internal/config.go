// Package internal holds the environment configuration of the binaries.
package internal

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// ServerConfig configures the gRPC container hosting the Tasks context.
type ServerConfig struct {
	Host                   string        `env:"HOST,default=127.0.0.1"`
	Port                   int           `env:"PORT,default=8484"`
	LogLevel               string        `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath         string        `env:"BADGER_FILEPATH"`
	NumberOfWorkers        int           `env:"NUMBER_OF_WORKERS,default=4"`
	BufferSize             int           `env:"BUFFER_SIZE,default=100"`
	SubscriptionBufferSize int           `env:"SUBSCRIPTION_BUFFER_SIZE,default=64"`
	SinkTimeout            time.Duration `env:"SINK_TIMEOUT,default=1s"`
	RestartInterval        time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MetricInterval         time.Duration `env:"METRIC_INTERVAL,default=10s"`
	LowCapacityThreshold   int           `env:"LOW_CAPACITY_THRESHOLD,default=10"`
	LatencyThreshold       time.Duration `env:"LATENCY_THRESHOLD,default=500ms"`
	AuthSecret             string        `env:"AUTH_SECRET"`
	AuthTokenDuration      time.Duration `env:"AUTH_TOKEN_DURATION,default=1h"`
}

func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ClientConfig configures the demo client.
type ClientConfig struct {
	Host           string        `env:"HOST,default=127.0.0.1"`
	Port           int           `env:"PORT,default=8484"`
	LogLevel       string        `env:"LOG_LEVEL,default=INFO"`
	Token          string        `env:"AUTH_TOKEN"`
	TaskTitle      string        `env:"TASK_TITLE,default=Reset wall clock"`
	ObserveTimeout time.Duration `env:"OBSERVE_TIMEOUT,default=5s"`
}

func (c ClientConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// WebConfig configures the HTTP bridges. The Tasks context they host is
// configured by ServerConfig.
type WebConfig struct {
	HTTPAddr        string        `env:"HTTP_ADDR,default=:8080"`
	RedisAddr       string        `env:"REDIS_ADDR,default=127.0.0.1:6379"`
	QueryTTL        time.Duration `env:"QUERY_TTL,default=1m"`
	SubscriptionTTL time.Duration `env:"SUBSCRIPTION_TTL,default=2m"`
	ReapInterval    time.Duration `env:"REAP_INTERVAL,default=30s"`
}

// Load reads an optional .env file then decodes the environment into cfg.
func Load(cfg any) error {
	// A missing .env file is fine, the process environment is used as is.
	_ = godotenv.Load()
	if _, err := env.UnmarshalFromEnviron(cfg); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}
