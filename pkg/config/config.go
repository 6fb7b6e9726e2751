// Package config loads the optional harness config file. Every field
// mirrors a CLI flag; flags and environment variables take precedence.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		Scylla   ScyllaConfig  `yaml:"scylla"`
		Suite    SuiteConfig   `yaml:"suite"`
		Report   ReportConfig  `yaml:"report"`
		Notify   NotifyConfig  `yaml:"notify"`
		Events   EventsConfig  `yaml:"events"`
		Lock     LockConfig    `yaml:"lock"`
		Metrics  MetricsConfig `yaml:"metrics"`
		Schedule string        `yaml:"schedule"`
	}
)

type ScyllaConfig struct {
	// Hosts is a comma separated list of contact points.
	Hosts    string `yaml:"hosts"`
	Port     int    `yaml:"port"`
	Keyspace string `yaml:"keyspace"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSL      bool   `yaml:"ssl"`
	// TimeoutSeconds is the per-request driver timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type SuiteConfig struct {
	// Glob selects the .cql test files to run.
	Glob string `yaml:"glob"`
	// Name labels the suite in reports and events.
	Name string `yaml:"name"`
}

type ReportConfig struct {
	JUnitFile string `yaml:"junit_file"`
	// Bucket, when set, receives the JUnit artifact under reports/<run-id>.xml.
	Bucket     string `yaml:"bucket"`
	S3Endpoint string `yaml:"s3_endpoint"`
}

type NotifyConfig struct {
	// Queue, when set, receives a failure summary when a run has errors.
	Queue       string `yaml:"queue"`
	SQSEndpoint string `yaml:"sqs_endpoint"`
}

type EventsConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
}

type LockConfig struct {
	// Addr is the Redis address used for the run lock.
	Addr       string `yaml:"addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a yaml config file. A missing path returns an empty config.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}
