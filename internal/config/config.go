// Package config provides configuration loading and structs for the shori services.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the pipeline services. One file is
// shared by the gateway and both workers; each service reads its own section.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Gateway ServiceConfig `yaml:"gateway"`
	Image   ServiceConfig `yaml:"image_service"`
	Text    ServiceConfig `yaml:"text_service"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Storage StorageConfig `yaml:"storage"`
	Intake  IntakeConfig  `yaml:"intake"`
}

// ServiceConfig holds the HTTP listen address for one service.
type ServiceConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port listen address.
func (s ServiceConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// KafkaConfig holds broker addresses, client identity, topics and
// consumer group names.
type KafkaConfig struct {
	Brokers  []string     `yaml:"brokers"`
	ClientID string       `yaml:"client_id"`
	Topics   TopicsConfig `yaml:"topics"`
	Groups   GroupsConfig `yaml:"groups"`
}

// TopicsConfig names the three pipeline topics.
type TopicsConfig struct {
	ImageProcessing   string `yaml:"image_processing"`
	TextProcessing    string `yaml:"text_processing"`
	ProcessingResults string `yaml:"processing_results"`
}

// GroupsConfig names the consumer group for each service. Each message on
// a topic is delivered once per group, so every service gets its own.
type GroupsConfig struct {
	Gateway string `yaml:"gateway"`
	Image   string `yaml:"image"`
	Text    string `yaml:"text"`
}

// StorageConfig holds the document database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// IntakeConfig holds directories the gateway watches for dropped files.
// Empty means the intake watcher is disabled.
type IntakeConfig struct {
	Directories []string `yaml:"directories"`
}

// Load reads and parses the config file at path and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config with all defaults applied, for running without
// a config file.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}
