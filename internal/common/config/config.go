// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Camunda  CamundaConfig  `mapstructure:"camunda"`
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	AWS      AWSConfig      `mapstructure:"aws"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	Session  SessionConfig  `mapstructure:"session"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	RequestTimeout int `mapstructure:"request_timeout"` // milliseconds
}

type CamundaConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BrokerAddress string `mapstructure:"broker_address"`
	MaxJobsActive int    `mapstructure:"max_jobs_active"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig is optional. An empty address disables the session attribute store.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Domain Configuration Sections ---

// CatalogConfig selects where provider clinics come from.
type CatalogConfig struct {
	Source        string   `mapstructure:"source"` // static | elasticsearch
	Addresses     []string `mapstructure:"addresses"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	Index         string   `mapstructure:"index"`
	QueryTimeout  int      `mapstructure:"query_timeout"` // milliseconds
	MaxCandidates int      `mapstructure:"max_candidates"`
}

// AWSConfig holds notification and document extraction settings.
type AWSConfig struct {
	Region string `mapstructure:"region"`
	SNS    struct {
		ClientTopicARN   string `mapstructure:"client_topic_arn"`
		ProviderTopicARN string `mapstructure:"provider_topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"ses"`
	Textract struct {
		DocumentsBucket string `mapstructure:"documents_bucket"`
	} `mapstructure:"textract"`
}

// GenAIConfig configures the text completion collaborator.
type GenAIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
	TopP        float32 `mapstructure:"top_p"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

type SessionConfig struct {
	TTL int `mapstructure:"ttl"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
