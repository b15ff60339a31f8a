// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	// 1. base config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// 2. environment config, optional
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finalize(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finalize(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// AWS_SNS_CLIENT_TOPIC_ARN overrides aws.sns.client_topic_arn
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finalize(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile looks for a .env file from the working directory upwards.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.GenAI.APIKey == "" {
		if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.GenAI.APIKey = val
		}
	}

	if cfg.AWS.SNS.ClientTopicARN == "" {
		if val := os.Getenv("SNS_TOPIC_CLIENTES"); val != "" {
			cfg.AWS.SNS.ClientTopicARN = val
		}
	}
	if cfg.AWS.SNS.ProviderTopicARN == "" {
		if val := os.Getenv("SNS_TOPIC_DENTISTAS"); val != "" {
			cfg.AWS.SNS.ProviderTopicARN = val
		}
	}
	if cfg.AWS.Textract.DocumentsBucket == "" {
		if val := os.Getenv("S3_BUCKET"); val != "" {
			cfg.AWS.Textract.DocumentsBucket = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "claims-orchestrator"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Catalog.Source == "" {
		cfg.Catalog.Source = "static"
	}
	if cfg.Catalog.Index == "" {
		cfg.Catalog.Index = "clinics"
	}
	if cfg.Catalog.QueryTimeout == 0 {
		cfg.Catalog.QueryTimeout = 5000
	}
	if cfg.Catalog.MaxCandidates == 0 {
		cfg.Catalog.MaxCandidates = 50
	}

	if cfg.AWS.Region == "" {
		cfg.AWS.Region = "us-east-1"
	}

	// completion parameters used by the triage prompt
	if cfg.GenAI.MaxTokens == 0 {
		cfg.GenAI.MaxTokens = 500
	}
	if cfg.GenAI.Temperature == 0 {
		cfg.GenAI.Temperature = 0.3
	}
	if cfg.GenAI.TopP == 0 {
		cfg.GenAI.TopP = 0.9
	}
	if cfg.GenAI.Timeout == 0 {
		cfg.GenAI.Timeout = 60000
	}

	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 1800
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig rejects configurations the pipeline cannot run with.
func validateConfig(cfg *Config) error {
	if cfg.AWS.SNS.ClientTopicARN == "" {
		return fmt.Errorf("aws.sns.client_topic_arn is required")
	}
	if cfg.AWS.SNS.ProviderTopicARN == "" {
		return fmt.Errorf("aws.sns.provider_topic_arn is required")
	}
	if cfg.AWS.Textract.DocumentsBucket == "" {
		return fmt.Errorf("aws.textract.documents_bucket is required")
	}
	if cfg.AWS.SES.Enabled && cfg.AWS.SES.FromEmail == "" {
		return fmt.Errorf("aws.ses.from_email is required when ses is enabled")
	}

	if cfg.GenAI.Model == "" {
		return fmt.Errorf("genai.model is required")
	}

	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	switch cfg.Catalog.Source {
	case "static":
	case "elasticsearch":
		if len(cfg.Catalog.Addresses) == 0 {
			return fmt.Errorf("catalog.addresses is required for the elasticsearch source")
		}
	default:
		return fmt.Errorf("catalog.source %q is not supported", cfg.Catalog.Source)
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
