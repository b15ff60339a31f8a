package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
app:
  name: claims-test
aws:
  region: sa-east-1
  sns:
    client_topic_arn: arn:aws:sns:sa-east-1:123:clients
    provider_topic_arn: arn:aws:sns:sa-east-1:123:providers
  textract:
    documents_bucket: claim-documents
genai:
  model: triage-model
  api_key: ${TEST_GENAI_KEY}
database:
  postgres:
    host: localhost
    database: claims
    user: claims
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("TEST_GENAI_KEY", "sk-test")

	cfg, err := LoadFromFile(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "claims-test", cfg.App.Name)
	assert.Equal(t, "sa-east-1", cfg.AWS.Region)
	assert.Equal(t, "sk-test", cfg.GenAI.APIKey)
	assert.Equal(t, 500, cfg.GenAI.MaxTokens)
	assert.InDelta(t, 0.3, cfg.GenAI.Temperature, 0.0001)
	assert.InDelta(t, 0.9, cfg.GenAI.TopP, 0.0001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "static", cfg.Catalog.Source)
	assert.Equal(t, "clinics", cfg.Catalog.Index)
	assert.Equal(t, 1800, cfg.Session.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "missing client topic",
			body: `
aws:
  sns:
    provider_topic_arn: arn:p
  textract:
    documents_bucket: b
genai:
  model: m
database:
  postgres: {host: h, database: d, user: u}
`,
			wantErr: "aws.sns.client_topic_arn is required",
		},
		{
			name: "missing documents bucket",
			body: `
aws:
  sns: {client_topic_arn: arn:c, provider_topic_arn: arn:p}
genai:
  model: m
database:
  postgres: {host: h, database: d, user: u}
`,
			wantErr: "aws.textract.documents_bucket is required",
		},
		{
			name: "missing model",
			body: `
aws:
  sns: {client_topic_arn: arn:c, provider_topic_arn: arn:p}
  textract: {documents_bucket: b}
database:
  postgres: {host: h, database: d, user: u}
`,
			wantErr: "genai.model is required",
		},
		{
			name: "elasticsearch catalog without addresses",
			body: `
aws:
  sns: {client_topic_arn: arn:c, provider_topic_arn: arn:p}
  textract: {documents_bucket: b}
genai:
  model: m
database:
  postgres: {host: h, database: d, user: u}
catalog:
  source: elasticsearch
`,
			wantErr: "catalog.addresses is required",
		},
		{
			name: "unknown catalog source",
			body: `
aws:
  sns: {client_topic_arn: arn:c, provider_topic_arn: arn:p}
  textract: {documents_bucket: b}
genai:
  model: m
database:
  postgres: {host: h, database: d, user: u}
catalog:
  source: ldap
`,
			wantErr: `catalog.source "ldap" is not supported`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SNS_TOPIC_CLIENTES", "")
			t.Setenv("SNS_TOPIC_DENTISTAS", "")
			t.Setenv("S3_BUCKET", "")

			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOverrideEmptyConfig_UsesLegacyVariables(t *testing.T) {
	t.Setenv("SNS_TOPIC_CLIENTES", "arn:legacy:clients")
	t.Setenv("SNS_TOPIC_DENTISTAS", "arn:legacy:providers")
	t.Setenv("S3_BUCKET", "legacy-bucket")

	cfg := &Config{}
	overrideEmptyConfig(cfg)

	assert.Equal(t, "arn:legacy:clients", cfg.AWS.SNS.ClientTopicARN)
	assert.Equal(t, "arn:legacy:providers", cfg.AWS.SNS.ProviderTopicARN)
	assert.Equal(t, "legacy-bucket", cfg.AWS.Textract.DocumentsBucket)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestGetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "claims", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=claims sslmode=disable", p.GetDSN())
}
