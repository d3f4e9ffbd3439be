package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("PUSH_PROVIDER", "log")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "reports", cfg.Collections.Reports)
	assert.Equal(t, 30*time.Minute, cfg.Workflow.EscalationTimeout)
	assert.Equal(t, 100, cfg.Workflow.EscalationBatchSize)
	assert.Equal(t, 50, cfg.Workflow.PeerLimit)
	assert.Equal(t, "CRADI", cfg.SMS.AfricasTalkingSenderID)
	assert.Equal(t, "0 */5 * * * *", cfg.Scheduler.EscalationSchedule)
	assert.Equal(t, "0 0 0 * * *", cfg.Scheduler.StatisticsSchedule)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.NeedsFirebase())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("ESCALATION_BATCH_SIZE", "lots")
	t.Setenv("ESCALATION_TIMEOUT", "half an hour")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Workflow.EscalationBatchSize)
	assert.Equal(t, 30*time.Minute, cfg.Workflow.EscalationTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "memory store with log push",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown store",
			mutate:  func(c *Config) { c.Store.Driver = "cassandra" },
			wantErr: `unknown STORE_DRIVER "cassandra"`,
		},
		{
			name:    "firestore without credentials",
			mutate:  func(c *Config) { c.Store.Driver = StoreFirestore },
			wantErr: "GOOGLE_APPLICATION_CREDENTIALS_1 is required for the firestore store",
		},
		{
			name:    "postgres without dsn",
			mutate:  func(c *Config) { c.Store.Driver = StorePostgres },
			wantErr: "DB_DSN is required for the postgres store",
		},
		{
			name:    "unknown sms provider",
			mutate:  func(c *Config) { c.SMS.Provider = "carrier-pigeon" },
			wantErr: `unknown SMS_PROVIDER "carrier-pigeon"`,
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.ObjectStore.Provider = ObjectStoreS3 },
			wantErr: "S3_BUCKET is required",
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Workflow.EscalationBatchSize = 0 },
			wantErr: "ESCALATION_BATCH_SIZE must be positive",
		},
		{
			name:    "scheduler without lock ttl",
			mutate:  func(c *Config) { c.Scheduler = SchedulerConfig{Enabled: true} },
			wantErr: "SCHEDULER_LOCK_TTL must be positive",
		},
		{
			name:   "disabled scheduler ignores lock ttl",
			mutate: func(c *Config) { c.Scheduler = SchedulerConfig{Enabled: false} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Store: StoreConfig{Driver: StoreMemory},
				Push:  PushConfig{Provider: PushLog},
				Workflow: WorkflowConfig{
					EscalationTimeout:   30 * time.Minute,
					EscalationBatchSize: 100,
					PeerLimit:           50,
					StatsSampleSize:     100,
				},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSMSConfig_Enabled(t *testing.T) {
	assert.False(t, SMSConfig{}.Enabled())
	assert.False(t, SMSConfig{Provider: SMSAfricasTalking, AfricasTalkingAPIKey: "key"}.Enabled())
	assert.True(t, SMSConfig{Provider: SMSAfricasTalking, AfricasTalkingAPIKey: "key", AfricasTalkingUsername: "cradi"}.Enabled())
	assert.True(t, SMSConfig{Provider: SMSKavenegar, KavenegarAPIKey: "key"}.Enabled())
}
