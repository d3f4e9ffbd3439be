package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StoreFirestore = "firestore"
	StoreMySQL     = "mysql"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"

	PushFCM = "fcm"
	PushLog = "log"

	SMSAfricasTalking = "africastalking"
	SMSKavenegar      = "kavenegar"

	ObjectStoreS3  = "s3"
	ObjectStoreGCS = "gcs"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	Store       StoreConfig
	Firebase    FirebaseConfig
	Collections CollectionConfig
	Push        PushConfig
	SMS         SMSConfig
	ObjectStore ObjectStoreConfig
	Redis       RedisConfig
	Workflow    WorkflowConfig
	Scheduler   SchedulerConfig
}

type StoreConfig struct {
	Driver      string
	DSN         string
	AutoMigrate bool
}

type FirebaseConfig struct {
	CredentialsFile string
	ProjectID       string
}

type CollectionConfig struct {
	Reports     string
	Users       string
	Authorities string
	Statistics  string
}

type PushConfig struct {
	Provider string
}

type SMSConfig struct {
	Provider string

	AfricasTalkingAPIKey   string
	AfricasTalkingUsername string
	AfricasTalkingSenderID string
	AfricasTalkingEndpoint string

	KavenegarAPIKey string
	KavenegarSender string

	Timeout time.Duration
}

// Enabled reports whether a provider and its credentials are present.
func (c SMSConfig) Enabled() bool {
	switch c.Provider {
	case SMSAfricasTalking:
		return c.AfricasTalkingAPIKey != "" && c.AfricasTalkingUsername != ""
	case SMSKavenegar:
		return c.KavenegarAPIKey != ""
	default:
		return false
	}
}

type ObjectStoreConfig struct {
	Provider string
	URLTTL   time.Duration

	S3Endpoint        string
	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string

	GCSBucket string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type WorkflowConfig struct {
	EscalationTimeout   time.Duration
	EscalationBatchSize int
	PeerLimit           int
	StatsSampleSize     int
}

type SchedulerConfig struct {
	Enabled            bool
	EscalationSchedule string
	StatisticsSchedule string
	LockTTL            time.Duration
}

// Load reads .env (if present) and the process environment into a Config.
// It does not validate; call Validate once at start.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables only")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "release"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", StoreFirestore)),
			DSN:         getEnv("DB_DSN", ""),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS_1", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		Collections: CollectionConfig{
			Reports:     getEnv("REPORTS_COLLECTION", "reports"),
			Users:       getEnv("USERS_COLLECTION", "users"),
			Authorities: getEnv("AUTHORITIES_COLLECTION", "authorities"),
			Statistics:  getEnv("STATS_COLLECTION", "statistics"),
		},
		Push: PushConfig{
			Provider: strings.ToLower(getEnv("PUSH_PROVIDER", PushFCM)),
		},
		SMS: SMSConfig{
			Provider:               strings.ToLower(getEnv("SMS_PROVIDER", "")),
			AfricasTalkingAPIKey:   getEnv("AFRICASTALKING_API_KEY", ""),
			AfricasTalkingUsername: getEnv("AFRICASTALKING_USERNAME", ""),
			AfricasTalkingSenderID: getEnv("AFRICASTALKING_SENDER_ID", "CRADI"),
			AfricasTalkingEndpoint: getEnv("AFRICASTALKING_ENDPOINT", "https://api.africastalking.com/version1/messaging"),
			KavenegarAPIKey:        getEnv("KAVENEGAR_API_KEY", ""),
			KavenegarSender:        getEnv("KAVENEGAR_SENDER", ""),
			Timeout:                getEnvAsDuration("SMS_TIMEOUT", 15*time.Second),
		},
		ObjectStore: ObjectStoreConfig{
			Provider:          strings.ToLower(getEnv("OBJECT_STORE", "")),
			URLTTL:            getEnvAsDuration("IMAGE_URL_TTL", time.Hour),
			S3Endpoint:        getEnv("S3_ENDPOINT", ""),
			S3Region:          getEnv("S3_REGION", "auto"),
			S3Bucket:          getEnv("S3_BUCKET", ""),
			S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			GCSBucket:         getEnv("GCS_BUCKET", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Workflow: WorkflowConfig{
			EscalationTimeout:   getEnvAsDuration("ESCALATION_TIMEOUT", 30*time.Minute),
			EscalationBatchSize: getEnvAsInt("ESCALATION_BATCH_SIZE", 100),
			PeerLimit:           getEnvAsInt("PEER_LIMIT", 50),
			StatsSampleSize:     getEnvAsInt("STATS_SAMPLE_SIZE", 100),
		},
		Scheduler: SchedulerConfig{
			Enabled:            getEnvAsBool("SCHEDULER_ENABLED", true),
			EscalationSchedule: getEnv("ESCALATION_SCHEDULE", "0 */5 * * * *"),
			StatisticsSchedule: getEnv("STATISTICS_SCHEDULE", "0 0 0 * * *"),
			LockTTL:            getEnvAsDuration("SCHEDULER_LOCK_TTL", 4*time.Minute),
		},
	}

	return cfg, nil
}

// Validate checks that every enabled integration has what it needs.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreFirestore:
		if c.Firebase.CredentialsFile == "" {
			errs = append(errs, errors.New("GOOGLE_APPLICATION_CREDENTIALS_1 is required for the firestore store"))
		}
	case StoreMySQL, StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("DB_DSN is required for the %s store", c.Store.Driver))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	switch c.Push.Provider {
	case PushFCM:
		if c.Firebase.CredentialsFile == "" {
			errs = append(errs, errors.New("GOOGLE_APPLICATION_CREDENTIALS_1 is required for fcm push"))
		}
	case PushLog:
	default:
		errs = append(errs, fmt.Errorf("unknown PUSH_PROVIDER %q", c.Push.Provider))
	}

	switch c.SMS.Provider {
	case "", SMSAfricasTalking, SMSKavenegar:
	default:
		errs = append(errs, fmt.Errorf("unknown SMS_PROVIDER %q", c.SMS.Provider))
	}

	switch c.ObjectStore.Provider {
	case "":
	case ObjectStoreS3:
		if c.ObjectStore.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 object store"))
		}
	case ObjectStoreGCS:
		if c.ObjectStore.GCSBucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET is required for the gcs object store"))
		}
		if c.Firebase.CredentialsFile == "" {
			errs = append(errs, errors.New("GOOGLE_APPLICATION_CREDENTIALS_1 is required for the gcs object store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown OBJECT_STORE %q", c.ObjectStore.Provider))
	}

	if c.Workflow.EscalationTimeout <= 0 {
		errs = append(errs, errors.New("ESCALATION_TIMEOUT must be positive"))
	}
	if c.Workflow.EscalationBatchSize <= 0 {
		errs = append(errs, errors.New("ESCALATION_BATCH_SIZE must be positive"))
	}
	if c.Workflow.PeerLimit <= 0 {
		errs = append(errs, errors.New("PEER_LIMIT must be positive"))
	}
	if c.Workflow.StatsSampleSize < 0 {
		errs = append(errs, errors.New("STATS_SAMPLE_SIZE must not be negative"))
	}
	if c.Scheduler.Enabled && c.Scheduler.LockTTL <= 0 {
		errs = append(errs, errors.New("SCHEDULER_LOCK_TTL must be positive when the scheduler is enabled"))
	}

	return errors.Join(errs...)
}

// NeedsFirebase reports whether any component talks to the Firebase app.
func (c *Config) NeedsFirebase() bool {
	return c.Store.Driver == StoreFirestore ||
		c.Push.Provider == PushFCM ||
		c.ObjectStore.Provider == ObjectStoreGCS
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logrus.Warnf("Invalid value for %s: %v, falling back to default %d", key, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		logrus.Warnf("Invalid value for %s: %v, falling back to default %t", key, err, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logrus.Warnf("Invalid duration for %s: %v, falling back to default %s", key, err, defaultValue)
		return defaultValue
	}
	return value
}
