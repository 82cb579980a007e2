package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string
	LogLevel string

	Database  DatabaseConfigs
	ApiServer APIServerConfigs
	Auth      AuthConfigs
	Redis     RedisConfigs
	Kafka     KafkaConfigs
	Storage   S3Configs
	Reward    RewardConfigs
	Payment   PaymentConfigs
	Cron      CronConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	MaxLimit       int
	DefaultLimit   int
	AllowedOrigins []string
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs

	// APIKeys authenticate the trusted server-side callers (CMS, checkout,
	// intake forms) which may award XP on behalf of any user.
	APIKeys      []string
	APIKeyHeader string
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type RedisConfigs struct {
	Enable bool
	Addr   string

	// LockTTL bounds how long a crashed instance can hold a user lock.
	LockTTL time.Duration
	// LockWait is how long an award waits for the user lock before giving up
	// with a conflict.
	LockWait time.Duration
}

type KafkaConfigs struct {
	Enable        bool
	Addr          []string
	ClientID      string
	GroupID       string
	PurchaseTopic string
	XPEventTopic  string
}

type S3Configs struct {
	Enable         bool
	Region         string
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	SSLDisabled    bool
	Bucket         string
}

type RewardConfigs struct {
	// Timezone decides where a calendar day starts for streaks.
	Timezone           string
	MaxConflictRetries int
	NodeID             int64

	XPPerDollar     int64
	MinRedemptionXP int64
	MaxOrderPercent int64

	BundleMultiplier   float64
	BundleMinItems     int
	FirstPurchaseBonus int64
	FirstBundleBonus   int64
}

type PaymentConfigs struct {
	WebhookSecret      string
	SignatureTolerance time.Duration
}

type CronConfigs struct {
	PendingJobInterval time.Duration
	PendingJobBatch    int
	MaxAttempts        int
	ReconcileInterval  time.Duration
}

// Default returns the configuration used when the config file does not set a
// value. The reward numbers are business constants of the rewards program.
func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Host:     "localhost",
			Port:     "3306",
			Database: "rewards",
			User:     "rewards",
			LogLevel: "error",
		},
		ApiServer: APIServerConfigs{
			ServerConfigs: ServerConfigs{Port: "8080"},
			MaxLimit:      50,
			DefaultLimit:  10,
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: 24 * time.Hour,
			},
			APIKeyHeader: "X-Api-Key",
		},
		Redis: RedisConfigs{
			Addr:     "localhost:6379",
			LockTTL:  10 * time.Second,
			LockWait: 3 * time.Second,
		},
		Kafka: KafkaConfigs{
			ClientID:      "rewards",
			GroupID:       "rewards",
			PurchaseTopic: "purchase_completed",
			XPEventTopic:  "xp_events",
		},
		Reward: RewardConfigs{
			Timezone:           "UTC",
			MaxConflictRetries: 3,
			NodeID:             1,
			XPPerDollar:        100,
			MinRedemptionXP:    500,
			MaxOrderPercent:    50,
			BundleMultiplier:   3,
			BundleMinItems:     2,
			FirstPurchaseBonus: 100,
			FirstBundleBonus:   250,
		},
		Payment: PaymentConfigs{
			SignatureTolerance: 5 * time.Minute,
		},
		Cron: CronConfigs{
			PendingJobInterval: 30 * time.Second,
			PendingJobBatch:    50,
			MaxAttempts:        10,
			ReconcileInterval:  24 * time.Hour,
		},
	}
}

// Location returns the reward timezone, falling back to UTC if the name is
// invalid.
func (c RewardConfigs) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}
