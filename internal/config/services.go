package config

import "time"

// TaskAPIConfig configures cmd/taskapi.
type TaskAPIConfig struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Broker   BrokerConfig
}

func LoadTaskAPIConfig() *TaskAPIConfig {
	return &TaskAPIConfig{
		HTTP:     loadHTTPConfig("8080"),
		Database: loadDatabaseConfig(),
		Broker:   loadBrokerConfig("task-api"),
	}
}

// ReminderConfig configures cmd/reminderengine.
type ReminderConfig struct {
	HTTP              HTTPConfig
	Database          DatabaseConfig
	Broker            BrokerConfig
	FiringInterval    time.Duration
	PersistInterval   time.Duration
}

func LoadReminderConfig() *ReminderConfig {
	return &ReminderConfig{
		HTTP:            loadHTTPConfig("8081"),
		Database:        loadDatabaseConfig(),
		Broker:          loadBrokerConfig("reminder-engine"),
		FiringInterval:  getEnvDuration("REMINDER_FIRING_INTERVAL", 10*time.Second),
		PersistInterval: getEnvDuration("REMINDER_PERSIST_INTERVAL", 5*time.Minute),
	}
}

// NotifierConfig configures cmd/notifier.
type NotifierConfig struct {
	HTTP              HTTPConfig
	Broker            BrokerConfig
	RedisURL          string
	JWTSecret         string
	MaxConnsPerOwner  int
	RateLimitPerSec   int
	RateLimitWindow   time.Duration
	HeartbeatInterval time.Duration
	EvictionInterval  time.Duration
	StaleThreshold    time.Duration
}

func LoadNotifierConfig() *NotifierConfig {
	return &NotifierConfig{
		HTTP:              loadHTTPConfig("8082"),
		Broker:            loadBrokerConfig("notifier"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		MaxConnsPerOwner:  getEnvInt("NOTIFIER_MAX_CONNS_PER_OWNER", 3),
		RateLimitPerSec:   getEnvInt("NOTIFIER_RATE_LIMIT_PER_SEC", 10),
		RateLimitWindow:   getEnvDuration("NOTIFIER_RATE_LIMIT_WINDOW", time.Second),
		HeartbeatInterval: getEnvDuration("NOTIFIER_HEARTBEAT_INTERVAL", 30*time.Second),
		EvictionInterval:  getEnvDuration("NOTIFIER_EVICTION_INTERVAL", 60*time.Second),
		StaleThreshold:    getEnvDuration("NOTIFIER_STALE_THRESHOLD", 90*time.Second),
	}
}

// AuditConfig configures cmd/auditingestor.
type AuditConfig struct {
	HTTP          HTTPConfig
	Database      DatabaseConfig
	Broker        BrokerConfig
	BatchSize     int
	FlushInterval time.Duration
	DefaultLimit  int
}

func LoadAuditConfig() *AuditConfig {
	return &AuditConfig{
		HTTP:          loadHTTPConfig("8083"),
		Database:      loadDatabaseConfig(),
		Broker:        loadBrokerConfig("audit-ingestor"),
		BatchSize:     getEnvInt("AUDIT_BATCH_SIZE", 100),
		FlushInterval: getEnvDuration("AUDIT_FLUSH_INTERVAL", time.Second),
		DefaultLimit:  getEnvInt("AUDIT_DEFAULT_LIMIT", 100),
	}
}

// RecurringConfig configures cmd/recurringgen.
type RecurringConfig struct {
	HTTP           HTTPConfig
	Database       DatabaseConfig
	Broker         BrokerConfig
	TickInterval   time.Duration
	TaskAPIBaseURL string
}

func LoadRecurringConfig() *RecurringConfig {
	return &RecurringConfig{
		HTTP:           loadHTTPConfig("8084"),
		Database:       loadDatabaseConfig(),
		Broker:         loadBrokerConfig("recurring-generator"),
		TickInterval:   getEnvDuration("RECURRING_TICK_INTERVAL", 5*time.Minute),
		TaskAPIBaseURL: getEnv("TASK_API_BASE_URL", "http://localhost:8080"),
	}
}
