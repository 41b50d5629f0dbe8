package config

import "time"

// DatabaseConfig configures the shared Postgres pool. Present in every
// service config below.
type DatabaseConfig struct {
	URL             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:             getEnv("DATABASE_URL", ""),
		MaxConns:        int32(getEnvInt("DATABASE_MAX_CONNS", 10)),
		MaxConnLifetime: getEnvDuration("DATABASE_MAX_CONN_LIFETIME", time.Hour),
		MaxConnIdleTime: getEnvDuration("DATABASE_MAX_CONN_IDLE_TIME", 30*time.Minute),
	}
}

// BrokerConfig configures the pub/sub broker abstraction (spec §4.1/§6).
// Mode selects the backend: "kafka" dials real brokers directly (local/dev,
// no Dapr sidecar present), "noop" never touches the network, "dapr" relies
// entirely on the sidecar for both publish (HTTP POST to the sidecar, not
// modeled here since it degrades to noop when unset) and subscribe (HTTP
// dispatch routes only, see internal/broker/dapr.go).
type BrokerConfig struct {
	Mode          string
	KafkaBrokers  []string
	ConsumerGroup string
	PubsubName    string
}

func loadBrokerConfig(serviceName string) BrokerConfig {
	brokers := getEnv("KAFKA_BROKERS", "")
	mode := getEnv("BROKER_MODE", "noop")
	var brokerList []string
	if brokers != "" {
		brokerList = splitCSV(brokers)
	}
	return BrokerConfig{
		Mode:          mode,
		KafkaBrokers:  brokerList,
		ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", serviceName),
		PubsubName:    getEnv("PUBSUB_NAME", "taskflow-pubsub"),
	}
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

// HTTPConfig configures the HTTP listener common to every service.
type HTTPConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func loadHTTPConfig(defaultPort string) HTTPConfig {
	return HTTPConfig{
		Port:            getEnv("PORT", defaultPort),
		ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// LogLevel returns the configured slog level name (debug|info|warn|error).
func LogLevel() string {
	return getEnv("LOG_LEVEL", "info")
}
