package config

import (
	"os"
	"strings"
	"time"

	"github.com/TiberiusB/Nondominium/pkg/domain"
)

// Server captures the local replica's configuration. Every participant
// runs its own server instance with its own agent identity.
type Server struct {
	Addr          string
	AgentID       domain.AgentID
	JWTSigningKey string
	PostgresDSN   string
	Redis         RedisConfig
	Kafka         KafkaConfig
}

// RedisConfig configures the optional Redis connection used by the write
// rate limiter. An empty URL disables Redis and falls back to the
// in-memory limiter.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the record propagation topic. Empty brokers
// disable outbound replication (single-replica mode).
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Group   string
}

// FromEnv builds a Server config from environment variables so main stays
// lean. DIRECTORY_AGENT_ID is required in deployment; when absent a fresh
// identity is generated, which is only sensible for local development.
func FromEnv() Server {
	addr := os.Getenv("DIRECTORY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	agentID, err := domain.ParseAgentID(os.Getenv("DIRECTORY_AGENT_ID"))
	if err != nil {
		agentID = domain.NewAgentID()
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("KAFKA_RECORDS_TOPIC")
	if topic == "" {
		topic = "directory.records"
	}

	return Server{
		Addr:          addr,
		AgentID:       agentID,
		JWTSigningKey: jwtSigningKey,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
			Group:   "directory-" + agentID.String(),
		},
	}
}
