package config

import (
	"os"
	"strconv"
)

// AppConfig carries everything the gateway binary needs to start. Defaults
// suit local development; every field can be overridden from the environment
// (MARKETCHAT_* variables) so deployments do not need a config file.
type AppConfig struct {
	NodeID int64 // snowflake node id
	Port   int   // http/websocket listen port

	MongoURI      string
	MongoDatabase string

	RedisAddr     string // empty disables the online mirror
	RedisPassword string
	RedisDB       int

	NatsURL string // empty disables integration events

	JwtSecret []byte // HS256 secret for token authentication

	AllowedOrigins []string // websocket origin allowlist; empty allows all
}

func Default() AppConfig {
	cfg := AppConfig{
		NodeID:        100,
		Port:          8001,
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "marketchat",
		JwtSecret:     []byte("dev-secret-change-me"),
	}

	if v := os.Getenv("MARKETCHAT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("MARKETCHAT_MONGO_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("MARKETCHAT_MONGO_DB"); v != "" {
		cfg.MongoDatabase = v
	}
	if v := os.Getenv("MARKETCHAT_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("MARKETCHAT_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("MARKETCHAT_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}
	if v := os.Getenv("MARKETCHAT_NATS_URL"); v != "" {
		cfg.NatsURL = v
	}
	if v := os.Getenv("MARKETCHAT_JWT_SECRET"); v != "" {
		cfg.JwtSecret = []byte(v)
	}
	if v := os.Getenv("MARKETCHAT_NODE_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.NodeID = n
		}
	}
	return cfg
}
