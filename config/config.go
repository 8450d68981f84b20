package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMembershipCollection is the collection the registry was first deployed against.
const DefaultMembershipCollection = "0x2C0457F82B57148e8363b4589bb3294b23AE7625"

type Config struct {
	Server     ServerConfig
	Registry   RegistryConfig
	Membership MembershipConfig
	Database   DatabaseConfig
	Redis      RedisConfig
}

type ServerConfig struct {
	Addr               string
	JWTSecret          string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

type RegistryConfig struct {
	Owner                string
	MembershipCollection string
	StorageBackend       string // memory, redis or postgres
	QueueBackend         string // memory or redis
	QueueBufferSize      int
}

type MembershipConfig struct {
	RPCURL  string
	Timeout time.Duration
	// Holders seeds the static checker when no RPC URL is set.
	Holders []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int // 0 keeps the go-redis default
}

var AppConfig *Config

// LoadConfig reads the environment, after loading a .env file if one is present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:     GetServerConfig(),
		Registry:   GetRegistryConfig(),
		Membership: GetMembershipConfig(),
		Database:   GetDatabaseConfig(),
		Redis:      GetRedisConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnv("TEST_DB_PORT", "5433"),
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
		MaxConns: 10,
		MinConns: 1,
	}

	testRedisConfig := RedisConfig{
		Host:     getEnv("TEST_REDIS_HOST", "localhost"),
		Port:     getEnv("TEST_REDIS_PORT", "6380"),
		Password: "",
		DB:       1,
		PoolSize: 20,
	}

	return &Config{
		Server: ServerConfig{
			Addr:            ":0",
			ShutdownTimeout: time.Second,
		},
		Registry: RegistryConfig{
			Owner:                "0x00000000000000000000000000000000000000aa",
			MembershipCollection: DefaultMembershipCollection,
			StorageBackend:       "memory",
			QueueBackend:         "memory",
			QueueBufferSize:      16,
		},
		Membership: MembershipConfig{
			Timeout: time.Second,
		},
		Database: *testConfig,
		Redis:    testRedisConfig,
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Addr:               getEnv("SERVER_ADDR", ":8080"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func GetRegistryConfig() RegistryConfig {
	return RegistryConfig{
		Owner:                getEnv("REGISTRY_OWNER", ""),
		MembershipCollection: getEnv("REGISTRY_MEMBERSHIP_COLLECTION", DefaultMembershipCollection),
		StorageBackend:       getEnv("STORAGE_BACKEND", "memory"),
		QueueBackend:         getEnv("QUEUE_BACKEND", "memory"),
		QueueBufferSize:      getEnvInt("QUEUE_BUFFER_SIZE", 1024),
	}
}

func GetMembershipConfig() MembershipConfig {
	return MembershipConfig{
		RPCURL:  getEnv("MEMBERSHIP_RPC_URL", ""),
		Timeout: getEnvDuration("MEMBERSHIP_TIMEOUT", 5*time.Second),
		Holders: getEnvList("MEMBERSHIP_HOLDERS", nil),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
		MinConns: int32(getEnvInt("DB_MIN_CONNS", 5)),
	}
}

func GetRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		PoolSize: getEnvInt("REDIS_POOL_SIZE", 0),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvInt panics on a malformed value so bad config fails at startup.
func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}
	return d
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
