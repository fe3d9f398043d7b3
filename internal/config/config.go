package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	pkgcfg "github.com/Skotchmaster/product_catalog/pkg/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	minJWTSecretLen = 32
)

type Config struct {
	ServiceName string
	Version     string
	AppEnv      string
	LogLevel    string
	ServerPort  int

	DBDriver      string
	DatabaseURL   string
	MigrateOnBoot bool
	SeedProducts  bool

	JWTSecret  []byte
	TokenTTL   time.Duration
	BcryptCost int

	CORSOrigins []string
	BodyLimit   string

	RateLimitStore  string
	RateLimitWindow time.Duration
	LoginRateLimit  int
	APIRateLimit    int

	HighValueThreshold float64
	LowStockThreshold  int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment variables", err)
	}

	return &Config{
		ServiceName: pkgcfg.EnvDefault("SERVICE_NAME", "product-catalog"),
		Version:     pkgcfg.EnvDefault("APP_VERSION", "2.0.0"),
		AppEnv:      pkgcfg.EnvDefault("APP_ENV", EnvDevelopment),
		LogLevel:    pkgcfg.EnvDefault("LOG_LEVEL", "info"),
		ServerPort:  pkgcfg.EnvIntDefault("SERVER_PORT", 8080),

		DBDriver:      pkgcfg.EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		MigrateOnBoot: pkgcfg.EnvBoolDefault("MIGRATE_ON_START", true),
		SeedProducts:  pkgcfg.EnvBoolDefault("SEED_PRODUCTS", false),

		JWTSecret:  []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:   pkgcfg.EnvDurationDefault("JWT_TTL", 24*time.Hour),
		BcryptCost: pkgcfg.EnvIntDefault("BCRYPT_COST", 10),

		CORSOrigins: pkgcfg.CSV(pkgcfg.EnvDefault("CORS_ORIGINS",
			"http://localhost:3000,http://localhost:5500,http://127.0.0.1:5500")),
		BodyLimit: pkgcfg.EnvDefault("BODY_LIMIT", "10M"),

		RateLimitStore:  pkgcfg.EnvDefault("RATE_LIMIT_STORE", "memory"),
		RateLimitWindow: pkgcfg.EnvDurationDefault("RATE_LIMIT_WINDOW", 15*time.Minute),
		LoginRateLimit:  pkgcfg.EnvIntDefault("LOGIN_RATE_LIMIT", 5),
		APIRateLimit:    pkgcfg.EnvIntDefault("API_RATE_LIMIT", 100),

		HighValueThreshold: pkgcfg.EnvFloatDefault("HIGH_VALUE_THRESHOLD", 10000),
		LowStockThreshold:  pkgcfg.EnvIntDefault("LOW_STOCK_THRESHOLD", 5),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       pkgcfg.EnvIntDefault("REDIS_DB", 0),
		CacheTTL:      pkgcfg.EnvDurationDefault("CACHE_TTL", 5*time.Minute),

		KafkaBrokers: pkgcfg.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgcfg.EnvDefault("ES_INDEX", "products"),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("JWT_SECRET is empty"))
	} else if !c.IsDevelopment() && len(c.JWTSecret) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTSecretLen))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is empty"))
	}
	if c.BcryptCost < 10 {
		errs = append(errs, errors.New("BCRYPT_COST must be at least 10"))
	}
	if c.LoginRateLimit <= 0 || c.APIRateLimit <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	switch c.RateLimitStore {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("RATE_LIMIT_STORE=redis requires REDIS_ADDR"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_STORE %q", c.RateLimitStore))
	}
	return errors.Join(errs...)
}
