package config

import (
	"os"
	"strings"
	"time"

	"github.com/amanuelrf/reliance-mobile/internal/infrastructure/bureau"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	SessionSecret       string
	DatabaseURL         string // "sqlite:<path>" opens a local SQLite file
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	Bureau              bureau.Config // FACTORS_NETWORK_* settings
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetDefault("FACTORS_NETWORK_VERIFY_SSL", true)
	viper.SetDefault("FACTORS_NETWORK_TIMEOUT_SECONDS", 10)
	viper.SetDefault("LOG_LEVEL", "info")

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	timeout := viper.GetInt("FACTORS_NETWORK_TIMEOUT_SECONDS")
	if timeout <= 0 {
		timeout = 10
	}

	return &Config{
		Env:                 env,
		Port:                port,
		LogLevel:            viper.GetString("LOG_LEVEL"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		Bureau: bureau.Config{
			BaseURL:   strings.TrimSpace(viper.GetString("FACTORS_NETWORK_BASE_URL")),
			Username:  viper.GetString("FACTORS_NETWORK_USERNAME"),
			Password:  viper.GetString("FACTORS_NETWORK_PASSWORD"),
			VerifySSL: viper.GetBool("FACTORS_NETWORK_VERIFY_SSL"),
			Timeout:   time.Duration(timeout) * time.Second,
		},
	}, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
