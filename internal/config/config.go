package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	GinMode     string   `mapstructure:"ginMode"`
	CORSOrigins []string `mapstructure:"corsOrigins"`
	PublicURL   string   `mapstructure:"publicURL"`
	APIURL      string   `mapstructure:"apiURL"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslMode"`
}

// DSN formats the config into a PostgreSQL connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"maxAttempts"`
	InitialInterval time.Duration `mapstructure:"initialInterval"`
	MaxInterval     time.Duration `mapstructure:"maxInterval"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secretKey"`
	WebhookSecret string `mapstructure:"webhookSecret"`
}

type FlutterwaveConfig struct {
	BaseURL    string `mapstructure:"baseURL"`
	SecretKey  string `mapstructure:"secretKey"`
	SecretHash string `mapstructure:"secretHash"`
}

type CinetPayConfig struct {
	BaseURL string `mapstructure:"baseURL"`
	APIKey  string `mapstructure:"apiKey"`
	SiteID  string `mapstructure:"siteID"`
}

type AWSConfig struct {
	Region           string `mapstructure:"region"`
	S3Bucket         string `mapstructure:"s3Bucket"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
	SESFromEmail     string `mapstructure:"sesFromEmail"`
	SNSSenderID      string `mapstructure:"snsSenderID"`
}

type WhatsAppConfig struct {
	BaseURL       string `mapstructure:"baseURL"`
	PhoneNumberID string `mapstructure:"phoneNumberID"`
	AccessToken   string `mapstructure:"accessToken"`
}

type KafkaConfig struct {
	Broker string `mapstructure:"broker"`
	Topic  string `mapstructure:"topic"`
}

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Stripe      StripeConfig      `mapstructure:"stripe"`
	Flutterwave FlutterwaveConfig `mapstructure:"flutterwave"`
	CinetPay    CinetPayConfig    `mapstructure:"cinetpay"`
	AWS         AWSConfig         `mapstructure:"aws"`
	WhatsApp    WhatsAppConfig    `mapstructure:"whatsapp"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"server.port":            "PORT",
	"server.ginMode":         "GIN_MODE",
	"server.corsOrigins":     "CORS_ORIGINS",
	"server.publicURL":       "PUBLIC_URL",
	"server.apiURL":          "API_URL",
	"database.host":          "DB_HOST",
	"database.port":          "DB_PORT",
	"database.user":          "DB_USER",
	"database.password":      "DB_PASSWORD",
	"database.name":          "DB_NAME",
	"database.sslMode":       "DB_SSLMODE",
	"jwt.secret":             "JWT_SECRET",
	"jwt.expiration":         "JWT_EXPIRATION",
	"retry.maxAttempts":      "RETRY_MAX_ATTEMPTS",
	"retry.initialInterval":  "RETRY_INITIAL_INTERVAL",
	"retry.maxInterval":      "RETRY_MAX_INTERVAL",
	"stripe.secretKey":       "STRIPE_SECRET_KEY",
	"stripe.webhookSecret":   "STRIPE_WEBHOOK_SECRET",
	"flutterwave.baseURL":    "FLUTTERWAVE_BASE_URL",
	"flutterwave.secretKey":  "FLUTTERWAVE_SECRET_KEY",
	"flutterwave.secretHash": "FLUTTERWAVE_SECRET_HASH",
	"cinetpay.baseURL":       "CINETPAY_BASE_URL",
	"cinetpay.apiKey":        "CINETPAY_API_KEY",
	"cinetpay.siteID":        "CINETPAY_SITE_ID",
	"aws.region":             "AWS_REGION",
	"aws.s3Bucket":           "S3_BUCKET",
	"aws.cloudFrontDomain":   "S3_CLOUDFRONT_DOMAIN",
	"aws.sesFromEmail":       "SES_FROM_EMAIL",
	"aws.snsSenderID":        "SNS_SENDER_ID",
	"whatsapp.baseURL":       "WHATSAPP_BASE_URL",
	"whatsapp.phoneNumberID": "WHATSAPP_PHONE_NUMBER_ID",
	"whatsapp.accessToken":   "WHATSAPP_ACCESS_TOKEN",
	"kafka.broker":           "KAFKA_BROKER",
	"kafka.topic":            "KAFKA_TOPIC",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.corsOrigins", []string{"http://localhost:5173", "http://127.0.0.1:5173"})
	v.SetDefault("server.publicURL", "http://localhost:5173")
	v.SetDefault("server.apiURL", "http://localhost:8080")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "postgres")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("jwt.expiration", 24*time.Hour)
	v.SetDefault("retry.maxAttempts", 3)
	v.SetDefault("retry.initialInterval", 200*time.Millisecond)
	v.SetDefault("retry.maxInterval", 2*time.Second)
	v.SetDefault("flutterwave.baseURL", "https://api.flutterwave.com")
	v.SetDefault("cinetpay.baseURL", "https://api-checkout.cinetpay.com")
	v.SetDefault("aws.region", "eu-central-1")
	v.SetDefault("whatsapp.baseURL", "https://graph.facebook.com/v19.0")
	v.SetDefault("kafka.topic", "nextmove.events")
}

// Load reads configs/.env (if present) and then binds environment variables over
// an optional config.yaml found in path.
func Load(path string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(path + "/.env"); err != nil {
		log.Println("No " + path + "/.env file found or error loading it")
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return cfg, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}

	// CORS_ORIGINS arrives as a comma separated string from the environment
	if len(cfg.Server.CORSOrigins) == 1 && strings.Contains(cfg.Server.CORSOrigins[0], ",") {
		cfg.Server.CORSOrigins = strings.Split(cfg.Server.CORSOrigins[0], ",")
	}

	if cfg.JWT.Secret == "" {
		if cfg.Server.GinMode == "release" {
			return cfg, fmt.Errorf("JWT_SECRET environment variable is required in release mode")
		}
		cfg.JWT.Secret = "default_super_secret_key" // development fallback only
	}

	return cfg, nil
}
