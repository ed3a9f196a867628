package utils

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	EnvPath string = "."
)

type Config struct {
	Env               string `mapstructure:"ENV"`
	ServerPort        int    `mapstructure:"SERVER_PORT"`
	AppURL            string `mapstructure:"APP_URL"`
	SigningKey        string `mapstructure:"SIGNING_KEY"`
	AdminKeyHash      string `mapstructure:"ADMIN_KEY_HASH"`
	DBUsername        string `mapstructure:"DB_USERNAME"`
	DBPassword        string `mapstructure:"DB_PASSWORD"`
	DBHost            string `mapstructure:"DB_HOST"`
	DBPort            string `mapstructure:"DB_PORT"`
	DBDriver          string `mapstructure:"DB_DRIVER"`
	DBName            string `mapstructure:"DB_NAME"`
	SSLMode           string `mapstructure:"SSLMODE"`
	Papertrail        string `mapstructure:"PAPERTRAIL"`
	PapertrailAppName string `mapstructure:"PAPERTRAIL_APP_NAME"`
	RedisHost         string `mapstructure:"REDIS_HOST"`
	RedisPort         string `mapstructure:"REDIS_PORT"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	KafkaBrokers      string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic        string `mapstructure:"KAFKA_TOPIC"`
	OTELEndpoint      string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	BusinessTimezone  string `mapstructure:"BUSINESS_TIMEZONE"`

	// Payment lifecycle
	PaymentTTL          time.Duration `mapstructure:"PAYMENT_TTL"`
	ExpirySweepInterval time.Duration `mapstructure:"EXPIRY_SWEEP_INTERVAL"`
	RecoveryInterval    time.Duration `mapstructure:"SETTLEMENT_RECOVERY_INTERVAL"`

	// Chains
	EthereumRPCURL             string        `mapstructure:"ETHEREUM_RPC_URL"`
	PolygonRPCURL              string        `mapstructure:"POLYGON_RPC_URL"`
	BaseRPCURL                 string        `mapstructure:"BASE_RPC_URL"`
	SettlementPrivateKey       string        `mapstructure:"SETTLEMENT_PRIVATE_KEY"`
	ChainRPCTimeout            time.Duration `mapstructure:"CHAIN_RPC_TIMEOUT"`
	ChainReceiptTimeout        time.Duration `mapstructure:"CHAIN_RECEIPT_TIMEOUT"`
	EthereumTokenMessenger     string        `mapstructure:"ETHEREUM_TOKEN_MESSENGER"`
	EthereumMessageTransmitter string        `mapstructure:"ETHEREUM_MESSAGE_TRANSMITTER"`
	EthereumUSDC               string        `mapstructure:"ETHEREUM_USDC"`
	PolygonTokenMessenger      string        `mapstructure:"POLYGON_TOKEN_MESSENGER"`
	PolygonMessageTransmitter  string        `mapstructure:"POLYGON_MESSAGE_TRANSMITTER"`
	PolygonUSDC                string        `mapstructure:"POLYGON_USDC"`
	BaseTokenMessenger         string        `mapstructure:"BASE_TOKEN_MESSENGER"`
	BaseMessageTransmitter     string        `mapstructure:"BASE_MESSAGE_TRANSMITTER"`
	BaseUSDC                   string        `mapstructure:"BASE_USDC"`
	AutoMint                   bool          `mapstructure:"AUTO_MINT"`

	// Attestation
	AttestationBaseURL      string        `mapstructure:"ATTESTATION_BASE_URL"`
	AttestationPollInterval time.Duration `mapstructure:"ATTESTATION_POLL_INTERVAL"`
	AttestationMaxAttempts  int           `mapstructure:"ATTESTATION_MAX_ATTEMPTS"`

	// Webhooks
	WebhookTimeout time.Duration `mapstructure:"WEBHOOK_TIMEOUT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SSLMODE", "disable")
	v.SetDefault("KAFKA_TOPIC", "payment.status_changed")
	v.SetDefault("BUSINESS_TIMEZONE", "UTC")
	v.SetDefault("PAYMENT_TTL", "24h")
	v.SetDefault("EXPIRY_SWEEP_INTERVAL", "1m")
	v.SetDefault("SETTLEMENT_RECOVERY_INTERVAL", "5m")
	v.SetDefault("CHAIN_RPC_TIMEOUT", "30s")
	v.SetDefault("CHAIN_RECEIPT_TIMEOUT", "3m")
	v.SetDefault("ATTESTATION_BASE_URL", "https://iris-api.circle.com")
	v.SetDefault("ATTESTATION_POLL_INTERVAL", "5s")
	v.SetDefault("ATTESTATION_MAX_ATTEMPTS", 60)
	v.SetDefault("WEBHOOK_TIMEOUT", "10s")

	// AutomaticEnv only resolves keys viper already knows about
	for _, key := range []string{
		"SERVER_PORT", "APP_URL", "SIGNING_KEY", "ADMIN_KEY_HASH",
		"DB_USERNAME", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME",
		"PAPERTRAIL", "PAPERTRAIL_APP_NAME",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD",
		"KAFKA_BROKERS", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"ETHEREUM_RPC_URL", "POLYGON_RPC_URL", "BASE_RPC_URL", "SETTLEMENT_PRIVATE_KEY",
		"ETHEREUM_TOKEN_MESSENGER", "ETHEREUM_MESSAGE_TRANSMITTER", "ETHEREUM_USDC",
		"POLYGON_TOKEN_MESSENGER", "POLYGON_MESSAGE_TRANSMITTER", "POLYGON_USDC",
		"BASE_TOKEN_MESSENGER", "BASE_MESSAGE_TRANSMITTER", "BASE_USDC",
		"AUTO_MINT",
	} {
		_ = v.BindEnv(key)
	}
}

func LoadConfig(path string) (*Config, error) {
	// Validate that the path is not empty
	if path == "" {
		path = "."
	}

	// Create a new Viper instance to avoid global state
	v := viper.New()

	v.SetEnvPrefix("")
	v.AutomaticEnv()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		// Log the error, but don't fail entirely
		log.Printf("Warning: Unable to read config file: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.ServerPort == 0 {
		return fmt.Errorf("server port must be specified")
	}

	if config.DBUsername == "" || config.DBPassword == "" {
		return fmt.Errorf("database credentials must be provided")
	}

	if config.SigningKey == "" {
		return fmt.Errorf("signing key must be provided")
	}

	if config.AttestationMaxAttempts <= 0 || config.AttestationPollInterval <= 0 {
		return fmt.Errorf("attestation polling must have a positive interval and attempt count")
	}

	if _, err := time.LoadLocation(config.BusinessTimezone); err != nil {
		return fmt.Errorf("invalid business timezone %q: %w", config.BusinessTimezone, err)
	}

	return nil
}

// Location is the timezone daily limits are computed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) KafkaBrokerList() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Optional: Masking sensitive information for logging
func (c *Config) Redact() Config {
	redacted := *c
	redacted.DBPassword = "****"
	redacted.RedisPassword = "****"
	redacted.SigningKey = "****"
	redacted.AdminKeyHash = "****"
	redacted.SettlementPrivateKey = "****"
	return redacted
}
