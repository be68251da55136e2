package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "nomadly/internal/shared/config"
)

type Config struct {
	Server       sharedConfig.ServerConfig       `mapstructure:"server"`
	Database     sharedConfig.DatabaseConfig     `mapstructure:"database"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Email        sharedConfig.EmailConfig        `mapstructure:"email"`
	Redis        sharedConfig.RedisConfig        `mapstructure:"redis"`
	Telegram     sharedConfig.TelegramConfig     `mapstructure:"telegram"`
	Payment      sharedConfig.PaymentConfig      `mapstructure:"payment"`
	Registrar    sharedConfig.RegistrarConfig    `mapstructure:"registrar"`
	DNSProvider  sharedConfig.DNSProviderConfig  `mapstructure:"dns_provider"`
	Gateway      sharedConfig.GatewayConfig      `mapstructure:"gateway"`
	ExchangeRate sharedConfig.ExchangeRateConfig `mapstructure:"exchange_rate"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	viper.SetEnvPrefix("NOMADLY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.base_url", "http://localhost:8080")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "nomadly_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Email defaults
	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.from_address", "no-reply@nomadly.example")
	viper.SetDefault("email.from_name", "Nomadly")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	// Telegram defaults
	viper.SetDefault("telegram.api_base", "https://api.telegram.org")

	// Payment pipeline defaults
	viper.SetDefault("payment.default_confirmations", 1)
	viper.SetDefault("payment.fulfillment_budget_seconds", 25)
	viper.SetDefault("payment.tolerance_usd_cents", 1)
	viper.SetDefault("payment.worker_pool_size", 8)
	viper.SetDefault("payment.worker_queue_size", 64)

	// Registrar defaults
	viper.SetDefault("registrar.base_url", "https://api.openprovider.eu")
	viper.SetDefault("registrar.default_nameservers", []string{
		"ns1.registrar-servers.example", "ns2.registrar-servers.example",
	})

	// DNS provider defaults
	viper.SetDefault("dns_provider.base_url", "https://api.cloudflare.com/client/v4")
	viper.SetDefault("dns_provider.default_record_ip", "")

	// Gateway defaults
	viper.SetDefault("gateway.base_url", "https://api.blockbee.io")
	viper.SetDefault("gateway.callback_url", "http://localhost:8080/webhook")

	// Exchange rate defaults
	viper.SetDefault("exchange_rate.base_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("exchange_rate.cache_ttl_seconds", 300)
}
