package config

import "fmt"

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	APIBase  string `mapstructure:"api_base"`
}

// PaymentConfig tunes the confirmation pipeline. ConfirmationThresholds maps
// an asset code (lowercase, e.g. "btc") to the minimum number of blockchain
// confirmations required before a payment is treated as confirmed; assets
// without an entry use DefaultConfirmations. FulfillmentBudgetSeconds bounds
// how long a single webhook-triggered fulfillment may run before the order
// is left to the background retry job.
type PaymentConfig struct {
	ConfirmationThresholds   map[string]int `mapstructure:"confirmation_thresholds"`
	DefaultConfirmations     int            `mapstructure:"default_confirmations"`
	FulfillmentBudgetSeconds int            `mapstructure:"fulfillment_budget_seconds"`
	ToleranceUSDCents        int            `mapstructure:"tolerance_usd_cents"`
	WorkerPoolSize           int            `mapstructure:"worker_pool_size"`
	WorkerQueueSize          int            `mapstructure:"worker_queue_size"`
}

// RegistrarConfig points at the registrar API. DefaultNameservers are the
// registrar's parking nameservers, used when the order picks the
// registrar-default mode.
type RegistrarConfig struct {
	BaseURL            string   `mapstructure:"base_url"`
	Username           string   `mapstructure:"username"`
	Password           string   `mapstructure:"password"`
	DefaultNameservers []string `mapstructure:"default_nameservers"`
}

// DNSProviderConfig points at the managed DNS provider. DefaultRecordIP, when
// set, is the target of the best-effort root A record created after a new
// zone; empty skips record creation.
type DNSProviderConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	APIToken        string `mapstructure:"api_token"`
	DefaultRecordIP string `mapstructure:"default_record_ip"`
}

type GatewayConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	CallbackURL string `mapstructure:"callback_url"`
}

type ExchangeRateConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}
