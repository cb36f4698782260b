package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Log           LogConfig
	HTTP          HTTPConfig
	Billing       BillingConfig
	Certification CertificationConfig
	Mail          MailConfig
	Printing      PrintingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	CORSAllowOrigins []string
	TrustedProxies   []string
}

// BillingConfig holds the billing business constants
type BillingConfig struct {
	BaseFee           float64 // flat monthly fee in GTQ
	AllowanceLiters   float64 // liters covered by the base fee
	SurchargeRate     float64 // surcharge on overage cost
	MoraMonthlyRate   float64 // late fee per complete month overdue
	ReconnectionFee   float64 // flat reconnection charge in GTQ
	DueInDays         int     // days between issue and due date
	OverdueThreshold  int64   // overdue invoices before reconnection is required
	CertRetryAttempts int     // certification attempts before manual review
}

// CertificationConfig holds the electronic invoicing (FEL) provider settings
type CertificationConfig struct {
	Enabled  bool
	BaseURL  string
	APIKey   string
	IssuerID string // NIT of the issuing utility
	Timeout  time.Duration
}

// MailConfig holds SMTP settings for client notifications
type MailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// PrintingConfig holds ticket rendering settings
type PrintingConfig struct {
	TemplateDir string
	OutputDir   string
	PDFEnabled  bool // render PDF via headless Chrome, otherwise HTML only
	PDFTimeout  time.Duration
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with AGUA_ prefix (e.g., AGUA_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("AGUA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("jwt.secret"),
			ExpirationHours: v.GetInt("jwt.expiration_hours"),
			Issuer:          v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Billing: BillingConfig{
			BaseFee:           v.GetFloat64("billing.base_fee"),
			AllowanceLiters:   v.GetFloat64("billing.allowance_liters"),
			SurchargeRate:     v.GetFloat64("billing.surcharge_rate"),
			MoraMonthlyRate:   v.GetFloat64("billing.mora_monthly_rate"),
			ReconnectionFee:   v.GetFloat64("billing.reconnection_fee"),
			DueInDays:         v.GetInt("billing.due_in_days"),
			OverdueThreshold:  v.GetInt64("billing.overdue_threshold"),
			CertRetryAttempts: v.GetInt("billing.cert_retry_attempts"),
		},
		Certification: CertificationConfig{
			Enabled:  v.GetBool("certification.enabled"),
			BaseURL:  v.GetString("certification.base_url"),
			APIKey:   v.GetString("certification.api_key"),
			IssuerID: v.GetString("certification.issuer_id"),
			Timeout:  v.GetDuration("certification.timeout"),
		},
		Mail: MailConfig{
			Enabled:  v.GetBool("mail.enabled"),
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			Username: v.GetString("mail.username"),
			Password: v.GetString("mail.password"),
			From:     v.GetString("mail.from"),
		},
		Printing: PrintingConfig{
			TemplateDir: v.GetString("printing.template_dir"),
			OutputDir:   v.GetString("printing.output_dir"),
			PDFEnabled:  v.GetBool("printing.pdf_enabled"),
			PDFTimeout:  v.GetDuration("printing.pdf_timeout"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "agua-loti-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "agua_loti"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.ExpirationHours == 0 {
		cfg.JWT.ExpirationHours = 8
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "agua-loti-backend"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Billing.BaseFee == 0 {
		cfg.Billing.BaseFee = 50
	}
	if cfg.Billing.AllowanceLiters == 0 {
		cfg.Billing.AllowanceLiters = 30000
	}
	if cfg.Billing.SurchargeRate == 0 {
		cfg.Billing.SurchargeRate = 0.10
	}
	if cfg.Billing.MoraMonthlyRate == 0 {
		cfg.Billing.MoraMonthlyRate = 0.07
	}
	if cfg.Billing.ReconnectionFee == 0 {
		cfg.Billing.ReconnectionFee = 125
	}
	if cfg.Billing.DueInDays == 0 {
		cfg.Billing.DueInDays = 30
	}
	if cfg.Billing.OverdueThreshold == 0 {
		cfg.Billing.OverdueThreshold = 2
	}
	if cfg.Billing.CertRetryAttempts == 0 {
		cfg.Billing.CertRetryAttempts = 5
	}
	if cfg.Certification.Timeout == 0 {
		cfg.Certification.Timeout = 10 * time.Second
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Printing.TemplateDir == "" {
		cfg.Printing.TemplateDir = "templates"
	}
	if cfg.Printing.OutputDir == "" {
		cfg.Printing.OutputDir = "tickets"
	}
	if cfg.Printing.PDFTimeout == 0 {
		cfg.Printing.PDFTimeout = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Billing.BaseFee <= 0 || c.Billing.AllowanceLiters <= 0 {
		return fmt.Errorf("billing.base_fee and billing.allowance_liters must be positive")
	}
	if c.Billing.MoraMonthlyRate < 0 || c.Billing.SurchargeRate < 0 {
		return fmt.Errorf("billing rates cannot be negative")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Certification.Enabled && c.Certification.APIKey == "" {
			return fmt.Errorf("certification.api_key is required when certification is enabled in production")
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
