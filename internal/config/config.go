package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type WhatsAppConfig struct {
	Token             string `yaml:"token"`
	PhoneNumberID     string `yaml:"phone_number_id"`
	OTPTemplateName   string `yaml:"otp_template_name"`
	AlertTemplateName string `yaml:"alert_template_name"`
	TemplateLanguage  string `yaml:"template_language"` // comma-separated list, first wins
	DryRun            bool   `yaml:"dry_run"`
}

type TelegramConfig struct {
	BotToken      string `yaml:"bot_token"`
	BotUsername   string `yaml:"bot_username"`
	WebhookSecret string `yaml:"webhook_secret"`
	DryRun        bool   `yaml:"dry_run"`
}

type RiskConfig struct {
	// DataURL is the external snapshot source. Empty means "serve yourself":
	// the sweep falls back to <base_url>/api/disease-data.
	DataURL        string `yaml:"data_url"`
	PredictionsURL string `yaml:"predictions_url"`
}

type Config struct {
	Environment string `yaml:"environment"` // "production" or anything else

	Server struct {
		Port    int    `yaml:"port"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`

	Alerts struct {
		OTPSecret          string `yaml:"otp_secret"`
		CronSecret         string `yaml:"cron_secret"`
		DefaultCountryCode string `yaml:"default_country_code"` // e.g. "+91"
	} `yaml:"alerts"`

	JWT struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`

	WhatsApp WhatsAppConfig `yaml:"whatsapp"`
	Telegram TelegramConfig `yaml:"telegram"`
	Risk     RiskConfig     `yaml:"risk"`
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// TemplateLanguageCode: first entry of the configured comma-separated list,
// en_US when empty.
func (w WhatsAppConfig) TemplateLanguageCode() string {
	first := strings.TrimSpace(strings.Split(w.TemplateLanguage, ",")[0])
	if first == "" {
		return "en_US"
	}
	return first
}

// Validate runs once at startup so missing-secret failures happen before any
// user-facing call, not in the middle of a verify or a sweep.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("config: database.url is required")
	}
	if c.Alerts.OTPSecret == "" {
		return fmt.Errorf("config: alerts.otp_secret is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	if c.IsProduction() {
		if c.Alerts.CronSecret == "" {
			return fmt.Errorf("config: alerts.cron_secret is required in production")
		}
		if c.Telegram.BotToken != "" && c.Telegram.WebhookSecret == "" {
			return fmt.Errorf("config: telegram.webhook_secret is required in production")
		}
	}
	if c.Alerts.DefaultCountryCode != "" && !strings.HasPrefix(c.Alerts.DefaultCountryCode, "+") {
		return fmt.Errorf("config: alerts.default_country_code must start with '+'")
	}
	return nil
}

func LoadConfig() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	f, err := os.Open(path)
	if err != nil {
		panic("Failed to open " + path + ": " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse " + path + ": " + err.Error())
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}
	return &cfg
}
