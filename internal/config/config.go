package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type FilesConfig struct {
	RootDir string `yaml:"root_dir"`
}

type PaymentConfig struct {
	Gateway           string  `yaml:"gateway"` // razorpay | stripe
	Amount            float64 `yaml:"amount"`  // в основных единицах валюты шлюза
	RazorpayKeyID     string  `yaml:"razorpay_key_id"`
	RazorpayKeySecret string  `yaml:"razorpay_key_secret"`
	StripeSecretKey   string  `yaml:"stripe_secret_key"`
	DryRun            bool    `yaml:"dry_run"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
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
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Payment  PaymentConfig  `yaml:"payment"`
	Telegram TelegramConfig `yaml:"telegram"`
	Files    FilesConfig    `yaml:"files"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	// секреты удобнее держать в окружении; env перекрывает yaml
	overrideString(&cfg.Database.DSN, "DATABASE_URL")
	overrideString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	overrideString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.Payment.Gateway, "PAYMENT_GATEWAY")
	overrideString(&cfg.Payment.RazorpayKeyID, "RAZORPAY_KEY_ID")
	overrideString(&cfg.Payment.RazorpayKeySecret, "RAZORPAY_KEY_SECRET")
	overrideString(&cfg.Payment.StripeSecretKey, "STRIPE_SECRET_KEY")
	overrideString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("PAYMENT_AMOUNT"); v != "" {
		if amount, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Payment.Amount = amount
		}
	}

	if cfg.Files.RootDir == "" {
		cfg.Files.RootDir = "./files"
	}
	return &cfg
}

func overrideString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
