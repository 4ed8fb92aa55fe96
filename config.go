package main

import (
	"strings"

	"github.com/spf13/viper"
)

// Config carries everything read from the environment (or an optional
// config.yaml next to the binary). SMTP settings may be absent; the invite
// email sender treats that as a recoverable condition, not a crash.
type Config struct {
	HTTPAddr    string
	DatabaseDSN string
	AutoMigrate bool
	JWTSecret   string
	FrontendURL string

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPUseTLS    bool
	SMTPFromEmail string
}

func loadConfig() Config {
	v := viper.New()
	v.SetDefault("http_addr", ":8081")
	v.SetDefault("db_dsn", "")
	v.SetDefault("db_auto_migrate", true)
	v.SetDefault("jwt_secret", "dev-insecure-secret-change") // development fallback
	v.SetDefault("frontend_url", "http://localhost:5173")
	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("smtp_use_tls", true)
	v.SetDefault("smtp_from_email", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return Config{
		HTTPAddr:      v.GetString("http_addr"),
		DatabaseDSN:   v.GetString("db_dsn"),
		AutoMigrate:   v.GetBool("db_auto_migrate"),
		JWTSecret:     v.GetString("jwt_secret"),
		FrontendURL:   v.GetString("frontend_url"),
		SMTPHost:      v.GetString("smtp_host"),
		SMTPPort:      v.GetInt("smtp_port"),
		SMTPUsername:  v.GetString("smtp_username"),
		SMTPPassword:  v.GetString("smtp_password"),
		SMTPUseTLS:    v.GetBool("smtp_use_tls"),
		SMTPFromEmail: v.GetString("smtp_from_email"),
	}
}
