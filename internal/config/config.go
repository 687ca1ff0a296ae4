package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	SessionSecret       string
	DatabaseURL         string // postgres URL, or "sqlite:<path>" for the embedded driver
	RedisURL            string
	AutoMigrate         bool
	SupabaseURL         string
	SupabaseSecretKey   string // service_role key; signing uploads needs it
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	SendinblueAPIKey    string // empty disables outgoing email
	MailFrom            string
	InviteBaseURL       string
	InviteTokenAttempts int
	CORSAllowMethods    string
	CORSAllowHeaders    string
	CORSExposeHeaders   string
}

// IsProduction reports whether the app runs with production cookies and logging.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAIL_FROM", "noreply@travel.local")
	v.SetDefault("INVITE_BASE_URL", "http://localhost:5173")
	v.SetDefault("INVITE_TOKEN_ATTEMPTS", 5)

	attempts := v.GetInt("INVITE_TOKEN_ATTEMPTS")
	if attempts <= 0 {
		attempts = 5
	}

	return &Config{
		Env:                 v.GetString("APP_ENV"),
		Port:                v.GetString("PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		AutoMigrate:         v.GetBool("AUTO_MIGRATE"),
		SupabaseURL:         v.GetString("SUPABASE_URL"),
		SupabaseSecretKey:   v.GetString("SUPABASE_SECRET_KEY"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   v.GetBool("ALLOW_CROSS_SITE_DEV"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		SendinblueAPIKey:    v.GetString("SENDINBLUE_API_KEY"),
		MailFrom:            v.GetString("MAIL_FROM"),
		InviteBaseURL:       strings.TrimRight(strings.TrimSpace(v.GetString("INVITE_BASE_URL")), "/"),
		InviteTokenAttempts: attempts,
		CORSAllowMethods:    v.GetString("CORS_ALLOW_METHODS"),
		CORSAllowHeaders:    v.GetString("CORS_ALLOW_HEADERS"),
		CORSExposeHeaders:   v.GetString("CORS_EXPOSE_HEADERS"),
	}, nil
}
