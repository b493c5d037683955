package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MySQLDSN  string
	RedisURL  string
	JWTSecret string
	Port      string

	// SMS gateway (form-encoded POST, basic auth)
	SMSAccountSID  string
	SMSAuthToken   string
	SMSFromNumber  string
	SMSGatewayURL  string
	SMSCallbackURL string

	// Mail
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	MailFrom string

	// Operator alerts (optional)
	DiscordToken     string
	DiscordChannelID string

	// Job/scheduler tuning
	QueueWorkers     int
	JobMaxAttempts   int
	AnalyticsEvery   time.Duration
	LifecycleHour    int
	DeliveryTimeout  time.Duration
	DeliveryAttempts int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("bad %s: %v", key, err)
	}
	return n
}

func Load() Config {
	// local dev convenience; absent .env is fine
	_ = godotenv.Load()

	return Config{
		MySQLDSN:  getenv("MYSQL_DSN", "sauti:sauti@tcp(127.0.0.1:3306)/sauti?parseTime=true"),
		RedisURL:  getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		JWTSecret: getenv("JWT_SECRET", ""),
		Port:      getenv("PORT", "8080"),

		SMSAccountSID:  os.Getenv("SMS_ACCOUNT_SID"),
		SMSAuthToken:   os.Getenv("SMS_AUTH_TOKEN"),
		SMSFromNumber:  os.Getenv("SMS_FROM_NUMBER"),
		SMSGatewayURL:  os.Getenv("SMS_GATEWAY_URL"),
		SMSCallbackURL: os.Getenv("SMS_STATUS_CALLBACK"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getenv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: getenv("MAIL_FROM", "no-reply@sauti.go.ke"),

		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_ALERT_CHANNEL"),

		QueueWorkers:     getint("QUEUE_WORKERS", 4),
		JobMaxAttempts:   getint("JOB_MAX_ATTEMPTS", 5),
		AnalyticsEvery:   time.Duration(getint("ANALYTICS_INTERVAL_SEC", 300)) * time.Second,
		LifecycleHour:    getint("LIFECYCLE_HOUR_UTC", 0),
		DeliveryTimeout:  time.Duration(getint("DELIVERY_TIMEOUT_SEC", 30)) * time.Second,
		DeliveryAttempts: getint("DELIVERY_ATTEMPTS", 3),
	}
}
