package config

import (
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`
	Timezone   string `env:"APP_TIMEZONE" env-default:"Africa/Lagos"`

	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"postgres"`
	DBPassword string `env:"DB_PASSWORD" env-default:"postgres"`
	DBName     string `env:"DB_NAME" env-default:"tecotransit"`
	DBSSLMode  string `env:"DB_SSLMODE" env-default:"disable"`

	RabbitURL         string `env:"RABBITMQ_URL"`
	NotificationQueue string `env:"NOTIFICATION_QUEUE" env-default:"tecotransit.notifications"`
	RedisAddr         string `env:"REDIS_ADDR"`
	RedisPassword     string `env:"REDIS_PASSWORD"`

	Mail MailConfig

	AWSRegion string `env:"AWS_REGION" env-default:"eu-west-1"`

	PaystackSecretKey string `env:"PAYSTACK_SECRET_KEY"`
	PaystackBaseURL   string `env:"PAYSTACK_BASE_URL" env-default:"https://api.paystack.co"`
	StripeSecretKey   string `env:"STRIPE_SECRET_KEY"`
	PaymentCurrency   string `env:"PAYMENT_CURRENCY" env-default:"NGN"`
	PaymentCallback   string `env:"PAYMENT_CALLBACK_URL" env-default:"http://localhost:3000/payment/callback"`

	CronSecret string `env:"CRON_SECRET"`
	AdminToken string `env:"ADMIN_TOKEN"`

	ConfirmPendingOnFull bool `env:"CONFIRM_PENDING_ON_FULL" env-default:"false"`
	RetentionDays        int  `env:"RETENTION_DAYS" env-default:"7"`
	BatchSize            int  `env:"BATCH_SIZE" env-default:"500"`

	SchedulerEnabled bool   `env:"SCHEDULER_ENABLED" env-default:"false"`
	RescheduleCron   string `env:"RESCHEDULE_CRON" env-default:"5 0 * * *"`
	CleanupCron      string `env:"CLEANUP_CRON" env-default:"30 0 * * *"`
}

type MailConfig struct {
	Transport    string `env:"MAIL_TRANSPORT" env-default:"log"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUser     string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	From         string `env:"MAIL_FROM" env-default:"bookings@tecotransit.local"`
	FromName     string `env:"MAIL_FROM_NAME" env-default:"TecoTransit"`
	OpsEmail     string `env:"OPS_EMAIL" env-default:"ops@tecotransit.local"`
}

// Load reads .env (if any) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] no .env file loaded: %v", err)
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}
	return cfg
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Location resolves APP_TIMEZONE against the embedded tz database. The
// scheduler hands the zone name to cron as CRON_TZ, so an unnamed fixed
// offset is never returned.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
