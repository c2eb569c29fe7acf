package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/ChimbuezeDavid/TecoTransit-sub000/config"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/consumer"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/dto"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/handler"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/middleware"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/notification"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/payment"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/repository"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/scheduler"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/internal/service"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/pkg/cache"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/pkg/database"
	"github.com/ChimbuezeDavid/TecoTransit-sub000/pkg/rabbitmq"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("failed to load timezone: %v", err)
	}

	db := database.NewPostgresDB(cfg.DSN())

	// Repositories
	ruleRepo := repository.NewPriceRuleRepository(db)
	tripRepo := repository.NewTripRepository(db, cfg.BatchSize)
	bookingRepo := repository.NewBookingRepository(db, cfg.BatchSize)
	reservationRepo := repository.NewReservationRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	tx := repository.NewTransactor(db)

	opts := service.Options{
		ConfirmPendingOnFull: cfg.ConfirmPendingOnFull,
		RetentionDays:        cfg.RetentionDays,
		OpsEmail:             cfg.Mail.OpsEmail,
		Location:             loc,
	}

	// Notifications: queued through RabbitMQ when configured, sent inline otherwise.
	mailSender := notification.NewMailSender(newMailer(ctx, cfg))
	var sender notification.Sender = mailSender
	if cfg.RabbitURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()

		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, cfg.NotificationQueue, "notification.*", 10)
		if err != nil {
			log.Fatalf("failed to create notification consumer: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewNotificationConsumer(mailSender).Start(msgs)
		sender = notification.NewQueueSender(publisher)
	}

	// Payment gateways
	var gateways []payment.Gateway
	if cfg.PaystackSecretKey != "" {
		gateways = append(gateways, payment.NewPaystack(cfg.PaystackSecretKey, cfg.PaystackBaseURL, &http.Client{Timeout: 15 * time.Second}))
	}
	if cfg.StripeSecretKey != "" {
		gateways = append(gateways, payment.NewStripe(cfg.StripeSecretKey))
	}

	var locker service.Locker
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		locker = cache.NewRedisLocker(rdb, "tecotransit:lock:")
	}

	// Services
	resolver := service.NewCapacityResolver(ruleRepo)
	monitor := service.NewConfirmationMonitor(tx, tripRepo, bookingRepo, settingRepo, sender, opts)
	allocator := service.NewAllocator(tx, resolver, tripRepo, bookingRepo, monitor)
	tripSync := service.NewTripSynchronizer(tripRepo, bookingRepo, opts)
	alertSvc := service.NewAlertService(alertRepo, sender, opts)
	bookingSvc := service.NewBookingService(tx, bookingRepo, tripRepo, ruleRepo, allocator, tripSync, alertSvc, sender, opts)
	rescheduler := service.NewRescheduler(tx, tripRepo, bookingRepo, allocator, tripSync, alertSvc, sender, opts)
	ruleSvc := service.NewPriceRuleService(ruleRepo)
	paymentSvc := service.NewPaymentService(
		payment.NewRegistry(gateways...),
		reservationRepo, bookingRepo, ruleRepo, bookingSvc, locker,
		service.PaymentConfig{Currency: cfg.PaymentCurrency, CallbackURL: cfg.PaymentCallback},
		opts,
	)
	cleaner := service.NewCleaner(tripSync, paymentSvc)

	if cfg.SchedulerEnabled {
		sched, err := scheduler.New(scheduler.Config{
			Location:       opts.Location,
			RescheduleCron: cfg.RescheduleCron,
			CleanupCron:    cfg.CleanupCron,
		}, rescheduler, cleaner)
		if err != nil {
			log.Fatalf("failed to create scheduler: %v", err)
		}
		sched.Start()
		defer sched.Shutdown()
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = dto.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())
	e.Use(middleware.Metrics())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "tecotransit"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	public := e.Group("/api/v1")
	admin := e.Group("/api/v1/admin", middleware.BearerSecret(cfg.AdminToken))
	cron := e.Group("/api/v1/cron", middleware.BearerSecret(cfg.CronSecret))

	handler.NewBookingHandler(bookingSvc).RegisterRoutes(public, admin)
	handler.NewPaymentHandler(paymentSvc).RegisterRoutes(public)
	handler.NewAdminHandler(tripRepo, tripSync, rescheduler, ruleSvc, alertSvc, settingRepo).RegisterRoutes(admin)
	handler.NewCronHandler(rescheduler, cleaner).RegisterRoutes(cron)

	go func() {
		log.Printf("TecoTransit starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

// newMailer picks the mail transport. SMTP and SES failures at startup are
// fatal; "log" only prints what would be sent.
func newMailer(ctx context.Context, cfg *config.Config) notification.Mailer {
	switch cfg.Mail.Transport {
	case "smtp":
		m, err := notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUser,
			Password: cfg.Mail.SMTPPassword,
			From:     cfg.Mail.From,
			FromName: cfg.Mail.FromName,
		})
		if err != nil {
			log.Fatalf("failed to configure SMTP: %v", err)
		}
		return m
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("failed to load AWS config: %v", err)
		}
		return notification.NewSESMailer(ses.NewFromConfig(awsCfg), cfg.Mail.From)
	}
	log.Printf("[Mailer] transport %q logs messages only", cfg.Mail.Transport)
	return &notification.LogMailer{}
}
