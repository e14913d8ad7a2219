// Command notifier consumes booking events from RabbitMQ and mails the
// booking's contact address.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"residentbook-backend-go/internal/config"
	"residentbook-backend-go/internal/logging"
	"residentbook-backend-go/internal/notification"
	"residentbook-backend-go/pkg/mailer"
	"residentbook-backend-go/pkg/messagequeue"
)

func main() {
	if os.Getenv("GIN_MODE") != gin.ReleaseMode {
		_ = godotenv.Load()
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}
	zapLogger, err := logging.New(appConfig.IsRelease(), appConfig.LogLevel)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(appConfig, zapLogger); err != nil {
		zapLogger.Fatal("Notifier stopped with error", zap.Error(err))
	}
	zapLogger.Info("Notifier exiting gracefully.")
}

func run(appConfig *config.Config, zapLogger *zap.Logger) error {
	if appConfig.AMQPURL == "" {
		return errors.New("AMQP_URL must be set")
	}

	m, err := mailer.New(mailer.Config{
		Host:     appConfig.SMTPHost,
		Port:     appConfig.SMTPPort,
		Username: appConfig.SMTPUser,
		Password: appConfig.SMTPPass,
		Sender:   appConfig.MailSender,
	})
	if err != nil {
		return err
	}

	mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.AMQPURL}, zapLogger)
	if err != nil {
		return err
	}
	defer mq.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("Notifier consuming booking events", zap.String("queue", appConfig.AMQPQueue))
	return mq.Consume(ctx, appConfig.AMQPQueue, notification.NewMailHandler(m, zapLogger))
}
