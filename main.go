package main

import (
	"context"
	"log"
	"net/http"

	"wallet-service/internal/availability"
	"wallet-service/internal/config"
	"wallet-service/internal/db"
	"wallet-service/internal/kafka"
	"wallet-service/internal/logging"
	"wallet-service/internal/metrics"
	"wallet-service/internal/notify"
	"wallet-service/internal/webhook"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	cfg := config.MustLoadConfig("./config")

	logger := logging.GetLogger(cfg.Logs)
	metrics.Setup(cfg.Metrics)

	connStr := db.GetConnStr()
	db.RunMigrations(connStr, "./migrations")

	pool, err := db.GetPool(connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	profileRepo := db.NewProfileRepository(pool)
	paymentRepo := db.NewPaymentRepository(pool)
	notificationRepo := db.NewNotificationRepository(pool)

	fundedWriter := kafka.NewWriter(cfg.Kafka, cfg.Kafka.Topic.WalletFundedEvents)
	defer fundedWriter.Close()

	publisher := kafka.NewFundedEventPublisher(fundedWriter)

	webhookSecret := []byte(config.GetRequired("PAYSTACK_SECRET_KEY"))
	webhookProcessor := webhook.NewProcessor(profileRepo, paymentRepo, publisher, logger)
	webhookHandler := webhook.NewHandler(webhookProcessor, webhookSecret, logger)

	checker := availability.NewChecker(profileRepo, logger)
	availabilityHandler := availability.NewHandler(checker, logger)

	consumer := notify.NewConsumer(notificationRepo, logger)
	fundedReader := kafka.NewReader(cfg.Kafka.Broker.URL, cfg.Kafka.Topic.WalletFundedEvents, cfg.Kafka.Reader.GroupID)
	defer fundedReader.Close()
	kafka.ReadWalletFundedEvents(fundedReader, consumer, logger)

	notificationWriter := kafka.NewWriter(cfg.Kafka, cfg.Kafka.Topic.FundingNotifications)
	defer notificationWriter.Close()

	producer := notify.NewProducer(notificationRepo, notificationWriter, cfg.Notify.Producer, logger)
	producer.Start(context.Background())

	sender := notify.NewSender(cfg.Notify.Sender, logger)
	deliveryProcessor := notify.NewProcessor(notificationRepo, sender, cfg.Notify.Processor, logger)

	notificationReader := kafka.NewReader(cfg.Kafka.Broker.URL, cfg.Kafka.Topic.FundingNotifications, cfg.Kafka.Reader.GroupID)
	defer notificationReader.Close()
	kafka.ReadNotificationMessages(notificationReader, deliveryProcessor, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /liveness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/webhook/paystack", webhookHandler)
	mux.Handle("/availability", availabilityHandler)

	logger.Info("Starting server", "port", cfg.Server.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Server.Port, mux))
}
