package main

import (
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"fraud-risk-engine/cmd/notifier/handlers"
	"fraud-risk-engine/cmd/notifier/templates"
	"fraud-risk-engine/pkg/config"
	"fraud-risk-engine/pkg/health"
	"fraud-risk-engine/pkg/logger"
	"fraud-risk-engine/pkg/messaging"
)

// main initializes and starts the notification service: a RabbitMQ
// consumer that fans out risk.detected events to email/SMS/push, plus a
// liveness-only gRPC health endpoint so it fits the same orchestration
// conventions as risk-engine.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logConfig := logger.LogConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	}
	nl := logger.New(logConfig)

	nl.Info("Starting Notification Service...")
	nl.Info("Email Provider", "provider", cfg.EmailProvider)
	nl.Info("SMS Provider", "provider", cfg.SMSProvider)
	nl.Info("Push Provider", "provider", cfg.PushProvider)

	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	if err := rabbitMQ.DeclareQueue("risk.detected"); err != nil {
		nl.Fatalf("Failed to declare queue risk.detected: %v", err)
	}

	templ := templates.NewEmailTemplateManager(cfg.TemplatesDirectoryPath)

	notificationHandler := handlers.NewNotificationHandler(rabbitMQ, cfg, templ, nl)
	notificationHandler.StartMessageConsumer()

	lis, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		nl.Fatalf("Failed to listen: %v", err)
	}

	s := grpc.NewServer()
	health.RegisterHealthServiceWithDefaults(s, "notification.NotificationService")

	go func() {
		nl.Info("Notification service health endpoint listening", "port", cfg.Port)
		if err := s.Serve(lis); err != nil {
			nl.Fatalf("Failed to serve: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	nl.Warn("Shutting down notification service...")
	s.GracefulStop()
}
