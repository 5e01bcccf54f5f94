package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	notification_models "fraud-risk-engine/cmd/notifier/models"
	"fraud-risk-engine/cmd/notifier/providers"
	"fraud-risk-engine/cmd/notifier/templates"
	"fraud-risk-engine/pkg/config"
	"fraud-risk-engine/pkg/logger"
	"fraud-risk-engine/pkg/messaging"
	"fraud-risk-engine/pkg/models"
)

// NotificationHandler consumes risk.detected events off the message
// queue and fans each one out to every configured delivery channel. It
// is the downstream collaborator spec.md §4.8 step 8 describes: the
// Evaluator's high-risk emission is fire-and-forget from its own
// perspective, and this handler is what actually turns that event into
// an email/SMS/push alert.
type NotificationHandler struct {
	messageQueue    *messaging.RabbitMQ
	config          *config.Config
	emailProvider   providers.EmailProvider
	smsProvider     providers.SMSProvider
	pushProvider    providers.PushProvider
	templateManager *templates.EmailTemplateManager
	logger          *logger.Logger
}

// NewNotificationHandler creates a new notification handler with the provided dependencies.
// initializes all notification providers based on configuration settings.
func NewNotificationHandler(
	messageQueue *messaging.RabbitMQ,
	cfg *config.Config,
	templateManager *templates.EmailTemplateManager,
	appLogger *logger.Logger,
) *NotificationHandler {
	handler := &NotificationHandler{
		messageQueue:    messageQueue,
		config:          cfg,
		templateManager: templateManager,
		logger:          appLogger,
	}

	handler.initializeProviders()
	return handler
}

// initializeProviders configures email, SMS, and push notification providers based on config.
// falls back to simulation providers when real providers are not properly configured.
func (h *NotificationHandler) initializeProviders() {
	switch h.config.EmailProvider {
	case "SENDGRID":
		if h.config.SendGridAPIKey != "" {
			h.emailProvider = providers.NewSendGridProvider(
				h.config.SendGridAPIKey,
				h.config.SendGridFromEmail,
				h.config.SendGridFromName,
			)
			h.logger.Info("Email provider initialized: SendGrid")
		} else {
			h.logger.Warn("SendGrid API key not configured, falling back to simulation")
			h.emailProvider = providers.NewSimulateEmailProvider()
		}
	default:
		h.emailProvider = providers.NewSimulateEmailProvider()
		h.logger.Info("Email provider initialized: Simulate")
	}

	switch h.config.SMSProvider {
	case "TWILIO":
		if h.config.TwilioAccountSID != "" && h.config.TwilioAuthToken != "" {
			twilioProvider := providers.NewTwilioProvider(
				h.config.TwilioAccountSID,
				h.config.TwilioAuthToken,
				h.config.TwilioFromNumber,
			)
			if twilioProvider != nil {
				h.smsProvider = twilioProvider
				h.logger.Info("SMS provider initialized: Twilio")
			} else {
				h.smsProvider = providers.NewSimulateSMSProvider()
				h.logger.Warn("Twilio not configured properly, using simulation")
			}
		} else {
			h.smsProvider = providers.NewSimulateSMSProvider()
			h.logger.Warn("Twilio credentials not configured, using simulation")
		}
	default:
		h.smsProvider = providers.NewSimulateSMSProvider()
		h.logger.Info("SMS provider initialized: Simulate")
	}

	h.pushProvider = providers.NewSimulatePushProvider()
	h.logger.Info("Push provider: Simulate")
}

// determineChannels selects the delivery channels for a risk alert.
// A block decision fans out across every channel for redundancy; a
// review decision is email-only so a human has time to look before a
// caller's phone lights up.
func (h *NotificationHandler) determineChannels(decision string) []string {
	if decision == "block" {
		return []string{
			notification_models.ChannelEmail,
			notification_models.ChannelSMS,
			notification_models.ChannelPush,
		}
	}
	return []string{notification_models.ChannelEmail}
}

func (h *NotificationHandler) sendNotificationByChannel(ctx context.Context, notification *notification_models.Notification) error {
	switch notification.Channel {
	case notification_models.ChannelEmail:
		return h.sendEmailNotification(ctx, notification)
	case notification_models.ChannelSMS:
		return h.sendSMSNotification(ctx, notification)
	case notification_models.ChannelPush:
		return h.sendPushNotification(ctx, notification)
	default:
		return fmt.Errorf("unsupported notification channel: %s", notification.Channel)
	}
}

func (h *NotificationHandler) sendEmailNotification(ctx context.Context, notification *notification_models.Notification) error {
	templateData := templates.EmailTemplateData{
		UserID:    notification.UserID,
		Email:     notification.Email,
		Reason:    notification.Message,
		RiskLevel: notification.Type,
	}

	subject, htmlBody, err := h.templateManager.RenderTemplate("risk_alert", templateData)
	if err != nil {
		return err
	}

	notification.Provider = h.emailProvider.GetProviderName()

	if err := h.emailProvider.SendEmail(notification.Email, subject, htmlBody, map[string]interface{}{
		"template": "risk_alert",
		"user_id":  notification.UserID,
	}); err != nil {
		h.logger.ErrorCtx(ctx, "Email sending failed", err,
			"provider", notification.Provider,
		)
		return err
	}

	h.logger.InfoCtx(ctx, "Email sent successfully",
		"provider", notification.Provider,
		"subject", subject,
	)
	return nil
}

func (h *NotificationHandler) sendSMSNotification(ctx context.Context, notification *notification_models.Notification) error {
	message := notification.Message
	if len(message) > 140 {
		message = message[:137] + "..."
	}
	notification.Provider = h.smsProvider.GetProviderName()
	return h.smsProvider.SendSMS(notification.Phone, message)
}

func (h *NotificationHandler) sendPushNotification(ctx context.Context, notification *notification_models.Notification) error {
	data := map[string]interface{}{
		"type":    notification.Type,
		"user_id": notification.UserID,
	}
	notification.Provider = h.pushProvider.GetProviderName()
	return h.pushProvider.SendPush(notification.UserID, "Fraud Risk Alert", notification.Message, data)
}

// StartMessageConsumer subscribes to the risk.detected queue. Consumption
// runs for the lifetime of the process; a handler error is logged but
// does not stop the consumer loop, since one malformed or undeliverable
// alert should never take down the whole notification pipeline.
func (h *NotificationHandler) StartMessageConsumer() {
	go func() {
		h.logger.Info("Starting risk.detected queue consumer...")
		if err := h.messageQueue.Consume("risk.detected", h.handleRiskDetectedEvent); err != nil {
			h.logger.Error("Error consuming risk.detected queue", err)
		}
	}()
}

// handleRiskDetectedEvent processes a single high-risk evaluation event,
// rendering and delivering an alert across every channel the decision
// warrants.
func (h *NotificationHandler) handleRiskDetectedEvent(data []byte) error {
	var event models.RiskDetectedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to unmarshal risk detected event: %w", err)
	}

	h.logger.Info("Processing risk detected event",
		"evaluation_id", event.EvaluationID,
		"risk_score", event.RiskScore,
		"decision", event.Decision,
	)

	notification := &notification_models.Notification{
		ID:        uuid.New().String(),
		UserID:    event.UserID,
		Type:      notification_models.NotificationTypeRiskDetected,
		Message:   fmt.Sprintf("Evaluation %s scored %d (%s): %s", event.EvaluationID, event.RiskScore, event.Decision, strings.Join(event.Flags, ", ")),
		Email:     event.Email,
		Status:    notification_models.NotificationStatusPending,
		CreatedAt: time.Now(),
	}

	ctx := context.WithValue(context.Background(), "user_id", event.UserID)

	channels := h.determineChannels(event.Decision)
	success := true
	for _, channel := range channels {
		notification.Channel = channel
		if notification.Email == "" && channel == notification_models.ChannelEmail {
			continue
		}
		if notification.Phone == "" && channel == notification_models.ChannelSMS {
			continue
		}
		if err := h.sendNotificationByChannel(ctx, notification); err != nil {
			h.logger.ErrorCtx(ctx, "Failed to send notification", err,
				"channel", channel,
				"notification_id", notification.ID,
			)
			success = false
		}
	}

	if success {
		now := time.Now()
		notification.Status = notification_models.NotificationStatusSent
		notification.SentAt = &now
		h.logger.InfoCtx(ctx, "Risk alert notifications sent successfully",
			"notification_id", notification.ID,
			"channels", channels,
		)
	} else {
		notification.Status = notification_models.NotificationStatusFailed
	}

	return nil
}
