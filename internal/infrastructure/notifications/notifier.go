package notifications

import (
	"fmt"
	"net/smtp"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/291e/bogofit-verify/domain"
)

// NotifierImpl implements domain.NotificationService: Twilio for SMS, plain
// SMTP for email. Transports receive only the destination and the templated
// message body; challenge internals never reach them.
type NotifierImpl struct {
	client     *twilio.RestClient
	fromNumber string

	smtpHost     string
	smtpPort     int
	smtpUsername string
	smtpPassword string
	smtpFrom     string
}

// TwilioParams holds SMS transport credentials.
type TwilioParams struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// SMTPParams holds email transport settings.
type SMTPParams struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewNotifier creates a notification service over Twilio and SMTP.
func NewNotifier(twilioParams TwilioParams, smtpParams SMTPParams) domain.NotificationService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: twilioParams.AccountSID,
		Password: twilioParams.AuthToken,
	})

	return &NotifierImpl{
		client:       client,
		fromNumber:   twilioParams.FromNumber,
		smtpHost:     smtpParams.Host,
		smtpPort:     smtpParams.Port,
		smtpUsername: smtpParams.Username,
		smtpPassword: smtpParams.Password,
		smtpFrom:     smtpParams.From,
	}
}

// SendSMS implements domain.NotificationService.
func (n *NotifierImpl) SendSMS(to, message string) error {
	// If credentials are not configured, log instead of sending
	if n.fromNumber == "" {
		fmt.Printf("[MOCK SMS] To: %s, Message: %s\n", to, message)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.fromNumber)
	params.SetBody(message)

	_, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	return nil
}

// SendEmail implements domain.NotificationService.
func (n *NotifierImpl) SendEmail(to, subject, body string) error {
	// If the SMTP host is not configured, log instead of sending
	if n.smtpHost == "" {
		fmt.Printf("[MOCK EMAIL] To: %s, Subject: %s, Body: %s\n", to, subject, body)
		return nil
	}

	msg := []byte("From: " + n.smtpFrom + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", n.smtpHost, n.smtpPort)
	auth := smtp.PlainAuth("", n.smtpUsername, n.smtpPassword, n.smtpHost)

	if err := smtp.SendMail(addr, auth, n.smtpFrom, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// Compile-time interface compliance verification
var _ domain.NotificationService = (*NotifierImpl)(nil)
