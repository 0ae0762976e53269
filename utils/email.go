package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/RaviiSharma/Amazon-Clone/models"
	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sony/gobreaker/v2"
)

// Mailer delivers a single message.
type Mailer interface {
	Send(toEmail, subject, htmlContent string) error
}

// NewMailer picks the provider named in cfg. An empty provider logs
// messages instead of sending them.
func NewMailer(cfg *Config, logger *slog.Logger) (Mailer, error) {
	var m Mailer
	switch cfg.EmailProvider {
	case "postmark":
		if cfg.PostmarkToken == "" {
			return nil, errors.New("POSTMARK_API_TOKEN is not set")
		}
		m = &postmarkMailer{client: postmark.NewClient(cfg.PostmarkToken, ""), from: cfg.EmailSender}
	case "sendgrid":
		if cfg.SendgridKey == "" {
			return nil, errors.New("SENDGRID_API_KEY is not set")
		}
		m = &sendgridMailer{client: sendgrid.NewSendClient(cfg.SendgridKey), from: cfg.EmailSender}
	case "":
		return &logMailer{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
	}
	return NewBreakerMailer(m, cfg.EmailProvider, logger), nil
}

type postmarkMailer struct {
	client *postmark.Client
	from   string
}

func (pm *postmarkMailer) Send(toEmail, subject, htmlContent string) error {
	_, err := pm.client.SendEmail(postmark.Email{
		From:     pm.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type sendgridMailer struct {
	client *sendgrid.Client
	from   string
}

func (sm *sendgridMailer) Send(toEmail, subject, htmlContent string) error {
	message := mail.NewSingleEmail(mail.NewEmail("", sm.from), subject, mail.NewEmail("", toEmail), htmlContent, htmlContent)
	resp, err := sm.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("failed to send email: sendgrid status %d", resp.StatusCode)
	}
	return nil
}

type logMailer struct {
	logger *slog.Logger
}

func (lm *logMailer) Send(toEmail, subject, _ string) error {
	lm.logger.Info("email not sent, no provider configured", "to", toEmail, "subject", subject)
	return nil
}

// BreakerMailer stops calling a failing provider for a while instead of
// piling up slow requests.
type BreakerMailer struct {
	next Mailer
	cb   *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerMailer(next Mailer, name string, logger *slog.Logger) *BreakerMailer {
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "mailer-" + name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("mailer circuit state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerMailer{next: next, cb: cb}
}

func (bm *BreakerMailer) Send(toEmail, subject, htmlContent string) error {
	_, err := bm.cb.Execute(func() (struct{}, error) {
		return struct{}{}, bm.next.Send(toEmail, subject, htmlContent)
	})
	return err
}

// SendWelcomeEmail greets a newly registered user.
func SendWelcomeEmail(m Mailer, user *models.User) error {
	subject := "Welcome to Amazon-Clone"
	htmlContent := fmt.Sprintf("<strong>Hi %s,</strong><br><br>Your account has been created. Happy shopping!", user.FName)
	return m.Send(user.Email, subject, htmlContent)
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func SendOrderConfirmationEmail(m Mailer, toEmail string, order *models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Items: <strong>%d</strong><br>Total Amount: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.ID.Hex(),
		order.TotalQuantity,
		order.TotalPrice.StringFixed(2),
	)
	return m.Send(toEmail, subject, htmlContent)
}
