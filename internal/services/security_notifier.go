package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SecurityNotifier surfaces notable security events to the operations team.
// Delivery is best-effort: a failed notification is logged, never returned
// to the login path.
type SecurityNotifier interface {
	NotifyAccountLocked(ctx context.Context, email, ipAddress string, lockedUntil time.Time)
}

// SESSecurityNotifier delivers notifications by email through AWS SES.
type SESSecurityNotifier struct {
	sesClient   *ses.Client
	fromAddress string
	opsAddress  string
	logger      *slog.Logger
}

func NewSESSecurityNotifier(region, fromAddress, opsAddress string, logger *slog.Logger) (*SESSecurityNotifier, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESSecurityNotifier{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		opsAddress:  opsAddress,
		logger:      logger,
	}, nil
}

func (s *SESSecurityNotifier) NotifyAccountLocked(ctx context.Context, email, ipAddress string, lockedUntil time.Time) {
	subject := fmt.Sprintf("Admin account locked: %s", email)
	textBody := fmt.Sprintf(`An administrator account has been locked after repeated failed login attempts.

Account:      %s
Source IP:    %s
Locked until: %s

Review the audit trail for this account before unlocking it.
`, email, ipAddress, lockedUntil.UTC().Format(time.RFC3339))

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.opsAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send lockout notification via SES",
			slog.String("email", email),
			slog.Any("error", err))
		return
	}

	s.logger.Info("lockout notification sent",
		slog.String("email", email),
		slog.String("message_id", *result.MessageId))
}

// NoopSecurityNotifier is used when no notification channel is configured.
type NoopSecurityNotifier struct{}

func (NoopSecurityNotifier) NotifyAccountLocked(context.Context, string, string, time.Time) {}

var (
	_ SecurityNotifier = (*SESSecurityNotifier)(nil)
	_ SecurityNotifier = NoopSecurityNotifier{}
)
