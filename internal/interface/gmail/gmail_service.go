package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"flightwatch-service/internal/domain/repository"
	"flightwatch-service/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailSender delivers notification emails through the Gmail API
type GmailSender struct {
	gmailService *gmail.Service
	sender       string
	logger       logger.Logger
}

var _ repository.EmailRepository = (*GmailSender)(nil)

// NewGmailSender creates a sender authorized by tokenSource. sender is the
// From address; the authenticated mailbox is always used to send.
func NewGmailSender(ctx context.Context, tokenSource oauth2.TokenSource, sender string, logger logger.Logger) (*GmailSender, error) {
	return NewGmailSenderWithOptions(ctx, sender, logger, option.WithTokenSource(tokenSource))
}

// NewGmailSenderWithOptions creates a sender from raw client options
func NewGmailSenderWithOptions(ctx context.Context, sender string, logger logger.Logger, opts ...option.ClientOption) (*GmailSender, error) {
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &GmailSender{
		gmailService: service,
		sender:       sender,
		logger:       logger,
	}, nil
}

// SendEmail sends a plain text email
func (s *GmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	raw := buildMessage(s.sender, to, subject, body)

	msg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw)),
	}

	sent, err := s.gmailService.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent",
		"messageID", sent.Id,
		"subject", subject)
	return nil
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}
