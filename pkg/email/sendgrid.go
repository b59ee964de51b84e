// Package email sends reports through the SendGrid v3 mail API.
package email

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/config"
	"github.com/grocerydesk/grocery-console/pkg/logging"
)

const sendEndpoint = "/v3/mail/send"

// Message is one outgoing email.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentPath string // optional
}

// Result describes what was actually sent.
type Result struct {
	StatusCode         int
	AttachmentIncluded bool
}

// Sender sends email.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*Result, error)
}

type sendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *zap.Logger
}

var _ Sender = (*sendGridSender)(nil)

// NewSendGridSender creates a Sender for the configured account.
// Returns apperrors.ErrNotConfigured when the API key or sender is missing.
func NewSendGridSender(cfg *config.EmailConfig, logger *zap.Logger) (Sender, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("email: %w (set SENDGRID_API_KEY and SENDER_EMAIL)", apperrors.ErrNotConfigured)
	}

	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	client.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + sendEndpoint

	return &sendGridSender{
		client: client,
		from:   mail.NewEmail(cfg.SenderName, cfg.SenderEmail),
		logger: logger.Named("email"),
	}, nil
}

// Send delivers msg. An attachment path that does not exist is logged and the
// email goes out without it.
func (s *sendGridSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, fmt.Errorf("recipient is required")
	}

	m := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail("", msg.To), msg.Body, "")

	result := &Result{}
	if msg.AttachmentPath != "" {
		attachment, err := loadAttachment(msg.AttachmentPath)
		switch {
		case err == nil:
			m.AddAttachment(attachment)
			result.AttachmentIncluded = true
			s.logger.Debug("Attached file", zap.String("path", msg.AttachmentPath))
		case errors.Is(err, os.ErrNotExist):
			s.logger.Warn("Attachment not found, sending without it",
				zap.String("path", msg.AttachmentPath))
		default:
			return nil, err
		}
	}

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to call sendgrid: %w", err)
	}
	result.StatusCode = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("SendGrid returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", logging.TruncateString(resp.Body, logging.MaxBodyLogLength)))
		return result, fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}

	s.logger.Info("Email sent",
		zap.String("to", msg.To),
		zap.Int("status", resp.StatusCode),
		zap.Bool("attachment", result.AttachmentIncluded))

	return result, nil
}

func loadAttachment(path string) (*mail.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}

	a := mail.NewAttachment()
	a.SetContent(base64.StdEncoding.EncodeToString(data))
	a.SetType("application/octet-stream")
	a.SetFilename(filepath.Base(path))
	a.SetDisposition("attachment")
	return a, nil
}
