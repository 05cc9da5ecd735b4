package service

import (
	"context"

	"github.com/smallbiznis/obtain/internal/notification/domain"
	"github.com/smallbiznis/obtain/internal/providers/email"
)

type templateData struct {
	DisplayName     string
	ReferenceNumber string
}

// EmailSender renders a Message through the email provider using the
// template named after the message kind.
type EmailSender struct {
	provider email.Provider
}

func NewEmailSender(provider email.Provider) domain.Sender {
	return &EmailSender{provider: provider}
}

func (s *EmailSender) Send(ctx context.Context, msg domain.Message) error {
	return s.provider.SendTemplate(ctx, []string{msg.Recipient}, string(msg.Kind), templateData{
		DisplayName:     msg.DisplayName,
		ReferenceNumber: msg.ReferenceNumber,
	})
}
