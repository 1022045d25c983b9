package email

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Provider delivers a rendered message.
type Provider interface {
	Send(ctx context.Context, email *Email) error
	Validate() error
}

// TemplateRenderer renders a named template.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
}

// Mailer composes application messages and hands them to a Provider.
type Mailer struct {
	provider     Provider
	renderer     TemplateRenderer
	from         string
	resetURLBase string
}

func NewMailer(provider Provider, renderer TemplateRenderer, from, resetURLBase string) *Mailer {
	return &Mailer{
		provider:     provider,
		renderer:     renderer,
		from:         from,
		resetURLBase: resetURLBase,
	}
}

// SendPasswordReset mails the reset link for token to the account owner.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, name, token string, expires time.Time) error {
	link, err := m.resetLink(token)
	if err != nil {
		return err
	}

	body, err := m.renderer.Render(TemplatePasswordReset, TemplateData{
		"Name":      name,
		"ResetLink": link,
		"ExpiresAt": expires.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}

	return m.provider.Send(ctx, &Email{
		From:     m.from,
		To:       []string{to},
		Subject:  "Reset your StudyZone password",
		HTMLBody: body,
	})
}

func (m *Mailer) resetLink(token string) (string, error) {
	u, err := url.Parse(m.resetURLBase)
	if err != nil {
		return "", fmt.Errorf("parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
