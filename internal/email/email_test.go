package email

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureProvider struct {
	sent []*Email
}

func (p *captureProvider) Send(_ context.Context, e *Email) error {
	p.sent = append(p.sent, e)
	return nil
}

func (p *captureProvider) Validate() error { return nil }

func TestMailer_SendPasswordReset(t *testing.T) {
	provider := &captureProvider{}
	m := NewMailer(provider, NewTemplateManager(), "no-reply@studyzone.app", "https://studyzone.app/reset-password")

	expires := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, m.SendPasswordReset(context.Background(), "ann@x.com", "Ann", "abc123", expires))

	require.Len(t, provider.sent, 1)
	msg := provider.sent[0]
	assert.Equal(t, []string{"ann@x.com"}, msg.To)
	assert.Equal(t, "no-reply@studyzone.app", msg.From)
	assert.Contains(t, msg.HTMLBody, "Hello Ann")
	assert.Contains(t, msg.HTMLBody, "https://studyzone.app/reset-password?token=abc123")
}

func TestTemplateManager_EscapesData(t *testing.T) {
	tm := NewTemplateManager()
	out, err := tm.Render(TemplatePasswordReset, TemplateData{"Name": "<script>"})
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")

	_, err = tm.Render("missing", nil)
	assert.Error(t, err)
}

func TestTemplateManager_LoadTemplatesOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "password_reset.html"), []byte("custom {{.Name}}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	tm := NewTemplateManager()
	require.NoError(t, tm.LoadTemplates(dir))

	out, err := tm.Render(TemplatePasswordReset, TemplateData{"Name": "Bo"})
	require.NoError(t, err)
	assert.Equal(t, "custom Bo", out)
}

func TestSMTPProvider_Validate(t *testing.T) {
	assert.Error(t, NewSMTPProvider(&SMTPConfig{Port: 25}).Validate())
	assert.Error(t, NewSMTPProvider(&SMTPConfig{Host: "smtp", Port: 0}).Validate())
	assert.NoError(t, NewSMTPProvider(&SMTPConfig{Host: "smtp", Port: 587}).Validate())
}
