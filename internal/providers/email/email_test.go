package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type templateData struct {
	DisplayName     string
	ReferenceNumber string
}

func TestRenderKnownTemplates(t *testing.T) {
	subject, body, err := render("payment_request", templateData{DisplayName: "Ada", ReferenceNumber: "APP-20250101000000-ABCDEFGH"})
	require.NoError(t, err)
	assert.Equal(t, "Your tool is ready to go live", subject)
	assert.Contains(t, body, "Hi Ada,")
	assert.Contains(t, body, "APP-20250101000000-ABCDEFGH")

	subject, _, err = render("submission_received", templateData{DisplayName: "<b>x</b>"})
	require.NoError(t, err)
	assert.Equal(t, "We received your tool submission", subject)
}

func TestRenderEscapesHTML(t *testing.T) {
	_, body, err := render("submission_received", templateData{DisplayName: "<script>"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := render("nope", nil)
	assert.Error(t, err)
}

func TestLogProviderLogsDelivery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p := NewLogProvider(zap.New(core))

	err := p.SendTemplate(context.Background(), []string{"a@x.com"}, "submission_received", templateData{DisplayName: "A"})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "a@x.com", logs.All()[0].ContextMap()["to"])
}

func TestSMTPSendRejectsCancelledContext(t *testing.T) {
	p := NewSMTP(Config{Host: "127.0.0.1", Port: 1, From: "no-reply@obtain.ai"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Send(ctx, []string{"a@x.com"}, "s", "b")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMessageIDUsesSenderDomain(t *testing.T) {
	id := messageID("Obtain <no-reply@obtain.ai>")
	assert.True(t, strings.HasPrefix(id, "<"))
	assert.True(t, strings.HasSuffix(id, "@obtain.ai>"))
	assert.NotEqual(t, id, messageID("no-reply@obtain.ai"))

	assert.True(t, strings.HasSuffix(messageID(""), "@localhost>"))
}
