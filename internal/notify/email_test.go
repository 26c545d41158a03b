package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogSender_LogsAndSucceeds(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))

	err := sender.Send(context.Background(), EmailMessage{To: "a@b.com", Subject: "hello", Body: "body"})
	require.NoError(t, err)

	entries := logs.FilterField(zap.String("to", "a@b.com")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].ContextMap()["subject"])
}

func TestNewSendGridSender_RequiresKey(t *testing.T) {
	_, err := NewSendGridSender(SendGridConfig{FromEmail: "x@y.com"}, zap.NewNop())
	assert.Error(t, err)

	s, err := NewSendGridSender(SendGridConfig{APIKey: "SG.test", FromEmail: "x@y.com"}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestNewSMTPSender(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{}, zap.NewNop())
	assert.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 2525, Username: "bot@example.com"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "bot@example.com", s.from)
}

func TestSMTPSender_HonoursContext(t *testing.T) {
	// Port 1 on localhost refuses or hangs; either way Send must not outlive ctx.
	s, err := NewSMTPSender(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "bot@example.com"}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Send(ctx, EmailMessage{To: "a@b.com", Subject: "s", Body: "b"})
	assert.Error(t, err)
}
