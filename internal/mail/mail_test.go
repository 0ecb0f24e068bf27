package mail

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestSMTPSender_SendPasswordReset(t *testing.T) {
	d := &recordingDialer{}
	s := NewSMTPSenderWithDialer(d, "FoodAI <no-reply@foodai.app>")

	err := s.SendPasswordReset(context.Background(), "a@b.com", "https://foodai.app/auth/reset-password?token=tok123", 30*time.Minute)
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"a@b.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Reset your FoodAI password"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "reset-password")
	assert.Contains(t, buf.String(), "tok123")
	assert.Contains(t, buf.String(), "30m0s")
}

func TestSMTPSender_DialFailure(t *testing.T) {
	d := &recordingDialer{err: errors.New("connection refused")}
	s := NewSMTPSenderWithDialer(d, "no-reply@foodai.app")

	err := s.SendPasswordReset(context.Background(), "a@b.com", "https://x", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	d := &recordingDialer{}
	s := NewSMTPSenderWithDialer(d, "no-reply@foodai.app")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SendPasswordReset(ctx, "a@b.com", "https://x", time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, d.sent)
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, s.SendPasswordReset(context.Background(), "a@b.com", "https://x/reset", time.Minute))
	assert.Contains(t, buf.String(), "https://x/reset")
}
