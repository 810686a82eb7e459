package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestOtpSender_SendDeliveryOtp(t *testing.T) {
	d := &fakeDialer{}
	sender := &OtpSender{dialer: d, from: "Fulfillment <noreply@example.com>"}

	require.NoError(t, sender.SendDeliveryOtp(t.Context(), "ana@example.com", "4821"))

	require.Len(t, d.sent, 1)
	msg := d.sent[0]
	assert.Equal(t, []string{"ana@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Fulfillment <noreply@example.com>"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"Your delivery code"}, msg.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err := msg.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Your delivery code is 4821.")
	assert.Contains(t, raw.String(), "expires in 5 minutes")
}

func TestOtpSender_SendDeliveryOtp_Failures(t *testing.T) {
	t.Run("empty recipient", func(t *testing.T) {
		d := &fakeDialer{}
		err := (&OtpSender{dialer: d}).SendDeliveryOtp(t.Context(), "", "4821")
		require.Error(t, err)
		assert.Empty(t, d.sent)
	})

	t.Run("smtp error", func(t *testing.T) {
		d := &fakeDialer{err: errors.New("535 authentication failed")}
		err := (&OtpSender{dialer: d}).SendDeliveryOtp(t.Context(), "ana@example.com", "4821")
		require.EqualError(t, err, "smtp send: 535 authentication failed")
	})

	t.Run("cancelled context", func(t *testing.T) {
		d := &fakeDialer{}
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := (&OtpSender{dialer: d}).SendDeliveryOtp(ctx, "ana@example.com", "4821")
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, d.sent)
	})
}

func TestNewOtpSender_FormatsSender(t *testing.T) {
	sender := NewOtpSender(Config{Host: "smtp.example.com", Port: 587, From: "noreply@example.com", FromName: "Fulfillment"})
	assert.Equal(t, "Fulfillment <noreply@example.com>", sender.from)
}
