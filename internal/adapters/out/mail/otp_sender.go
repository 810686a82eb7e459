// Package mail sends delivery codes to customers over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"fulfillment/internal/core/domain/model/order"

	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

var otpBody = template.Must(template.New("otp").Parse(
	"Your delivery code is {{.Code}}.\n\n" +
		"Give it to the courier when your order arrives. It expires in {{.Minutes}} minutes.\n",
))

// OtpSender implements ports.OtpSender.
type OtpSender struct {
	dialer dialer
	from   string
}

func NewOtpSender(cfg Config) *OtpSender {
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	return &OtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

// SendDeliveryOtp blocks until the SMTP server accepted the message. gomail has no
// context support, so a cancelled ctx is only checked before dialing.
func (s *OtpSender) SendDeliveryOtp(ctx context.Context, email string, code string) error {
	if email == "" {
		return errors.New("recipient address is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	err := otpBody.Execute(&body, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: int(order.DeliveryOtpTTL.Minutes())})
	if err != nil {
		return fmt.Errorf("render delivery code: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Your delivery code")
	msg.SetBody("text/plain", body.String())

	if err = s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
