package util

import (
	"github.com/knadh/koanf/v2"
	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host           string
	Port           int
	SenderName     string
	SenderEmail    string
	SenderPassword string
}

func NewSMTPConfig(config *koanf.Koanf) SMTPConfig {
	return SMTPConfig{
		Host:           config.String("SMTP_HOST"),
		Port:           config.Int("SMTP_PORT"),
		SenderName:     config.String("SENDER_NAME"),
		SenderEmail:    config.String("SENDER_EMAIL"),
		SenderPassword: config.String("SENDER_PASSWORD"),
	}
}

func SendEmail(smtp SMTPConfig, receiverEmail string, subject string, body string) error {
	mailer := gomail.NewMessage()
	mailer.SetAddressHeader("From", smtp.SenderEmail, smtp.SenderName)
	mailer.SetHeader("To", receiverEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)

	dialer := gomail.NewDialer(
		smtp.Host,
		smtp.Port,
		smtp.SenderEmail,
		smtp.SenderPassword,
	)

	err := dialer.DialAndSend(mailer)
	if err != nil {
		return err
	}

	return nil
}
