package config

import (
	"crypto/tls"
	"errors"
	"sync"

	mail "github.com/go-mail/mail/v2"
)

// ErrMailerNotConfigured is returned by SendMail when SMTP_HOST or SMTP_FROM is empty.
var ErrMailerNotConfigured = errors.New("smtp not configured (SMTP_HOST/SMTP_FROM)")

type mailerSettings struct {
	host          string
	port          int
	user          string
	pass          string
	from          string
	skipTLSVerify bool
}

var (
	mailerMu sync.RWMutex
	mailer   mailerSettings
)

// ConfigureMailer stores the SMTP settings used by SendMail.
func ConfigureMailer(cfg Config) {
	mailerMu.Lock()
	defer mailerMu.Unlock()
	mailer = mailerSettings{
		host:          cfg.SMTPHost,
		port:          cfg.SMTPPort,
		user:          cfg.SMTPUser,
		pass:          cfg.SMTPPass,
		from:          cfg.SMTPFrom,
		skipTLSVerify: cfg.SMTPSkipTLSVerify,
	}
	if mailer.port == 0 {
		mailer.port = 587
	}
}

func SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}

	mailerMu.RLock()
	settings := mailer
	mailerMu.RUnlock()

	if settings.host == "" || settings.from == "" {
		return ErrMailerNotConfigured
	}

	m := mail.NewMessage()
	m.SetHeader("From", settings.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(settings.host, settings.port, settings.user, settings.pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         settings.host,
		InsecureSkipVerify: settings.skipTLSVerify, // dev only
	}

	return d.DialAndSend(m)
}
