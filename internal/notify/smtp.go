package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender sends messages as plain-text email.
type SMTPSender struct {
	Host     string
	Port     int // default 587
	From     string
	To       []string
	Password string // empty skips auth
	Subject  string // default "postplan notification"

	// sendMail is smtp.SendMail unless replaced in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (s *SMTPSender) Name() string { return "smtp" }

func (s *SMTPSender) Send(_ context.Context, message string) error {
	if s.Host == "" {
		return fmt.Errorf("smtp sender missing host")
	}
	if s.From == "" {
		return fmt.Errorf("smtp sender missing from address")
	}
	if len(s.To) == 0 {
		return fmt.Errorf("smtp sender missing recipients")
	}

	subject := s.Subject
	if subject == "" {
		subject = "postplan notification"
	}
	port := s.Port
	if port == 0 {
		port = 587
	}
	addr := fmt.Sprintf("%s:%d", s.Host, port)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.From, strings.Join(s.To, ", "), subject, message)

	var auth smtp.Auth
	if s.Password != "" {
		auth = smtp.PlainAuth("", s.From, s.Password, s.Host)
	}

	send := s.sendMail
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(addr, auth, s.From, s.To, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
