// Package email sends interview-booking notifications over SMTP.
package email

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/config"
)

type Sender struct {
	cfg    config.SMTPConfig
	logger *log.Logger
	send   func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewSender(cfg config.SMTPConfig, logger *log.Logger) *Sender {
	if logger == nil {
		logger = log.Default()
	}
	return &Sender{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// SendInterviewNotifications mails the candidate confirmation and the
// team notification. Failures are logged per recipient; notifications are
// best-effort and never fail the booking.
func (s *Sender) SendInterviewNotifications(fullName, candidateEmail, date, timeSlot string) {
	s.logger.Printf("sending interview notifications for %s", fullName)

	subject := fmt.Sprintf("Interview Confirmation - %s", fullName)
	body := fmt.Sprintf(
		"Dear %s,\n\nThis email confirms your interview has been scheduled with the following details:\n\nDate: %s\nTime: %s\n\nWe look forward to speaking with you.\n\nBest regards,\nThe Interview Team\n",
		fullName, date, timeSlot,
	)
	if err := s.sendMail(candidateEmail, subject, body); err != nil {
		s.logger.Printf("send candidate confirmation to %s: %v", candidateEmail, err)
	}

	if s.cfg.To == "" {
		s.logger.Printf("no team email recipients configured, skipping team notification")
		return
	}

	subject = fmt.Sprintf("New Interview Booking - %s", fullName)
	body = fmt.Sprintf(
		"Dear Interviewer,\n\nA new interview has been booked with the following details:\n\nCandidate Name: %s\nCandidate Email: %s\nInterview Date: %s\nInterview Time: %s\n\nPlease add this to your calendar and prepare accordingly.\n",
		fullName, candidateEmail, date, timeSlot,
	)
	if err := s.sendMail(s.cfg.To, subject, body); err != nil {
		s.logger.Printf("send team notification to %s: %v", s.cfg.To, err)
	}
}

func (s *Sender) sendMail(recipient, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Server)
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	if err := s.send(addr, auth, s.cfg.From, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	s.logger.Printf("email sent to %s", recipient)
	return nil
}
