package email

import (
	"errors"
	"io"
	"log"
	"net/smtp"
	"strings"
	"testing"

	"github.com/SaumyaBhandari/mindlens-RAG-HRM-Subsystem/config"
)

type sentMail struct {
	to  []string
	msg string
}

func capturingSender(cfg config.SMTPConfig, sent *[]sentMail, fail bool) *Sender {
	s := NewSender(cfg, log.New(io.Discard, "", 0))
	s.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		if fail {
			return errors.New("connection refused")
		}
		*sent = append(*sent, sentMail{to: to, msg: string(msg)})
		return nil
	}
	return s
}

func TestSendInterviewNotifications(t *testing.T) {
	var sent []sentMail
	cfg := config.SMTPConfig{
		Server: "smtp.example.com",
		Port:   587,
		From:   "noreply@example.com",
		To:     "team@example.com",
	}
	s := capturingSender(cfg, &sent, false)

	s.SendInterviewNotifications("Ada Lovelace", "ada@example.com", "2025-04-01", "10:00")

	if len(sent) != 2 {
		t.Fatalf("expected candidate and team mails, got %d", len(sent))
	}
	if sent[0].to[0] != "ada@example.com" {
		t.Fatalf("unexpected candidate recipient: %v", sent[0].to)
	}
	if !strings.Contains(sent[0].msg, "Interview Confirmation - Ada Lovelace") {
		t.Fatal("expected confirmation subject in candidate mail")
	}
	if sent[1].to[0] != "team@example.com" {
		t.Fatalf("unexpected team recipient: %v", sent[1].to)
	}
	if !strings.Contains(sent[1].msg, "New Interview Booking - Ada Lovelace") {
		t.Fatal("expected booking subject in team mail")
	}
	if !strings.Contains(sent[1].msg, "2025-04-01") || !strings.Contains(sent[1].msg, "10:00") {
		t.Fatal("expected schedule details in team mail")
	}
}

func TestSendInterviewNotificationsSkipsTeamWhenUnconfigured(t *testing.T) {
	var sent []sentMail
	cfg := config.SMTPConfig{Server: "smtp.example.com", Port: 587, From: "noreply@example.com"}
	s := capturingSender(cfg, &sent, false)

	s.SendInterviewNotifications("Ada Lovelace", "ada@example.com", "2025-04-01", "10:00")

	if len(sent) != 1 {
		t.Fatalf("expected only the candidate mail, got %d", len(sent))
	}
}

func TestSendInterviewNotificationsIsBestEffort(t *testing.T) {
	var sent []sentMail
	cfg := config.SMTPConfig{Server: "smtp.example.com", Port: 587, From: "noreply@example.com", To: "team@example.com"}
	s := capturingSender(cfg, &sent, true)

	// Must not panic or propagate; failures are logged only.
	s.SendInterviewNotifications("Ada Lovelace", "ada@example.com", "2025-04-01", "10:00")

	if len(sent) != 0 {
		t.Fatalf("expected no sent mails, got %d", len(sent))
	}
}
