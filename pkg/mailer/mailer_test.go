package mailer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/avolkov/pharmtrack-backend/pkg/config"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
)

func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Options{ServiceName: "mailer-test", Output: buf})
}

func TestSendWithoutHostLogsInsteadOfFailing(t *testing.T) {
	var buf bytes.Buffer
	sender := New(config.SMTPConfig{}, testLogger(&buf))

	err := sender.Send(context.Background(), Message{
		To:      "ivan.petrov@example.com",
		Subject: "Парацетамол снова в наличии",
		Body:    "digest body",
	})
	if err != nil {
		t.Fatalf("unconfigured sender should not fail: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ivan.petrov@example.com") {
		t.Fatalf("expected recipient in log output, got %s", out)
	}
	if !strings.Contains(out, "smtp not configured") {
		t.Fatalf("expected fallback notice in log output, got %s", out)
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	var buf bytes.Buffer
	sender := New(config.SMTPConfig{}, testLogger(&buf))
	if err := sender.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}

func TestComposeEncodesSubjectAndHeaders(t *testing.T) {
	sender := New(config.SMTPConfig{DefaultFrom: "noreply@pharmtrack.ru"}, testLogger(&bytes.Buffer{}))
	payload := string(sender.compose(Message{
		To:      "user@example.com",
		Subject: "Нурофен доступен в Москве",
		Body:    "Здравствуйте!",
	}))

	if !strings.Contains(payload, "From: noreply@pharmtrack.ru\r\n") {
		t.Fatalf("missing from header: %q", payload)
	}
	if !strings.Contains(payload, "To: user@example.com\r\n") {
		t.Fatalf("missing to header: %q", payload)
	}
	if !strings.Contains(payload, "Subject: =?utf-8?q?") {
		t.Fatalf("subject should be Q-encoded: %q", payload)
	}
	if !strings.Contains(payload, "Content-Type: text/plain; charset=UTF-8\r\n") {
		t.Fatalf("missing content type: %q", payload)
	}
	if !strings.HasSuffix(payload, "Здравствуйте!\r\n") {
		t.Fatalf("body should terminate payload: %q", payload)
	}
}

func TestComposeKeepsASCIISubjectReadable(t *testing.T) {
	sender := New(config.SMTPConfig{DefaultFrom: "noreply@pharmtrack.ru"}, testLogger(&bytes.Buffer{}))
	payload := string(sender.compose(Message{
		To:      "user@example.com",
		Subject: "Paracetamol is back in stock",
		Body:    "hi",
	}))
	if !strings.Contains(payload, "Subject: Paracetamol is back in stock\r\n") {
		t.Fatalf("ascii subject should not be encoded: %q", payload)
	}
}
