package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/gomail.v2"
)

func TestSend_Disabled(t *testing.T) {
	c := New(Config{Enabled: false})
	if err := c.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "s", TextBody: "b"}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestSend_BuildsMessage(t *testing.T) {
	c := New(Config{Enabled: true, From: "ops@example.com"})
	var got *gomail.Message
	c.dial = func(m *gomail.Message) error {
		got = m
		return nil
	}
	err := c.Send(context.Background(), Message{To: []string{" intern@example.com ", ""}, Subject: "Status changed", TextBody: "Hired"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if to := got.GetHeader("To"); len(to) != 1 || to[0] != "intern@example.com" {
		t.Fatalf("unexpected To header %v", to)
	}
	if from := got.GetHeader("From"); len(from) != 1 || from[0] != "ops@example.com" {
		t.Fatalf("unexpected From header %v", from)
	}
}

func TestSend_InvalidMessage(t *testing.T) {
	c := New(Config{Enabled: true})
	c.dial = func(*gomail.Message) error { return nil }
	cases := []Message{
		{Subject: "s", TextBody: "b"},
		{To: []string{"a@b.c"}, TextBody: "b"},
		{To: []string{"a@b.c"}, Subject: "s"},
	}
	for _, m := range cases {
		if err := c.Send(context.Background(), m); err == nil {
			t.Fatalf("expected error for %+v", m)
		}
	}
}

func TestSend_Timeout(t *testing.T) {
	c := New(Config{Enabled: true, Timeout: 20 * time.Millisecond})
	release := make(chan struct{})
	defer close(release)
	c.dial = func(*gomail.Message) error {
		<-release
		return nil
	}
	err := c.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "s", TextBody: "b"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestSend_DialError(t *testing.T) {
	c := New(Config{Enabled: true})
	c.dial = func(*gomail.Message) error { return errors.New("connection refused") }
	err := c.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "s", TextBody: "b"})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected wrapped dial error, got %v", err)
	}
}
