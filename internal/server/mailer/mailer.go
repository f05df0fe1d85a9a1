// Package mailer hands outgoing account emails (currently only the
// verification message) to a delivery backend.
package mailer

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Message is a rendered email.
type Message struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Mailer delivers a Message or queues it for delivery.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// VerificationLink returns {baseURL}/verify-email?token=<token>.
func VerificationLink(baseURL, token string) string {
	return fmt.Sprintf("%s/verify-email?token=%s", baseURL, url.QueryEscape(token))
}

// NewVerificationMessage renders the verification email for to. ttl is
// how long the link stays valid.
func NewVerificationMessage(to, link string, ttl time.Duration, now time.Time) Message {
	return Message{
		To:      to,
		Subject: "Verify your email",
		Body: "Please verify your email address by opening the link below.\n\n" +
			link + "\n\nThe link expires in " + humanDuration(ttl) + ".",
		CreatedAt: now,
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	case d%time.Second == 0:
		return plural(int(d/time.Second), "second")
	}
	return d.String()
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
