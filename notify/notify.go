package notify

import (
	"context"
	"errors"
)

var (
	// ErrSMSNotConfigured is returned by the SMS sender when no provider
	// credentials were supplied.
	ErrSMSNotConfigured = errors.New("sms provider not configured")
	// ErrNoRecipients is returned when a message has nobody to go to.
	ErrNoRecipients = errors.New("no recipients")
)

// PushMessage targets explicit user ids, topics, or both.
type PushMessage struct {
	ID       string
	Title    string
	Body     string
	UserIDs  []string
	Topics   []string
	Data     map[string]string
	ImageURL string
}

type PushResult struct {
	MessageID     string   `json:"messageId"`
	SuccessCount  int      `json:"successCount"`
	FailureCount  int      `json:"failureCount"`
	MissingTokens []string `json:"missingTokens,omitempty"`
}

type Pusher interface {
	Push(ctx context.Context, msg PushMessage) (*PushResult, error)
}

// SMSMessage is delivered to every recipient in a single gateway call.
type SMSMessage struct {
	To   []string
	Body string
}

type SMSRecipient struct {
	Number    string `json:"number"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
}

type SMSResult struct {
	Accepted   int            `json:"accepted"`
	Recipients []SMSRecipient `json:"recipients,omitempty"`
}

type SMSSender interface {
	SendSMS(ctx context.Context, msg SMSMessage) (*SMSResult, error)
}
