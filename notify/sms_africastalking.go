package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Africa's Talking status codes that mean the gateway took the message.
const (
	atProcessed = 100
	atSent      = 101
	atQueued    = 102
)

type AfricasTalkingSender struct {
	endpoint string
	apiKey   string
	username string
	senderID string
	client   *http.Client
}

func NewAfricasTalkingSender(endpoint, apiKey, username, senderID string, timeout time.Duration) *AfricasTalkingSender {
	return &AfricasTalkingSender{
		endpoint: endpoint,
		apiKey:   apiKey,
		username: username,
		senderID: senderID,
		client:   &http.Client{Timeout: timeout},
	}
}

type atResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Status     string `json:"status"`
			Cost       string `json:"cost"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// SendSMS posts one form-encoded request with all recipients comma-joined.
func (s *AfricasTalkingSender) SendSMS(ctx context.Context, msg SMSMessage) (*SMSResult, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}

	form := url.Values{}
	form.Set("username", s.username)
	form.Set("to", strings.Join(msg.To, ","))
	form.Set("message", msg.Body)
	if s.senderID != "" {
		form.Set("from", s.senderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("africastalking request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read africastalking response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("africastalking HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed atResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode africastalking response: %w", err)
	}

	result := &SMSResult{}
	for _, r := range parsed.SMSMessageData.Recipients {
		result.Recipients = append(result.Recipients, SMSRecipient{
			Number:    r.Number,
			Status:    r.Status,
			MessageID: r.MessageID,
		})
		switch r.StatusCode {
		case atProcessed, atSent, atQueued:
			result.Accepted++
		}
	}
	if result.Accepted == 0 {
		return result, fmt.Errorf("africastalking accepted no recipients: %s", parsed.SMSMessageData.Message)
	}
	return result, nil
}
