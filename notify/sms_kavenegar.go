package notify

import (
	"context"
	"fmt"

	"github.com/kavenegar/kavenegar-go"
)

type KavenegarSender struct {
	api    *kavenegar.Kavenegar
	sender string
}

func NewKavenegarSender(apiKey, sender string) *KavenegarSender {
	return &KavenegarSender{
		api:    kavenegar.New(apiKey),
		sender: sender,
	}
}

// SendSMS passes every receptor to a single Message.Send call.
func (s *KavenegarSender) SendSMS(ctx context.Context, msg SMSMessage) (*SMSResult, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}

	res, err := s.api.Message.Send(s.sender, msg.To, msg.Body, nil)
	if err != nil {
		switch err := err.(type) {
		case *kavenegar.APIError:
			return nil, fmt.Errorf("kavenegar API error: %w", err)
		case *kavenegar.HTTPError:
			return nil, fmt.Errorf("kavenegar HTTP error: %w", err)
		default:
			return nil, fmt.Errorf("failed to send SMS: %w", err)
		}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("no response entries from Kavenegar")
	}

	result := &SMSResult{Accepted: len(res)}
	for i, entry := range res {
		recipient := SMSRecipient{Status: "sent", MessageID: fmt.Sprintf("%d", entry.MessageID)}
		if i < len(msg.To) {
			recipient.Number = msg.To[i]
		}
		result.Recipients = append(result.Recipients, recipient)
	}
	return result, nil
}
