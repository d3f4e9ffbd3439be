package notify

import (
	"context"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FCM limits multicast sends to 500 tokens per request.
const multicastBatchSize = 500

// TokenSource resolves user ids to device registration tokens.
type TokenSource interface {
	PushTokens(ctx context.Context, userIDs []string) (map[string]string, error)
}

// MessagingClient is the subset of *messaging.Client used here.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

type FCMPusher struct {
	client MessagingClient
	tokens TokenSource
	log    *logrus.Logger
}

func NewFCMPusher(client MessagingClient, tokens TokenSource, log *logrus.Logger) *FCMPusher {
	return &FCMPusher{client: client, tokens: tokens, log: log}
}

func (p *FCMPusher) Push(ctx context.Context, msg PushMessage) (*PushResult, error) {
	topics := nonEmpty(msg.Topics)
	if len(topics) == 0 && len(msg.UserIDs) == 0 {
		return nil, ErrNoRecipients
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	result := &PushResult{MessageID: msg.ID}
	notification := &messaging.Notification{
		Title:    msg.Title,
		Body:     msg.Body,
		ImageURL: msg.ImageURL,
	}
	data := withMessageID(msg.Data, msg.ID)

	if len(topics) > 0 {
		message := &messaging.Message{Notification: notification, Data: data}
		if len(topics) == 1 {
			message.Topic = topics[0]
		} else {
			message.Condition = TopicCondition(topics)
		}
		if _, err := p.client.Send(ctx, message); err != nil {
			return result, fmt.Errorf("failed to send topic push: %w", err)
		}
		result.SuccessCount++
	}

	if len(msg.UserIDs) == 0 {
		return result, nil
	}

	byUser, err := p.tokens.PushTokens(ctx, msg.UserIDs)
	if err != nil {
		return result, fmt.Errorf("failed to resolve push tokens: %w", err)
	}

	tokens := make([]string, 0, len(msg.UserIDs))
	for _, id := range msg.UserIDs {
		if token, ok := byUser[id]; ok {
			tokens = append(tokens, token)
		} else {
			result.MissingTokens = append(result.MissingTokens, id)
		}
	}
	if len(tokens) == 0 {
		return result, fmt.Errorf("%w: none of %d users has a device token", ErrNoRecipients, len(msg.UserIDs))
	}

	for i := 0; i < len(tokens); i += multicastBatchSize {
		end := i + multicastBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[i:end]

		response, err := p.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Notification: notification,
			Data:         data,
			Tokens:       batch,
		})
		if err != nil {
			result.FailureCount += len(batch)
			p.log.WithError(err).WithFields(logrus.Fields{
				"message_id": msg.ID,
				"batch":      fmt.Sprintf("%d-%d", i, end-1),
			}).Error("Multicast batch failed")
			continue
		}

		result.SuccessCount += response.SuccessCount
		result.FailureCount += response.FailureCount
		for idx, resp := range response.Responses {
			if !resp.Success {
				p.log.WithError(resp.Error).WithField("message_id", msg.ID).
					Warnf("Failed to deliver to token %d of batch", i+idx)
			}
		}
	}

	if result.SuccessCount == 0 {
		return result, fmt.Errorf("push %s reached no devices", msg.ID)
	}
	return result, nil
}

// TopicCondition builds an FCM condition matching any of the topics.
func TopicCondition(topics []string) string {
	parts := make([]string, 0, len(topics))
	for _, topic := range topics {
		parts = append(parts, fmt.Sprintf("'%s' in topics", topic))
	}
	return strings.Join(parts, " || ")
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func withMessageID(data map[string]string, id string) map[string]string {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["messageId"] = id
	return out
}
