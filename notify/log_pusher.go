package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LogPusher writes push messages to the log instead of a device gateway.
type LogPusher struct {
	log *logrus.Logger
}

func NewLogPusher(log *logrus.Logger) *LogPusher {
	return &LogPusher{log: log}
}

func (p *LogPusher) Push(ctx context.Context, msg PushMessage) (*PushResult, error) {
	if len(nonEmpty(msg.Topics)) == 0 && len(msg.UserIDs) == 0 {
		return nil, ErrNoRecipients
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	p.log.WithFields(logrus.Fields{
		"message_id": msg.ID,
		"title":      msg.Title,
		"users":      msg.UserIDs,
		"topics":     msg.Topics,
		"data":       msg.Data,
	}).Info(msg.Body)

	return &PushResult{MessageID: msg.ID, SuccessCount: len(msg.UserIDs) + len(nonEmpty(msg.Topics))}, nil
}
