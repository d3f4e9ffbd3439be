package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cradi/model"
	"cradi/notify"
)

type AlertResult struct {
	ReportID    string         `json:"reportId"`
	Distributed bool           `json:"distributed"`
	Message     string         `json:"message,omitempty"`
	Authorities int            `json:"authorities"`
	SMS         ChannelOutcome `json:"sms"`
	Push        ChannelOutcome `json:"push"`
}

// AlertDistributor tells authorities about reports that became validated.
type AlertDistributor struct {
	deps Deps
}

func NewAlertDistributor(deps Deps) *AlertDistributor {
	return &AlertDistributor{deps: deps}
}

// ShouldDistribute reports whether an update is the move into validated.
// Without a previous version only the current status is checked.
func ShouldDistribute(current model.Report, previous *model.Report) bool {
	if current.Status != model.StatusValidated {
		return false
	}
	if previous == nil {
		return true
	}
	return previous.Status != model.StatusValidated
}

// HandleUpdated sends the SMS and push alerts for a newly validated report.
// The two channels run independently and neither fails the call.
func (a *AlertDistributor) HandleUpdated(ctx context.Context, current model.Report, previous *model.Report) (result *AlertResult, err error) {
	log := a.deps.Log.WithFields(logrus.Fields{
		"component": ComponentAlert,
		"report_id": current.ID,
	})

	result = &AlertResult{ReportID: current.ID}
	if !ShouldDistribute(current, previous) {
		result.Message = "Not a validation, skipped"
		result.SMS.Skipped = "not validated"
		result.Push.Skipped = "not validated"
		log.WithField("status", current.Status).Debug("Update is not a validation, skipped")
		return result, nil
	}

	defer func() { a.deps.Metrics.Run(ComponentAlert, err) }()

	authorities, err := a.deps.Store.ListAuthorities(ctx, current.State, current.LGA)
	if err != nil {
		log.WithError(err).Error("Failed to query authorities")
		return nil, fmt.Errorf("authority query failed: %w", err)
	}

	phones := make([]string, 0, len(authorities))
	for _, auth := range authorities {
		if auth.Phone != "" {
			phones = append(phones, auth.Phone)
		}
	}
	result.Authorities = len(authorities)
	result.Distributed = true

	body := AlertMessage(current)

	// Each goroutine owns one outcome field.
	var g errgroup.Group
	g.Go(func() error {
		result.SMS = a.sendSMS(ctx, log, phones, body)
		return nil
	})
	g.Go(func() error {
		result.Push = a.sendPush(ctx, log, current, body)
		return nil
	})
	_ = g.Wait()

	log.WithFields(logrus.Fields{
		"authorities": result.Authorities,
		"sms_sent":    result.SMS.Sent,
		"push_sent":   result.Push.Sent,
	}).Info("Alert distribution completed")
	result.Message = "Alert distribution completed"
	return result, nil
}

func (a *AlertDistributor) sendSMS(ctx context.Context, log *logrus.Entry, phones []string, body string) ChannelOutcome {
	var out ChannelOutcome
	switch {
	case len(phones) == 0:
		out.Skipped = "no authority contacts"
		log.Info("No authority phone numbers for area, SMS skipped")
		return out
	case !a.deps.SMSEnabled:
		out.Skipped = "sms provider not configured"
		log.Warn("SMS provider not configured, SMS skipped")
		return out
	}

	out.Attempted = true
	out.Recipients = len(phones)
	res, err := a.deps.SMS.SendSMS(ctx, notify.SMSMessage{To: phones, Body: body})
	a.deps.Metrics.Notify("sms", err)
	if res != nil {
		out.Detail = res
	}
	if err != nil {
		out.Error = err.Error()
		log.WithError(err).WithField("recipients", len(phones)).Error("Failed to send SMS alert")
		return out
	}
	out.Sent = true
	log.WithField("recipients", len(phones)).Info("Sent SMS alert")
	return out
}

func (a *AlertDistributor) sendPush(ctx context.Context, log *logrus.Entry, report model.Report, body string) ChannelOutcome {
	topics := report.Topics()
	out := ChannelOutcome{Attempted: true, Recipients: len(topics)}

	res, err := a.deps.Pusher.Push(ctx, notify.PushMessage{
		Title:    report.HazardType,
		Body:     body,
		Topics:   topics,
		ImageURL: a.imageURL(ctx, log, report),
		Data: map[string]string{
			"type":     "alert",
			"reportId": report.ID,
		},
	})
	a.deps.Metrics.Notify("push", err)
	if res != nil {
		out.Detail = res
	}
	if err != nil {
		out.Error = err.Error()
		log.WithError(err).WithField("topics", topics).Error("Failed to send push alert")
		return out
	}
	out.Sent = true
	log.WithField("topics", topics).Info("Sent push alert")
	return out
}

// imageURL signs the first attached image. An unsigned image is dropped
// from the push rather than blocking it.
func (a *AlertDistributor) imageURL(ctx context.Context, log *logrus.Entry, report model.Report) string {
	if a.deps.Images == nil || len(report.ImageIDs) == 0 || report.ImageIDs[0] == "" {
		return ""
	}
	url, err := a.deps.Images.SignedURL(ctx, report.ImageIDs[0])
	if err != nil {
		log.WithError(err).Warn("Failed to sign report image")
		return ""
	}
	return url
}
