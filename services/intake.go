package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"cradi/model"
	"cradi/notify"
)

type IntakeResult struct {
	ReportID string         `json:"reportId"`
	Message  string         `json:"message"`
	Peers    []string       `json:"peers"`
	Push     ChannelOutcome `json:"push"`
}

// IntakeNotifier asks reviewers in the reporter's ward to verify new reports.
type IntakeNotifier struct {
	deps Deps
}

func NewIntakeNotifier(deps Deps) *IntakeNotifier {
	return &IntakeNotifier{deps: deps}
}

// HandleCreated notifies same-area peers about a new report. A failed push
// is reported in the result but does not fail the call.
func (n *IntakeNotifier) HandleCreated(ctx context.Context, report model.Report) (result *IntakeResult, err error) {
	defer func() { n.deps.Metrics.Run(ComponentIntake, err) }()

	log := n.deps.Log.WithFields(logrus.Fields{
		"component": ComponentIntake,
		"report_id": report.ID,
	})

	peers, err := n.deps.Store.ListPeers(ctx, report.Ward, report.LGA, report.UserID, n.deps.Workflow.PeerLimit)
	if err != nil {
		log.WithError(err).Error("Failed to query peers")
		return nil, fmt.Errorf("peer query failed: %w", err)
	}

	result = &IntakeResult{ReportID: report.ID, Peers: make([]string, 0, len(peers))}
	for _, p := range peers {
		result.Peers = append(result.Peers, p.ID)
	}

	if len(result.Peers) == 0 {
		result.Message = "No peers found to verify"
		result.Push.Skipped = "no peers"
		log.Info("No peers found to verify")
		return result, nil
	}

	result.Push.Attempted = true
	result.Push.Recipients = len(result.Peers)

	pushRes, pushErr := n.deps.Pusher.Push(ctx, notify.PushMessage{
		Title:   verificationTitle,
		Body:    VerificationMessage(report),
		UserIDs: result.Peers,
		Data: map[string]string{
			"type":     verificationRequestType,
			"reportId": report.ID,
		},
	})
	n.deps.Metrics.Notify("push", pushErr)
	if pushRes != nil {
		result.Push.Detail = pushRes
	}

	if pushErr != nil {
		result.Push.Error = pushErr.Error()
		result.Message = "Peers found but notification failed"
		log.WithError(pushErr).WithField("peers", len(result.Peers)).Error("Failed to notify peers")
		return result, nil
	}

	result.Push.Sent = true
	result.Message = fmt.Sprintf("Notified %d peers", len(result.Peers))
	log.WithField("peers", len(result.Peers)).Info("Notified peers")
	return result, nil
}
