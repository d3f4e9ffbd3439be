package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cradi/model"
	"cradi/repository"
)

type SweepResult struct {
	Cutoff    time.Time     `json:"cutoff"`
	Found     int           `json:"found"`
	Escalated []string      `json:"escalated"`
	Conflicts []string      `json:"conflicts,omitempty"`
	Failures  []ItemFailure `json:"failures,omitempty"`
}

// EscalationSweeper moves pending reports nobody verified in time to escalated.
type EscalationSweeper struct {
	deps Deps
}

func NewEscalationSweeper(deps Deps) *EscalationSweeper {
	return &EscalationSweeper{deps: deps}
}

// Sweep escalates up to one batch of overdue reports, oldest first. Only a
// failing query fails the sweep; per-report failures are collected.
func (s *EscalationSweeper) Sweep(ctx context.Context) (result *SweepResult, err error) {
	defer func() { s.deps.Metrics.Run(ComponentEscalation, err) }()

	now := s.deps.now()
	timeout := s.deps.Workflow.EscalationTimeout
	cutoff := now.Add(-timeout)
	log := s.deps.Log.WithField("component", ComponentEscalation)

	reports, err := s.deps.Store.ListOverduePending(ctx, cutoff, s.deps.Workflow.EscalationBatchSize)
	if err != nil {
		log.WithError(err).Error("Failed to query overdue reports")
		return nil, fmt.Errorf("escalation query failed: %w", err)
	}
	log.WithField("found", len(reports)).Info("Checked for reports requiring escalation")

	result = &SweepResult{Cutoff: cutoff, Found: len(reports), Escalated: []string{}}
	transition := repository.Transition{
		From:             model.StatusPending,
		To:               model.StatusEscalated,
		EscalatedAt:      &now,
		EscalationReason: EscalationReason(timeout),
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxInFlight)

	for _, report := range reports {
		id := report.ID
		g.Go(func() error {
			err := s.deps.Store.TransitionStatus(ctx, id, transition)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Escalated = append(result.Escalated, id)
				log.WithField("report_id", id).Info("Escalated report")
			case errors.Is(err, repository.ErrStatusConflict):
				result.Conflicts = append(result.Conflicts, id)
				log.WithField("report_id", id).Warn("Report changed status before escalation, skipped")
			default:
				result.Failures = append(result.Failures, ItemFailure{ID: id, Error: err.Error()})
				log.WithError(err).WithField("report_id", id).Error("Failed to escalate report")
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.Escalated)
	sort.Strings(result.Conflicts)
	sort.Slice(result.Failures, func(i, j int) bool { return result.Failures[i].ID < result.Failures[j].ID })

	s.deps.Metrics.Item(ComponentEscalation, "escalated", len(result.Escalated))
	s.deps.Metrics.Item(ComponentEscalation, "conflict", len(result.Conflicts))
	s.deps.Metrics.Item(ComponentEscalation, "failed", len(result.Failures))

	log.WithFields(logrus.Fields{
		"found":     result.Found,
		"escalated": len(result.Escalated),
		"conflicts": len(result.Conflicts),
		"failures":  len(result.Failures),
	}).Info("Escalation sweep completed")

	return result, nil
}
