package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cradi/model"
)

// StatisticsAggregator writes a fresh absolute count snapshot on every run.
type StatisticsAggregator struct {
	deps Deps
}

func NewStatisticsAggregator(deps Deps) *StatisticsAggregator {
	return &StatisticsAggregator{deps: deps}
}

func (s *StatisticsAggregator) Aggregate(ctx context.Context) (snapshot *model.StatisticsSnapshot, err error) {
	defer func() { s.deps.Metrics.Run(ComponentStatistics, err) }()

	log := s.deps.Log.WithField("component", ComponentStatistics)
	snapshot = &model.StatisticsSnapshot{Timestamp: s.deps.now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.deps.Store.CountReports(gctx, "")
		if err != nil {
			return fmt.Errorf("count all reports: %w", err)
		}
		snapshot.TotalCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.deps.Store.CountReports(gctx, model.StatusValidated)
		if err != nil {
			return fmt.Errorf("count validated reports: %w", err)
		}
		snapshot.ValidatedCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.deps.Store.CountReports(gctx, model.StatusEscalated)
		if err != nil {
			return fmt.Errorf("count escalated reports: %w", err)
		}
		snapshot.EscalatedCount = n
		return nil
	})
	if size := s.deps.Workflow.StatsSampleSize; size > 0 {
		g.Go(func() error {
			recent, err := s.deps.Store.ListRecentReports(gctx, size)
			if err != nil {
				return fmt.Errorf("sample recent reports: %w", err)
			}
			snapshot.HazardSample = hazardSample(recent)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Failed to compute statistics")
		return nil, fmt.Errorf("statistics aggregation failed: %w", err)
	}

	if err := s.deps.Store.CreateSnapshot(ctx, snapshot); err != nil {
		log.WithError(err).Error("Failed to save statistics snapshot")
		return nil, fmt.Errorf("statistics snapshot save failed: %w", err)
	}

	log.WithFields(logrus.Fields{
		"snapshot_id": snapshot.ID,
		"total":       snapshot.TotalCount,
		"validated":   snapshot.ValidatedCount,
		"escalated":   snapshot.EscalatedCount,
	}).Info("Statistics snapshot saved")
	return snapshot, nil
}

func (s *StatisticsAggregator) Latest(ctx context.Context) (*model.StatisticsSnapshot, error) {
	return s.deps.Store.LatestSnapshot(ctx)
}

func hazardSample(reports []model.Report) map[string]int {
	counts := make(map[string]int)
	for _, r := range reports {
		if r.HazardType == "" {
			continue
		}
		counts[r.HazardType]++
	}
	return counts
}
