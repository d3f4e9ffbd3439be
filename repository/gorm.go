package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cradi/model"
)

// GormStore keeps the workflow collections in MySQL or PostgreSQL tables.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the workflow tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Report{},
		&model.User{},
		&model.AuthorityContact{},
		&model.StatisticsSnapshot{},
	)
}

func (s *GormStore) ListOverduePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Report, error) {
	var reports []model.Report
	err := s.db.WithContext(ctx).
		Where("status = ? AND submitted_at < ?", string(model.StatusPending), cutoff).
		Order("submitted_at ASC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue reports: %w", err)
	}
	return reports, nil
}

func (s *GormStore) TransitionStatus(ctx context.Context, id string, t Transition) error {
	updates := map[string]interface{}{"status": string(t.To)}
	if t.EscalatedAt != nil {
		updates["escalated_at"] = *t.EscalatedAt
	}
	if t.EscalationReason != "" {
		updates["escalation_reason"] = t.EscalationReason
	}

	result := s.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ? AND status = ?", id, string(t.From)).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update report %s: %w", id, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Report{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check report %s: %w", id, err)
	}
	if count == 0 {
		return ErrReportNotFound
	}
	return fmt.Errorf("%w: report %s is no longer %q", ErrStatusConflict, id, t.From)
}

func (s *GormStore) CountReports(ctx context.Context, status model.ReportStatus) (int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Report{})
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

func (s *GormStore) ListRecentReports(ctx context.Context, limit int) ([]model.Report, error) {
	var reports []model.Report
	err := s.db.WithContext(ctx).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent reports: %w", err)
	}
	return reports, nil
}

func (s *GormStore) ListPeers(ctx context.Context, ward, lga, excludeUserID string, limit int) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Where("ward = ? AND lga = ? AND id <> ?", ward, lga, excludeUserID).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query peers: %w", err)
	}
	return users, nil
}

func (s *GormStore) PushTokens(ctx context.Context, userIDs []string) (map[string]string, error) {
	tokens := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return tokens, nil
	}

	var users []model.User
	err := s.db.WithContext(ctx).
		Select("id", "fcm_token").
		Where("id IN ?", userIDs).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	for _, user := range users {
		if user.FCMToken != "" {
			tokens[user.ID] = user.FCMToken
		}
	}
	return tokens, nil
}

func (s *GormStore) ListAuthorities(ctx context.Context, state, lga string) ([]model.AuthorityContact, error) {
	var contacts []model.AuthorityContact
	err := s.db.WithContext(ctx).
		Where("state = ? AND lga = ?", state, lga).
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query authorities: %w", err)
	}
	return contacts, nil
}

func (s *GormStore) CreateSnapshot(ctx context.Context, snapshot *model.StatisticsSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return fmt.Errorf("failed to save statistics snapshot: %w", err)
	}
	return nil
}

func (s *GormStore) LatestSnapshot(ctx context.Context) (*model.StatisticsSnapshot, error) {
	var snapshot model.StatisticsSnapshot
	err := s.db.WithContext(ctx).Order("timestamp DESC").First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query statistics: %w", err)
	}
	return &snapshot, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
