package repository

import (
	"context"
	"errors"
	"time"

	"cradi/model"
)

var (
	// ErrReportNotFound indicates the report id does not exist.
	ErrReportNotFound = errors.New("report not found")
	// ErrStatusConflict indicates the report no longer has the expected
	// status, usually because another writer got there first.
	ErrStatusConflict = errors.New("report status changed concurrently")
	// ErrSnapshotNotFound indicates no statistics snapshot has been written yet.
	ErrSnapshotNotFound = errors.New("statistics snapshot not found")
)

// Transition describes a conditional status change: it applies only while
// the stored status still equals From.
type Transition struct {
	From             model.ReportStatus
	To               model.ReportStatus
	EscalatedAt      *time.Time
	EscalationReason string
}

type ReportStore interface {
	// ListOverduePending returns pending reports submitted before cutoff,
	// oldest first, at most limit of them.
	ListOverduePending(ctx context.Context, cutoff time.Time, limit int) ([]model.Report, error)
	TransitionStatus(ctx context.Context, id string, t Transition) error
	// CountReports counts reports with the given status; an empty status counts all.
	CountReports(ctx context.Context, status model.ReportStatus) (int64, error)
	ListRecentReports(ctx context.Context, limit int) ([]model.Report, error)
}

type UserStore interface {
	// ListPeers returns up to limit users in the same ward and LGA,
	// never including excludeUserID.
	ListPeers(ctx context.Context, ward, lga, excludeUserID string, limit int) ([]model.User, error)
	// PushTokens maps user ids to their registered device tokens. Users
	// without a token are absent from the result.
	PushTokens(ctx context.Context, userIDs []string) (map[string]string, error)
}

type AuthorityStore interface {
	ListAuthorities(ctx context.Context, state, lga string) ([]model.AuthorityContact, error)
}

type StatisticsStore interface {
	CreateSnapshot(ctx context.Context, snapshot *model.StatisticsSnapshot) error
	LatestSnapshot(ctx context.Context) (*model.StatisticsSnapshot, error)
}

// Store is the full document store surface used by the workflow.
type Store interface {
	ReportStore
	UserStore
	AuthorityStore
	StatisticsStore
	Close() error
}

var (
	_ Store = (*FirestoreStore)(nil)
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
